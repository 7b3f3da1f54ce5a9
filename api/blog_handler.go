package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/rpupo63/blogpress/database"
	"github.com/rpupo63/blogpress/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type blogHandler struct {
	responder   Responder
	logger      zerolog.Logger
	repo        database.Repository
	startupTime time.Time
	now         func() time.Time
}

func newBlogHandler(repo database.Repository, startupTime time.Time, now func() time.Time) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		repo:        repo,
		startupTime: startupTime,
		now:         now,
	}
}

// getIndex returns the published posts with every tag and author
// @Summary Blog index
// @Tags Blog
// @Produce json
// @Success 200 {object} IndexResponse
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error loading index"
// @Router / [get]
func (h blogHandler) getIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			posts   []models.Post
			tags    []models.Tag
			authors []models.Author
		)

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			posts, err = h.repo.GetAllPostsSortedByPublishDate(ctx, false)
			return err
		})
		g.Go(func() error {
			var err error
			tags, err = h.repo.GetAllTags(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			authors, err = h.repo.GetAllAuthors(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("load", "index", err))
			return
		}

		h.responder.WriteJSON(w, IndexResponse{Posts: posts, Tags: tags, Authors: authors})
	}
}

// search finds published posts containing the term
// @Summary Search posts
// @Tags Blog
// @Produce json
// @Param term query string false "Search term"
// @Success 200 {object} SearchResponse
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error searching posts"
// @Router /search [get]
func (h blogHandler) search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := strings.TrimSpace(r.URL.Query().Get("term"))
		if term == "" {
			h.responder.WriteJSON(w, SearchResponse{Posts: []models.Post{}, EmptySearch: true})
			return
		}

		posts, err := h.repo.SearchPublishedPosts(r.Context(), term)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("search", "posts", err))
			return
		}

		h.responder.WriteJSON(w, SearchResponse{Term: term, Posts: posts})
	}
}

func (h blogHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, map[string]interface{}{
			"status":        "ok",
			"startedAt":     h.startupTime.UTC().Format(time.RFC3339),
			"uptimeSeconds": int64(h.now().Sub(h.startupTime).Seconds()),
		})
	}
}

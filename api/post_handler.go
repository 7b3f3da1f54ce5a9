package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/blogpress/database"
	"github.com/rpupo63/blogpress/errs"
	"github.com/rpupo63/blogpress/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type postHandler struct {
	responder Responder
	logger    zerolog.Logger
	repo      database.Repository
	mountPath string
	now       func() time.Time
}

func newPostHandler(repo database.Repository, mountPath string, now func() time.Time) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()

	return postHandler{
		responder: NewResponder(logger),
		logger:    logger,
		repo:      repo,
		mountPath: mountPath,
		now:       now,
	}
}

// getPost retrieves a published post by slug with its author and tags
// @Summary Get post
// @Tags Posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} PostDetail "Post with author and tags"
// @Failure 404 {object} ErrorResponse "Not Found - Post not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching post"
// @Router /posts/{slug} [get]
func (h postHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.repo.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil || !post.Published {
			h.responder.WriteError(w, errs.NewNotFoundError("post not found"))
			return
		}

		detail, err := h.postDetail(r, *post)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, detail)
	}
}

// redirectToIndex sends the bare posts listing to the index, which lists them
func (h postHandler) redirectToIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, originFor(r, h.mountPath), http.StatusMovedPermanently)
	}
}

// redirectToPost resolves the stable ID based post address used as the feed entry identity
func (h postHandler) redirectToPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := parseID(chi.URLParam(r, "postID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid postID"))
			return
		}

		post, err := h.repo.GetPostByID(r.Context(), postID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil || !post.Published {
			h.responder.WriteError(w, errs.NewNotFoundError("post not found"))
			return
		}

		http.Redirect(w, r, originFor(r, h.mountPath)+"posts/"+post.Slug+"/", http.StatusMovedPermanently)
	}
}

// createPost creates a post owned by the authenticated author. If tagging
// fails the post is deleted again, so a failed request leaves nothing behind.
// @Summary Create post
// @Tags Admin
// @Accept json
// @Produce json
// @Param post body PostRequest true "Post data"
// @Success 201 {object} PostDetail "Created post"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid post data"
// @Failure 409 {object} ErrorResponse "Conflict - Slug already in use"
// @Router /admin/posts [post]
func (h postHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorID, err := ctxGetAuthorID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var req PostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode post request body")
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}
		if err := req.Validate(); err != nil {
			h.responder.WriteValidationError(w, err)
			return
		}

		author, err := h.repo.GetAuthorByID(r.Context(), authorID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "author", err))
			return
		}
		if author == nil {
			h.responder.WriteError(w, errs.NewForbiddenError("authenticated author no longer exists"))
			return
		}

		slug := req.Slug
		if slug == "" {
			slug = models.Slugify(req.Title)
		}
		if slug == "" {
			h.responder.WriteError(w, errs.NewInvalidFieldError("slug", "could not be derived from the title"))
			return
		}

		post, err := h.repo.CreatePost(r.Context(), models.Post{
			Title:     req.Title,
			Contents:  req.Contents,
			Slug:      slug,
			AuthorID:  author.ID,
			Created:   h.now(),
			Published: req.Published,
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "post", err))
			return
		}

		tags, err := h.syncTags(r, post.ID, req.Tags)
		if err != nil {
			// the post and its tags are written separately, so drop the half-tagged post
			if delErr := h.repo.DeletePost(context.WithoutCancel(r.Context()), post.ID); delErr != nil {
				h.logger.Error().Err(delErr).Uint("postID", post.ID).Msg("Failed to remove post after tagging failed")
			}
			h.responder.WriteError(w, wrapDatabaseError("tag", "post", err))
			return
		}

		h.logger.Info().Uint("postID", post.ID).Str("slug", post.Slug).Msg("Post created")
		h.responder.WriteJSONWithStatus(w, http.StatusCreated, PostDetail{Post: post, Author: *author, Tags: tags})
	}
}

// updatePost edits a post. Editing a published post records the edit time;
// publishing a draft makes the publication time its creation time.
// @Summary Update post
// @Tags Admin
// @Accept json
// @Produce json
// @Param postID path int true "Post ID"
// @Param post body PostRequest true "Updated post data"
// @Success 200 {object} PostDetail "Updated post"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid post data"
// @Failure 404 {object} ErrorResponse "Not Found - Post not found"
// @Router /admin/posts/{postID} [put]
func (h postHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := parseID(chi.URLParam(r, "postID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid postID"))
			return
		}

		existing, err := h.repo.GetPostByID(r.Context(), postID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if existing == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("post not found"))
			return
		}

		var req PostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode post request body")
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}
		if err := req.Validate(); err != nil {
			h.responder.WriteValidationError(w, err)
			return
		}

		post := existing.Clone()
		post.Title = req.Title
		post.Contents = req.Contents
		if req.Slug != "" {
			post.Slug = req.Slug
		}

		now := h.now()
		switch {
		case existing.Published:
			if now.Before(post.Created) {
				now = post.Created
			}
			post.LastEdited = &now
		case req.Published:
			post.Created = now
			post.LastEdited = nil
		}
		post.Published = req.Published

		if err := h.repo.UpdatePost(r.Context(), post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "post", err))
			return
		}

		if _, err := h.syncTags(r, post.ID, req.Tags); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("tag", "post", err))
			return
		}

		detail, err := h.postDetail(r, post)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, detail)
	}
}

// deletePost deletes a post and its tag links
// @Summary Delete post
// @Tags Admin
// @Param postID path int true "Post ID"
// @Success 200 {object} map[string]string "Success message"
// @Failure 404 {object} ErrorResponse "Not Found - Post not found"
// @Router /admin/posts/{postID} [delete]
func (h postHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := parseID(chi.URLParam(r, "postID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid postID"))
			return
		}

		if err := h.repo.DeletePost(r.Context(), postID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "post", err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "post deleted successfully",
		})
	}
}

// postDetail joins post with its author and tags. A missing author is a
// referential integrity failure, not a missing page.
func (h postHandler) postDetail(r *http.Request, post models.Post) (PostDetail, error) {
	author, err := h.repo.GetAuthorByID(r.Context(), post.AuthorID)
	if err != nil {
		return PostDetail{}, wrapDatabaseError("find", "author", err)
	}
	if author == nil {
		return PostDetail{}, errs.NewReferentialIntegrityError("post", "author", post.AuthorID)
	}

	tags, err := h.repo.GetTagsForPost(r.Context(), post.ID)
	if err != nil {
		return PostDetail{}, wrapDatabaseError("find", "tags", err)
	}
	return PostDetail{Post: post, Author: *author, Tags: tags}, nil
}

// syncTags makes names the exact tag set of the post
func (h postHandler) syncTags(r *http.Request, postID uint, names []string) ([]models.Tag, error) {
	ctx := r.Context()
	current, err := h.repo.GetTagsForPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(names))
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if wanted[name] {
			continue
		}
		wanted[name] = true

		tag, err := h.repo.GetOrCreateTag(ctx, name)
		if err != nil {
			return nil, err
		}
		if err := h.repo.LinkTag(ctx, tag.ID, postID); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	for _, tag := range current {
		if !wanted[tag.Name] {
			if err := h.repo.UnlinkTag(ctx, tag.ID, postID); err != nil {
				return nil, err
			}
		}
	}
	return tags, nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

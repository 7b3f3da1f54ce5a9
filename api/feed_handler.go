package api

import (
	"net/http"
	"time"

	"github.com/rpupo63/blogpress/database"
	"github.com/rpupo63/blogpress/errs"
	"github.com/rpupo63/blogpress/feed"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type feedHandler struct {
	responder Responder
	logger    zerolog.Logger
	atom      *feed.AtomGenerator
	rss       *feed.RSSGenerator
	mountPath string
}

func newFeedHandler(repo database.Repository, feedConfig feed.Config, now func() time.Time) feedHandler {
	logger := log.With().Str("handlerName", "feedHandler").Logger()

	return feedHandler{
		responder: NewResponder(logger),
		logger:    logger,
		atom:      feed.NewAtomGenerator(repo, feedConfig, now),
		rss:       feed.NewRSSGenerator(repo, feedConfig, now),
		mountPath: feedConfig.MountPath,
	}
}

// requestSnapshot copies the request fields the origin depends on
func requestSnapshot(r *http.Request) feed.RequestSnapshot {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return feed.RequestSnapshot{
		Scheme:         scheme,
		Host:           r.Host,
		ForwardedProto: r.Header.Get("X-Forwarded-Proto"),
	}
}

func originFor(r *http.Request, mountPath string) string {
	return feed.ResolveOrigin(requestSnapshot(r), mountPath)
}

// getAtomFeed renders the Atom feed of published posts
// @Summary Atom feed
// @Tags Feeds
// @Produce xml
// @Success 200 {string} string "Atom document"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Feed could not be generated"
// @Router /atom.xml [get]
func (h feedHandler) getAtomFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.atom.Generate(r.Context(), originFor(r, h.mountPath))
		if err != nil {
			h.logger.Error().Err(err).Str("requestID", ctxGetRequestID(r.Context())).Msg("Failed to generate atom feed")
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to generate feed", err))
			return
		}
		h.responder.WriteDocument(w, "application/atom+xml; charset=utf-8", doc)
	}
}

// getRSSFeed renders the RSS 2.0 feed of published posts
// @Summary RSS feed
// @Tags Feeds
// @Produce xml
// @Success 200 {string} string "RSS document"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Feed could not be generated"
// @Router /rss.xml [get]
func (h feedHandler) getRSSFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.rss.Generate(r.Context(), originFor(r, h.mountPath))
		if err != nil {
			h.logger.Error().Err(err).Str("requestID", ctxGetRequestID(r.Context())).Msg("Failed to generate rss feed")
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to generate feed", err))
			return
		}
		h.responder.WriteDocument(w, "application/rss+xml; charset=utf-8", doc)
	}
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/blogpress/database"
	"github.com/rpupo63/blogpress/errs"
	"github.com/rpupo63/blogpress/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type authorHandler struct {
	responder Responder
	logger    zerolog.Logger
	repo      database.Repository
}

func newAuthorHandler(repo database.Repository) authorHandler {
	logger := log.With().Str("handlerName", "authorHandler").Logger()

	return authorHandler{
		responder: NewResponder(logger),
		logger:    logger,
		repo:      repo,
	}
}

// getAllAuthors lists every author
// @Summary Get all authors
// @Tags Authors
// @Produce json
// @Success 200 {array} models.Author
// @Router /authors [get]
func (h authorHandler) getAllAuthors() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authors, err := h.repo.GetAllAuthors(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "authors", err))
			return
		}
		h.responder.WriteJSON(w, authors)
	}
}

// getAuthor returns an author and their published posts
// @Summary Get author
// @Tags Authors
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} AuthorPage
// @Failure 404 {object} ErrorResponse "Not Found - Author not found"
// @Router /authors/{username} [get]
func (h authorHandler) getAuthor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		author, err := h.repo.GetAuthorByUsername(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "author", err))
			return
		}
		if author == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("author not found"))
			return
		}

		posts, err := h.repo.GetPostsForAuthor(r.Context(), author.ID, false)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "posts", err))
			return
		}
		h.responder.WriteJSON(w, AuthorPage{Author: *author, Posts: posts})
	}
}

// createAuthor adds an author. The password is stored as a bcrypt hash.
// @Summary Create author
// @Tags Admin
// @Accept json
// @Produce json
// @Param author body CreateAuthorRequest true "Author data"
// @Success 201 {object} models.Author
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid author data"
// @Failure 409 {object} ErrorResponse "Conflict - Username already in use"
// @Router /admin/authors [post]
func (h authorHandler) createAuthor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAuthorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode author request body")
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}
		if err := req.Validate(); err != nil {
			h.responder.WriteValidationError(w, err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to hash password", err))
			return
		}

		author, err := h.repo.CreateAuthor(r.Context(), models.Author{
			Name:           req.Name,
			Username:       req.Username,
			Password:       string(hash),
			ProfilePicture: req.ProfilePicture,
			TwitterHandle:  req.TwitterHandle,
			Biography:      req.Biography,
			Tagline:        req.Tagline,
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "author", err))
			return
		}

		h.logger.Info().Uint("authorID", author.ID).Str("username", author.Username).Msg("Author created")
		h.responder.WriteJSONWithStatus(w, http.StatusCreated, author)
	}
}

// updateAuthor edits an author. An empty password keeps the stored hash.
// @Summary Update author
// @Tags Admin
// @Accept json
// @Produce json
// @Param authorID path int true "Author ID"
// @Param author body UpdateAuthorRequest true "Author data"
// @Success 200 {object} models.Author
// @Failure 404 {object} ErrorResponse "Not Found - Author not found"
// @Router /admin/authors/{authorID} [put]
func (h authorHandler) updateAuthor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorID, err := parseID(chi.URLParam(r, "authorID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid authorID"))
			return
		}

		existing, err := h.repo.GetAuthorByID(r.Context(), authorID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "author", err))
			return
		}
		if existing == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("author not found"))
			return
		}

		var req UpdateAuthorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode author request body")
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}
		if err := req.Validate(); err != nil {
			h.responder.WriteValidationError(w, err)
			return
		}

		author := existing.Clone()
		author.Name = req.Name
		author.Username = req.Username
		author.ProfilePicture = req.ProfilePicture
		author.TwitterHandle = req.TwitterHandle
		author.Biography = req.Biography
		author.Tagline = req.Tagline
		author.ResetPasswordRequired = req.ResetPasswordRequired
		if req.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to hash password", err))
				return
			}
			author.Password = string(hash)
		}

		if err := h.repo.UpdateAuthor(r.Context(), author); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "author", err))
			return
		}
		author.Username = models.NormalizeUsername(author.Username)
		h.responder.WriteJSON(w, author)
	}
}

// deleteAuthor removes an author. Authors cannot delete themselves and the
// last remaining author cannot be deleted. Their posts are left in place.
// @Summary Delete author
// @Tags Admin
// @Param authorID path int true "Author ID"
// @Success 200 {object} map[string]string "Success message"
// @Failure 403 {object} ErrorResponse "Forbidden - Deleting self or the last author"
// @Failure 404 {object} ErrorResponse "Not Found - Author not found"
// @Router /admin/authors/{authorID} [delete]
func (h authorHandler) deleteAuthor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorID, err := parseID(chi.URLParam(r, "authorID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid authorID"))
			return
		}

		currentAuthorID, err := ctxGetAuthorID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		if currentAuthorID == authorID {
			h.responder.WriteError(w, errs.NewForbiddenError("you cannot delete yourself whilst logged in"))
			return
		}

		count, err := h.repo.CountAuthors(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "authors", err))
			return
		}
		if count <= 1 {
			h.responder.WriteError(w, errs.NewForbiddenError("you cannot delete the last author"))
			return
		}

		if err := h.repo.DeleteAuthor(r.Context(), authorID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "author", err))
			return
		}

		h.logger.Info().Uint("authorID", authorID).Msg("Author deleted")
		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "author deleted successfully",
		})
	}
}

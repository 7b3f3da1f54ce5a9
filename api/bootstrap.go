package api

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/rpupo63/blogpress/database"
	"github.com/rpupo63/blogpress/errs"
	"github.com/rpupo63/blogpress/models"
	"golang.org/x/crypto/bcrypt"
)

// BootstrapAuthor creates the first author when the store has none, so a fresh
// install can reach the admin routes. It returns the author and its generated
// password, which is only available here; the author is flagged to reset it.
// When authors already exist it returns nil and creates nothing.
func BootstrapAuthor(ctx context.Context, repo database.AuthorRepository, username, name string) (*models.Author, string, error) {
	count, err := repo.CountAuthors(ctx)
	if err != nil {
		return nil, "", errs.NewDatabaseError("count", "authors", err)
	}
	if count > 0 {
		return nil, "", nil
	}

	if err := validation.Validate(username, validation.Required, is.Alphanumeric); err != nil {
		return nil, "", errs.NewInvalidFieldError("username", err.Error())
	}
	if strings.TrimSpace(name) == "" {
		name = username
	}

	password := strings.ReplaceAll(uuid.NewString(), "-", "")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errs.NewInternalErrorWithCause("failed to hash password", err)
	}

	author, err := repo.CreateAuthor(ctx, models.Author{
		Name:                  name,
		Username:              username,
		Password:              string(hash),
		ResetPasswordRequired: true,
	})
	if err != nil {
		// another instance bootstrapped the same store first
		if errs.IsUniqueConstraintViolationError(err) {
			return nil, "", nil
		}
		return nil, "", errs.NewDatabaseError("create", "author", err)
	}
	return &author, password, nil
}

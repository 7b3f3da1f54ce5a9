package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/rpupo63/blogpress/database"
	"github.com/rpupo63/blogpress/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBootstrapAuthor_EmptyStore(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryRepository(database.DefaultSearchPolicy())

	author, password, err := BootstrapAuthor(ctx, repo, "Admin", "Site Admin")
	require.NoError(t, err)
	require.NotNil(t, author)

	assert.Equal(t, uint(1), author.ID)
	assert.Equal(t, "admin", author.Username)
	assert.Equal(t, "Site Admin", author.Name)
	assert.True(t, author.ResetPasswordRequired)
	assert.NotEmpty(t, password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(author.Password), []byte(password)))

	again, _, err := BootstrapAuthor(ctx, repo, "other", "Other")
	require.NoError(t, err)
	assert.Nil(t, again)

	count, err := repo.CountAuthors(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestBootstrapAuthor_InvalidUsername(t *testing.T) {
	repo := database.NewMemoryRepository(database.DefaultSearchPolicy())

	author, _, err := BootstrapAuthor(context.Background(), repo, "not valid!", "")
	require.Error(t, err)
	assert.True(t, errs.IsInvalidFieldError(err))
	assert.Nil(t, author)
}

func TestBootstrapAuthor_UnlocksAdminRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	author, _, err := BootstrapAuthor(context.Background(), s.repo, "admin", "")
	require.NoError(t, err)
	require.NotNil(t, author)
	assert.Equal(t, "admin", author.Name)

	rec := s.admin(t, http.MethodPost, "/admin/posts", author.ID, PostRequest{Title: "First", Contents: "Hello", Published: true})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

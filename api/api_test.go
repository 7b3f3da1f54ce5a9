package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/blogpress/database"
	"github.com/rpupo63/blogpress/models"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var testNow = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

type testServer struct {
	repo   *database.MemoryRepository
	router *chi.Mux
}

func newTestServer(t *testing.T, settings map[string]string) testServer {
	t.Helper()
	c := map[string]string{"JWT_SECRET": testSecret}
	for key, value := range settings {
		c[key] = value
	}
	repo := database.NewMemoryRepository(database.DefaultSearchPolicy())
	router := newRouter(repo, withConfig(c), withClock(func() time.Time { return testNow }))
	return testServer{repo: repo, router: router}
}

func (s testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	return s.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (s testServer) admin(t *testing.T, method, path string, authorID uint, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if authorID != 0 {
		token, err := IssueToken(testSecret, authorID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(t, req)
}

func (s testServer) author(t *testing.T, username string) models.Author {
	t.Helper()
	author, err := s.repo.CreateAuthor(context.Background(), models.Author{Name: "Author " + username, Username: username, Password: "hash"})
	require.NoError(t, err)
	return author
}

func (s testServer) post(t *testing.T, author models.Author, slug string, published bool, tags ...string) models.Post {
	t.Helper()
	ctx := context.Background()
	post, err := s.repo.CreatePost(ctx, models.Post{
		Title:     "Title " + slug,
		Contents:  "Contents of " + slug,
		Slug:      slug,
		AuthorID:  author.ID,
		Created:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Published: published,
	})
	require.NoError(t, err)
	for _, name := range tags {
		tag, err := s.repo.GetOrCreateTag(ctx, name)
		require.NoError(t, err)
		require.NoError(t, s.repo.LinkTag(ctx, tag.ID, post.ID))
	}
	return post
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

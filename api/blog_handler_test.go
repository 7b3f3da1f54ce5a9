package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlogHandler_Index(t *testing.T) {
	s := newTestServer(t, nil)
	author := s.author(t, "luke")
	s.post(t, author, "published", true, "go")
	s.post(t, author, "draft", false)

	rec := s.get(t, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	index := decode[IndexResponse](t, rec)
	require.Len(t, index.Posts, 1)
	assert.Equal(t, "published", index.Posts[0].Slug)
	assert.Len(t, index.Tags, 1)
	assert.Len(t, index.Authors, 1)
	assert.NotContains(t, rec.Body.String(), "hash")
}

func TestBlogHandler_Search(t *testing.T) {
	s := newTestServer(t, nil)
	author := s.author(t, "luke")
	s.post(t, author, "golang-tips", true)

	rec := s.get(t, "/search?term=GOLANG")
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode[SearchResponse](t, rec)
	assert.False(t, result.EmptySearch)
	require.Len(t, result.Posts, 1)

	rec = s.get(t, "/search?term=%20")
	require.Equal(t, http.StatusOK, rec.Code)
	result = decode[SearchResponse](t, rec)
	assert.True(t, result.EmptySearch)
	assert.NotNil(t, result.Posts)
	assert.Empty(t, result.Posts)
}

func TestBlogHandler_Health(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.get(t, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestPostHandler_GetPost(t *testing.T) {
	s := newTestServer(t, nil)
	author := s.author(t, "luke")
	s.post(t, author, "hello", true, "go")
	s.post(t, author, "secret", false)

	rec := s.get(t, "/posts/hello/")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[PostDetail](t, rec)
	assert.Equal(t, "hello", detail.Post.Slug)
	assert.Equal(t, "luke", detail.Author.Username)
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, "go", detail.Tags[0].Name)

	assert.Equal(t, http.StatusNotFound, s.get(t, "/posts/secret").Code)
	assert.Equal(t, http.StatusNotFound, s.get(t, "/posts/missing").Code)
}

func TestPostHandler_RedirectsStableIdentity(t *testing.T) {
	s := newTestServer(t, nil)
	author := s.author(t, "luke")
	post := s.post(t, author, "hello", true)

	rec := s.get(t, "/posts-id/1/")

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "http://example.com/posts/"+post.Slug+"/", rec.Header().Get("Location"))
	assert.Equal(t, http.StatusBadRequest, s.get(t, "/posts-id/abc").Code)
}

func TestAuthorAndTagPages(t *testing.T) {
	s := newTestServer(t, nil)
	author := s.author(t, "luke")
	s.post(t, author, "hello", true, "go")
	s.post(t, author, "draft", false, "go")

	rec := s.get(t, "/authors/LUKE")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[AuthorPage](t, rec)
	assert.Equal(t, author.ID, page.Author.ID)
	assert.Len(t, page.Posts, 1)

	rec = s.get(t, "/tags/go")
	require.Equal(t, http.StatusOK, rec.Code)
	tagPage := decode[TagPage](t, rec)
	assert.Equal(t, "go", tagPage.Tag.Name)
	assert.Len(t, tagPage.Posts, 1)

	assert.Equal(t, http.StatusNotFound, s.get(t, "/authors/nobody").Code)
	assert.Equal(t, http.StatusNotFound, s.get(t, "/tags/rust").Code)
	assert.Equal(t, http.StatusOK, s.get(t, "/authors").Code)
	assert.Equal(t, http.StatusOK, s.get(t, "/tags").Code)
}

func TestTagPage_EscapedNames(t *testing.T) {
	for _, settings := range []map[string]string{nil, {"BLOG_MOUNT_PATH": "blog"}} {
		s := newTestServer(t, settings)
		prefix := ""
		if settings != nil {
			prefix = "/blog"
		}
		author := s.author(t, "luke")
		s.post(t, author, "pipelines", true, "CI/CD", "Go Tips")

		for _, path := range []string{"/tags/CI%2FCD", "/tags/CI%2FCD/", "/tags/Go%20Tips"} {
			rec := s.get(t, prefix+path)
			require.Equal(t, http.StatusOK, rec.Code, prefix+path)
			assert.Len(t, decode[TagPage](t, rec).Posts, 1)
		}
	}
}

func TestPostHandler_PostsListingRedirectsToIndex(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.get(t, "/posts/")

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "http://example.com/", rec.Header().Get("Location"))
}

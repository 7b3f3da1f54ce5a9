package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedHandler_AtomFeed(t *testing.T) {
	s := newTestServer(t, nil)
	author := s.author(t, "luke")
	s.post(t, author, "hello", true)

	rec := s.get(t, "/atom.xml")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/atom+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `<link rel="self" type="application/atom+xml" href="http://example.com/atom.xml"/>`)
	assert.Contains(t, rec.Body.String(), `<link rel="alternate" href="http://example.com/posts/hello/" />`)
}

func TestFeedHandler_BehindTLSProxyWithMountPath(t *testing.T) {
	s := newTestServer(t, map[string]string{"BLOG_MOUNT_PATH": "blog"})
	author := s.author(t, "luke")
	s.post(t, author, "hello", true)

	req := httptest.NewRequest(http.MethodGet, "http://geeks.example.io/blog/atom.xml", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := s.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<id>https://geeks.example.io/blog/</id>")
	assert.Contains(t, rec.Body.String(), "<id>https://geeks.example.io/blog/posts-id/1/</id>")
}

func TestFeedHandler_EmptyFeedUsesClock(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.get(t, "/atom.xml")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<updated>2024-03-05T12:00:00+0000</updated>\n</feed>")
}

func TestFeedHandler_MissingAuthorIsServerError(t *testing.T) {
	s := newTestServer(t, nil)
	author := s.author(t, "luke")
	s.post(t, author, "orphan", true)
	require.NoError(t, s.repo.DeleteAuthor(context.Background(), author.ID))

	for _, path := range []string{"/atom.xml", "/rss.xml"} {
		rec := s.get(t, path)

		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		assert.NotContains(t, rec.Body.String(), "<feed")
		assert.NotContains(t, rec.Body.String(), "<rss")
	}
}

func TestFeedHandler_RSSFeed(t *testing.T) {
	s := newTestServer(t, map[string]string{"BLOG_TITLE": "My Blog"})
	author := s.author(t, "luke")
	s.post(t, author, "hello", true, "go")

	rec := s.get(t, "/rss.xml")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<title>My Blog</title>")
	assert.Contains(t, rec.Body.String(), "<category>go</category>")
}

func TestRequestSnapshot(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://secure.example.com/atom.xml", nil)
	req.Header.Set("X-Forwarded-Proto", "http")

	snapshot := requestSnapshot(req)

	assert.Equal(t, "https", snapshot.Scheme)
	assert.Equal(t, "secure.example.com", snapshot.Host)
	assert.Equal(t, "http", snapshot.ForwardedProto)
}

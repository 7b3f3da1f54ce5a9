package feed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rpupo63/blogpress/database"
	"github.com/rpupo63/blogpress/errs"
	"github.com/rpupo63/blogpress/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow  = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	firstDate = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
)

func clock() time.Time { return fixedNow }

const defaultHeader = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">

<title>Blogpress Blog</title>
<subtitle>Blogpress is an open-source blogging engine written in Go</subtitle>
<id>/</id>
<link rel="alternate" type="text/html" href="/"/>
<link rel="self" type="application/atom+xml" href="/atom.xml"/>
<generator uri="https://github.com/rpupo63/blogpress">Blogpress</generator>`

type fixture struct {
	repo   *database.MemoryRepository
	author models.Author
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := database.NewMemoryRepository(database.DefaultSearchPolicy())
	author, err := repo.CreateAuthor(context.Background(), models.Author{Name: "Luke", Username: "luke", Password: "hash"})
	require.NoError(t, err)
	return fixture{repo: repo, author: author}
}

func (f fixture) post(t *testing.T, title, slug string, created time.Time, published bool) models.Post {
	t.Helper()
	post, err := f.repo.CreatePost(context.Background(), models.Post{
		Title:     title,
		Contents:  "Some interesting contents",
		Slug:      slug,
		AuthorID:  f.author.ID,
		Created:   created,
		Published: published,
	})
	require.NoError(t, err)
	return post
}

func TestAtomGenerator_NoPosts(t *testing.T) {
	repo := database.NewMemoryRepository(database.DefaultSearchPolicy())
	generator := NewAtomGenerator(repo, Config{}, clock)

	got, err := generator.Generate(context.Background(), "/")
	require.NoError(t, err)

	expected := defaultHeader + "\n<updated>2024-03-05T12:00:00+0000</updated>\n</feed>"
	assert.Equal(t, expected, got)
	assert.False(t, strings.HasSuffix(got, "\n"))
}

func TestAtomGenerator_ConfiguredHeader(t *testing.T) {
	repo := database.NewMemoryRepository(database.DefaultSearchPolicy())
	generator := NewAtomGenerator(repo, Config{
		Title:    "Tom & Jerry",
		Subtitle: "A <blog>",
		Rights:   "Copyright 2024 Blogpress",
		LogoURL:  "https://static.example.com/atom.png",
	}, clock)

	got, err := generator.Generate(context.Background(), "https://example.com/blog/")
	require.NoError(t, err)

	expected := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">

<title>Tom &amp; Jerry</title>
<subtitle>A &lt;blog&gt;</subtitle>
<id>https://example.com/blog/</id>
<link rel="alternate" type="text/html" href="https://example.com/blog/"/>
<link rel="self" type="application/atom+xml" href="https://example.com/blog/atom.xml"/>
<generator uri="https://github.com/rpupo63/blogpress">Blogpress</generator>
<updated>2024-03-05T12:00:00+0000</updated>
<rights>Copyright 2024 Blogpress</rights>
<logo>https://static.example.com/atom.png</logo>
</feed>`
	assert.Equal(t, expected, got)
}

func TestAtomGenerator_OnePost(t *testing.T) {
	f := newFixture(t)
	f.post(t, "Hello World", "hello-world", firstDate, true)
	generator := NewAtomGenerator(f.repo, Config{}, clock)

	got, err := generator.Generate(context.Background(), "/")
	require.NoError(t, err)

	expected := defaultHeader + `
<updated>2024-03-01T10:00:00+0000</updated>
<entry>
<id>/posts-id/1/</id>
<title>Hello World</title>
<updated>2024-03-01T10:00:00+0000</updated>
<published>2024-03-01T10:00:00+0000</published>
<author>
<name>Luke</name>
<uri>/authors/luke/</uri>
</author>
<summary>Some interesting contents</summary>
<link rel="alternate" href="/posts/hello-world/" />
</entry>
</feed>`
	assert.Equal(t, expected, got)
}

func TestAtomGenerator_TwoPostsNewestFirstWithoutDrafts(t *testing.T) {
	f := newFixture(t)
	f.post(t, "First", "first", firstDate, true)
	f.post(t, "Draft", "draft", firstDate.Add(2*time.Hour), false)
	f.post(t, "Second", "second", firstDate.Add(time.Hour), true)
	generator := NewAtomGenerator(f.repo, Config{}, clock)

	got, err := generator.Generate(context.Background(), "/")
	require.NoError(t, err)

	assert.NotContains(t, got, "Draft")
	assert.Contains(t, got, "<updated>2024-03-01T11:00:00+0000</updated>\n<entry>\n<id>/posts-id/3/</id>")
	assert.Less(t, strings.Index(got, "<title>Second</title>"), strings.Index(got, "<title>First</title>"))
	assert.Equal(t, 2, strings.Count(got, "<entry>"))
}

func TestAtomGenerator_EditedPostsUseEditTime(t *testing.T) {
	f := newFixture(t)
	f.post(t, "First", "first", firstDate, true)
	second := f.post(t, "Second", "second", firstDate.Add(time.Hour), true)

	edited := firstDate.Add(48 * time.Hour)
	second.LastEdited = &edited
	require.NoError(t, f.repo.UpdatePost(context.Background(), second))

	generator := NewAtomGenerator(f.repo, Config{}, clock)
	got, err := generator.Generate(context.Background(), "/")
	require.NoError(t, err)

	assert.Contains(t, got, "<generator uri=\"https://github.com/rpupo63/blogpress\">Blogpress</generator>\n<updated>2024-03-03T10:00:00+0000</updated>")
	assert.Contains(t, got, "<title>Second</title>\n<updated>2024-03-03T10:00:00+0000</updated>\n<published>2024-03-01T11:00:00+0000</published>")
	assert.Contains(t, got, "<title>First</title>\n<updated>2024-03-01T10:00:00+0000</updated>\n<published>2024-03-01T10:00:00+0000</published>")
}

func TestAtomGenerator_RepeatableOutput(t *testing.T) {
	f := newFixture(t)
	f.post(t, "First", "first", firstDate, true)
	f.post(t, "Second", "second", firstDate.Add(time.Hour), true)
	f.post(t, "Draft", "draft", firstDate.Add(2*time.Hour), false)
	generator := NewAtomGenerator(f.repo, Config{}, clock)

	first, err := generator.Generate(context.Background(), "https://example.com/")
	require.NoError(t, err)
	second, err := generator.Generate(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	later := NewAtomGenerator(f.repo, Config{}, func() time.Time { return fixedNow.Add(time.Hour) })
	third, err := later.Generate(context.Background(), "https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, first, third, "the clock only matters for an empty feed")
}

func TestAtomGenerator_EmptyFeedOnlyUpdatedFollowsClock(t *testing.T) {
	repo := database.NewMemoryRepository(database.DefaultSearchPolicy())

	before, err := NewAtomGenerator(repo, Config{}, clock).Generate(context.Background(), "/")
	require.NoError(t, err)
	after, err := NewAtomGenerator(repo, Config{}, func() time.Time { return fixedNow.Add(90 * time.Minute) }).Generate(context.Background(), "/")
	require.NoError(t, err)

	beforeLines := strings.Split(before, "\n")
	afterLines := strings.Split(after, "\n")
	require.Len(t, afterLines, len(beforeLines))

	var changed []int
	for i := range beforeLines {
		if beforeLines[i] != afterLines[i] {
			changed = append(changed, i)
		}
	}
	require.Len(t, changed, 1)
	assert.Equal(t, "<updated>2024-03-05T12:00:00+0000</updated>", beforeLines[changed[0]])
	assert.Equal(t, "<updated>2024-03-05T13:30:00+0000</updated>", afterLines[changed[0]])
}

func TestAtomGenerator_TimestampsRenderedInUTC(t *testing.T) {
	f := newFixture(t)
	tokyo := time.FixedZone("JST", 9*60*60)
	f.post(t, "Abroad", "abroad", time.Date(2024, 3, 1, 19, 0, 0, 0, tokyo), true)
	generator := NewAtomGenerator(f.repo, Config{}, clock)

	got, err := generator.Generate(context.Background(), "/")
	require.NoError(t, err)
	assert.Contains(t, got, "<published>2024-03-01T10:00:00+0000</published>")
}

func TestAtomGenerator_ProxiedOrigin(t *testing.T) {
	f := newFixture(t)
	f.post(t, "Hello", "hello", firstDate, true)
	generator := NewAtomGenerator(f.repo, Config{MountPath: "blog"}, clock)

	origin := ResolveOrigin(RequestSnapshot{Scheme: "http", Host: "geeks.example.io", ForwardedProto: "https"}, "blog")
	got, err := generator.Generate(context.Background(), origin)
	require.NoError(t, err)

	assert.Contains(t, got, `<link rel="self" type="application/atom+xml" href="https://geeks.example.io/blog/atom.xml"/>`)
	assert.Contains(t, got, "<id>https://geeks.example.io/blog/posts-id/1/</id>")
	assert.Contains(t, got, "<uri>https://geeks.example.io/blog/authors/luke/</uri>")
	assert.Contains(t, got, `<link rel="alternate" href="https://geeks.example.io/blog/posts/hello/" />`)
}

func TestAtomGenerator_Categories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	post := f.post(t, "Tagged", "tagged", firstDate, true)
	tag, err := f.repo.GetOrCreateTag(ctx, "Go & Friends")
	require.NoError(t, err)
	require.NoError(t, f.repo.LinkTag(ctx, tag.ID, post.ID))

	without, err := NewAtomGenerator(f.repo, Config{}, clock).Generate(ctx, "/")
	require.NoError(t, err)
	assert.NotContains(t, without, "<category")

	with, err := NewAtomGenerator(f.repo, Config{IncludeCategories: true}, clock).Generate(ctx, "/")
	require.NoError(t, err)
	assert.Contains(t, with, "<summary>Some interesting contents</summary>\n<category term=\"Go &amp; Friends\"/>\n<link rel=\"alternate\"")
}

func TestAtomGenerator_MissingAuthorFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.post(t, "Orphan", "orphan", firstDate, true)
	require.NoError(t, f.repo.DeleteAuthor(ctx, f.author.ID))

	got, err := NewAtomGenerator(f.repo, Config{}, clock).Generate(ctx, "/")
	assert.True(t, errs.IsReferentialIntegrityError(err), "got %v", err)
	assert.Empty(t, got)
}

func TestAtomGenerator_DraftWithMissingAuthorIsIgnored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.repo.CreatePost(ctx, models.Post{Title: "Ghost", Slug: "ghost", AuthorID: 99, Created: firstDate})
	require.NoError(t, err)

	_, err = NewAtomGenerator(f.repo, Config{}, clock).Generate(ctx, "/")
	assert.NoError(t, err)
}

type failingReader struct {
	err error
}

func (r failingReader) GetAllPostsSortedByPublishDate(context.Context, bool) ([]models.Post, error) {
	return nil, r.err
}

func (r failingReader) GetAuthorByID(context.Context, uint) (*models.Author, error) {
	return nil, r.err
}

func (r failingReader) GetTagsForPost(context.Context, uint) ([]models.Tag, error) {
	return nil, r.err
}

func TestAtomGenerator_StorageFailurePropagates(t *testing.T) {
	storageErr := errors.New("storage offline")

	got, err := NewAtomGenerator(failingReader{err: storageErr}, Config{}, clock).Generate(context.Background(), "/")
	assert.ErrorIs(t, err, storageErr)
	assert.Empty(t, got)
}

func TestAtomGenerator_ParsesAsAtom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	post := f.post(t, "Parse Me", "parse-me", firstDate, true)
	tag, err := f.repo.GetOrCreateTag(ctx, "golang")
	require.NoError(t, err)
	require.NoError(t, f.repo.LinkTag(ctx, tag.ID, post.ID))

	doc, err := NewAtomGenerator(f.repo, Config{IncludeCategories: true, Rights: "CC-BY"}, clock).Generate(ctx, "https://example.com/")
	require.NoError(t, err)

	parsed, err := gofeed.NewParser().ParseString(doc)
	require.NoError(t, err)
	assert.Equal(t, "atom", parsed.FeedType)
	assert.Equal(t, "Blogpress Blog", parsed.Title)
	assert.Equal(t, "CC-BY", parsed.Copyright)
	require.Len(t, parsed.Items, 1)

	item := parsed.Items[0]
	assert.Equal(t, "Parse Me", item.Title)
	assert.Equal(t, "https://example.com/posts-id/1/", item.GUID)
	assert.Equal(t, "https://example.com/posts/parse-me/", item.Link)
	assert.Equal(t, []string{"golang"}, item.Categories)
	require.NotNil(t, item.Author)
	assert.Equal(t, "Luke", item.Author.Name)
}

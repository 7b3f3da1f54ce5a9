package feed

import (
	"bytes"
	"context"
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/rpupo63/blogpress/errs"
	"github.com/rpupo63/blogpress/models"
)

// Reader is the slice of the content repository the generators need
type Reader interface {
	GetAllPostsSortedByPublishDate(ctx context.Context, includeDrafts bool) ([]models.Post, error)
	GetAuthorByID(ctx context.Context, id uint) (*models.Author, error)
	GetTagsForPost(ctx context.Context, postID uint) ([]models.Tag, error)
}

type entry struct {
	post   models.Post
	author models.Author
	tags   []models.Tag
}

// loadEntries reads the published posts newest first and joins each with its
// author, and with its tags when withTags is set. A post whose author no
// longer exists fails the whole load.
func loadEntries(ctx context.Context, reader Reader, withTags bool) ([]entry, error) {
	posts, err := reader.GetAllPostsSortedByPublishDate(ctx, false)
	if err != nil {
		return nil, err
	}

	authors := make(map[uint]models.Author)
	entries := make([]entry, 0, len(posts))
	for _, post := range posts {
		author, ok := authors[post.AuthorID]
		if !ok {
			found, err := reader.GetAuthorByID(ctx, post.AuthorID)
			if err != nil {
				return nil, err
			}
			if found == nil {
				return nil, errs.NewReferentialIntegrityError("post "+strconv.FormatUint(uint64(post.ID), 10), "author", post.AuthorID)
			}
			author = *found
			authors[post.AuthorID] = author
		}

		var tags []models.Tag
		if withTags {
			tags, err = reader.GetTagsForPost(ctx, post.ID)
			if err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry{post: post, author: author, tags: tags})
	}
	return entries, nil
}

// lastUpdated is the newest update time across entries, or fallback when there are none
func lastUpdated(entries []entry, fallback time.Time) time.Time {
	if len(entries) == 0 {
		return fallback
	}
	latest := entries[0].post.Updated()
	for _, e := range entries[1:] {
		if updated := e.post.Updated(); updated.After(latest) {
			latest = updated
		}
	}
	return latest
}

// escape returns s with XML special characters replaced by entities
func escape(s string) string {
	var b bytes.Buffer
	// writes to a bytes.Buffer do not fail
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func postURL(origin string, post models.Post) string {
	return origin + "posts/" + post.Slug + "/"
}

func postIDURL(origin string, post models.Post) string {
	return origin + "posts-id/" + strconv.FormatUint(uint64(post.ID), 10) + "/"
}

func authorURL(origin string, author models.Author) string {
	return origin + "authors/" + author.Username + "/"
}

// element renders <name>text</name> with text escaped
func element(name, text string) string {
	return "<" + name + ">" + escape(text) + "</" + name + ">"
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

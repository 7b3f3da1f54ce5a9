package database

import (
	"context"
	"sort"
	"strings"

	"github.com/rpupo63/blogpress/errs"
	"github.com/rpupo63/blogpress/models"
)

// PostRepository is the post capability of a content store.
// Scalar lookups return a nil post and a nil error when nothing matches.
type PostRepository interface {
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetAllPostsSortedByPublishDate(ctx context.Context, includeDrafts bool) ([]models.Post, error)
	GetPostsForAuthor(ctx context.Context, authorID uint, includeDrafts bool) ([]models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostsForTag(ctx context.Context, tagID uint) ([]models.Post, error)
	SearchPublishedPosts(ctx context.Context, term string) ([]models.Post, error)
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	UpdatePost(ctx context.Context, post models.Post) error
	DeletePost(ctx context.Context, id uint) error
}

// AuthorRepository is the author capability of a content store.
// Deleting an author leaves its posts in place.
type AuthorRepository interface {
	GetAllAuthors(ctx context.Context) ([]models.Author, error)
	GetAuthorByID(ctx context.Context, id uint) (*models.Author, error)
	GetAuthorByUsername(ctx context.Context, username string) (*models.Author, error)
	CreateAuthor(ctx context.Context, author models.Author) (models.Author, error)
	UpdateAuthor(ctx context.Context, author models.Author) error
	DeleteAuthor(ctx context.Context, id uint) error
	CountAuthors(ctx context.Context) (int64, error)
}

// TagRepository is the tag capability of a content store.
type TagRepository interface {
	GetAllTags(ctx context.Context) ([]models.Tag, error)
	GetTagByName(ctx context.Context, name string) (*models.Tag, error)
	GetOrCreateTag(ctx context.Context, name string) (models.Tag, error)
	GetTagsForPost(ctx context.Context, postID uint) ([]models.Tag, error)
	LinkTag(ctx context.Context, tagID, postID uint) error
	UnlinkTag(ctx context.Context, tagID, postID uint) error
	DeleteTag(ctx context.Context, id uint) error
}

// Repository is a complete content store
type Repository interface {
	PostRepository
	AuthorRepository
	TagRepository
}

// SearchPolicy controls how SearchPublishedPosts matches a term
type SearchPolicy struct {
	CaseSensitive   bool
	IncludeContents bool
}

// DefaultSearchPolicy matches titles and contents ignoring case
func DefaultSearchPolicy() SearchPolicy {
	return SearchPolicy{CaseSensitive: false, IncludeContents: true}
}

// Matches reports whether post contains term under the policy
func (p SearchPolicy) Matches(post models.Post, term string) bool {
	title, contents := post.Title, post.Contents
	if !p.CaseSensitive {
		title = strings.ToLower(title)
		contents = strings.ToLower(contents)
		term = strings.ToLower(term)
	}
	if strings.Contains(title, term) {
		return true
	}
	return p.IncludeContents && strings.Contains(contents, term)
}

// sortByPublishDate orders posts newest first. Equal timestamps fall back to
// the higher ID first so the order is the same on every call.
func sortByPublishDate(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Created.Equal(posts[j].Created) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].Created.After(posts[j].Created)
	})
}

func validatePost(post models.Post) error {
	if strings.TrimSpace(post.Slug) == "" {
		return errs.NewMissingRequiredFieldError("slug")
	}
	if post.LastEdited != nil && post.LastEdited.Before(post.Created) {
		return errs.NewInvalidFieldError("lastEdited", "must not be before the creation date")
	}
	return nil
}

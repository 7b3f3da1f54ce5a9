package database

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/rpupo63/blogpress/errs"
	"github.com/rpupo63/blogpress/models"
	"gorm.io/gorm"
)

const publishDateOrder = "created DESC, id DESC"

type PostRepo struct {
	db     *gorm.DB
	policy SearchPolicy
}

func NewPostRepo(db *gorm.DB, policy SearchPolicy) *PostRepo {
	return &PostRepo{db: db, policy: policy}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *PostRepo) GetDB() *gorm.DB {
	return r.db
}

// GetAllPosts returns every post, drafts included, in creation order
func (r *PostRepo) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&posts).Error
	return posts, err
}

func (r *PostRepo) GetAllPostsSortedByPublishDate(ctx context.Context, includeDrafts bool) ([]models.Post, error) {
	query := r.db.WithContext(ctx).Order(publishDateOrder)
	if !includeDrafts {
		query = query.Where("published = ?", true)
	}
	return r.findSorted(query)
}

func (r *PostRepo) GetPostsForAuthor(ctx context.Context, authorID uint, includeDrafts bool) ([]models.Post, error) {
	query := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order(publishDateOrder)
	if !includeDrafts {
		query = query.Where("published = ?", true)
	}
	return r.findSorted(query)
}

func (r *PostRepo) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepo) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostsForTag returns the published posts linked to tagID
func (r *PostRepo) GetPostsForTag(ctx context.Context, tagID uint) ([]models.Post, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN post_tag_links ON post_tag_links.post_id = posts.id").
		Where("post_tag_links.tag_id = ? AND posts.published = ?", tagID, true).
		Order("posts.created DESC, posts.id DESC")
	return r.findSorted(query)
}

// SearchPublishedPosts narrows candidates in SQL and then applies the search
// policy in Go, so every backend agrees on what matches.
func (r *PostRepo) SearchPublishedPosts(ctx context.Context, term string) ([]models.Post, error) {
	if strings.TrimSpace(term) == "" {
		return []models.Post{}, nil
	}

	query := r.db.WithContext(ctx).Where("published = ?", true).Order(publishDateOrder)
	if isASCII(term) {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		if r.policy.IncludeContents {
			query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(contents) LIKE ? ESCAPE '\')`, pattern, pattern)
		} else {
			query = query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern)
		}
	}

	candidates, err := r.findSorted(query)
	if err != nil {
		return nil, err
	}
	posts := []models.Post{}
	for _, post := range candidates {
		if r.policy.Matches(post, term) {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (r *PostRepo) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	if err := validatePost(post); err != nil {
		return models.Post{}, err
	}
	post = post.Clone()
	post.ID = 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := slugTaken(tx, post.Slug, 0)
		if err != nil {
			return err
		}
		if taken {
			return errs.NewUniqueConstraintViolationError("post", "slug", nil)
		}
		return translateDuplicate(tx.Create(&post).Error, "post", "slug")
	})
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

func (r *PostRepo) UpdatePost(ctx context.Context, post models.Post) error {
	if err := validatePost(post); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewNotFound("post")
		}
		taken, err := slugTaken(tx, post.Slug, post.ID)
		if err != nil {
			return err
		}
		if taken {
			return errs.NewUniqueConstraintViolationError("post", "slug", nil)
		}
		return translateDuplicate(tx.Save(&post).Error, "post", "slug")
	})
}

// DeletePost removes the post together with its tag links
func (r *PostRepo) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTagLink{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.NewNotFound("post")
		}
		return nil
	})
}

// findSorted runs query and re-applies the publish-date order in Go; SQLite
// compares timestamps as text, which breaks down across UTC offsets.
func (r *PostRepo) findSorted(query *gorm.DB) ([]models.Post, error) {
	posts := []models.Post{}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	sortByPublishDate(posts)
	return posts, nil
}

func slugTaken(tx *gorm.DB, slug string, exceptID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Post{}).Where("slug = ? AND id <> ?", slug, exceptID).Count(&count).Error
	return count > 0, err
}

func translateDuplicate(err error, entity, field string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.NewUniqueConstraintViolationError(entity, field, err)
	}
	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

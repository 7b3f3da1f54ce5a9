package database

import (
	"context"
	"errors"
	"strings"

	"github.com/rpupo63/blogpress/errs"
	"github.com/rpupo63/blogpress/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *TagRepo) GetDB() *gorm.DB {
	return r.db
}

func (r *TagRepo) GetAllTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&tags).Error
	return tags, err
}

func (r *TagRepo) GetTagByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetOrCreateTag returns the tag called name, creating it on first use
func (r *TagRepo) GetOrCreateTag(ctx context.Context, name string) (models.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return models.Tag{}, errs.NewMissingRequiredFieldError("name")
	}

	var tag models.Tag
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ?", name).First(&tag).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		tag = models.Tag{Name: name}
		return translateDuplicate(tx.Create(&tag).Error, "tag", "name")
	})
	if errs.IsUniqueConstraintViolationError(err) {
		// a concurrent request created the same tag between our read and insert
		existing, getErr := r.GetTagByName(ctx, name)
		if getErr != nil {
			return models.Tag{}, getErr
		}
		if existing != nil {
			return *existing, nil
		}
	}
	if err != nil {
		return models.Tag{}, err
	}
	return tag, nil
}

func (r *TagRepo) GetTagsForPost(ctx context.Context, postID uint) ([]models.Tag, error) {
	tags := []models.Tag{}
	err := r.db.WithContext(ctx).
		Joins("JOIN post_tag_links ON post_tag_links.tag_id = tags.id").
		Where("post_tag_links.post_id = ?", postID).
		Order("tags.id ASC").
		Find(&tags).Error
	return tags, err
}

// LinkTag attaches a tag to a post. Linking an already linked pair is a no-op.
func (r *TagRepo) LinkTag(ctx context.Context, tagID, postID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tag{}).Where("id = ?", tagID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewReferentialIntegrityError("post tag link", "tag", tagID)
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewReferentialIntegrityError("post tag link", "post", postID)
		}
		link := models.PostTagLink{PostID: postID, TagID: tagID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	})
}

func (r *TagRepo) UnlinkTag(ctx context.Context, tagID, postID uint) error {
	return r.db.WithContext(ctx).
		Where("tag_id = ? AND post_id = ?", tagID, postID).
		Delete(&models.PostTagLink{}).Error
}

// DeleteTag removes the tag and every link to it
func (r *TagRepo) DeleteTag(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.PostTagLink{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Tag{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.NewNotFound("tag")
		}
		return nil
	})
}

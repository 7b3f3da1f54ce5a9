package database

import (
	"context"
	"errors"

	"github.com/rpupo63/blogpress/errs"
	"github.com/rpupo63/blogpress/models"
	"gorm.io/gorm"
)

type AuthorRepo struct {
	db *gorm.DB
}

func NewAuthorRepo(db *gorm.DB) *AuthorRepo {
	return &AuthorRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *AuthorRepo) GetDB() *gorm.DB {
	return r.db
}

func (r *AuthorRepo) GetAllAuthors(ctx context.Context) ([]models.Author, error) {
	authors := []models.Author{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&authors).Error
	return authors, err
}

func (r *AuthorRepo) GetAuthorByID(ctx context.Context, id uint) (*models.Author, error) {
	var author models.Author
	err := r.db.WithContext(ctx).First(&author, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *AuthorRepo) GetAuthorByUsername(ctx context.Context, username string) (*models.Author, error) {
	var author models.Author
	err := r.db.WithContext(ctx).Where("username = ?", models.NormalizeUsername(username)).First(&author).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *AuthorRepo) CreateAuthor(ctx context.Context, author models.Author) (models.Author, error) {
	author = author.Clone()
	author.ID = 0
	author.Username = models.NormalizeUsername(author.Username)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := usernameTaken(tx, author.Username, 0)
		if err != nil {
			return err
		}
		if taken {
			return errs.NewUniqueConstraintViolationError("author", "username", nil)
		}
		return translateDuplicate(tx.Create(&author).Error, "author", "username")
	})
	if err != nil {
		return models.Author{}, err
	}
	return author, nil
}

func (r *AuthorRepo) UpdateAuthor(ctx context.Context, author models.Author) error {
	author = author.Clone()
	author.Username = models.NormalizeUsername(author.Username)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Author{}).Where("id = ?", author.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewNotFound("author")
		}
		taken, err := usernameTaken(tx, author.Username, author.ID)
		if err != nil {
			return err
		}
		if taken {
			return errs.NewUniqueConstraintViolationError("author", "username", nil)
		}
		return translateDuplicate(tx.Save(&author).Error, "author", "username")
	})
}

// DeleteAuthor removes only the author row. Posts keep their author_id.
func (r *AuthorRepo) DeleteAuthor(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Author{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFound("author")
	}
	return nil
}

func (r *AuthorRepo) CountAuthors(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Author{}).Count(&count).Error
	return count, err
}

func usernameTaken(tx *gorm.DB, username string, exceptID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Author{}).Where("username = ? AND id <> ?", username, exceptID).Count(&count).Error
	return count > 0, err
}

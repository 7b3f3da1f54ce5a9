package database

import (
	"github.com/rpupo63/blogpress/errs"
	"github.com/rpupo63/blogpress/models"
	"gorm.io/gorm"
)

// Database is the gorm-backed Repository. Each capability lives in its own repo
// and they all share one connection.
type Database struct {
	*PostRepo
	*AuthorRepo
	*TagRepo
}

var _ Repository = Database{}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB, policy SearchPolicy) Database {
	return Database{
		PostRepo:   NewPostRepo(db, policy),
		AuthorRepo: NewAuthorRepo(db),
		TagRepo:    NewTagRepo(db),
	}
}

// GetDB resolves the ambiguity between the embedded repos; they share one connection.
func (d Database) GetDB() *gorm.DB {
	return d.PostRepo.GetDB()
}

// Migrate creates or updates the schema for every model
func (d Database) Migrate() error {
	if d.PostRepo == nil {
		return errs.NewInternalError("database is not initialized")
	}
	return models.Migrate(d.GetDB())
}

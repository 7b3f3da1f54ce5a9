package api

import (
	"time"

	"github.com/rpupo63/blogpress/database"
	"github.com/rpupo63/blogpress/feed"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(repo database.Repository, feedConfig feed.Config, startupTime time.Time, now func() time.Time) *routeHandlers {
	return &routeHandlers{
		feedHandler:   newFeedHandler(repo, feedConfig, now),
		blogHandler:   newBlogHandler(repo, startupTime, now),
		postHandler:   newPostHandler(repo, feedConfig.MountPath, now),
		authorHandler: newAuthorHandler(repo),
		tagHandler:    newTagHandler(repo),
	}
}

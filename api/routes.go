package api

import (
	"github.com/go-chi/chi/v5"
)

// setupBlogRoutes registers the public blog routes and the authenticated admin routes
func setupBlogRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/health", handlers.blogHandler.health())

		// Feeds
		r.Get("/atom.xml", handlers.feedHandler.getAtomFeed())
		r.Get("/rss.xml", handlers.feedHandler.getRSSFeed())

		r.Get("/", handlers.blogHandler.getIndex())
		r.Get("/search", handlers.blogHandler.search())

		r.Get("/posts", handlers.postHandler.redirectToIndex())
		r.Get("/posts/{slug}", handlers.postHandler.getPost())
		r.Get("/posts-id/{postID}", handlers.postHandler.redirectToPost())

		r.Get("/authors", handlers.authorHandler.getAllAuthors())
		r.Get("/authors/{username}", handlers.authorHandler.getAuthor())

		r.Get("/tags", handlers.tagHandler.getAllTags())
		r.Get("/tags/{name}", handlers.tagHandler.getTag())

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Post("/posts", handlers.postHandler.createPost())
			r.Put("/posts/{postID}", handlers.postHandler.updatePost())
			r.Delete("/posts/{postID}", handlers.postHandler.deletePost())

			r.Post("/authors", handlers.authorHandler.createAuthor())
			r.Put("/authors/{authorID}", handlers.authorHandler.updateAuthor())
			r.Delete("/authors/{authorID}", handlers.authorHandler.deleteAuthor())
		})
	})
}

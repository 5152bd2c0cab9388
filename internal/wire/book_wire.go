package wire

import (
	"book-recommendation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBook(r chi.Router, bookHandler *adaptor.BookHandler, g guard) {
	// ==================== PUBLIC ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.optionalAuth)

		r.With(g.rateLimit("book-list")).Get("/book-list/", bookHandler.GetBooks)
		r.With(g.rateLimit("book-genre")).Get("/book-genre/", bookHandler.GetBooksByGenre)
	})
	r.Get("/genres/", bookHandler.GetGenres)

	// ==================== ADMIN ROUTES ====================
	r.Route("/admin/books", func(r chi.Router) {
		r.Use(g.auth)  // Must be authenticated
		r.Use(g.admin) // Must be admin

		r.Post("/", bookHandler.CreateBook)
		r.Put("/{id:[0-9]+}", bookHandler.UpdateBook)
		r.Delete("/{id:[0-9]+}", bookHandler.DeleteBook)
	})
}

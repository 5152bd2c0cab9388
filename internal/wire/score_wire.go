package wire

import (
	"book-recommendation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireScore mounts the review endpoints. {book_id} only matches digits, any
// other value falls through to 404.
func wireScore(r chi.Router, scoreHandler *adaptor.ScoreHandler, g guard) {
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.With(g.rateLimit("score-add")).Post("/score-add/{book_id:[0-9]+}/", scoreHandler.AddScore)
		r.With(g.rateLimit("score-update")).Put("/score-update/{book_id:[0-9]+}/", scoreHandler.UpdateScore)
		r.With(g.rateLimit("score-delete")).Delete("/score-delete/{book_id:[0-9]+}/", scoreHandler.DeleteScore)
	})
}

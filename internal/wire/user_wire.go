package wire

import (
	"book-recommendation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures user management routes. Ownership is checked in the
// service; listing is admin only.
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, g guard) {
	// ==================== ADMIN ROUTES ====================
	r.With(g.auth, g.admin).Get("/user-list/", userHandler.GetAllUsers)

	// ==================== OWNER OR ADMIN ====================
	r.Group(func(r chi.Router) {
		r.Use(g.auth)

		r.Get("/user-detail/{id:[0-9]+}/", userHandler.GetUser)
		r.Put("/user-update/{id:[0-9]+}/", userHandler.UpdateUser)
		r.Put("/user-change-password/{id:[0-9]+}/", userHandler.ChangePassword)
		r.Delete("/user-delete/{id:[0-9]+}/", userHandler.DeleteUser)
	})
}

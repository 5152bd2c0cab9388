package wire

import (
	"book-recommendation/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, g guard) {
	// ==================== PUBLIC ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.optionalAuth)

		r.With(g.rateLimit("register")).Post("/register/", authHandler.Register)
		r.With(g.rateLimit("register-verify")).Post("/register/verify/", authHandler.VerifyRegistration)
		r.With(g.rateLimit("login")).Post("/login/", authHandler.Login)
		r.With(g.rateLimit("login-verify")).Post("/login/verify/", authHandler.VerifyLogin)
		r.With(g.rateLimit("token-refresh")).Post("/token/refresh/", authHandler.RefreshToken)
		r.With(g.rateLimit("token-verify")).Post("/token/verify/", authHandler.VerifyToken)
	})

	// ==================== PROTECTED ROUTES ====================
	r.With(g.auth, g.rateLimit("logout")).Post("/logout/", authHandler.Logout)
}

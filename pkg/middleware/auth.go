package middleware

import (
	"context"
	"net/http"
	"strings"

	"book-recommendation/internal/data/entity"
	"book-recommendation/internal/data/repository"
	"book-recommendation/pkg/utils"

	"go.uber.org/zap"
)

// AuthSession validates the bearer access token and puts the caller into the
// request context.
func AuthSession(tokens *utils.TokenManager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "User not authenticated")
				return
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := tokens.ParseAccessToken(token)
			if err != nil {
				logger.Warn("Rejected access token",
					zap.Error(err),
					zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withCaller(r, claims, token)))
		})
	}
}

// OptionalAuth identifies the caller when a valid bearer token is sent and
// lets every other request through anonymously. Public routes use it so the
// throttle can key by user.
func OptionalAuth(tokens *utils.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
				if claims, err := tokens.ParseAccessToken(token); err == nil {
					r = r.WithContext(withCaller(r, claims, token))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func withCaller(r *http.Request, claims *utils.AccessClaims, token string) context.Context {
	ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Role)
	return utils.SetTokenContext(ctx, token)
}

// Admin checks the stored role, so a demoted admin loses access before the
// token expires.
func Admin(userRepo repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. User ID set by AuthSession
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "User not authenticated")
				return
			}

			// 2. Load the user
			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("Admin check: failed to get user",
					zap.Error(err), zap.Int64("user_id", userID))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			// 3. Check if admin
			if user == nil || !user.IsActive || user.Role != entity.RoleAdmin {
				logger.Warn("Admin check: non-admin access attempt",
					zap.Int64("user_id", userID),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

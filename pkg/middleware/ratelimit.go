package middleware

import (
	"net/http"
	"strconv"

	"book-recommendation/internal/data/entity"
	"book-recommendation/pkg/utils"

	"github.com/go-chi/httprate"
)

// RateLimit throttles one route group per caller and client IP. Every call
// builds its own counters, and scope is part of the key, so groups never
// share a budget. Admins get their own, larger budget. Mount it after
// AuthSession or OptionalAuth to key authenticated callers by user.
func RateLimit(scope string, config utils.RateLimitConfig) func(http.Handler) http.Handler {
	if config.Default <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := httprate.Limit(
		config.Default,
		config.Window,
		httprate.WithKeyFuncs(keyByScope(scope), keyByCaller, httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.ResponseTooManyRequests(w, "Request was throttled")
		}),
	)

	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if role, _ := utils.GetRoleFromContext(r.Context()); role == string(entity.RoleAdmin) && config.Admin > 0 {
				r = r.WithContext(httprate.WithRequestLimit(r.Context(), config.Admin))
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func keyByScope(scope string) httprate.KeyFunc {
	return func(*http.Request) (string, error) {
		return scope, nil
	}
}

func keyByCaller(r *http.Request) (string, error) {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return "user:" + strconv.FormatInt(userID, 10), nil
	}
	return "anon", nil
}

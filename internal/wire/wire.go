// internal/wire/wire.go
package wire

import (
	"net/http"

	"book-recommendation/internal/adaptor"
	"book-recommendation/internal/data/repository"
	"book-recommendation/internal/usecase"
	"book-recommendation/pkg/mailer"
	"book-recommendation/pkg/middleware"
	"book-recommendation/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the wired router
type App struct {
	Router *chi.Mux
}

// Deps are the process-wide collaborators built in main.
type Deps struct {
	Repo   *repository.Repository
	Config *utils.Config
	Tokens *utils.TokenManager
	Mailer mailer.Sender
	Logger *zap.Logger
}

// Wiring builds services, handlers and routes
func Wiring(deps Deps) *App {
	service := usecase.NewService(deps.Repo, deps.Config, deps.Tokens, deps.Mailer, deps.Logger)
	handler := adaptor.NewHandler(service, deps.Logger)

	return &App{
		Router: setupRouter(handler, deps),
	}
}

// setupRouter configures the chi router
func setupRouter(handler *adaptor.Handler, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recover(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	guard := newGuard(deps)

	// Apply routes
	wireAuth(r, handler.Auth, guard)
	wireUser(r, handler.User, guard)
	wireBook(r, handler.Book, guard)
	wireScore(r, handler.Score, guard)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// guard bundles the middleware shared by the route groups.
type guard struct {
	auth         func(http.Handler) http.Handler
	optionalAuth func(http.Handler) http.Handler
	admin        func(http.Handler) http.Handler
	limits       utils.RateLimitConfig
}

func newGuard(deps Deps) guard {
	return guard{
		auth:         middleware.AuthSession(deps.Tokens, deps.Logger),
		optionalAuth: middleware.OptionalAuth(deps.Tokens),
		admin:        middleware.Admin(deps.Repo.User, deps.Logger),
		limits:       deps.Config.RateLimit,
	}
}

// rateLimit returns a throttle with its own budget for one route.
func (g guard) rateLimit(scope string) func(http.Handler) http.Handler {
	return middleware.RateLimit(scope, g.limits)
}

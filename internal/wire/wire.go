// internal/wire/wire.go
package wire

import (
	"context"
	"net/http"
	"time"

	"user-admin/internal/adaptor"
	"user-admin/internal/data/repository"
	"user-admin/internal/usecase"
	"user-admin/internal/view"
	"user-admin/pkg/middleware"
	"user-admin/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the router and the services main needs before serving.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Pinger is satisfied by the postgres pool. A nil Pinger skips the check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Wiring builds services, handlers and the router.
func Wiring(repo *repository.Repository, pinger Pinger, config *utils.Config, logger *zap.Logger) (*App, error) {
	service := usecase.NewService(repo, config, logger)

	renderer, err := view.NewRenderer(logger)
	if err != nil {
		return nil, err
	}
	handler := adaptor.NewHandler(service, renderer, config, logger)

	return &App{
		Router:  setupRouter(handler, service, pinger, config, logger),
		Service: service,
	}, nil
}

func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	pinger Pinger,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))
	r.Use(middleware.MethodOverride)
	r.Use(middleware.Metrics)
	r.Use(middleware.AuthSession(service.Auth, config.Session.CookieName, logger))

	r.NotFound(handler.Page.NotFound)

	// Apply routes
	wireAuth(r, handler.Auth)
	wireAdmin(r, handler, logger)
	wireUser(r, handler, logger)

	r.Get("/health", healthHandler(pinger, logger))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func healthHandler(pinger Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := pinger.Ping(ctx); err != nil {
				logger.Error("Health check failed", zap.Error(err))
				utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Database unavailable", nil, nil)
				return
			}
		}

		utils.ResponseSuccess(w, "OK", map[string]string{"status": "up"})
	}
}

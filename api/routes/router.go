package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stocktakehq/stocktake-web/api/controllers"
	"github.com/stocktakehq/stocktake-web/api/middleware"
	"github.com/stocktakehq/stocktake-web/internal/authguard"
	"github.com/stocktakehq/stocktake-web/internal/store"
	"github.com/stocktakehq/stocktake-web/pkg/config"
	"github.com/stocktakehq/stocktake-web/pkg/gateway"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
	"github.com/stocktakehq/stocktake-web/pkg/metrics"
	"github.com/stocktakehq/stocktake-web/pkg/redis"
)

// RedisStore is the slice of the redis client the router hands to its
// middleware and readiness probe. *redis.Client satisfies it; a plain nil
// disables the redis-backed middleware.
type RedisStore interface {
	redis.Pinger
	redis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// NewRouter mounts the JSON API, the HTML pages, and the operational
// endpoints. Every data route goes through the client state store; nothing
// reaches the gateway client directly except auth.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	m *metrics.HTTPMetrics,
	redisClient RedisStore,
	gatewayClient *gateway.Client,
	st *store.Store,
	guard *authguard.Guard,
	pages *controllers.Pages,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, m),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, redisClient))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.LoginRateLimit(cfg.AuthRateLimit, redisClient, logg)).
				Post("/login", controllers.Login(gatewayClient, logg))
			r.Post("/logout", controllers.Logout(gatewayClient, logg))
			r.Get("/session", controllers.SessionInfo(guard, st))
		})

		r.Group(func(r chi.Router) {
			r.Use(
				middleware.RequireSession(st, logg),
				middleware.Idempotency(redisClient, logg),
			)

			r.Route("/items", func(r chi.Router) {
				r.Get("/", controllers.ListItems(st, logg))
				r.Post("/", controllers.CreateItem(st, logg))
				r.Put("/{itemID}", controllers.UpdateItem(st, logg))
				r.Delete("/{itemID}", controllers.DeleteItem(st, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.ListCategories(st, logg))
				r.Get("/tree", controllers.CategoryTree(st, logg))
				r.Post("/", controllers.CreateCategory(st, logg))
				r.Put("/{categoryID}", controllers.UpdateCategory(st, logg))
				r.Delete("/{categoryID}", controllers.DeleteCategory(st, logg))
			})

			r.Route("/stocktake", func(r chi.Router) {
				r.Post("/counts", controllers.RecordCount(st, logg))
				r.Get("/entries", controllers.ListEntries(st, logg))
			})

			r.Get("/dashboard/summary", controllers.DashboardSummary(st, logg))
			r.Get("/reports/stock-levels", controllers.StockLevelsReport(st, logg))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.PageGuard(guard))
		r.Get("/login", pages.Login)
		r.Get("/", pages.Dashboard)
		r.Get("/items", pages.Items)
		r.Get("/categories", pages.Categories)
		r.Get("/stocktake", pages.Stocktake)
		r.Get("/reports", pages.Reports)
	})

	return r
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/stocktakehq/stocktake-web/api/controllers"
	"github.com/stocktakehq/stocktake-web/api/routes"
	"github.com/stocktakehq/stocktake-web/internal/authguard"
	"github.com/stocktakehq/stocktake-web/internal/store"
	"github.com/stocktakehq/stocktake-web/pkg/config"
	"github.com/stocktakehq/stocktake-web/pkg/gateway"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
	"github.com/stocktakehq/stocktake-web/pkg/metrics"
	"github.com/stocktakehq/stocktake-web/pkg/redis"
	"github.com/stocktakehq/stocktake-web/web"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "web"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "web",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	redisClient, err := redis.New(runCtx, cfg.Redis)
	if err != nil {
		logg.Error(runCtx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	m := metrics.NewHTTPMetrics()

	gatewayClient, err := gateway.New(cfg.Gateway, logg, m)
	if err != nil {
		logg.Error(runCtx, "failed to build gateway client", err)
		os.Exit(1)
	}
	gatewayClient.StartAutoRefresh(runCtx)

	st := store.New(gatewayClient, logg)

	guard := authguard.New(gatewayClient, st, logg)
	guard.Start(runCtx)
	defer guard.Stop()

	renderer, err := web.NewRenderer()
	if err != nil {
		logg.Error(runCtx, "failed to parse templates", err)
		os.Exit(1)
	}
	pages := controllers.NewPages(renderer, guard, st, logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(runCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting web server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, m, redisClient, gatewayClient, st, guard, pages),
	}

	errC := make(chan error, 1)
	go func() {
		errC <- server.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "web server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "web server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(context.Background(), "web server stopped")
	}
}

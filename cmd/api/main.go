package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/geocoder89/commenthub/internal/auth"
	"github.com/geocoder89/commenthub/internal/config"
	"github.com/geocoder89/commenthub/internal/db"
	httpx "github.com/geocoder89/commenthub/internal/http"
	"github.com/geocoder89/commenthub/internal/identity"
	"github.com/geocoder89/commenthub/internal/notifications"
	"github.com/geocoder89/commenthub/internal/observability"
	"github.com/geocoder89/commenthub/internal/service"
	"github.com/geocoder89/commenthub/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger("prod").Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	// handlers log unmapped errors through the default logger
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		Endpoint:    cfg.OTLPEndpoint,
		Environment: cfg.Env,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	stores, err := store.Open(ctx, cfg, prom)
	if err != nil {
		log.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}

	seeded, err := db.EnsureAdminUser(ctx, stores.Users, cfg)
	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}
	if seeded {
		log.Info("admin user created", "email", cfg.AdminEmail)
	}

	codec := auth.NewCodecFromConfig(cfg)
	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(log),
		notifications.ProtectedNotifierConfig{Timeout: 2 * time.Second},
	)

	var draining atomic.Bool

	router := httpx.NewRouter(httpx.Deps{
		Config:   cfg,
		Log:      log,
		Prom:     prom,
		Gatherer: reg,
		Resolver: identity.NewResolver(codec, stores.Users),
		Auth:     service.NewAuthService(stores.Users, codec, notifier, log),
		Users:    service.NewUserService(stores.Users, codec),
		Comments: service.NewCommentService(stores.Comments),
		Ping:     stores.Ping,
		Draining: draining.Load,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", stores.Driver)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	draining.Store(true)
	log.Info("server shutting down")

	shutdownCtx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
	if err := stores.Close(shutdownCtx); err != nil {
		log.Error("store close failed", "err", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}

	log.Info("shutdown complete")
}

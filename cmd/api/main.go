package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/profile-harvester/internal/app"
	"github.com/user/profile-harvester/internal/delivery/http/handler"
	"github.com/user/profile-harvester/internal/delivery/http/router"
	"github.com/user/profile-harvester/internal/delivery/scheduler"
	"github.com/user/profile-harvester/internal/monitoring"
	"github.com/user/profile-harvester/pkg/config"
	"github.com/user/profile-harvester/pkg/logger"
)

func main() {
	envFile := flag.String("env", ".env", "optional env file")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.Load(*envFile)
	if err != nil {
		// The logger depends on config, so this is the one place we print plainly.
		os.Stderr.WriteString("could not load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	// --- Metrics ---
	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	// --- Storage Layer ---
	ctx := context.Background()
	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	// --- Use Cases ---
	pipeline, err := app.NewPipeline(cfg, metrics, log)
	if err != nil {
		log.Fatal("failed to build pipeline", zap.Error(err))
	}
	harvester := app.NewHarvestService(cfg, pipeline, stores, metrics, log)
	status := app.NewStatusService(stores)

	// --- Scheduler ---
	sched, err := scheduler.New(cfg.HarvestSchedule, harvester, log)
	if err != nil {
		log.Fatal("failed to schedule harvests", zap.Error(err))
	}
	sched.Start()
	log.Info("scheduler started", zap.String("schedule", cfg.HarvestSchedule))

	// --- HTTP Server ---
	h := handler.NewHandler(harvester, status, map[string]handler.HealthCheck{
		"postgres": stores.PingPostgres,
		"redis":    stores.PingRedis,
	}, log)
	server := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     router.New(h, metrics, log, router.Options{RequestTimeout: cfg.HTTPRequestTimeout}),
		ReadTimeout: 10 * time.Second,
		// Harvests run synchronously inside the request.
		WriteTimeout: cfg.HTTPRequestTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sched.Stop(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}

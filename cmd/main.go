package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/config"
	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/attempt"
	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/failover"
	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/handler"
	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/httpserver"
	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/metrics"
	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/internal/origin"
	"github.com/seanmtracey/Edge-Scripting-Dynamic-Routing-and-Failovers/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	origins := buildOrigins(cfg.Origins())
	if len(origins) == 0 {
		log.Error("No origins configured")
		os.Exit(1)
	}

	policy := selectPolicy(cfg.RandomSelection())

	collector := metrics.NewCollector(1000, log)
	collector.Start(ctx)

	executor := attempt.NewExecutor(cfg.Timeout())
	controller := failover.NewController(executor, log, collector)
	failoverHandler := handler.NewFailoverHandler(log, controller, origins, policy, collector)

	mux := setupRouter(failoverHandler, collector, policy.Name())

	srv, err := httpserver.New(cfg.Server.Address, mux)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Failover router starting",
		slog.String("address", cfg.Server.Address),
		slog.Int("origins", len(origins)),
		slog.String("policy", policy.Name()),
		slog.Duration("attempt_timeout", cfg.Timeout()))

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting failover router", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func buildOrigins(hosts []string) []origin.Origin {
	origins := make([]origin.Origin, 0, len(hosts))

	for _, host := range hosts {
		origins = append(origins, origin.Origin{Host: host})
	}

	return origins
}

func selectPolicy(random bool) origin.Policy {
	if random {
		return origin.NewRandomPolicy()
	}

	return origin.NewSequentialPolicy()
}

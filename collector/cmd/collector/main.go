package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skydock-systems/skydock-stack/collector/internal/config"
	"github.com/skydock-systems/skydock-stack/collector/internal/consumer"
	"github.com/skydock-systems/skydock-stack/collector/internal/handlers"
	"github.com/skydock-systems/skydock-stack/collector/internal/hub"
	"github.com/skydock-systems/skydock-stack/collector/internal/logstore"
	"github.com/skydock-systems/skydock-stack/collector/internal/server"
	"github.com/skydock-systems/skydock-stack/collector/internal/statusclient"
	"github.com/skydock-systems/skydock-stack/collector/internal/ws"
	"github.com/skydock-systems/skydock-stack/common/logging"
	"github.com/skydock-systems/skydock-stack/common/messaging"

	natsclient "github.com/skydock-systems/skydock-stack/common/messaging/nats"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("collector"))
	logging.SetDefault(logger)

	slog.Info("Starting Collector service",
		slog.Int("port", cfg.Server.Port),
		slog.String("nats_url", cfg.NATS.URL),
		slog.String("opensearch_url", cfg.OpenSearch.URL),
	)
	if *configPath != "" {
		slog.Info("Loaded configuration", slog.String("config_path", *configPath))
	}

	ctx := context.Background()

	natsCfg := natsclient.DefaultConfig()
	natsCfg.URL = cfg.NATS.URL
	natsCfg.Name = "skydock-collector"
	jsClient, err := natsclient.NewJetStreamClient(natsCfg)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer jsClient.Close()

	if _, err := jsClient.CreateOrUpdateStream(ctx, natsclient.BuildLogsStream); err != nil {
		log.Fatalf("Failed to create stream: %v", err)
	}
	if _, err := jsClient.CreateOrUpdateConsumer(ctx, messaging.StreamBuildLogs, natsclient.BuildLogsConsumer); err != nil {
		log.Fatalf("Failed to create consumer: %v", err)
	}

	store, err := logstore.NewStore(cfg.OpenSearch)
	if err != nil {
		log.Fatalf("Failed to create OpenSearch store: %v", err)
	}
	if err := store.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize log index: %v", err)
	}

	liveHub := hub.New()
	statusClient := statusclient.NewClient(cfg.API.URL)
	cons := consumer.New(store, liveHub, statusClient, logger)

	consumeCtx, consumeCancel := context.WithCancel(ctx)
	defer consumeCancel()
	stop, err := jsClient.ConsumeMessages(consumeCtx, messaging.StreamBuildLogs, messaging.ConsumerCollectorLogs, cons.Handle)
	if err != nil {
		log.Fatalf("Failed to start consuming: %v", err)
	}
	defer stop()

	handler := handlers.NewCollectorHandler(store)
	wsHandler := ws.NewHandler(liveHub, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.NewRouter(handler, wsHandler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Collector service listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down collector...")
	stop()
	if err := jsClient.Drain(); err != nil {
		slog.Warn("NATS drain failed", logging.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Collector stopped")
}

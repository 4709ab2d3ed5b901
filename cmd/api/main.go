package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"example.com/mergington/internal/api"
	"example.com/mergington/internal/catalog"
	"example.com/mergington/internal/config"
	"example.com/mergington/internal/domain"
	"example.com/mergington/internal/logger"
	"example.com/mergington/internal/observability"
	"example.com/mergington/internal/outbox"
	"example.com/mergington/internal/roster"
	httptransport "example.com/mergington/internal/transport/http"
	"example.com/mergington/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("invalid configuration", zap.Error(err))
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("logger setup failed", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	activities, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal("failed to load activity catalog", zap.Error(err))
	}
	repo, err := roster.NewInMemoryRepository(activities)
	if err != nil {
		log.Fatal("failed to seed roster", zap.Error(err))
	}
	for _, a := range activities {
		observability.RecordCapacity(a.Name, a.MaxParticipants)
		observability.RecordEnrollment(a.Name, len(a.Participants))
	}

	opts := []domain.Option{domain.WithCapacityEnforcement(cfg.EnforceCapacity)}

	var dispatcher *outbox.Dispatcher
	if cfg.PublishingEnabled() {
		box := outbox.New(cfg.OutboxCapacity)
		writer := outbox.NewRosterWriter(cfg.KafkaBrokers, cfg.RosterTopic)
		defer writer.Close()

		dispatcher = outbox.NewDispatcher(box, writer, cfg.OutboxPollInterval, cfg.OutboxBatchSize, log)
		go dispatcher.Start(ctx)
		opts = append(opts, domain.WithRecorder(box))
	}

	service := domain.NewService(repo, opts...)

	handler := api.NewHandler(service, web.Static(), log)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := httptransport.NewServer(
		httptransport.DefaultServerConfig(cfg.HTTPAddress),
		httptransport.Chain(mux, httptransport.AccessLog(log), httptransport.CORS(cfg.CORSAllowedOrigin)),
	)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("activities service listening",
			zap.String("address", cfg.HTTPAddress),
			zap.Int("activities", len(activities)),
			zap.Bool("enforce_capacity", cfg.EnforceCapacity),
			zap.Bool("publishing", cfg.PublishingEnabled()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-shutdownCh
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}

	// Stop the dispatcher only after in-flight requests have recorded their events.
	cancel()
	if dispatcher != nil {
		dispatcher.Wait()
	}
}

// Conveyor Merger — параллельная стадия конвейера.
//
// Merger:
//   - Получает сигналы data.ingest.done из RabbitMQ
//   - Объединяет JSON-документы из OUT_DIR в один файл
//   - Передаёт объединённый файл downstream-ингесту
//   - Публикует hand-off в history.graph.done
//
// Параллельность ограничена пулом воркеров (MAX_WORKERS).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Conveyor/internal/api"
	"github.com/shaiso/Conveyor/internal/config"
	"github.com/shaiso/Conveyor/internal/merger"
	"github.com/shaiso/Conveyor/internal/mq"
	"github.com/shaiso/Conveyor/internal/registry"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting conveyor-merger")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.MergerFromEnv()

	reg := registry.New()

	var ingestor merger.Ingestor
	if cfg.IngestCmd != "" {
		ingestor = merger.NewCommandIngestor(cfg.IngestCmd, logger)
	}

	m := merger.New(merger.Config{
		Registry:   reg,
		Publisher:  mq.NewPublisher(cfg.Broker.URL(), logger),
		Ingestor:   ingestor,
		OutDir:     cfg.OutDir,
		PendingDir: cfg.PendingDir,
		MaxWorkers: cfg.MaxWorkers,
		Logger:     logger,
	})

	consumer := mq.NewConsumer(mq.ConsumerConfig{
		URL:        cfg.Broker.URL(),
		Queue:      cfg.Broker.Queue,
		Prefetch:   cfg.Broker.Prefetch,
		RetryDelay: cfg.Broker.RetryDelay,
	}, m.HandleMessage, logger)

	// HTTP mux: status API + /healthz + /metrics
	mux := http.NewServeMux()
	handler := api.NewHandler(api.Config{
		Registry: reg,
		Logger:   logger,
	})
	handler.RegisterRoutes(mux)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.APIPort),
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Потребляем до отмены контекста
	if err := consumer.Run(ctx); err != nil {
		logger.Error("consumer stopped", "error", err)
	}

	// Дорабатываем задачи, взятые воркерами
	m.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}

	logger.Info("conveyor-merger stopped")
}

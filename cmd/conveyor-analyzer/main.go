// Conveyor Analyzer — последовательная стадия конвейера.
//
// Analyzer:
//   - Получает сигналы history.graph.done из RabbitMQ
//   - Ставит задачи во внутреннюю очередь (одна задача за раз)
//   - Отправляет артефакты внешнему сервису анализа и опрашивает статус
//
// Внешний сервис держит одну задачу за раз, поэтому prefetch=1 и
// строгая сериализация обработки.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Conveyor/internal/analyzer"
	"github.com/shaiso/Conveyor/internal/api"
	"github.com/shaiso/Conveyor/internal/config"
	"github.com/shaiso/Conveyor/internal/mq"
	"github.com/shaiso/Conveyor/internal/registry"
	"github.com/shaiso/Conveyor/internal/remote"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting conveyor-analyzer")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.AnalyzerFromEnv()

	reg := registry.New()

	client := remote.NewClient(remote.Config{
		BaseURL:      cfg.RemoteURL,
		PollTimeout:  cfg.PollTimeout,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})

	a := analyzer.New(analyzer.Config{
		Registry: reg,
		Client:   client,
		OutDir:   cfg.OutDir,
		TempDir:  cfg.TempDir,
		Logger:   logger,
	})
	a.Start()

	consumer := mq.NewConsumer(mq.ConsumerConfig{
		URL:        cfg.Broker.URL(),
		Queue:      cfg.Broker.Queue,
		Prefetch:   cfg.Broker.Prefetch,
		RetryDelay: cfg.Broker.RetryDelay,
	}, a.HandleMessage, logger)

	// HTTP mux: status API + /healthz + /metrics
	mux := http.NewServeMux()
	handler := api.NewHandler(api.Config{
		Registry: reg,
		Lane:     a,
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

	// Дорабатываем очередь: текущая задача завершается полностью
	a.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}

	logger.Info("conveyor-analyzer stopped")
}

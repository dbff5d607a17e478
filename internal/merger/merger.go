package merger

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/shaiso/Conveyor/internal/config"
	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/mq"
	"github.com/shaiso/Conveyor/internal/registry"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

const stageName = "merger"

// Merger — стадия объединения CTI-документов.
//
// Жизненный цикл задачи: pending → running → {completed | failed}.
// Сообщение подтверждается ровно один раз, после перехода задачи в
// финальный статус — независимо от исхода обработки. Ошибка обработки
// фиксируется на задаче, а не возвращается брокеру.
type Merger struct {
	registry  *registry.Registry
	pool      *Pool
	publisher *mq.Publisher
	ingestor  Ingestor

	outDir     string
	pendingDir string

	logger *slog.Logger
}

// Config — конфигурация Merger.
type Config struct {
	// Registry — реестр задач (обязателен).
	Registry *registry.Registry

	// Publisher — публикация события для стадии analyzer.
	// nil — hand-off отключён.
	Publisher *mq.Publisher

	// Ingestor — downstream-ингест. nil — шаг пропускается.
	Ingestor Ingestor

	// OutDir — входная директория с JSON-документами.
	OutDir string

	// PendingDir — директория для объединённого файла.
	PendingDir string

	// MaxWorkers — размер пула (default: 4).
	MaxWorkers int

	// Logger — логгер.
	Logger *slog.Logger
}

// New создаёт Merger и запускает пул воркеров.
func New(cfg Config) *Merger {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 4
	}

	return &Merger{
		registry:   cfg.Registry,
		pool:       NewPool(workers, logger),
		publisher:  cfg.Publisher,
		ingestor:   cfg.Ingestor,
		outDir:     cfg.OutDir,
		pendingDir: cfg.PendingDir,
		logger:     logger,
	}
}

// HandleMessage — обработчик сообщений из очереди data.ingest.done.
// Вызывается в горутине соединения: создаёт задачу и отдаёт её пулу,
// не блокируясь.
func (m *Merger) HandleMessage(ctx context.Context, d *mq.Delivery) {
	task := domain.NewTask(domain.TaskStatusPending, d.Data)
	m.registry.Create(task)

	m.logger.Info("task created", "task_id", task.ID, "status", task.Status)

	m.pool.Submit(func() {
		m.process(ctx, task.ID, d)
	})
}

// process — единица работы пула: довести задачу до финального статуса
// и подтвердить сообщение.
func (m *Merger) process(ctx context.Context, taskID uuid.UUID, d *mq.Delivery) {
	telemetry.TasksInFlight.WithLabelValues(stageName).Inc()
	defer telemetry.TasksInFlight.WithLabelValues(stageName).Dec()

	if err := m.registry.Update(taskID, func(t *domain.Task) {
		t.Advance(domain.TaskStatusRunning)
	}); err != nil {
		m.logger.Error("failed to mark task running", "task_id", taskID, "error", err)
	}

	runErr := m.run(ctx, taskID)

	if runErr != nil {
		m.logger.Error("task failed", "task_id", taskID, "error", runErr)
		m.registry.Update(taskID, func(t *domain.Task) {
			t.MarkFailed(runErr.Error())
		})
		telemetry.TasksFinished.WithLabelValues(stageName, string(domain.TaskStatusFailed)).Inc()
	} else {
		m.registry.Update(taskID, func(t *domain.Task) {
			t.MarkCompleted()
		})
		m.logger.Info("task completed", "task_id", taskID)
		telemetry.TasksFinished.WithLabelValues(stageName, string(domain.TaskStatusCompleted)).Inc()
	}

	// Подтверждение после финального статуса, независимо от исхода.
	// Ошибка здесь означает развал соединения: брокер доставит
	// сообщение повторно (документированное окно дублирования).
	if err := d.Ack(); err != nil {
		m.logger.Error("failed to ack message", "task_id", taskID, "error", err)
	}
}

// run выполняет бизнес-обработку одной задачи.
func (m *Merger) run(ctx context.Context, taskID uuid.UUID) error {
	docs, err := LoadAndTransform(m.outDir, m.logger)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		m.logger.Warn("no input documents found", "dir", m.outDir, "task_id", taskID)
		m.registry.Update(taskID, func(t *domain.Task) {
			zero := 0
			t.FileCount = &zero
		})
		return nil
	}

	count := len(docs)
	m.registry.Update(taskID, func(t *domain.Task) {
		t.FileCount = &count
	})

	mergedPath, err := MergeAndSave(docs, m.pendingDir, m.logger)
	if err != nil {
		return err
	}

	m.registry.Update(taskID, func(t *domain.Task) {
		t.MergedFile = mergedPath
	})

	if m.ingestor != nil {
		if err := m.ingestor.Ingest(ctx, mergedPath); err != nil {
			// Объединённый файл остаётся на диске для отладки
			return err
		}
	}

	if err := os.Remove(mergedPath); err != nil {
		m.logger.Warn("failed to remove merged file", "file", mergedPath, "error", err)
	}

	m.publishHandOff(ctx, taskID, count)

	return nil
}

// publishHandOff публикует событие для стадии analyzer.
// Ошибка публикации не валит задачу: объединение и ингест уже прошли.
func (m *Merger) publishHandOff(ctx context.Context, taskID uuid.UUID, fileCount int) {
	if m.publisher == nil {
		return
	}

	event := mq.Event{
		TaskID: taskID.String(),
		Data:   map[string]any{"file_count": fileCount},
	}

	if err := m.publisher.Publish(ctx, config.QueueHistoryGraphDone, event); err != nil {
		m.logger.Error("failed to publish hand-off event",
			"task_id", taskID,
			"queue", config.QueueHistoryGraphDone,
			"error", err,
		)
		return
	}

	m.logger.Info("hand-off event published",
		"task_id", taskID,
		"queue", config.QueueHistoryGraphDone,
	)
}

// Stop дожидается завершения всех начатых задач пула.
func (m *Merger) Stop() {
	m.logger.Info("stopping merger, waiting for in-flight tasks...")
	m.pool.Close()
	m.logger.Info("merger stopped")
}

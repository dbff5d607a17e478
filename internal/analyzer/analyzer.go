package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/mq"
	"github.com/shaiso/Conveyor/internal/registry"
	"github.com/shaiso/Conveyor/internal/telemetry"
)

const stageName = "analyzer"

// AnalysisClient — внешний сервис анализа. Submit отправляет артефакт
// и возвращает идентификатор удалённой задачи; Await блокируется до
// терминального состояния удалённой задачи и возвращает true только
// для успешного завершения.
type AnalysisClient interface {
	Submit(ctx context.Context, artifactPath string) (string, error)
	Await(ctx context.Context, taskID string) bool
}

// Analyzer последовательно обрабатывает пачки артефактов: одна задача
// за раз, каждый артефакт — отдельный round-trip к внешнему сервису.
type Analyzer struct {
	registry *registry.Registry
	client   AnalysisClient
	queue    *laneQueue
	outDir   string
	tempDir  string
	logger   *slog.Logger

	wg sync.WaitGroup

	mu      sync.Mutex
	current *uuid.UUID
}

// Config задаёт зависимости анализатора.
type Config struct {
	Registry *registry.Registry
	Client   AnalysisClient
	OutDir   string
	TempDir  string
	Logger   *slog.Logger
}

// New создаёт анализатор. Воркер не запущен до вызова Start.
func New(cfg Config) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		registry: cfg.Registry,
		client:   cfg.Client,
		queue:    newLaneQueue(),
		outDir:   cfg.OutDir,
		tempDir:  cfg.TempDir,
		logger:   logger,
	}
}

// Start запускает единственный воркер очереди. Воркер живёт на
// собственном контексте: отмена контекста потребителя не должна
// прерывать незавершённый опрос удалённой задачи. Остановка — через
// Stop, после дообработки текущей задачи.
func (a *Analyzer) Start() {
	a.wg.Add(1)
	go a.worker(context.Background())
}

// Stop закрывает очередь и ждёт завершения текущей задачи.
// Задачи, оставшиеся в очереди, дорабатываются до конца.
func (a *Analyzer) Stop() {
	a.queue.Close()
	a.wg.Wait()
}

// HandleMessage регистрирует задачу и ставит её в очередь. Сообщение
// подтверждается сразу: задача с этого момента живёт только в памяти,
// при падении процесса она теряется.
func (a *Analyzer) HandleMessage(ctx context.Context, d *mq.Delivery) {
	task := domain.NewTask(domain.TaskStatusQueued, d.Data)
	taskID := a.registry.Create(task)

	a.queue.Push(laneItem{taskID: taskID})
	telemetry.LaneQueueDepth.Set(float64(a.queue.Len()))

	if err := d.Ack(); err != nil {
		a.logger.Error("failed to ack message", "task_id", taskID, "error", err)
	}

	a.logger.Info("task queued", "task_id", taskID, "queue_size", a.queue.Len())
}

// CurrentTask возвращает идентификатор задачи в обработке, если есть.
func (a *Analyzer) CurrentTask() *uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	id := *a.current
	return &id
}

// QueueSize возвращает число задач, ожидающих обработки.
func (a *Analyzer) QueueSize() int {
	return a.queue.Len()
}

func (a *Analyzer) worker(ctx context.Context) {
	defer a.wg.Done()
	for {
		item, ok := a.queue.Pop()
		if !ok {
			return
		}
		telemetry.LaneQueueDepth.Set(float64(a.queue.Len()))
		a.processTask(ctx, item)
	}
}

func (a *Analyzer) processTask(ctx context.Context, item laneItem) {
	a.setCurrent(&item.taskID)
	defer a.setCurrent(nil)

	telemetry.TasksInFlight.WithLabelValues(stageName).Inc()
	defer telemetry.TasksInFlight.WithLabelValues(stageName).Dec()

	a.logger.Info("task started", "task_id", item.taskID)

	if err := a.updateStatus(item.taskID, domain.TaskStatusProcessing); err != nil {
		a.logger.Error("failed to update task", "task_id", item.taskID, "error", err)
		return
	}

	if err := a.runBatch(ctx, item.taskID); err != nil {
		a.logger.Error("task failed", "task_id", item.taskID, "error", err)
		a.finishTask(item.taskID, err)
		return
	}

	a.finishTask(item.taskID, nil)
	a.logger.Info("task completed", "task_id", item.taskID)
}

// runBatch обрабатывает все артефакты пачки. Отказ одного артефакта
// не валит пачку: он логируется и пропускается. Пачка падает целиком
// только при ошибке сканирования директории или staging.
func (a *Analyzer) runBatch(ctx context.Context, taskID uuid.UUID) error {
	artifacts, err := FindArtifacts(a.outDir)
	if err != nil {
		return err
	}

	if err := a.registry.Update(taskID, func(t *domain.Task) {
		n := len(artifacts)
		t.FileCount = &n
	}); err != nil {
		return err
	}

	if len(artifacts) == 0 {
		a.logger.Info("no artifacts to analyze", "task_id", taskID, "dir", a.outDir)
		return nil
	}

	for _, artifact := range artifacts {
		staged, err := StageArtifact(artifact, a.tempDir)
		if err != nil {
			return fmt.Errorf("stage %s: %w", filepath.Base(artifact), err)
		}

		remoteID, err := a.client.Submit(ctx, staged)
		if err != nil {
			a.logger.Error("artifact submit failed",
				"task_id", taskID, "artifact", filepath.Base(artifact), "error", err)
			continue
		}

		if err := a.registry.Update(taskID, func(t *domain.Task) {
			t.Advance(domain.TaskStatusWaitingForRemote)
			t.RemoteTaskID = remoteID
		}); err != nil {
			return err
		}

		if !a.client.Await(ctx, remoteID) {
			a.logger.Error("remote analysis failed",
				"task_id", taskID, "remote_task_id", remoteID, "artifact", filepath.Base(artifact))
			if err := a.updateStatus(taskID, domain.TaskStatusProcessing); err != nil {
				return err
			}
			continue
		}

		if err := a.registry.Update(taskID, func(t *domain.Task) {
			t.ProcessedFiles = append(t.ProcessedFiles, filepath.Base(artifact))
			t.Advance(domain.TaskStatusProcessing)
		}); err != nil {
			return err
		}

		a.logger.Info("artifact processed",
			"task_id", taskID, "artifact", filepath.Base(artifact), "remote_task_id", remoteID)
	}

	return nil
}

func (a *Analyzer) updateStatus(taskID uuid.UUID, status domain.TaskStatus) error {
	return a.registry.Update(taskID, func(t *domain.Task) {
		t.Advance(status)
	})
}

func (a *Analyzer) finishTask(taskID uuid.UUID, taskErr error) {
	status := domain.TaskStatusCompleted
	if taskErr != nil {
		status = domain.TaskStatusFailed
	}

	err := a.registry.Update(taskID, func(t *domain.Task) {
		if taskErr != nil {
			t.MarkFailed(taskErr.Error())
		} else {
			t.MarkCompleted()
		}
	})
	if err != nil {
		a.logger.Error("failed to finish task", "task_id", taskID, "error", err)
		return
	}

	telemetry.TasksFinished.WithLabelValues(stageName, string(status)).Inc()
}

func (a *Analyzer) setCurrent(id *uuid.UUID) {
	a.mu.Lock()
	a.current = id
	a.mu.Unlock()
}

package domain

// TaskStatus — статус обработки задачи.
//
// Стадия merger (параллельный пул):
//
//	pending → running → completed
//	                  ↘ failed
//
// Стадия analyzer (последовательная очередь):
//
//	queued → processing → [waiting_for_remote ⇄ processing] → completed
//	                                                        ↘ failed
type TaskStatus string

const (
	// TaskStatusPending — задача создана, ожидает свободного воркера в пуле.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusRunning — задача выполняется воркером пула.
	TaskStatusRunning TaskStatus = "running"

	// TaskStatusQueued — задача во внутренней очереди analyzer.
	TaskStatusQueued TaskStatus = "queued"

	// TaskStatusProcessing — analyzer обрабатывает задачу (перебирает артефакты).
	TaskStatusProcessing TaskStatus = "processing"

	// TaskStatusWaitingForRemote — analyzer ожидает завершения задачи
	// во внешнем сервисе анализа (polling).
	TaskStatusWaitingForRemote TaskStatus = "waiting_for_remote"

	// TaskStatusCompleted — задача успешно завершена.
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusFailed — задача завершилась с ошибкой.
	TaskStatusFailed TaskStatus = "failed"
)

// IsTerminal возвращает true, если статус финальный.
// Из финального статуса задача никогда не выходит.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

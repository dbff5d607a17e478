package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task — единица отслеживаемой работы.
//
// Task создаётся при получении сообщения из очереди (до ack) и мутируется
// in-place по мере продвижения обработки. Задачи никогда не удаляются —
// реестр живёт столько же, сколько процесс.
type Task struct {
	// ID — уникальный идентификатор задачи.
	// Генерируется при получении сообщения.
	ID uuid.UUID `json:"task_id"`

	// Status — текущий статус задачи.
	Status TaskStatus `json:"status"`

	// CreatedAt — время создания задачи.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt — время начала обработки.
	// Устанавливается ровно один раз, при выходе из начального статуса.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt — время перехода в финальный статус.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// MessageData — исходный payload сообщения (для аудита и отладки).
	MessageData map[string]any `json:"message_data,omitempty"`

	// FileCount — количество найденных входных файлов.
	FileCount *int `json:"file_count,omitempty"`

	// MergedFile — путь к объединённому файлу (стадия merger).
	MergedFile string `json:"merged_file,omitempty"`

	// ProcessedFiles — артефакты, успешно обработанные внешним сервисом
	// (стадия analyzer). Заполняется по одному по мере завершения polling.
	ProcessedFiles []string `json:"processed_files,omitempty"`

	// RemoteTaskID — идентификатор задачи во внешнем сервисе анализа,
	// завершения которой ожидает analyzer.
	RemoteTaskID string `json:"remote_task_id,omitempty"`

	// Error — текст последней ошибки при неудаче.
	Error string `json:"error,omitempty"`
}

// NewTask создаёт задачу в указанном начальном статусе.
func NewTask(initial TaskStatus, messageData map[string]any) *Task {
	return &Task{
		ID:          uuid.New(),
		Status:      initial,
		CreatedAt:   time.Now(),
		MessageData: messageData,
	}
}

// IsFinished возвращает true, если задача в финальном статусе.
func (t *Task) IsFinished() bool {
	return t.Status.IsTerminal()
}

// Advance переводит задачу в нефинальный статус status.
// StartedAt устанавливается только при первом вызове; переход из
// финального статуса игнорируется.
func (t *Task) Advance(status TaskStatus) {
	if t.IsFinished() {
		return
	}
	t.Status = status
	if t.StartedAt == nil {
		now := time.Now()
		t.StartedAt = &now
	}
}

// MarkCompleted переводит задачу в статус completed.
// Повторный вызов для завершённой задачи — no-op.
func (t *Task) MarkCompleted() {
	if t.IsFinished() {
		return
	}
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
}

// MarkFailed переводит задачу в статус failed с текстом ошибки.
// Повторный вызов для завершённой задачи — no-op.
func (t *Task) MarkFailed(errMsg string) {
	if t.IsFinished() {
		return
	}
	now := time.Now()
	t.Status = TaskStatusFailed
	t.CompletedAt = &now
	t.Error = errMsg
}

// Duration возвращает продолжительность обработки.
func (t *Task) Duration() time.Duration {
	if t.StartedAt == nil || t.CompletedAt == nil {
		return 0
	}
	return t.CompletedAt.Sub(*t.StartedAt)
}

// Clone возвращает копию задачи, безопасную для чтения без блокировки
// реестра. Слайсы и map копируются поверхностно на один уровень — этого
// достаточно, потому что элементы после записи не мутируются.
func (t *Task) Clone() Task {
	c := *t
	if t.ProcessedFiles != nil {
		c.ProcessedFiles = make([]string, len(t.ProcessedFiles))
		copy(c.ProcessedFiles, t.ProcessedFiles)
	}
	if t.MessageData != nil {
		c.MessageData = make(map[string]any, len(t.MessageData))
		for k, v := range t.MessageData {
			c.MessageData[k] = v
		}
	}
	if t.FileCount != nil {
		n := *t.FileCount
		c.FileCount = &n
	}
	if t.StartedAt != nil {
		ts := *t.StartedAt
		c.StartedAt = &ts
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return c
}

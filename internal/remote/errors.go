package remote

import "errors"

// Ошибки клиента сервиса анализа.
var (
	// ErrSubmitRejected — сервис отклонил артефакт (HTTP >= 400).
	ErrSubmitRejected = errors.New("analysis service rejected submission")

	// ErrNoTaskID — сервис принял артефакт, но не вернул task_id.
	ErrNoTaskID = errors.New("analysis service returned no task_id")
)

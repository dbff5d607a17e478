package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Таймауты отдельных HTTP-запросов (не путать с таймаутом polling).
const (
	submitTimeout = 30 * time.Second
	statusTimeout = 10 * time.Second
)

// Status — статус задачи во внешнем сервисе анализа.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusNotFound  Status = "not_found"
)

// Client — клиент внешнего сервиса анализа.
//
// Wire-контракт:
//
//	POST /analyze {"artifact_path": "..."} → {"task_id": "..."}
//	GET  /tasks/{task_id}                  → {"status": "...", "error": "..."}
type Client struct {
	baseURL      string
	pollTimeout  time.Duration
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

// Config — конфигурация клиента.
type Config struct {
	// BaseURL — базовый URL сервиса, без завершающего слэша.
	BaseURL string

	// PollTimeout — максимальное время ожидания одной удалённой задачи.
	PollTimeout time.Duration

	// PollInterval — пауза между опросами статуса.
	PollInterval time.Duration

	// Logger — логгер.
	Logger *slog.Logger
}

// NewClient создаёт клиент сервиса анализа.
func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		pollTimeout:  cfg.PollTimeout,
		pollInterval: cfg.PollInterval,
		httpClient:   &http.Client{},
		logger:       logger,
	}
}

// submitRequest — тело запроса POST /analyze.
type submitRequest struct {
	ArtifactPath string `json:"artifact_path"`
}

// submitResponse — ответ POST /analyze.
type submitResponse struct {
	TaskID string `json:"task_id"`
}

// statusResponse — ответ GET /tasks/{id}.
type statusResponse struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Submit отправляет артефакт на анализ и возвращает ID удалённой задачи.
func (c *Client) Submit(ctx context.Context, artifactPath string) (string, error) {
	body, err := json.Marshal(submitRequest{ArtifactPath: artifactPath})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: HTTP %d: %s", ErrSubmitRejected, resp.StatusCode, truncate(string(respBody), 200))
	}

	var result submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.TaskID == "" {
		return "", ErrNoTaskID
	}

	return result.TaskID, nil
}

// Await опрашивает статус удалённой задачи до финального состояния.
// Возвращает true только при успешном завершении. Ошибки транспорта
// логируются и не выходят за эту границу: после паузы опрос повторяется.
// Любой нераспознанный статус считается «ещё выполняется». По истечении
// PollTimeout возвращается false без дальнейших опросов.
func (c *Client) Await(ctx context.Context, taskID string) bool {
	deadline := time.Now().Add(c.pollTimeout)

	c.logger.Info("waiting for remote task", "remote_task_id", taskID)

	for {
		if time.Now().After(deadline) {
			c.logger.Error("timeout waiting for remote task",
				"remote_task_id", taskID,
				"timeout", c.pollTimeout,
			)
			return false
		}

		status, errMsg, err := c.fetchStatus(ctx, taskID)
		if err != nil {
			c.logger.Warn("failed to poll remote task",
				"remote_task_id", taskID,
				"error", err,
			)
		} else {
			c.logger.Debug("remote task status", "remote_task_id", taskID, "status", status)

			switch status {
			case StatusCompleted:
				c.logger.Info("remote task completed", "remote_task_id", taskID)
				return true
			case StatusFailed:
				c.logger.Error("remote task failed",
					"remote_task_id", taskID,
					"error", errMsg,
				)
				return false
			case StatusNotFound:
				c.logger.Error("remote task lost", "remote_task_id", taskID)
				return false
			}
			// pending, running и неизвестные статусы — опрашиваем дальше
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.pollInterval):
		}
	}
}

// fetchStatus выполняет один опрос статуса.
func (c *Client) fetchStatus(ctx context.Context, taskID string) (Status, string, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tasks/"+taskID, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("poll status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", "", fmt.Errorf("poll status: HTTP %d", resp.StatusCode)
	}

	var result statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", fmt.Errorf("decode status: %w", err)
	}

	return result.Status, result.Error, nil
}

// truncate обрезает строку до указанной длины.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

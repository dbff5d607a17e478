package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из internal/api, CLI не импортирует его) ---

// TaskView — задача из API.
type TaskView struct {
	ID             string         `json:"task_id"`
	Status         string         `json:"status"`
	CreatedAt      string         `json:"created_at"`
	StartedAt      string         `json:"started_at,omitempty"`
	CompletedAt    string         `json:"completed_at,omitempty"`
	MessageData    map[string]any `json:"message_data,omitempty"`
	FileCount      *int           `json:"file_count,omitempty"`
	MergedFile     string         `json:"merged_file,omitempty"`
	ProcessedFiles []string       `json:"processed_files,omitempty"`
	RemoteTaskID   string         `json:"remote_task_id,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// HealthView — состояние сервиса из API.
type HealthView struct {
	Status      string `json:"status"`
	TotalTasks  int    `json:"total_tasks"`
	QueueSize   *int   `json:"queue_size,omitempty"`
	CurrentTask string `json:"current_task,omitempty"`
}

// ListTasksOpts — параметры фильтрации задач.
type ListTasksOpts struct {
	Status string
	Limit  int
}

// --- API response wrappers ---

type taskListResponse struct {
	Total int        `json:"total"`
	Tasks []TaskView `json:"tasks"`
}

type taskResponse struct {
	Task TaskView `json:"task"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для API статуса задач.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Health возвращает состояние сервиса.
func (c *Client) Health() (*HealthView, error) {
	var health HealthView
	if err := c.get("/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// ListTasks возвращает список задач с фильтрацией.
func (c *Client) ListTasks(opts ListTasksOpts) ([]TaskView, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var lr taskListResponse
	if err := c.get("/tasks", params, &lr); err != nil {
		return nil, err
	}
	return lr.Tasks, nil
}

// GetTask возвращает задачу по ID.
func (c *Client) GetTask(id string) (*TaskView, error) {
	var tr taskResponse
	if err := c.get("/tasks/"+id, nil, &tr); err != nil {
		return nil, err
	}
	return &tr.Task, nil
}

// --- HTTP helpers ---

func (c *Client) get(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/registry"
)

const defaultListLimit = 100

// Health возвращает состояние сервиса.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:     "healthy",
		TotalTasks: h.registry.Len(),
	}

	if h.lane != nil {
		size := h.lane.QueueSize()
		resp.QueueSize = &size
		resp.CurrentTask = h.lane.CurrentTask()
	}

	JSON(w, http.StatusOK, resp)
}

// ListTasks возвращает список задач, новые первыми.
// GET /tasks?status=...&limit=...
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var status domain.TaskStatus
	if s := r.URL.Query().Get("status"); s != "" {
		status = domain.TaskStatus(s)
	}

	limit := defaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			BadRequest(w, "invalid limit")
			return
		}
		limit = n
	}

	tasks := h.registry.List(status, limit)

	JSON(w, http.StatusOK, TaskListResponse{
		Total: len(tasks),
		Tasks: tasks,
	})
}

// GetTask возвращает задачу по ID.
// GET /tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid task id")
		return
	}

	task, err := h.registry.Get(id)
	if err != nil {
		if errors.Is(err, registry.ErrTaskNotFound) {
			NotFound(w, "task not found")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	JSON(w, http.StatusOK, TaskResponse{Task: task})
}

package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/registry"
)

// fakeLane имитирует последовательную очередь analyzer.
type fakeLane struct {
	size    int
	current *uuid.UUID
}

func (f *fakeLane) QueueSize() int          { return f.size }
func (f *fakeLane) CurrentTask() *uuid.UUID { return f.current }

func newTestServer(t *testing.T, reg *registry.Registry, lane LaneInfo) *httptest.Server {
	t.Helper()
	h := NewHandler(Config{
		Registry: reg,
		Lane:     lane,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, wantStatus int, into any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("expected HTTP %d, got %d", wantStatus, resp.StatusCode)
	}
	if into != nil {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func TestHealth_WithoutLane(t *testing.T) {
	reg := registry.New()
	reg.Create(domain.NewTask(domain.TaskStatusPending, nil))
	srv := newTestServer(t, reg, nil)

	var health map[string]any
	getJSON(t, srv.URL+"/health", http.StatusOK, &health)

	if health["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", health["status"])
	}
	if health["total_tasks"] != float64(1) {
		t.Errorf("expected total_tasks 1, got %v", health["total_tasks"])
	}
	if _, ok := health["queue_size"]; ok {
		t.Error("queue_size should be omitted without a lane")
	}
	if _, ok := health["current_task"]; ok {
		t.Error("current_task should be omitted without a lane")
	}
}

func TestHealth_WithLane(t *testing.T) {
	current := uuid.New()
	srv := newTestServer(t, registry.New(), &fakeLane{size: 3, current: &current})

	var health HealthResponse
	getJSON(t, srv.URL+"/health", http.StatusOK, &health)

	if health.QueueSize == nil || *health.QueueSize != 3 {
		t.Errorf("expected queue_size 3, got %v", health.QueueSize)
	}
	if health.CurrentTask == nil || *health.CurrentTask != current {
		t.Errorf("expected current_task %s, got %v", current, health.CurrentTask)
	}
}

func TestListTasks(t *testing.T) {
	reg := registry.New()
	reg.Create(domain.NewTask(domain.TaskStatusPending, nil))
	failed := domain.NewTask(domain.TaskStatusPending, nil)
	failed.MarkFailed("boom")
	reg.Create(failed)
	srv := newTestServer(t, reg, nil)

	var list TaskListResponse
	getJSON(t, srv.URL+"/tasks", http.StatusOK, &list)
	if list.Total != 2 || len(list.Tasks) != 2 {
		t.Errorf("expected 2 tasks, got total=%d len=%d", list.Total, len(list.Tasks))
	}

	getJSON(t, srv.URL+"/tasks?status=failed", http.StatusOK, &list)
	if list.Total != 1 {
		t.Fatalf("expected 1 failed task, got %d", list.Total)
	}
	if list.Tasks[0].Status != domain.TaskStatusFailed {
		t.Errorf("expected failed, got %s", list.Tasks[0].Status)
	}
}

func TestListTasks_Limit(t *testing.T) {
	reg := registry.New()
	for i := 0; i < 5; i++ {
		reg.Create(domain.NewTask(domain.TaskStatusPending, nil))
	}
	srv := newTestServer(t, reg, nil)

	var list TaskListResponse
	getJSON(t, srv.URL+"/tasks?limit=2", http.StatusOK, &list)
	if list.Total != 2 {
		t.Errorf("expected 2 tasks, got %d", list.Total)
	}
}

func TestListTasks_InvalidLimit(t *testing.T) {
	srv := newTestServer(t, registry.New(), nil)

	var er ErrorResponse
	getJSON(t, srv.URL+"/tasks?limit=nope", http.StatusBadRequest, &er)
	if er.Error.Code != ErrCodeBadRequest {
		t.Errorf("expected BAD_REQUEST, got %s", er.Error.Code)
	}
}

func TestGetTask(t *testing.T) {
	reg := registry.New()
	id := reg.Create(domain.NewTask(domain.TaskStatusPending, map[string]any{"k": "v"}))
	srv := newTestServer(t, reg, nil)

	var tr TaskResponse
	getJSON(t, srv.URL+"/tasks/"+id.String(), http.StatusOK, &tr)
	if tr.Task.ID != id {
		t.Errorf("expected task %s, got %s", id, tr.Task.ID)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	srv := newTestServer(t, registry.New(), nil)

	var er ErrorResponse
	getJSON(t, srv.URL+"/tasks/"+uuid.NewString(), http.StatusNotFound, &er)
	if er.Error.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", er.Error.Code)
	}
}

func TestGetTask_InvalidID(t *testing.T) {
	srv := newTestServer(t, registry.New(), nil)

	var er ErrorResponse
	getJSON(t, srv.URL+"/tasks/not-a-uuid", http.StatusBadRequest, &er)
	if er.Error.Code != ErrCodeBadRequest {
		t.Errorf("expected BAD_REQUEST, got %s", er.Error.Code)
	}
}

package domain

import (
	"testing"
	"time"
)

func TestNewTask(t *testing.T) {
	data := map[string]any{"source": "feed-1"}
	task := NewTask(TaskStatusPending, data)

	if task.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("task ID should be generated")
	}
	if task.Status != TaskStatusPending {
		t.Errorf("expected status pending, got %s", task.Status)
	}
	if task.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if task.StartedAt != nil || task.CompletedAt != nil {
		t.Error("StartedAt and CompletedAt should be nil for a new task")
	}
	if task.MessageData["source"] != "feed-1" {
		t.Error("message data should be carried over")
	}
}

func TestTask_Advance(t *testing.T) {
	task := NewTask(TaskStatusPending, nil)

	task.Advance(TaskStatusRunning)

	if task.Status != TaskStatusRunning {
		t.Errorf("expected status running, got %s", task.Status)
	}
	if task.StartedAt == nil {
		t.Fatal("StartedAt should be set on first advance")
	}

	// Повторный Advance не должен сдвигать StartedAt
	first := *task.StartedAt
	task.Advance(TaskStatusProcessing)
	if !task.StartedAt.Equal(first) {
		t.Error("StartedAt should be set only once")
	}
	if task.Status != TaskStatusProcessing {
		t.Errorf("expected status processing, got %s", task.Status)
	}
}

func TestTask_AdvanceIgnoredAfterTerminal(t *testing.T) {
	task := NewTask(TaskStatusPending, nil)
	task.MarkCompleted()

	task.Advance(TaskStatusRunning)

	if task.Status != TaskStatusCompleted {
		t.Errorf("terminal status should not change, got %s", task.Status)
	}
}

func TestTask_MarkCompleted(t *testing.T) {
	task := NewTask(TaskStatusPending, nil)
	task.Advance(TaskStatusRunning)
	task.MarkCompleted()

	if task.Status != TaskStatusCompleted {
		t.Errorf("expected status completed, got %s", task.Status)
	}
	if task.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
	if !task.IsFinished() {
		t.Error("completed task should be finished")
	}
}

func TestTask_MarkFailed(t *testing.T) {
	task := NewTask(TaskStatusPending, nil)
	task.MarkFailed("out dir unreadable")

	if task.Status != TaskStatusFailed {
		t.Errorf("expected status failed, got %s", task.Status)
	}
	if task.Error != "out dir unreadable" {
		t.Errorf("unexpected error message: %s", task.Error)
	}
	if task.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
}

func TestTask_NoExitFromTerminal(t *testing.T) {
	task := NewTask(TaskStatusPending, nil)
	task.MarkFailed("boom")
	done := *task.CompletedAt

	task.MarkCompleted()

	if task.Status != TaskStatusFailed {
		t.Error("failed task should stay failed")
	}
	if !task.CompletedAt.Equal(done) {
		t.Error("CompletedAt should not be overwritten")
	}
}

func TestTask_Clone(t *testing.T) {
	task := NewTask(TaskStatusPending, map[string]any{"k": "v"})
	n := 3
	task.FileCount = &n
	task.ProcessedFiles = []string{"a.json"}

	clone := task.Clone()

	// Мутации клона не должны трогать оригинал
	clone.MessageData["k"] = "changed"
	clone.ProcessedFiles[0] = "b.json"
	*clone.FileCount = 9

	if task.MessageData["k"] != "v" {
		t.Error("clone should not share message data")
	}
	if task.ProcessedFiles[0] != "a.json" {
		t.Error("clone should not share processed files")
	}
	if *task.FileCount != 3 {
		t.Error("clone should not share FileCount pointer")
	}
}

func TestTask_Duration(t *testing.T) {
	task := NewTask(TaskStatusPending, nil)
	start := time.Now().Add(-2 * time.Second)
	end := time.Now()
	task.StartedAt = &start
	task.CompletedAt = &end

	d := task.Duration()
	if d < time.Second || d > 3*time.Second {
		t.Errorf("unexpected duration: %v", d)
	}
}

func TestTaskStatus_IsTerminal(t *testing.T) {
	terminal := []TaskStatus{TaskStatusCompleted, TaskStatusFailed}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	active := []TaskStatus{
		TaskStatusPending, TaskStatusRunning, TaskStatusQueued,
		TaskStatusProcessing, TaskStatusWaitingForRemote,
	}
	for _, s := range active {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

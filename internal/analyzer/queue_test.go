package analyzer

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLaneQueue_FIFO(t *testing.T) {
	q := newLaneQueue()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		q.Push(laneItem{taskID: id})
	}

	for i, want := range ids {
		item, ok := q.Pop()
		if !ok {
			t.Fatalf("pop %d: queue unexpectedly closed", i)
		}
		if item.taskID != want {
			t.Errorf("pop %d: expected %s, got %s", i, want, item.taskID)
		}
	}
}

func TestLaneQueue_Len(t *testing.T) {
	q := newLaneQueue()
	if q.Len() != 0 {
		t.Errorf("expected empty queue, got %d", q.Len())
	}

	q.Push(laneItem{taskID: uuid.New()})
	q.Push(laneItem{taskID: uuid.New()})
	if q.Len() != 2 {
		t.Errorf("expected 2 items, got %d", q.Len())
	}

	q.Pop()
	if q.Len() != 1 {
		t.Errorf("expected 1 item, got %d", q.Len())
	}
}

func TestLaneQueue_PopBlocksUntilPush(t *testing.T) {
	q := newLaneQueue()
	want := uuid.New()

	got := make(chan laneItem, 1)
	go func() {
		item, ok := q.Pop()
		if ok {
			got <- item
		}
	}()

	// Даём горутине дойти до cond.Wait
	time.Sleep(20 * time.Millisecond)
	q.Push(laneItem{taskID: want})

	select {
	case item := <-got:
		if item.taskID != want {
			t.Errorf("expected %s, got %s", want, item.taskID)
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up after Push")
	}
}

func TestLaneQueue_CloseDrainsRemaining(t *testing.T) {
	q := newLaneQueue()
	q.Push(laneItem{taskID: uuid.New()})
	q.Push(laneItem{taskID: uuid.New()})
	q.Close()

	// Оставшиеся элементы дорабатываются после Close
	for i := 0; i < 2; i++ {
		if _, ok := q.Pop(); !ok {
			t.Fatalf("pop %d: expected item after close", i)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Error("empty closed queue should report ok=false")
	}
}

func TestLaneQueue_CloseWakesBlockedPop(t *testing.T) {
	q := newLaneQueue()

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("Pop on closed empty queue should return ok=false")
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up after Close")
	}
}

func TestLaneQueue_PushAfterCloseIgnored(t *testing.T) {
	q := newLaneQueue()
	q.Close()

	q.Push(laneItem{taskID: uuid.New()})

	if q.Len() != 0 {
		t.Error("push after close should be a no-op")
	}
}

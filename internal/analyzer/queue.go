package analyzer

import (
	"sync"

	"github.com/google/uuid"
)

// laneItem — элемент внутренней очереди.
type laneItem struct {
	taskID uuid.UUID
}

// laneQueue — неограниченная FIFO-очередь с блокирующим Pop.
//
// Capacity не ограничена намеренно: backpressure здесь даёт не брокер
// (сообщения подтверждаются при постановке), а последовательный воркер.
type laneQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []laneItem
	closed bool
}

// newLaneQueue создаёт пустую очередь.
func newLaneQueue() *laneQueue {
	q := &laneQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push добавляет элемент в хвост очереди.
// Push после Close — no-op.
func (q *laneQueue) Push(it laneItem) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.items = append(q.items, it)
	q.cond.Signal()
}

// Pop снимает элемент с головы очереди, блокируясь на пустой.
// Возвращает ok=false, когда очередь закрыта и исчерпана.
func (q *laneQueue) Pop() (laneItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}

	if len(q.items) == 0 {
		return laneItem{}, false
	}

	it := q.items[0]
	q.items = q.items[1:]
	return it, true
}

// Len возвращает текущую глубину очереди.
func (q *laneQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close закрывает очередь: ожидающие Pop просыпаются, оставшиеся
// элементы ещё будут выданы.
func (q *laneQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

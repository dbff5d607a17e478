package merger

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// Pool — ограниченный пул воркеров.
//
// Ёмкость буфера равна числу воркеров. Вместе с prefetch = workers это
// даёт инвариант: занятых воркеров + элементов в буфере не больше
// prefetch, поэтому Submit из горутины соединения не блокируется.
type Pool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool создаёт пул и запускает воркеров.
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}

	p := &Pool{
		tasks:  make(chan func(), workers),
		logger: logger,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// worker выполняет задачи до закрытия пула.
func (p *Pool) worker() {
	defer p.wg.Done()

	for task := range p.tasks {
		p.runTask(task)
	}
}

// runTask выполняет одну задачу с защитой от паники.
func (p *Pool) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker recovered from panic",
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	task()
}

// Submit отправляет задачу в пул.
func (p *Pool) Submit(task func()) {
	p.tasks <- task
}

// Close закрывает пул и дожидается завершения всех начатых задач.
func (p *Pool) Close() {
	close(p.tasks)
	p.wg.Wait()
}

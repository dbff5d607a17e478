package registry

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
)

// Registry — потокобезопасный реестр задач в памяти.
//
// Реестр — единственная разделяемая мутабельная структура системы.
// Все операции держат мьютекс только на время работы с map; наружу
// отдаются копии задач, так что сериализация и чтение полей не требуют
// блокировки.
//
// Задачи не удаляются и не переживают рестарт процесса: состояние
// ограничено временем жизни процесса.
type Registry struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
}

// New создаёт пустой реестр.
func New() *Registry {
	return &Registry{
		tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Create вставляет новую задачу и возвращает её ID.
func (r *Registry) Create(task *domain.Task) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = task
	return task.ID
}

// Update применяет мутацию к задаче под блокировкой.
// Возвращает ErrTaskNotFound, если задачи нет — в нормальном потоке
// этого не происходит: Update всегда следует за Create.
func (r *Registry) Update(id uuid.UUID, mutate func(t *domain.Task)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}

	mutate(task)
	return nil
}

// Get возвращает копию задачи по ID.
func (r *Registry) Get(id uuid.UUID) (domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return domain.Task{}, ErrTaskNotFound
	}

	return task.Clone(), nil
}

// List возвращает копии задач, отсортированные по CreatedAt по убыванию
// (новые первыми). Пустой status означает «без фильтра»; limit <= 0
// означает «без ограничения». Отсутствие совпадений — не ошибка.
func (r *Registry) List(status domain.TaskStatus, limit int) []domain.Task {
	r.mu.RLock()
	result := make([]domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if status != "" && task.Status != status {
			continue
		}
		result = append(result, task.Clone())
	}
	r.mu.RUnlock()

	// Сортировка — уже на снапшоте, без блокировки
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result
}

// Len возвращает общее количество задач.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

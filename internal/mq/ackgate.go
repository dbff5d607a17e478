package mq

import "sync"

// acker — подмножество *amqp.Channel, применяющее подтверждения.
// Выделено в интерфейс для тестов.
type acker interface {
	Ack(tag uint64, multiple bool) error
	Nack(tag uint64, multiple bool, requeue bool) error
}

// command — намерение подтверждения от воркера.
type command struct {
	tag     uint64
	ack     bool
	requeue bool
}

// Gate маршалит ack/nack из воркеров обратно в горутину, владеющую
// соединением, и гарантирует не более одного подтверждения на delivery tag.
//
// Gate создаётся на один цикл соединения и закрывается при его развале:
// команды для умершего канала бессмысленны, брокер доставит сообщения
// повторно.
type Gate struct {
	commands chan command

	mu       sync.Mutex
	resolved map[uint64]bool
	closed   bool
}

// NewGate создаёт gate с буфером на capacity команд.
// capacity должен быть не меньше prefetch — тогда отправка команды
// никогда не блокирует воркера.
func NewGate(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{
		commands: make(chan command, capacity),
		resolved: make(map[uint64]bool),
	}
}

// Ack ставит в очередь подтверждение доставки.
func (g *Gate) Ack(tag uint64) error {
	return g.submit(command{tag: tag, ack: true})
}

// Nack ставит в очередь отрицательное подтверждение.
// requeue=true — вернуть сообщение в очередь.
func (g *Gate) Nack(tag uint64, requeue bool) error {
	return g.submit(command{tag: tag, requeue: requeue})
}

// submit проверяет повтор и кладёт команду в буфер.
func (g *Gate) submit(cmd command) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGateClosed
	}
	if g.resolved[cmd.tag] {
		g.mu.Unlock()
		return ErrAlreadyResolved
	}
	g.resolved[cmd.tag] = true
	g.mu.Unlock()

	select {
	case g.commands <- cmd:
		return nil
	default:
		// Переполнение не должно навсегда блокировать tag: снимаем
		// отметку, чтобы повтор после освобождения буфера прошёл.
		g.mu.Lock()
		delete(g.resolved, cmd.tag)
		g.mu.Unlock()
		return ErrGateFull
	}
}

// Close закрывает gate. Последующие Ack/Nack возвращают ErrGateClosed.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}

// apply применяет команду к каналу. Вызывается только горутиной,
// владеющей соединением.
func (g *Gate) apply(a acker, cmd command) error {
	if cmd.ack {
		return a.Ack(cmd.tag, false)
	}
	return a.Nack(cmd.tag, false, cmd.requeue)
}

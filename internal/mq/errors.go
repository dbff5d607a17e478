package mq

import "errors"

// Ошибки пакета mq.
var (
	// ErrGateClosed — gate закрыт (соединение переустанавливается).
	// Сообщение будет доставлено брокером повторно.
	ErrGateClosed = errors.New("ack gate closed")

	// ErrGateFull — переполнение канала команд gate.
	// При capacity >= prefetch не происходит.
	ErrGateFull = errors.New("ack gate command buffer full")

	// ErrAlreadyResolved — для этого delivery tag подтверждение уже отправлено.
	ErrAlreadyResolved = errors.New("delivery already acked or nacked")

	// ErrDeliveriesClosed — брокер закрыл канал доставки.
	ErrDeliveriesClosed = errors.New("deliveries channel closed")
)

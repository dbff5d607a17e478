package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event — конверт сообщения между стадиями конвейера.
type Event struct {
	// Timestamp — время публикации.
	Timestamp time.Time `json:"timestamp"`

	// TaskID — задача-источник события (опционально).
	TaskID string `json:"task_id,omitempty"`

	// Data — полезная нагрузка.
	Data map[string]any `json:"data"`
}

// Publisher публикует события в очереди через default exchange.
//
// Соединение устанавливается на каждую публикацию: стадии публикуют
// редко (одно событие на завершённую задачу), а короткоживущее
// соединение не конкурирует с горутиной consumer за канал.
type Publisher struct {
	url    string
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(url string, logger *slog.Logger) *Publisher {
	return &Publisher{
		url:    url,
		logger: logger,
	}
}

// Publish публикует событие в указанную очередь.
// Очередь объявляется durable (идемпотентно), сообщение — persistent.
func (p *Publisher) Publish(ctx context.Context, queue string, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: heartbeatInterval,
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}

	err = ch.PublishWithContext(
		ctx,
		"",    // default exchange
		queue, // routing key = имя очереди
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}

	p.logger.Debug("published event", "queue", queue, "task_id", event.TaskID)

	return nil
}

package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Conveyor/internal/telemetry"
)

// Таймауты соединения.
const (
	heartbeatInterval = 600 * time.Second
	dialTimeout       = 30 * time.Second
)

// Confirmer — приёмник подтверждений доставки. Реализуется Gate;
// в тестах стадий подменяется фейком.
type Confirmer interface {
	Ack(tag uint64) error
	Nack(tag uint64, requeue bool) error
}

// Delivery — доставленное сообщение с декодированным payload.
// Ack/Nack можно вызывать из любой горутины: подтверждение маршалится
// через Gate в горутину соединения.
type Delivery struct {
	// Body — сырое тело сообщения.
	Body []byte

	// Data — декодированный JSON-объект.
	Data map[string]any

	tag  uint64
	gate Confirmer
}

// NewDelivery создаёт Delivery с заданным приёмником подтверждений.
// Consumer собирает Delivery сам; конструктор нужен тестам стадий.
func NewDelivery(data map[string]any, tag uint64, c Confirmer) *Delivery {
	return &Delivery{Data: data, tag: tag, gate: c}
}

// Ack подтверждает успешную обработку сообщения.
func (d *Delivery) Ack() error {
	return d.gate.Ack(d.tag)
}

// Nack отклоняет сообщение.
// requeue=true — вернуть в очередь для повторной доставки.
func (d *Delivery) Nack(requeue bool) error {
	return d.gate.Nack(d.tag, requeue)
}

// Handler — обработчик сообщения. Вызывается в горутине соединения и
// не должен блокироваться надолго: долгая работа уходит в пул или во
// внутреннюю очередь стадии. Handler обязан добиться ровно одного
// Ack/Nack для каждой доставки.
type Handler func(ctx context.Context, d *Delivery)

// ConsumerConfig — конфигурация consumer.
type ConsumerConfig struct {
	// URL — AMQP URL брокера.
	URL string

	// Queue — имя очереди. Объявляется durable при каждом подключении
	// (идемпотентно — producer мог объявить её раньше).
	Queue string

	// Prefetch — лимит неподтверждённых сообщений.
	Prefetch int

	// RetryDelay — фиксированная пауза перед повторным подключением.
	RetryDelay time.Duration
}

// Consumer потребляет сообщения из очереди RabbitMQ.
//
// Единственная политика восстановления в системе: любая ошибка
// соединения — лог, фиксированная пауза, повторное подключение,
// без ограничения числа попыток. Без jitter и circuit breaker —
// осознанное упрощение.
type Consumer struct {
	cfg     ConsumerConfig
	handler Handler
	logger  *slog.Logger
}

// NewConsumer создаёт новый Consumer.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	return &Consumer{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}
}

// Run блокируется до отмены ctx, переустанавливая соединение по мере
// необходимости.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := c.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Error("consumer failed, retrying",
			"queue", c.cfg.Queue,
			"delay", c.cfg.RetryDelay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.RetryDelay):
		}
	}
}

// runOnce выполняет один цикл соединения: dial, объявление очереди,
// prefetch, потребление до первой ошибки.
func (c *Consumer) runOnce(ctx context.Context) error {
	conn, err := amqp.DialConfig(c.cfg.URL, amqp.Config{
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

	if _, err := ch.QueueDeclare(
		c.cfg.Queue, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.cfg.Queue, err)
	}

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		c.cfg.Queue, // queue
		"",          // consumer tag (auto-generated)
		false,       // auto-ack (мы ack вручную)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	// Gate живёт один цикл соединения: delivery tags начинаются заново
	// после reconnect. Буфер 2*prefetch — с запасом на inline nack.
	gate := NewGate(2 * c.cfg.Prefetch)
	defer gate.Close()

	blocked := conn.NotifyBlocked(make(chan amqp.Blocking, 1))

	c.logger.Info("consumer started",
		"queue", c.cfg.Queue,
		"prefetch", c.cfg.Prefetch,
	)

	err = c.loop(ctx, ch, deliveries, gate, blocked)
	c.drainGate(ch, gate)
	return err
}

// drainGate применяет команды, успевшие попасть в gate до выхода из
// цикла: воркеры могли завершить задачи, пока цикл останавливался.
// Подтверждённое здесь не будет доставлено повторно — окно дублирования
// сужается. Новых команд gate после Close не принимает.
func (c *Consumer) drainGate(a acker, gate *Gate) {
	gate.Close()
	for {
		select {
		case cmd := <-gate.commands:
			if err := gate.apply(a, cmd); err != nil {
				c.logger.Warn("failed to apply ack while draining", "error", err)
				return
			}
			c.observeOutcome(cmd)
		default:
			return
		}
	}
}

// loop — единственное место, где канал трогается напрямую.
func (c *Consumer) loop(
	ctx context.Context,
	ch *amqp.Channel,
	deliveries <-chan amqp.Delivery,
	gate *Gate,
	blocked <-chan amqp.Blocking,
) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case b := <-blocked:
			if b.Active {
				c.logger.Warn("connection blocked by broker", "reason", b.Reason)
			} else {
				c.logger.Info("connection unblocked")
			}

		case cmd := <-gate.commands:
			if err := gate.apply(ch, cmd); err != nil {
				// Сбой на пути подтверждения: соединение переустановится,
				// брокер доставит неподтверждённые сообщения повторно.
				return fmt.Errorf("apply ack command: %w", err)
			}
			c.observeOutcome(cmd)

		case raw, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			c.handleDelivery(ctx, gate, raw)
		}
	}
}

// handleDelivery декодирует сообщение и передаёт его обработчику.
// Некорректный JSON отклоняется с requeue, задача не создаётся.
func (c *Consumer) handleDelivery(ctx context.Context, gate *Gate, raw amqp.Delivery) {
	var data map[string]any
	if err := json.Unmarshal(raw.Body, &data); err != nil {
		c.logger.Error("failed to decode message, rejecting",
			"queue", c.cfg.Queue,
			"error", err,
			"body", string(raw.Body),
		)
		if err := raw.Nack(false, true); err != nil {
			c.logger.Error("failed to nack malformed message", "error", err)
		}
		telemetry.MessagesConsumed.WithLabelValues(c.cfg.Queue, "nack").Inc()
		return
	}

	c.logger.Debug("received message", "queue", c.cfg.Queue)

	c.handler(ctx, &Delivery{
		Body: raw.Body,
		Data: data,
		tag:  raw.DeliveryTag,
		gate: gate,
	})
}

// observeOutcome обновляет метрику подтверждений.
func (c *Consumer) observeOutcome(cmd command) {
	outcome := "ack"
	if !cmd.ack {
		outcome = "nack"
	}
	telemetry.MessagesConsumed.WithLabelValues(c.cfg.Queue, outcome).Inc()
}

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики конвейера. Регистрируются в default registry и отдаются
// через promhttp в main каждой стадии.
var (
	// TasksFinished — завершённые задачи по финальному статусу.
	TasksFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conveyor_tasks_finished_total",
		Help: "Tasks that reached a terminal state, by status",
	}, []string{"stage", "status"})

	// MessagesConsumed — полученные из брокера сообщения по результату
	// подтверждения.
	MessagesConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conveyor_messages_consumed_total",
		Help: "Broker messages consumed, by acknowledgment outcome",
	}, []string{"queue", "outcome"})

	// TasksInFlight — задачи в обработке прямо сейчас.
	TasksInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "conveyor_tasks_in_flight",
		Help: "Tasks currently being processed",
	}, []string{"stage"})

	// LaneQueueDepth — глубина внутренней очереди analyzer.
	LaneQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "conveyor_lane_queue_depth",
		Help: "Items waiting in the analyzer's internal queue",
	})
)

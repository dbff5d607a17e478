package api

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/Conveyor/internal/registry"
)

// LaneInfo — источник сведений о последовательной очереди stage.
// Для stages без очереди (merger) зависимость остаётся nil, и
// /health отдаёт только базовые поля.
type LaneInfo interface {
	QueueSize() int
	CurrentTask() *uuid.UUID
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	registry *registry.Registry
	lane     LaneInfo
	logger   *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Registry *registry.Registry
	Lane     LaneInfo
	Logger   *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		registry: cfg.Registry,
		lane:     cfg.Lane,
		logger:   logger,
	}
}

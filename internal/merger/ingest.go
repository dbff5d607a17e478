package merger

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
)

// Ingestor — downstream-шаг конвейера, принимающий объединённый файл.
// Реализация — внешний коллаборатор (chunking и загрузка в поисковый
// индекс), merger знает только про этот контракт.
type Ingestor interface {
	Ingest(ctx context.Context, mergedPath string) error
}

// CommandIngestor запускает настроенную команду ингеста, передавая
// путь к объединённому файлу через --src.
type CommandIngestor struct {
	command string
	logger  *slog.Logger
}

// NewCommandIngestor создаёт ингестор на основе внешней команды.
func NewCommandIngestor(command string, logger *slog.Logger) *CommandIngestor {
	return &CommandIngestor{
		command: command,
		logger:  logger,
	}
}

// Ingest выполняет команду и дожидается её завершения.
func (c *CommandIngestor) Ingest(ctx context.Context, mergedPath string) error {
	c.logger.Info("executing ingest command", "command", c.command, "src", mergedPath)

	cmd := exec.CommandContext(ctx, c.command, "--src", mergedPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ingest command failed: %w: %s", err, truncateOutput(out))
	}

	c.logger.Info("ingest command completed", "src", mergedPath)
	return nil
}

// truncateOutput обрезает вывод команды для сообщения об ошибке.
func truncateOutput(out []byte) string {
	const maxLen = 200
	s := string(out)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

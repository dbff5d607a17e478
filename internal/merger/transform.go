package merger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// LoadAndTransform читает все *.json файлы из директории и применяет
// к каждому документу переименование summary → text. Файлы, которые не
// удалось прочитать или распарсить, логируются и пропускаются — один
// битый документ не срывает объединение.
func LoadAndTransform(dir string, logger *slog.Logger) ([]map[string]any, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	logger.Info("found input documents", "dir", dir, "count", len(matches))

	docs := make([]map[string]any, 0, len(matches))
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read document", "file", path, "error", err)
			continue
		}

		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			logger.Error("failed to parse document", "file", path, "error", err)
			continue
		}

		docs = append(docs, renameSummary(doc))
		logger.Debug("processed document", "file", filepath.Base(path))
	}

	return docs, nil
}

// renameSummary переносит значение поля summary в поле text.
func renameSummary(doc map[string]any) map[string]any {
	if v, ok := doc["summary"]; ok {
		doc["text"] = v
		delete(doc, "summary")
	}
	return doc
}

// MergeAndSave объединяет документы в один JSON-массив и сохраняет его
// в outputDir под уникальным именем с таймстемпом. Директория создаётся
// при необходимости (create-if-absent: ей владеем не только мы).
func MergeAndSave(docs []map[string]any, outputDir string, logger *slog.Logger) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("merged_cti_%s.json", time.Now().Format("20060102_150405"))
	path := filepath.Join(outputDir, name)

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal merged documents: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write merged file: %w", err)
	}

	logger.Info("merged documents saved",
		"file", path,
		"count", len(docs),
		"size_kb", fmt.Sprintf("%.2f", float64(len(data))/1024),
	)

	return path, nil
}

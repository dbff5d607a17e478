package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FindArtifacts возвращает *.json артефакты из директории в порядке
// обнаружения. Пустая директория — не ошибка.
func FindArtifacts(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return matches, nil
}

// StageArtifact копирует артефакт в tempDir, добавляя поле _id —
// имя файла без расширения. Staged-копия отдаётся внешнему сервису,
// исходный артефакт не мутируется. Temp-директория создаётся при
// необходимости (ей владеем не только мы).
func StageArtifact(src, tempDir string) (string, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	raw, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("parse artifact %s: %w", filepath.Base(src), err)
	}

	doc["_id"] = artifactID(src)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal staged artifact: %w", err)
	}

	staged := filepath.Join(tempDir, filepath.Base(src))
	if err := os.WriteFile(staged, data, 0o644); err != nil {
		return "", fmt.Errorf("write staged artifact: %w", err)
	}

	return staged, nil
}

// artifactID возвращает производный идентификатор артефакта —
// имя файла без расширения.
func artifactID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

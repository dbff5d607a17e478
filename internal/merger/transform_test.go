package merger

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDoc(t *testing.T, dir, name string, doc map[string]any) {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal doc: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
}

func TestLoadAndTransform_RenamesSummary(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.json", map[string]any{"summary": "threat report", "source": "feed"})

	docs, err := LoadAndTransform(dir, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 doc, got %d", len(docs))
	}

	doc := docs[0]
	if doc["text"] != "threat report" {
		t.Errorf("expected text field, got %v", doc["text"])
	}
	if _, ok := doc["summary"]; ok {
		t.Error("summary field should be removed")
	}
	if doc["source"] != "feed" {
		t.Error("other fields should be untouched")
	}
}

func TestLoadAndTransform_NoSummaryField(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.json", map[string]any{"text": "already here"})

	docs, err := LoadAndTransform(dir, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs[0]["text"] != "already here" {
		t.Error("documents without summary should pass through unchanged")
	}
}

func TestLoadAndTransform_SkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "good.json", map[string]any{"summary": "ok"})
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write broken doc: %v", err)
	}

	docs, err := LoadAndTransform(dir, discardLogger())
	if err != nil {
		t.Fatalf("broken file should be skipped, not fail the batch: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected 1 doc, got %d", len(docs))
	}
}

func TestLoadAndTransform_EmptyDir(t *testing.T) {
	docs, err := LoadAndTransform(t.TempDir(), discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no docs, got %d", len(docs))
	}
}

func TestMergeAndSave(t *testing.T) {
	outDir := t.TempDir()
	docs := []map[string]any{
		{"text": "a"},
		{"text": "b"},
	}

	path, err := MergeAndSave(docs, outDir, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "merged_cti_") || !strings.HasSuffix(base, ".json") {
		t.Errorf("unexpected merged file name: %s", base)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read merged file: %v", err)
	}
	var merged []map[string]any
	if err := json.Unmarshal(raw, &merged); err != nil {
		t.Fatalf("parse merged file: %v", err)
	}
	if len(merged) != 2 {
		t.Errorf("expected 2 merged docs, got %d", len(merged))
	}
}

func TestMergeAndSave_CreatesOutputDir(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "nested", "pending")

	_, err := MergeAndSave([]map[string]any{{"text": "a"}}, outDir, discardLogger())
	if err != nil {
		t.Fatalf("output dir should be created on demand: %v", err)
	}
}

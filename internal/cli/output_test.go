package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestOutput_TableFillsEmptyCells(t *testing.T) {
	var buf bytes.Buffer
	o := &Output{w: &buf}

	o.Print(
		[]string{"ID", "STATUS", "ERROR"},
		[][]string{{"a1", "completed", ""}},
		nil,
	)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, separator and one row, got %d lines", len(lines))
	}
	row := lines[2]
	if !strings.Contains(row, "a1") || !strings.Contains(row, "completed") {
		t.Errorf("row values missing: %q", row)
	}
	if !strings.HasSuffix(strings.TrimSpace(row), "-") {
		t.Errorf("empty cell should be rendered as a dash: %q", row)
	}
}

func TestOutput_JSONMode(t *testing.T) {
	var buf bytes.Buffer
	o := &Output{jsonMode: true, w: &buf}

	o.Print(
		[]string{"ID"},
		[][]string{{"a1"}},
		map[string]string{"task_id": "a1"},
	)

	if !strings.Contains(buf.String(), `"task_id": "a1"`) {
		t.Errorf("expected indented JSON, got %q", buf.String())
	}
}

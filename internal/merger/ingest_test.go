package merger

import (
	"context"
	"testing"
)

func TestCommandIngestor_Success(t *testing.T) {
	ing := NewCommandIngestor("true", discardLogger())

	if err := ing.Ingest(context.Background(), "/tmp/merged.json"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCommandIngestor_Failure(t *testing.T) {
	ing := NewCommandIngestor("false", discardLogger())

	if err := ing.Ingest(context.Background(), "/tmp/merged.json"); err == nil {
		t.Error("expected error for failing command")
	}
}

func TestCommandIngestor_MissingCommand(t *testing.T) {
	ing := NewCommandIngestor("definitely-not-a-command-42", discardLogger())

	if err := ing.Ingest(context.Background(), "/tmp/merged.json"); err == nil {
		t.Error("expected error for missing command")
	}
}

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "specvid.log")
	log, err := New("info", file)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Debug("hidden")
	log.Info("audio loaded")
	_ = log.Sync()

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one entry above debug, got %d: %q", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("entry is not JSON: %v", err)
	}
	if entry["msg"] != "audio loaded" || entry["logger"] != "specvid" || entry["level"] != "info" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Fatalf("expected time field in %v", entry)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty", ""); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSave(t *testing.T) {
	dir := t.TempDir()
	archive := NewArchive(dir)

	path, err := archive.Save("weather", "New York", json.RawMessage(`{"main": {"temp": 11.5}}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if filepath.Base(path) != "weather_new_york.json" {
		t.Errorf("unexpected filename %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected the file written, got %v", err)
	}
	if !strings.Contains(string(data), "\n") {
		t.Error("expected a pretty-printed payload")
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("written file is not JSON: %v", err)
	}
}

func TestSaveOverwritesPrevious(t *testing.T) {
	dir := t.TempDir()
	archive := NewArchive(dir)

	archive.Save("crypto", "bitcoin", json.RawMessage(`{"usd": 1}`))
	path, err := archive.Save("crypto", "bitcoin", json.RawMessage(`{"usd": 2}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "2") || strings.Contains(string(data), `"usd": 1`) {
		t.Errorf("expected only the latest payload, got %s", data)
	}
}

func TestSaveRejectsInvalidJSON(t *testing.T) {
	archive := NewArchive(t.TempDir())
	if _, err := archive.Save("weather", "pune", json.RawMessage(`not json`)); err == nil {
		t.Error("expected an error for an invalid payload")
	}
}

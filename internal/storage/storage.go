package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Archive writes raw provider payloads to disk as data/<category>_<name>.json
// so the last upstream response for each entity can be inspected after the fact.
type Archive struct {
	dir string
}

func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// Save pretty-prints the payload into <dir>/<category>_<name>.json and returns
// the written path. The name is sanitized for use as a filename.
func (a *Archive) Save(category, name string, payload json.RawMessage) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data dir: %w", err)
	}

	safe := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
	path := filepath.Join(a.dir, fmt.Sprintf("%s_%s.json", category, safe))

	var buf any
	if err := json.Unmarshal(payload, &buf); err != nil {
		return "", fmt.Errorf("payload is not valid JSON: %w", err)
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, pretty, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

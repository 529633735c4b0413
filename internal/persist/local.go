package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	settingsFile = "settings.json"
	profileFile  = "profile.json"
)

// Local keeps the documents as JSON files under dir. Writes go through a
// temp file and rename so a crash never leaves a truncated document.
type Local struct {
	dir string
	mu  sync.Mutex
}

func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

func (l *Local) GetSettings(ctx context.Context) (map[string]any, error) {
	return l.read(settingsFile)
}

func (l *Local) SaveSettings(ctx context.Context, doc map[string]any) error {
	return l.write(settingsFile, doc)
}

func (l *Local) GetProfile(ctx context.Context) (map[string]any, error) {
	return l.read(profileFile)
}

func (l *Local) SaveProfile(ctx context.Context, doc map[string]any) error {
	return l.write(profileFile, doc)
}

func (l *Local) read(name string) (map[string]any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readLocked(name)
}

func (l *Local) readLocked(name string) (map[string]any, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return doc, nil
}

func (l *Local) write(name string, patch map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.readLocked(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(merged(current, patch), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	tmp := filepath.Join(l.dir, name+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, filepath.Join(l.dir, name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

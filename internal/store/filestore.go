package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/eeeeman22/verbatim/internal/session"
)

var _ Store = (*FileStore)(nil)

// FileStore persists each session as a JSON file under a directory,
// named <session-id>.json. It suits single-clinician installs where no
// database is available.
//
// Writes go through a temp file and rename so a crash mid-save never
// leaves a truncated snapshot. All methods are safe for concurrent use.
type FileStore struct {
	dir string

	mu sync.Mutex
}

// NewFileStore creates the directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

// Save implements [Store].
func (f *FileStore) Save(_ context.Context, s *session.Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: marshal session: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, "session-*.tmp")
	if err != nil {
		return fmt.Errorf("file store: create temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("file store: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file store: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(s.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file store: rename: %w", err)
	}
	return nil
}

// Load implements [Store].
func (f *FileStore) Load(_ context.Context, id string) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("file store: read: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("file store: unmarshal session: %w", err)
	}
	return &s, nil
}

// List implements [Store]. Unreadable or malformed files are skipped.
func (f *FileStore) List(ctx context.Context) ([]Summary, error) {
	f.mu.Lock()
	entries, err := os.ReadDir(f.dir)
	f.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("file store: read dir: %w", err)
	}

	summaries := []Summary{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		s, err := f.Load(ctx, id)
		if err != nil {
			continue
		}
		summaries = append(summaries, Summary{
			ID:          s.ID,
			StudentID:   s.StudentID,
			StudentName: s.StudentName,
			Date:        s.Date,
			WordCount:   len(s.Words),
			ErrorCount:  len(s.Errors),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date.After(summaries[j].Date)
	})
	return summaries, nil
}

// Delete implements [Store].
func (f *FileStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("file store: delete: %w", err)
	}
	return nil
}

// Close implements [Store]. The file store holds no resources.
func (f *FileStore) Close() error { return nil }

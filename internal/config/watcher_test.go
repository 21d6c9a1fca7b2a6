package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eeeeman22/verbatim/internal/config"
)

const pollInterval = 50 * time.Millisecond

const baseConfigYAML = `
server:
  log_level: info
review:
  flag_threshold: 0.7
dictionary:
  lexicon_path: ./lexicon.yaml
storage:
  file_path: ./sessions
`

// reloadedConfigYAML changes all three hot-reload concerns at once: log
// level, flag threshold, and the lexicon path.
const reloadedConfigYAML = `
server:
  log_level: debug
review:
  flag_threshold: 0.6
dictionary:
  lexicon_path: ./lexicon-v2.yaml
storage:
  file_path: ./sessions
`

const brokenConfigYAML = `
server:
  log_level: bananas
`

type reload struct {
	old, new *config.Config
}

// watchTempConfig writes content to a temp config file and starts a watcher
// on it. Every accepted reload is delivered on the returned channel.
func watchTempConfig(t *testing.T, content string) (string, *config.Watcher, <-chan reload) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, content)

	reloads := make(chan reload, 4)
	w, err := config.NewWatcher(path, func(old, new *config.Config) {
		reloads <- reload{old: old, new: new}
	}, config.WithInterval(pollInterval))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	t.Cleanup(w.Stop)

	return path, w, reloads
}

func writeConfigFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %q: %v", path, err)
	}
}

func TestWatcherLoadsOnCreate(t *testing.T) {
	t.Parallel()
	_, w, _ := watchTempConfig(t, baseConfigYAML)

	cfg := w.Current()
	if cfg == nil {
		t.Fatal("Current() returned nil after construction")
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("log_level = %q, want %q", cfg.Server.LogLevel, config.LogInfo)
	}
	if cfg.Review.FlagThreshold != 0.7 {
		t.Errorf("flag_threshold = %v, want 0.7", cfg.Review.FlagThreshold)
	}
}

func TestWatcherReportsContentChange(t *testing.T) {
	t.Parallel()
	path, w, reloads := watchTempConfig(t, baseConfigYAML)

	// Let the watcher settle on the initial content before rewriting.
	time.Sleep(2 * pollInterval)
	writeConfigFile(t, path, reloadedConfigYAML)

	var got reload
	select {
	case got = <-reloads:
	case <-time.After(2 * time.Second):
		t.Fatal("reload callback was not invoked within timeout")
	}

	if got.old == nil || got.new == nil {
		t.Fatal("callback received nil configs")
	}
	if got.old.Server.LogLevel != config.LogInfo {
		t.Errorf("old log_level = %q, want %q", got.old.Server.LogLevel, config.LogInfo)
	}

	// The diff of the two configs flags every hot-reload concern.
	d := config.Diff(got.old, got.new)
	if !d.LogLevelChanged || d.NewLogLevel != config.LogDebug {
		t.Errorf("diff log level = %+v, want change to debug", d)
	}
	if !d.FlagThresholdChanged || d.NewFlagThreshold != 0.6 {
		t.Errorf("diff flag threshold = %+v, want change to 0.6", d)
	}
	if !d.DictionaryChanged {
		t.Errorf("diff = %+v, want dictionary change flagged", d)
	}

	if cur := w.Current(); cur.Server.LogLevel != config.LogDebug {
		t.Errorf("Current() log_level = %q, want %q", cur.Server.LogLevel, config.LogDebug)
	}
}

func TestWatcherRejectsInvalidUpdate(t *testing.T) {
	t.Parallel()
	path, w, reloads := watchTempConfig(t, baseConfigYAML)

	time.Sleep(2 * pollInterval)
	writeConfigFile(t, path, brokenConfigYAML)

	// Give the watcher several polls to notice the broken file.
	select {
	case got := <-reloads:
		t.Fatalf("callback fired for invalid config: %+v", got)
	case <-time.After(6 * pollInterval):
	}

	// The last valid config stays in effect.
	if cur := w.Current(); cur.Server.LogLevel != config.LogInfo {
		t.Errorf("Current() log_level = %q, want old value %q", cur.Server.LogLevel, config.LogInfo)
	}
}

func TestWatcherIgnoresTouchWithoutChange(t *testing.T) {
	t.Parallel()
	path, _, reloads := watchTempConfig(t, baseConfigYAML)

	// Bump the mtime without changing content.
	time.Sleep(2 * pollInterval)
	later := time.Now().Add(time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("touch %q: %v", path, err)
	}

	select {
	case got := <-reloads:
		t.Fatalf("callback fired for touch-only update: %+v", got)
	case <-time.After(6 * pollInterval):
	}
}

func TestWatcherMissingFile(t *testing.T) {
	t.Parallel()
	if _, err := config.NewWatcher("/nonexistent/path.yaml", nil); err == nil {
		t.Fatal("expected error for non-existent file, got nil")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	t.Parallel()
	_, w, _ := watchTempConfig(t, baseConfigYAML)

	w.Stop()
	w.Stop()
}

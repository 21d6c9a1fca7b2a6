package config_test

import (
	"testing"

	"github.com/eeeeman22/verbatim/internal/config"
)

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	old := &config.Config{}
	old.Server.LogLevel = config.LogInfo
	old.Review.FlagThreshold = 0.7

	new := &config.Config{}
	new.Server.LogLevel = config.LogInfo
	new.Review.FlagThreshold = 0.7

	d := config.Diff(old, new)
	if d.LogLevelChanged || d.FlagThresholdChanged || d.DictionaryChanged {
		t.Errorf("Diff of identical configs = %+v, want zero", d)
	}
}

func TestDiff_LogLevel(t *testing.T) {
	t.Parallel()
	old := &config.Config{}
	old.Server.LogLevel = config.LogInfo
	new := &config.Config{}
	new.Server.LogLevel = config.LogError

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Fatal("LogLevelChanged = false, want true")
	}
	if d.NewLogLevel != config.LogError {
		t.Errorf("NewLogLevel = %q, want error", d.NewLogLevel)
	}
}

func TestDiff_FlagThreshold(t *testing.T) {
	t.Parallel()
	old := &config.Config{}
	old.Review.FlagThreshold = 0.7
	new := &config.Config{}
	new.Review.FlagThreshold = 0.55

	d := config.Diff(old, new)
	if !d.FlagThresholdChanged {
		t.Fatal("FlagThresholdChanged = false, want true")
	}
	if d.NewFlagThreshold != 0.55 {
		t.Errorf("NewFlagThreshold = %v, want 0.55", d.NewFlagThreshold)
	}
}

func TestDiff_Dictionary(t *testing.T) {
	t.Parallel()
	old := &config.Config{}
	old.Dictionary.LexiconPath = "a.yaml"
	new := &config.Config{}
	new.Dictionary.LexiconPath = "b.yaml"

	if d := config.Diff(old, new); !d.DictionaryChanged {
		t.Error("DictionaryChanged = false, want true")
	}

	new.Dictionary.LexiconPath = "a.yaml"
	new.Dictionary.SuggestThreshold = 0.9
	if d := config.Diff(old, new); !d.DictionaryChanged {
		t.Error("DictionaryChanged (threshold) = false, want true")
	}
}

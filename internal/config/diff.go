package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// FlagThresholdChanged reports a new review.flag_threshold. Applies
	// to words created after the reload only; existing words keep their
	// flagging decision.
	FlagThresholdChanged bool
	NewFlagThreshold     float64

	// DictionaryChanged reports that the lexicon path or suggest
	// threshold changed and the dictionary should be reloaded.
	DictionaryChanged bool
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Review.FlagThreshold != new.Review.FlagThreshold {
		d.FlagThresholdChanged = true
		d.NewFlagThreshold = new.Review.FlagThreshold
	}

	if old.Dictionary != new.Dictionary {
		d.DictionaryChanged = true
	}

	return d
}

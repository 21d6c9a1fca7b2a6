package asr

import "time"

// Transcript is one recognition update from an ASR provider. Both
// partial (interim) and final results use this type.
type Transcript struct {
	// Text is the transcribed speech content.
	Text string

	// IsFinal indicates whether this is an authoritative result or an
	// interim guess.
	IsFinal bool

	// Confidence is the utterance-level confidence score (0.0–1.0). May
	// be zero when the provider does not report one.
	Confidence float64

	// Words carries per-word detail: text, time span, and word-level
	// confidence. Review flagging requires word-level data; providers
	// without it yield transcripts the review layer cannot flag.
	Words []WordDetail

	// Timestamp marks when the utterance started, relative to session
	// start.
	Timestamp time.Duration

	// Duration is the length of the utterance.
	Duration time.Duration
}

// WordDetail is the per-word recognition result the review engine
// consumes: orthographic text, confidence, and time span.
type WordDetail struct {
	Word       string
	Start      time.Duration
	End        time.Duration
	Confidence float64
}

// Package asr defines the Provider contract for automatic speech
// recognition feeds.
//
// A provider wraps a real-time transcription service and exposes a
// uniform streaming interface. The central abstraction is SessionHandle:
// once opened, a session accepts raw PCM audio and emits two streams of
// Transcript values — low-latency partials for display and authoritative
// finals that drive the review workflow.
//
// Implementations must be safe for concurrent use.
package asr

import "context"

// StreamConfig describes the audio format and recognition settings for a
// new streaming session.
type StreamConfig struct {
	// SampleRate is the audio sample rate in Hz (commonly 16000).
	SampleRate int

	// Channels is the number of audio channels; 1 = mono.
	Channels int

	// Language is the BCP-47 language tag for recognition (e.g. "en-US").
	// Empty lets the provider auto-detect where supported.
	Language string
}

// SessionHandle is an open streaming recognition session. Callers must
// call Close when done; all methods are safe for concurrent use.
type SessionHandle interface {
	// SendAudio delivers a chunk of raw PCM audio for transcription.
	// Calling SendAudio after Close returns an error.
	SendAudio(chunk []byte) error

	// Partials returns the channel of interim transcripts. Closed when
	// the session ends.
	Partials() <-chan Transcript

	// Finals returns the channel of final transcripts. Closed when the
	// session ends.
	Finals() <-chan Transcript

	// Close terminates the session and releases its resources.
	Close() error
}

// Provider opens streaming recognition sessions.
type Provider interface {
	// StartStream opens a session with the given configuration. The
	// context bounds connection setup and the lifetime of the stream.
	StartStream(ctx context.Context, cfg StreamConfig) (SessionHandle, error)
}

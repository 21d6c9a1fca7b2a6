// Package review owns the live review session. A single [Manager]
// serialises every mutation of the session: transcript updates from the
// recognition feed, clinician confirmations and dismissals, and phonetic
// edits all pass through its mutex, so the session data model itself
// needs no locking.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eeeeman22/verbatim/internal/analysis"
	"github.com/eeeeman22/verbatim/internal/dictionary"
	"github.com/eeeeman22/verbatim/internal/observe"
	"github.com/eeeeman22/verbatim/internal/session"
	"github.com/eeeeman22/verbatim/internal/store"
	"github.com/eeeeman22/verbatim/pkg/asr"
)

var (
	// ErrSessionActive is returned by Start when a session is already live.
	ErrSessionActive = errors.New("review: a session is already active")

	// ErrNoSession is returned by operations that need a live session.
	ErrNoSession = errors.New("review: no active session")
)

// StudentInfo identifies the student a session is recorded for.
type StudentInfo struct {
	ID   string
	Name string
}

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithStore sets the persistence backend used by Stop.
func WithStore(s store.Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithProvider sets the recognition provider. When configured, Start
// opens a recognition stream and attaches its feed, and Stop closes it.
// name is used for logging and metrics attribution.
func WithProvider(name string, p asr.Provider, cfg asr.StreamConfig) Option {
	return func(m *Manager) {
		m.providerName = name
		m.provider = p
		m.streamCfg = cfg
	}
}

// WithMetrics sets the metrics instance. When unset no metrics are
// recorded.
func WithMetrics(met *observe.Metrics) Option {
	return func(m *Manager) {
		m.metrics = met
	}
}

// WithFlagThreshold overrides the confidence threshold below which words
// are flagged for review.
func WithFlagThreshold(threshold float64) Option {
	return func(m *Manager) {
		m.flagThreshold = threshold
	}
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// Manager coordinates one live review session at a time. All exported
// methods are safe for concurrent use.
type Manager struct {
	analyzer      *analysis.Analyzer
	dict          *dictionary.Dictionary
	store         store.Store
	metrics       *observe.Metrics
	flagThreshold float64
	logger        *slog.Logger

	providerName string
	provider     asr.Provider
	streamCfg    asr.StreamConfig

	mu     sync.Mutex
	sess   *session.Session
	handle asr.SessionHandle

	// Feed drain state, guarded by mu.
	feedCancel context.CancelFunc
	feedGroup  *errgroup.Group
}

// NewManager creates a Manager. dict may be nil when no pronunciation
// lexicon is configured; expected phonetics then stay empty until the
// clinician fills them in.
func NewManager(analyzer *analysis.Analyzer, dict *dictionary.Dictionary, opts ...Option) *Manager {
	m := &Manager{
		analyzer:      analyzer,
		dict:          dict,
		flagThreshold: analysis.DefaultFlagThreshold,
		logger:        slog.Default(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start opens a new review session for the given student and returns its
// ID. When a recognition provider is configured, Start also opens a
// recognition stream and attaches its feed. Fails with ErrSessionActive
// when a session is already live.
func (m *Manager) Start(ctx context.Context, info StudentInfo) (string, error) {
	m.mu.Lock()
	if m.sess != nil {
		m.mu.Unlock()
		return "", ErrSessionActive
	}

	id, err := session.GenerateID()
	if err != nil {
		m.mu.Unlock()
		return "", fmt.Errorf("review: generate session ID: %w", err)
	}
	m.sess = session.New(id, info.ID, info.Name)
	m.mu.Unlock()

	if m.provider != nil {
		if err := m.openStream(ctx); err != nil {
			m.mu.Lock()
			m.sess = nil
			m.mu.Unlock()
			return "", err
		}
	}

	if m.metrics != nil {
		m.metrics.ActiveSessions.Add(ctx, 1)
	}
	m.logger.InfoContext(ctx, "session started",
		slog.String("session_id", id),
		slog.String("student_id", info.ID),
	)
	return id, nil
}

// openStream dials the configured recognition provider and attaches its
// feed. The feed outlives the caller's context: Start is typically
// invoked from a request handler whose context ends with the request.
func (m *Manager) openStream(ctx context.Context) error {
	handle, err := m.provider.StartStream(ctx, m.streamCfg)
	if err != nil {
		if m.metrics != nil {
			m.metrics.RecordProviderError(ctx, m.providerName)
		}
		return fmt.Errorf("review: start recognition stream: %w", err)
	}

	if err := m.Attach(context.WithoutCancel(ctx), handle); err != nil {
		_ = handle.Close()
		return err
	}

	m.mu.Lock()
	m.handle = handle
	m.mu.Unlock()
	return nil
}

// Stop closes the live session, detaches any recognition feed, persists
// the final snapshot when a store is configured, and returns it.
func (m *Manager) Stop(ctx context.Context) (*session.Session, error) {
	m.mu.Lock()
	if m.sess == nil {
		m.mu.Unlock()
		return nil, ErrNoSession
	}
	cancel, g := m.takeFeedLocked()
	handle := m.handle
	m.handle = nil
	m.mu.Unlock()

	// Retire the feed while the session is still live so queued finals
	// land in the snapshot. Wait outside the lock: feed goroutines take
	// it in ApplyTranscript.
	waitFeed(cancel, g)
	if handle != nil {
		if err := handle.Close(); err != nil {
			m.logger.WarnContext(ctx, "close recognition stream", slog.String("error", err.Error()))
		}
	}

	m.mu.Lock()
	final := m.sess
	m.sess = nil
	m.mu.Unlock()
	if final == nil {
		return nil, ErrNoSession
	}

	if m.metrics != nil {
		m.metrics.ActiveSessions.Add(ctx, -1)
	}

	if m.store != nil {
		if err := m.store.Save(ctx, final); err != nil {
			return final, fmt.Errorf("review: persist session: %w", err)
		}
	}

	m.logger.InfoContext(ctx, "session stopped",
		slog.String("session_id", final.ID),
		slog.Int("words", len(final.Words)),
		slog.Int("confirmed_errors", len(final.Errors)),
	)
	return final, nil
}

// Attach starts draining transcripts from the given recognition session.
// Final transcripts are applied to the live session; partials are
// discarded after logging. Attach replaces any previously attached feed.
func (m *Manager) Attach(ctx context.Context, handle asr.SessionHandle) error {
	// Retire any previous feed before installing the new one.
	m.Detach()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return ErrNoSession
	}

	feedCtx, cancel := context.WithCancel(ctx)
	g, feedCtx := errgroup.WithContext(feedCtx)
	m.feedCancel = cancel
	m.feedGroup = g

	g.Go(func() error {
		for {
			select {
			case t, ok := <-handle.Finals():
				if !ok {
					return nil
				}
				m.applyFinal(feedCtx, t)
			case <-feedCtx.Done():
				// Flush finals already queued before giving up, so a
				// Stop racing a delivery never loses words.
				for {
					select {
					case t, ok := <-handle.Finals():
						if !ok {
							return nil
						}
						m.applyFinal(feedCtx, t)
					default:
						return feedCtx.Err()
					}
				}
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case t, ok := <-handle.Partials():
				if !ok {
					return nil
				}
				m.logger.DebugContext(feedCtx, "partial transcript", slog.String("text", t.Text))
			case <-feedCtx.Done():
				return feedCtx.Err()
			}
		}
	})
	return nil
}

func (m *Manager) applyFinal(ctx context.Context, t asr.Transcript) {
	if err := m.ApplyTranscript(ctx, t); err != nil {
		m.logger.WarnContext(ctx, "apply transcript failed", slog.String("error", err.Error()))
	}
}

// Detach stops draining the attached recognition feed, if any, and
// waits for its goroutines to finish.
func (m *Manager) Detach() {
	m.mu.Lock()
	cancel, g := m.takeFeedLocked()
	m.mu.Unlock()
	waitFeed(cancel, g)
}

// takeFeedLocked removes and returns the current feed drain state.
// Caller must hold mu.
func (m *Manager) takeFeedLocked() (context.CancelFunc, *errgroup.Group) {
	cancel, g := m.feedCancel, m.feedGroup
	m.feedCancel = nil
	m.feedGroup = nil
	return cancel, g
}

// waitFeed cancels and waits for a feed taken via takeFeedLocked. Must
// be called without holding mu.
func waitFeed(cancel context.CancelFunc, g *errgroup.Group) {
	if cancel == nil {
		return
	}
	cancel()
	_ = g.Wait()
}

// SetFlagThreshold updates the confidence threshold applied to words
// created after the call. Flagging decisions already made are final, so
// existing words are never reclassified.
func (m *Manager) SetFlagThreshold(threshold float64) {
	m.mu.Lock()
	m.flagThreshold = threshold
	m.mu.Unlock()
}

// wordID returns the deterministic position-based ID for the i-th word
// of the transcript. Stable IDs let clinician state survive transcript
// re-delivery after a feed reconnect.
func wordID(i int) string {
	return fmt.Sprintf("w-%04d", i+1)
}

// ApplyTranscript replaces the session word list with the words of t.
// Clinician state (status, phonetics, suggestions) carries over to words
// whose ID and text are unchanged; ledger entries whose owning word
// disappeared or lost its confirmed status are pruned in the same
// critical section, so the word/ledger correspondence holds at every
// observable point.
func (m *Manager) ApplyTranscript(ctx context.Context, t asr.Transcript) error {
	start := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return ErrNoSession
	}

	prev := make(map[string]session.TranscribedWord, len(m.sess.Words))
	for _, w := range m.sess.Words {
		prev[w.ID] = w
	}

	words := make([]session.TranscribedWord, 0, len(t.Words))
	flagged := 0
	for i, wd := range t.Words {
		score := analysis.ClampScore(wd.Confidence)
		w, err := session.NewWord(wordID(i), wd.Word, score, wd.Start, wd.End, m.flagThreshold)
		if err != nil {
			return fmt.Errorf("review: word %d: %w", i, err)
		}

		if m.dict != nil {
			if phonetic, ok := m.dict.Lookup(wd.Word); ok {
				w.Expected = phonetic
			}
		}

		if old, ok := prev[w.ID]; ok && old.Text == w.Text {
			w.Status = old.Status
			w.Produced = old.Produced
			w.Manual = old.Manual
			w.Suggestions = old.Suggestions
			if old.Expected != "" {
				w.Expected = old.Expected
			}
		}

		if w.Status == session.StatusFlagged {
			flagged++
		}
		if m.metrics != nil {
			m.metrics.RecordWordTranscribed(ctx, string(w.Category))
		}
		words = append(words, w)
	}

	m.sess.Words = words
	if d := t.Timestamp + t.Duration; d > m.sess.Duration {
		m.sess.Duration = d
	}

	// Prune ledger entries orphaned by the replacement.
	confirmed := make(map[string]bool, len(words))
	for _, w := range words {
		if w.Status == session.StatusConfirmed {
			confirmed[w.ID] = true
		}
	}
	kept := m.sess.Errors[:0]
	for _, e := range m.sess.Errors {
		if confirmed[e.WordID] {
			kept = append(kept, e)
		}
	}
	m.sess.Errors = kept

	if m.metrics != nil {
		m.metrics.WordsFlagged.Add(ctx, int64(flagged))
		m.metrics.TranscriptApplyDuration.Record(ctx, time.Since(start).Seconds())
	}
	m.logger.DebugContext(ctx, "transcript applied",
		slog.Int("words", len(words)),
		slog.Int("flagged", flagged),
	)
	return nil
}

// SetProduced records the produced phonetic transcription for a word and
// reruns pattern analysis against its expected form. Suggestions are
// only generated for words in the review workflow.
func (m *Manager) SetProduced(ctx context.Context, wordID, phonetic string) (session.TranscribedWord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return session.TranscribedWord{}, ErrNoSession
	}

	for i := range m.sess.Words {
		w := &m.sess.Words[i]
		if w.ID != wordID {
			continue
		}
		w.Produced = phonetic
		if w.Selectable() && w.Expected != "" && phonetic != "" {
			start := time.Now()
			w.Suggestions = m.analyzer.Analyze(w.Expected, phonetic)
			if m.metrics != nil {
				m.metrics.AnalysisDuration.Record(ctx, time.Since(start).Seconds())
				m.metrics.SuggestionsGenerated.Add(ctx, int64(len(w.Suggestions)))
			}
		}
		return *w, nil
	}
	return session.TranscribedWord{}, session.ErrNotFound
}

// SetManual records the clinician's manual phonetic transcription for a
// word without running analysis.
func (m *Manager) SetManual(_ context.Context, wordID, phonetic string) (session.TranscribedWord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return session.TranscribedWord{}, ErrNoSession
	}

	for i := range m.sess.Words {
		if m.sess.Words[i].ID == wordID {
			m.sess.Words[i].Manual = phonetic
			return m.sess.Words[i], nil
		}
	}
	return session.TranscribedWord{}, session.ErrNotFound
}

// ConfirmSuggestion confirms the index-th analyzer suggestion for a word.
// manualPhonetic, when non-empty, is preferred over the word's produced
// phonetic in the ledger entry.
func (m *Manager) ConfirmSuggestion(ctx context.Context, wordID string, index int, manualPhonetic string) (session.ConfirmedError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return session.ConfirmedError{}, ErrNoSession
	}

	w, err := m.sess.Word(wordID)
	if err != nil {
		return session.ConfirmedError{}, err
	}
	if index < 0 || index >= len(w.Suggestions) {
		return session.ConfirmedError{}, fmt.Errorf("review: suggestion %d of word %s: %w", index, wordID, session.ErrNotFound)
	}

	entry, err := m.sess.Confirm(wordID, w.Suggestions[index], manualPhonetic)
	if err != nil {
		return session.ConfirmedError{}, err
	}
	if m.metrics != nil {
		m.metrics.RecordConfirmation(ctx, string(entry.Pattern), false)
	}
	return entry, nil
}

// ConfirmCustom records a clinician-authored error for a word that the
// analyzer produced no suitable suggestion for.
func (m *Manager) ConfirmCustom(ctx context.Context, wordID, manualPhonetic string) (session.ConfirmedError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return session.ConfirmedError{}, ErrNoSession
	}

	entry, err := m.sess.ConfirmCustom(wordID, manualPhonetic)
	if err != nil {
		return session.ConfirmedError{}, err
	}
	if m.metrics != nil {
		m.metrics.RecordConfirmation(ctx, string(entry.Pattern), true)
	}
	return entry, nil
}

// Dismiss marks a flagged word as reviewed with no error.
func (m *Manager) Dismiss(ctx context.Context, wordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return ErrNoSession
	}
	if err := m.sess.Dismiss(wordID); err != nil {
		return err
	}
	if m.metrics != nil {
		m.metrics.WordsDismissed.Add(ctx, 1)
	}
	return nil
}

// RemoveError deletes a confirmed-error ledger entry and returns its
// owning word to the flagged state.
func (m *Manager) RemoveError(_ context.Context, errorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return ErrNoSession
	}
	return m.sess.Remove(errorID)
}

// Word returns a copy of the identified word.
func (m *Manager) Word(wordID string) (session.TranscribedWord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return session.TranscribedWord{}, ErrNoSession
	}
	return m.sess.Word(wordID)
}

// Snapshot returns a deep copy of the live session.
func (m *Manager) Snapshot() (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return nil, ErrNoSession
	}
	return copySession(m.sess), nil
}

// PatternCounts returns confirmed-error counts grouped by pattern.
func (m *Manager) PatternCounts() (map[analysis.ErrorPattern]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return nil, ErrNoSession
	}
	return m.sess.ErrorPatternCounts(), nil
}

// StatusCounts returns word counts grouped by lifecycle status.
func (m *Manager) StatusCounts() (map[session.WordStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return nil, ErrNoSession
	}
	return m.sess.StatusCounts(), nil
}

// copySession deep-copies a session so callers can read it without
// holding the manager lock.
func copySession(s *session.Session) *session.Session {
	out := *s
	out.Words = make([]session.TranscribedWord, len(s.Words))
	for i, w := range s.Words {
		out.Words[i] = w
		if w.Suggestions != nil {
			out.Words[i].Suggestions = append([]analysis.SuggestedError(nil), w.Suggestions...)
		}
	}
	out.Errors = append([]session.ConfirmedError(nil), s.Errors...)
	return &out
}

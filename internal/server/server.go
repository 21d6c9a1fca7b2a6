// Package server exposes the review workflow as a JSON HTTP API. All
// mutation routes delegate to the review manager; the server itself
// holds no session state.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eeeeman22/verbatim/internal/analysis"
	"github.com/eeeeman22/verbatim/internal/dictionary"
	"github.com/eeeeman22/verbatim/internal/health"
	"github.com/eeeeman22/verbatim/internal/observe"
	"github.com/eeeeman22/verbatim/internal/review"
	"github.com/eeeeman22/verbatim/internal/session"
	"github.com/eeeeman22/verbatim/internal/store"
	"github.com/eeeeman22/verbatim/pkg/asr"
)

// maxBodyBytes caps request bodies. Transcript updates are the largest
// payload and stay well under this.
const maxBodyBytes = 1 << 20

// Option is a functional option for New.
type Option func(*Server)

// WithDictionary enables the pronunciation lookup routes.
func WithDictionary(d *dictionary.Dictionary) Option {
	return func(s *Server) { s.dict = d }
}

// WithStore enables the session history routes.
func WithStore(st store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithHealth mounts the given health handler's probe routes.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithMetrics enables the /metrics endpoint and request instrumentation.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// Server routes HTTP requests to the review manager.
type Server struct {
	manager *review.Manager
	dict    *dictionary.Dictionary
	store   store.Store
	health  *health.Handler
	metrics *observe.Metrics
	logger  *slog.Logger
}

// New creates a Server around a review manager.
func New(manager *review.Manager, opts ...Option) *Server {
	s := &Server{
		manager: manager,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler builds the full route table. Probe and metrics routes bypass
// the tracing middleware so scrapes stay out of the request metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/session/start", s.handleStart)
	mux.HandleFunc("POST /api/session/stop", s.handleStop)
	mux.HandleFunc("GET /api/session", s.handleSnapshot)
	mux.HandleFunc("GET /api/session/summary", s.handleSummary)
	mux.HandleFunc("POST /api/transcript", s.handleTranscript)
	mux.HandleFunc("GET /api/words/{id}", s.handleWord)
	mux.HandleFunc("POST /api/words/{id}/produced", s.handleProduced)
	mux.HandleFunc("POST /api/words/{id}/manual", s.handleManual)
	mux.HandleFunc("POST /api/words/{id}/confirm", s.handleConfirm)
	mux.HandleFunc("POST /api/words/{id}/confirm-custom", s.handleConfirmCustom)
	mux.HandleFunc("POST /api/words/{id}/dismiss", s.handleDismiss)
	mux.HandleFunc("DELETE /api/errors/{id}", s.handleRemoveError)
	mux.HandleFunc("GET /api/dictionary/{word}", s.handleDictionary)
	mux.HandleFunc("GET /api/patterns", s.handlePatterns)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleLoadSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	var api http.Handler = mux
	if s.metrics != nil {
		api = observe.Middleware(s.metrics)(api)
	}

	outer := http.NewServeMux()
	outer.Handle("/api/", api)
	if s.health != nil {
		s.health.Register(outer)
	}
	if s.metrics != nil {
		outer.Handle("GET /metrics", promhttp.Handler())
	}
	return outer
}

// ─── Session lifecycle ───────────────────────────────────────────────────────

type startRequest struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
}

type startResponse struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.StudentID == "" {
		writeError(w, http.StatusBadRequest, errors.New("student_id is required"))
		return
	}

	id, err := s.manager.Start(r.Context(), review.StudentInfo{ID: req.StudentID, Name: req.StudentName})
	if err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, startResponse{SessionID: id})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Stop(r.Context())
	if err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Snapshot()
	if err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type summaryResponse struct {
	Patterns map[string]int `json:"patterns"`
	Statuses map[string]int `json:"statuses"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	patterns, err := s.manager.PatternCounts()
	if err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	statuses, err := s.manager.StatusCounts()
	if err != nil {
		s.writeManagerError(w, r, err)
		return
	}

	resp := summaryResponse{
		Patterns: make(map[string]int, len(patterns)),
		Statuses: make(map[string]int, len(statuses)),
	}
	for p, n := range patterns {
		resp.Patterns[string(p)] = n
	}
	for st, n := range statuses {
		resp.Statuses[string(st)] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

// ─── Transcript ingest ───────────────────────────────────────────────────────

// transcriptRequest mirrors a provider transcript. Word times are
// seconds from session start, matching what recognition APIs report.
type transcriptRequest struct {
	Text       string        `json:"text"`
	IsFinal    bool          `json:"is_final"`
	Confidence float64       `json:"confidence"`
	Words      []wordRequest `json:"words"`
}

type wordRequest struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	var req transcriptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// Partials are dropped here just like on the attached recognition feed;
	// only finals reach the session.
	if !req.IsFinal {
		s.logger.LogAttrs(r.Context(), slog.LevelDebug, "partial transcript ignored",
			slog.String("text", req.Text),
		)
		sess, err := s.manager.Snapshot()
		if err != nil {
			s.writeManagerError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
		return
	}

	t := asr.Transcript{
		Text:       req.Text,
		IsFinal:    req.IsFinal,
		Confidence: req.Confidence,
		Words:      make([]asr.WordDetail, 0, len(req.Words)),
	}
	for _, wd := range req.Words {
		t.Words = append(t.Words, asr.WordDetail{
			Word:       wd.Word,
			Start:      secondsToDuration(wd.Start),
			End:        secondsToDuration(wd.End),
			Confidence: wd.Confidence,
		})
	}
	if len(t.Words) > 0 {
		t.Timestamp = t.Words[0].Start
		t.Duration = t.Words[len(t.Words)-1].End - t.Words[0].Start
	}

	if err := s.manager.ApplyTranscript(r.Context(), t); err != nil {
		s.writeManagerError(w, r, err)
		return
	}

	sess, err := s.manager.Snapshot()
	if err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// ─── Word review ─────────────────────────────────────────────────────────────

func (s *Server) handleWord(w http.ResponseWriter, r *http.Request) {
	word, err := s.manager.Word(r.PathValue("id"))
	if err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

type phoneticRequest struct {
	Phonetic string `json:"phonetic"`
}

func (s *Server) handleProduced(w http.ResponseWriter, r *http.Request) {
	var req phoneticRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	word, err := s.manager.SetProduced(r.Context(), r.PathValue("id"), req.Phonetic)
	if err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

func (s *Server) handleManual(w http.ResponseWriter, r *http.Request) {
	var req phoneticRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	word, err := s.manager.SetManual(r.Context(), r.PathValue("id"), req.Phonetic)
	if err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

type confirmRequest struct {
	// Index selects the analyzer suggestion being confirmed.
	Index int `json:"index"`

	// ManualPhonetic optionally overrides the recorded production.
	ManualPhonetic string `json:"manual_phonetic"`
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entry, err := s.manager.ConfirmSuggestion(r.Context(), r.PathValue("id"), req.Index, req.ManualPhonetic)
	if err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type confirmCustomRequest struct {
	ManualPhonetic string `json:"manual_phonetic"`
}

func (s *Server) handleConfirmCustom(w http.ResponseWriter, r *http.Request) {
	var req confirmCustomRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entry, err := s.manager.ConfirmCustom(r.Context(), r.PathValue("id"), req.ManualPhonetic)
	if err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Dismiss(r.Context(), r.PathValue("id")); err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveError(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.RemoveError(r.Context(), r.PathValue("id")); err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Dictionary ──────────────────────────────────────────────────────────────

type dictionaryResponse struct {
	Word     string                `json:"word"`
	Phonetic string                `json:"phonetic,omitempty"`
	Found    bool                  `json:"found"`
	Suggest  *dictionarySuggestion `json:"suggestion,omitempty"`
}

type dictionarySuggestion struct {
	Word     string  `json:"word"`
	Phonetic string  `json:"phonetic"`
	Score    float64 `json:"score"`
}

func (s *Server) handleDictionary(w http.ResponseWriter, r *http.Request) {
	if s.dict == nil {
		writeError(w, http.StatusNotFound, errors.New("no pronunciation lexicon configured"))
		return
	}
	word := r.PathValue("word")

	if phon, ok := s.dict.Lookup(word); ok {
		writeJSON(w, http.StatusOK, dictionaryResponse{Word: word, Phonetic: phon, Found: true})
		return
	}
	if sug, ok := s.dict.Suggest(word); ok {
		writeJSON(w, http.StatusOK, dictionaryResponse{
			Word:  word,
			Found: false,
			Suggest: &dictionarySuggestion{
				Word:     sug.Word,
				Phonetic: sug.Phonetic,
				Score:    sug.Score,
			},
		})
		return
	}
	writeError(w, http.StatusNotFound, errors.New("word not in lexicon"))
}

// ─── Pattern catalog ─────────────────────────────────────────────────────────

type patternInfo struct {
	Pattern     analysis.ErrorPattern `json:"pattern"`
	Description string                `json:"description"`
}

// handlePatterns returns the closed error-pattern catalog with clinical
// descriptions, in the stable display order.
func (s *Server) handlePatterns(w http.ResponseWriter, _ *http.Request) {
	patterns := analysis.Patterns()
	out := make([]patternInfo, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, patternInfo{Pattern: p, Description: p.Description()})
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── Session history ─────────────────────────────────────────────────────────

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New("no session store configured"))
		return
	}
	summaries, err := s.store.List(r.Context())
	if err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleLoadSession(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New("no session store configured"))
		return
	}
	sess, err := s.store.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New("no session store configured"))
		return
	}
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeManagerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Plumbing ────────────────────────────────────────────────────────────────

type errorResponse struct {
	Error string `json:"error"`
}

// writeManagerError maps domain sentinels onto HTTP status codes.
func (s *Server) writeManagerError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, review.ErrNoSession),
		errors.Is(err, review.ErrSessionActive),
		errors.Is(err, session.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, session.ErrInvalidRange):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.LogAttrs(r.Context(), slog.LevelError, "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

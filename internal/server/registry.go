package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iksnae/completion-estimator/internal"
)

// ErrSessionNotFound is returned for unknown session IDs
var ErrSessionNotFound = errors.New("session not found")

// AnalyzerFactory builds the analyzer client of a new session
type AnalyzerFactory func() (internal.Analyzer, error)

// Session is one hosted sequencer plus its background run
type Session struct {
	ID        string
	CreatedAt time.Time

	seq *internal.Sequencer

	// runMu is held while a run is stopped and its replacement published
	runMu sync.Mutex

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
}

// Sequencer returns the session's sequencer
func (s *Session) Sequencer() *internal.Sequencer {
	return s.seq
}

// LastError returns the error that halted the latest background run, if any
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Running reports whether a background run is active
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the current background run ends or ctx is done
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Analyze resets the session, starts a run over text and steps through it
// in the background. A run that is still going is cancelled first.
func (s *Session) Analyze(base context.Context, reqCtx context.Context, text string) (internal.Snapshot, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.stop()

	snap, err := s.seq.Analyze(reqCtx, text)
	if err != nil {
		return snap, err
	}

	ctx, cancel := context.WithCancel(base)
	done := make(chan struct{})
	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.lastErr = nil
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		err := s.seq.Run(ctx)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, internal.ErrStaleResponse) {
			return
		}
		internal.LogWith("session", s.ID).Warn("Background run halted", "err", err)
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
	}()

	return snap, nil
}

// Reset stops any background run and resets the sequencer
func (s *Session) Reset(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.stop()
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
	return s.seq.Reset(ctx)
}

// halt stops the background run for good, as when the session is deleted
func (s *Session) halt() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.stop()
}

// stop cancels the background run and waits for its goroutine to return,
// so no step of the old run can land on the next one
func (s *Session) stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Registry holds the hosted sessions keyed by ID
type Registry struct {
	newAnalyzer AnalyzerFactory
	opts        []internal.SequencerOption
	observers   func(id string) []internal.Observer

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry. observers, if set, is asked for
// the observers of each new session.
func NewRegistry(factory AnalyzerFactory, observers func(id string) []internal.Observer, opts ...internal.SequencerOption) *Registry {
	return &Registry{
		newAnalyzer: factory,
		opts:        opts,
		observers:   observers,
		sessions:    make(map[string]*Session),
	}
}

// Create registers a new idle session
func (r *Registry) Create() (*Session, error) {
	analyzer, err := r.newAnalyzer()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	seq := internal.NewSequencer(analyzer, r.opts...)
	if r.observers != nil {
		for _, o := range r.observers(id) {
			seq.AddObserver(o)
		}
	}

	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		seq:       seq,
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	internal.LogDebug("Session %s created", id)
	return s, nil
}

// Get returns the session with id
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete stops and removes the session with id
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.halt()
	return nil
}

// Len returns the number of hosted sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops every background run
func (r *Registry) Close() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		s.halt()
	}
}

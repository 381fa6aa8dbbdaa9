package internal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies a sequencer transition
type EventKind int

const (
	EventReset EventKind = iota
	EventStart
	EventIntegrate
	EventStepFailed
	EventCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventReset:
		return "reset"
	case EventStart:
		return "start"
	case EventIntegrate:
		return "integrate"
	case EventStepFailed:
		return "step_failed"
	case EventCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Event describes one transition. Snapshot is taken right after it.
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
	Chunk    *Chunk
	Result   *AnalysisResult
	Err      error
}

// Observer receives sequencer events on the goroutine that caused them
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// SequencerOption configures a Sequencer
type SequencerOption func(*Sequencer)

// WithChunkSize sets the words per chunk
func WithChunkSize(size int) SequencerOption {
	return func(s *Sequencer) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithStepTimeout bounds each analyze request. Zero disables the bound.
func WithStepTimeout(d time.Duration) SequencerOption {
	return func(s *Sequencer) {
		s.stepTimeout = d
	}
}

// WithObserver registers an observer
func WithObserver(o Observer) SequencerOption {
	return func(s *Sequencer) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// Sequencer submits a run's chunks to the analyzer one at a time, in order,
// and folds each response into the session before the next is sent.
//
// Every reset starts a new generation. A response that comes back for an
// older generation is discarded instead of being integrated.
type Sequencer struct {
	analyzer    Analyzer
	chunkSize   int
	stepTimeout time.Duration
	observers   []Observer
	now         func() time.Time

	mu         sync.Mutex
	session    *SessionState
	state      State
	generation uint64
	resetAcked bool
	inFlight   bool
	runID      string
	startedAt  time.Time
}

// NewSequencer creates an idle sequencer. A Reset is still required before
// the first Start.
func NewSequencer(analyzer Analyzer, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		analyzer:  analyzer,
		chunkSize: DefaultChunkSize,
		now:       time.Now,
		session:   NewSessionState(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddObserver registers an observer after construction
func (s *Sequencer) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// ChunkSize returns the configured words per chunk
func (s *Sequencer) ChunkSize() int {
	return s.chunkSize
}

// Reset asks the analyzer to drop its state and, once acknowledged, replaces
// the session with an empty one. A failed acknowledgment leaves the session
// as it was, but the next Start needs a fresh acknowledged Reset.
func (s *Sequencer) Reset(ctx context.Context) error {
	if err := s.analyzer.Reset(ctx); err != nil {
		s.mu.Lock()
		s.resetAcked = false
		s.mu.Unlock()
		LogWarn("Reset was not acknowledged: %v", err)
		return fmt.Errorf("reset: %w", err)
	}

	s.mu.Lock()
	s.generation++
	s.session = NewSessionState()
	s.state = StateIdle
	s.resetAcked = true
	s.inFlight = false
	s.runID = ""
	s.startedAt = time.Time{}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	LogDebug("Session reset (generation %d)", snap.Generation)
	s.emit(Event{Kind: EventReset, Snapshot: snap})
	return nil
}

// Start chunks text and makes it the current run. It requires an
// acknowledged Reset since the previous Start.
func (s *Sequencer) Start(text string) (Snapshot, error) {
	s.mu.Lock()
	if !s.resetAcked {
		s.mu.Unlock()
		return Snapshot{}, ErrResetRequired
	}
	s.resetAcked = false

	chunks := ChunkText(text, s.chunkSize)
	s.session = &SessionState{
		Text:   text,
		Chunks: chunks,
		Series: NewSeries(),
	}
	s.state = StateChunked
	if len(chunks) == 0 {
		s.state = StateCompleted
	}
	s.runID = uuid.NewString()
	s.startedAt = s.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	LogInfo("Run %s started: %d chunk(s) of up to %d words", snap.RunID, len(chunks), s.chunkSize)
	s.emit(Event{Kind: EventStart, Snapshot: snap})
	if snap.State == StateCompleted {
		s.emit(Event{Kind: EventCompleted, Snapshot: snap})
	}
	return snap, nil
}

// Analyze resets and then starts a run over text
func (s *Sequencer) Analyze(ctx context.Context, text string) (Snapshot, error) {
	if err := s.Reset(ctx); err != nil {
		return s.Snapshot(), err
	}
	return s.Start(text)
}

// Step integrates the chunk at the cursor. It reports done once every chunk
// has been integrated. On failure the cursor stays where it was and the
// step can be retried.
func (s *Sequencer) Step(ctx context.Context) (bool, error) {
	s.mu.Lock()
	switch s.state {
	case StateIdle:
		s.mu.Unlock()
		return false, ErrNotStarted
	case StateCompleted:
		s.mu.Unlock()
		return true, nil
	}
	if s.inFlight {
		s.mu.Unlock()
		return false, ErrStepInFlight
	}

	gen := s.generation
	chunk := s.session.Chunks[s.session.Cursor]
	s.state = StateStreaming

	if chunk.IsBlank() {
		LogWarn("Chunk %d has no words; integrating it without a request", chunk.Index)
		result := blankChunkResult(s.session.Series, s.session.Cursor)
		done, snap := s.integrateLocked(result)
		s.mu.Unlock()
		s.emitIntegrated(snap, chunk, result, done)
		return done, nil
	}

	s.inFlight = true
	s.mu.Unlock()

	stepCtx := ctx
	if s.stepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, s.stepTimeout)
		defer cancel()
	}

	LogDebug("Submitting chunk %d (%d words)", chunk.Index, chunk.WordCount())
	result, err := s.analyzer.Analyze(stepCtx, chunk.Text)
	if err == nil && result == nil {
		err = &ProtocolError{Op: "analyze", Detail: "no result returned"}
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		LogDebug("Discarding response for chunk %d from generation %d", chunk.Index, gen)
		return false, ErrStaleResponse
	}
	s.inFlight = false

	if err != nil {
		err = classifyStepError(err)
		snap := s.snapshotLocked()
		s.mu.Unlock()
		LogError("Chunk %d failed: %v", chunk.Index, err)
		s.emit(Event{Kind: EventStepFailed, Snapshot: snap, Chunk: &chunk, Err: err})
		return false, fmt.Errorf("chunk %d: %w", chunk.Index, err)
	}

	done, snap := s.integrateLocked(*result)
	s.mu.Unlock()
	s.emitIntegrated(snap, chunk, *result, done)
	return done, nil
}

// Run steps until every chunk is integrated or a step fails
func (s *Sequencer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := s.Step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Snapshot returns a deep copy of the current session
func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the current lifecycle state
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Sequencer) integrateLocked(result AnalysisResult) (bool, Snapshot) {
	s.session.Series = Integrate(s.session.Series, result)
	s.session.Cursor++
	done := s.session.Done()
	if done {
		s.state = StateCompleted
	} else {
		s.state = StateStreaming
	}
	return done, s.snapshotLocked()
}

func (s *Sequencer) snapshotLocked() Snapshot {
	return newSnapshot(s.runID, s.generation, s.state, s.startedAt, s.session)
}

func (s *Sequencer) emitIntegrated(snap Snapshot, chunk Chunk, result AnalysisResult, done bool) {
	s.emit(Event{Kind: EventIntegrate, Snapshot: snap, Chunk: &chunk, Result: &result})
	if done {
		LogInfo("Run %s completed after %d chunk(s)", snap.RunID, snap.Cursor)
		s.emit(Event{Kind: EventCompleted, Snapshot: snap})
	}
}

func (s *Sequencer) emit(e Event) {
	s.mu.Lock()
	observers := append([]Observer{}, s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o.Observe(e)
	}
}

// classifyStepError wraps untyped analyzer failures, including timeouts,
// as transport errors.
func classifyStepError(err error) error {
	var te *TransportError
	var pe *ProtocolError
	if errors.As(err, &te) || errors.As(err, &pe) {
		return err
	}
	return &TransportError{Op: "analyze", Err: err}
}

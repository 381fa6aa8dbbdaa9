package internal

import (
	"strings"
	"time"
)

// State is the sequencer's position in the run lifecycle
type State int

const (
	StateIdle State = iota
	StateChunked
	StateStreaming
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChunked:
		return "chunked"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON and YAML output
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name
func (s *State) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "chunked":
		*s = StateChunked
	case "streaming":
		*s = StateStreaming
	case "completed":
		*s = StateCompleted
	default:
		*s = StateIdle
	}
	return nil
}

// SessionState is the mutable state of one analysis run.
// Invariant: 0 <= Cursor <= len(Chunks) and Cursor == Series.Len().
type SessionState struct {
	Text   string
	Chunks []Chunk
	Cursor int
	Series Series
}

// NewSessionState returns the empty session produced by a reset
func NewSessionState() *SessionState {
	return &SessionState{
		Chunks: []Chunk{},
		Series: NewSeries(),
	}
}

// Done reports whether every chunk has been integrated
func (s *SessionState) Done() bool {
	return s.Cursor >= len(s.Chunks)
}

// Snapshot is a deep copy of a sequencer's session, safe to share
type Snapshot struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	Generation uint64    `json:"generation" yaml:"generation"`
	State      State     `json:"state" yaml:"state"`
	Text       string    `json:"-" yaml:"-"`
	Chunks     []Chunk   `json:"-" yaml:"-"`
	ChunkCount int       `json:"chunk_count" yaml:"chunk_count"`
	Cursor     int       `json:"cursor" yaml:"cursor"`
	Series     Series    `json:"series" yaml:"series"`
	StartedAt  time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
}

func newSnapshot(runID string, gen uint64, state State, startedAt time.Time, s *SessionState) Snapshot {
	return Snapshot{
		RunID:      runID,
		Generation: gen,
		State:      state,
		Text:       s.Text,
		Chunks:     append([]Chunk{}, s.Chunks...),
		ChunkCount: len(s.Chunks),
		Cursor:     s.Cursor,
		Series:     s.Series.Clone(),
		StartedAt:  startedAt,
	}
}

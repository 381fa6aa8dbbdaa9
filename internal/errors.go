package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrResetRequired is returned by Start when no acknowledged reset precedes it
	ErrResetRequired = errors.New("a successful reset is required before starting a run")

	// ErrNotStarted is returned by Step when no run has been started
	ErrNotStarted = errors.New("no run has been started")

	// ErrStepInFlight is returned when a step is requested while another is awaiting its response
	ErrStepInFlight = errors.New("a chunk is already awaiting its analysis")

	// ErrStaleResponse is returned when a response arrives for a run that has since been reset
	ErrStaleResponse = errors.New("response belongs to a previous run and was discarded")

	// ErrRunNotFound is returned when a run ID is not in the history store
	ErrRunNotFound = errors.New("run not found")
)

// TransportError represents a reset or analyze call that did not complete
type TransportError struct {
	Op         string // "reset", "analyze"
	URL        string
	StatusCode int // 0 when no response was received
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: %s %s: status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("transport error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError represents a response that does not have the expected shape
type ProtocolError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error [%s] %s: %v", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("protocol error [%s] %s", e.Op, e.Detail)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// HistoryError represents errors reading or writing the run history
type HistoryError struct {
	Path string
	Op   string // "open", "migrate", "insert", "query"
	Err  error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("history error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *HistoryError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether the caller can retry the failed step or
// reset without losing integrated results
func IsRecoverable(err error) bool {
	var te *TransportError
	var pe *ProtocolError
	return errors.As(err, &te) || errors.As(err, &pe) || errors.Is(err, ErrStepInFlight)
}

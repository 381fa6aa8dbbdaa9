package internal

import (
	"time"
)

// Report is the exported and stored form of one run
type Report struct {
	RunID        string    `json:"run_id" yaml:"run_id"`
	StartedAt    time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	ChunkSize    int       `json:"chunk_size" yaml:"chunk_size"`
	ChunkCount   int       `json:"chunk_count" yaml:"chunk_count"`
	Cursor       int       `json:"cursor" yaml:"cursor"`
	State        State     `json:"state" yaml:"state"`
	KDRThreshold float64   `json:"kdr_threshold" yaml:"kdr_threshold"`
	Series       Series    `json:"series" yaml:"series"`
}

// ReportPoint is one integrated chunk, flattened for tabular output
type ReportPoint struct {
	Position            int     `json:"position" yaml:"position"`
	Chunk               int     `json:"chunk" yaml:"chunk"`
	CumulativeKeywords  float64 `json:"cumulative_keywords" yaml:"cumulative_keywords"`
	KDR                 float64 `json:"kdr" yaml:"kdr"`
	RandomValue         float64 `json:"random_value" yaml:"random_value"`
	EntityRelationCount float64 `json:"entity_relation_discovery" yaml:"entity_relation_discovery"`
}

// NewReport builds a report from a snapshot. FinishedAt is set only for
// completed runs.
func NewReport(snap Snapshot, chunkSize int, threshold float64, now time.Time) *Report {
	r := &Report{
		RunID:        snap.RunID,
		StartedAt:    snap.StartedAt,
		ChunkSize:    chunkSize,
		ChunkCount:   snap.ChunkCount,
		Cursor:       snap.Cursor,
		State:        snap.State,
		KDRThreshold: threshold,
		Series:       snap.Series.Clone(),
	}
	if snap.State == StateCompleted {
		r.FinishedAt = now
	}
	return r
}

// Points returns the integrated chunks in order. Position is 1-based.
func (r *Report) Points() []ReportPoint {
	points := make([]ReportPoint, r.Series.Len())
	for i := range points {
		p := r.Series.Point(i)
		points[i] = ReportPoint{
			Position:            i + 1,
			Chunk:               p.ChunkNumber,
			CumulativeKeywords:  p.CumulativeKeywords,
			KDR:                 p.KDR,
			RandomValue:         p.RandomValue,
			EntityRelationCount: p.EntityRelationCount,
		}
	}
	return points
}

// Completed reports whether every chunk was integrated
func (r *Report) Completed() bool {
	return r.State == StateCompleted
}

// ShortID returns the first 8 characters of the run ID
func (r *Report) ShortID() string {
	if len(r.RunID) > 8 {
		return r.RunID[:8]
	}
	return r.RunID
}

package internal

import (
	"time"
)

// CreateTestReport creates a completed report with n integrated chunks
func CreateTestReport(id string, n int) *Report {
	series := NewSeries()
	for i := 1; i <= n; i++ {
		series = Integrate(series, AnalysisResult{
			ChunkNumber:         i,
			CumulativeKeywords:  float64(30 * i),
			KDR:                 0.5 / float64(i),
			RandomValue:         float64(12 * i),
			EntityRelationCount: float64(3 * i),
		})
	}

	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &Report{
		RunID:        id,
		StartedAt:    started,
		FinishedAt:   started.Add(time.Duration(n) * time.Second),
		ChunkSize:    DefaultChunkSize,
		ChunkCount:   n,
		Cursor:       n,
		State:        StateCompleted,
		KDRThreshold: DefaultKDRThreshold,
		Series:       series,
	}
}

// CreateTestReportWithConvergence is CreateTestReport with a latched
// convergence chunk
func CreateTestReportWithConvergence(id string, n, convergence int) *Report {
	r := CreateTestReport(id, n)
	r.Series.ConvergenceChunk = &convergence
	return r
}

// CreateTestPartialReport creates an in-progress report: cursor of total
// chunks integrated
func CreateTestPartialReport(id string, cursor, total int) *Report {
	r := CreateTestReport(id, cursor)
	r.ChunkCount = total
	r.State = StateStreaming
	r.FinishedAt = time.Time{}
	return r
}

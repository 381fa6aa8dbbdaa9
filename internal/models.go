package internal

// Wire shapes exchanged with the analysis service. Field names are fixed by
// the service and must not change.

// ResetResponse is the body returned by POST /reset
type ResetResponse struct {
	Status string `json:"status"`
}

// ResetAcknowledged is the only status value accepted from POST /reset
const ResetAcknowledged = "reset"

// AnalyzeRequest is the body sent to POST /analyze
type AnalyzeRequest struct {
	Chunk string `json:"chunk"`
}

// AnalyzeResponse is the body returned by POST /analyze. Pointers
// distinguish a missing field from a zero value.
type AnalyzeResponse struct {
	Chunk                   *int     `json:"chunk"`
	CumulativeKeywords      *float64 `json:"cumulative_keywords"`
	KDR                     *float64 `json:"kdr"`
	RandomValue             *float64 `json:"random_value"`
	EntityRelationDiscovery *float64 `json:"entity_relation_discovery"`
	ConvergenceChunk        *int     `json:"convergence_chunk"`
}

package internal

import (
	"strconv"
	"strings"
)

// NormalizeAnalysis maps a wire response onto an AnalysisResult. Every metric
// field is required; convergence_chunk may be null or absent.
func NormalizeAnalysis(resp *AnalyzeResponse) (AnalysisResult, error) {
	if resp == nil {
		return AnalysisResult{}, &ProtocolError{Op: "analyze", Detail: "empty response body"}
	}

	var missing []string
	if resp.Chunk == nil {
		missing = append(missing, "chunk")
	}
	if resp.CumulativeKeywords == nil {
		missing = append(missing, "cumulative_keywords")
	}
	if resp.KDR == nil {
		missing = append(missing, "kdr")
	}
	if resp.RandomValue == nil {
		missing = append(missing, "random_value")
	}
	if resp.EntityRelationDiscovery == nil {
		missing = append(missing, "entity_relation_discovery")
	}
	if len(missing) > 0 {
		return AnalysisResult{}, &ProtocolError{
			Op:     "analyze",
			Detail: "missing fields: " + strings.Join(missing, ", "),
		}
	}

	result := AnalysisResult{
		ChunkNumber:         *resp.Chunk,
		CumulativeKeywords:  *resp.CumulativeKeywords,
		KDR:                 *resp.KDR,
		RandomValue:         *resp.RandomValue,
		EntityRelationCount: *resp.EntityRelationDiscovery,
	}
	if resp.ConvergenceChunk != nil {
		c := *resp.ConvergenceChunk
		result.ConvergenceChunk = &c
	}

	return result, nil
}

// NormalizeReset checks the reset acknowledgment
func NormalizeReset(resp *ResetResponse) error {
	if resp == nil {
		return &ProtocolError{Op: "reset", Detail: "empty response body"}
	}
	if resp.Status != ResetAcknowledged {
		return &ProtocolError{Op: "reset", Detail: "unexpected status " + strconv.Quote(resp.Status)}
	}
	return nil
}

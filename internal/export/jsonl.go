package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/completion-estimator/internal"
)

// JSONLExporter exports reports in JSONL format (one chunk per line)
type JSONLExporter struct{}

// Export writes one line per integrated chunk. Each line carries the run ID
// so files from several runs can be concatenated.
func (e *JSONLExporter) Export(report *internal.Report, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, p := range report.Points() {
		obj := map[string]interface{}{
			"run_id":                    report.RunID,
			"position":                  p.Position,
			"chunk":                     p.Chunk,
			"cumulative_keywords":       p.CumulativeKeywords,
			"kdr":                       p.KDR,
			"random_value":              p.RandomValue,
			"entity_relation_discovery": p.EntityRelationCount,
		}

		if c := report.Series.ConvergenceChunk; c != nil && *c == p.Chunk {
			obj["convergence"] = true
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode chunk %d: %w", p.Position, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}

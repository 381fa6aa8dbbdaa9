package internal

// AnalysisResult is one analyzer response mapped onto domain names
type AnalysisResult struct {
	ChunkNumber         int     `json:"chunk" yaml:"chunk"`
	CumulativeKeywords  float64 `json:"cumulative_keywords" yaml:"cumulative_keywords"`
	KDR                 float64 `json:"kdr" yaml:"kdr"`
	RandomValue         float64 `json:"random_value" yaml:"random_value"`
	EntityRelationCount float64 `json:"entity_relation_discovery" yaml:"entity_relation_discovery"`
	ConvergenceChunk    *int    `json:"convergence_chunk" yaml:"convergence_chunk"`
}

// Series holds the five per-chunk metric sequences, aligned by position,
// plus the latched convergence marker.
type Series struct {
	ChunkNumbers       []int     `json:"chunk_numbers" yaml:"chunk_numbers"`
	CumulativeKeywords []float64 `json:"cumulative_keywords" yaml:"cumulative_keywords"`
	KDR                []float64 `json:"kdr" yaml:"kdr"`
	RandomValues       []float64 `json:"random_values" yaml:"random_values"`
	EntityDiscovery    []float64 `json:"entity_discovery" yaml:"entity_discovery"`
	ConvergenceChunk   *int      `json:"convergence_chunk" yaml:"convergence_chunk"`
}

// NewSeries returns an empty series with non-nil slices
func NewSeries() Series {
	return Series{
		ChunkNumbers:       []int{},
		CumulativeKeywords: []float64{},
		KDR:                []float64{},
		RandomValues:       []float64{},
		EntityDiscovery:    []float64{},
	}
}

// Len returns the number of integrated results
func (s Series) Len() int {
	return len(s.ChunkNumbers)
}

// Converged reports whether a convergence chunk has been latched
func (s Series) Converged() bool {
	return s.ConvergenceChunk != nil
}

// XValues returns the chunk numbers as float64 for plotting
func (s Series) XValues() []float64 {
	xs := make([]float64, len(s.ChunkNumbers))
	for i, n := range s.ChunkNumbers {
		xs[i] = float64(n)
	}
	return xs
}

// Point returns the i-th integrated result
func (s Series) Point(i int) AnalysisResult {
	return AnalysisResult{
		ChunkNumber:         s.ChunkNumbers[i],
		CumulativeKeywords:  s.CumulativeKeywords[i],
		KDR:                 s.KDR[i],
		RandomValue:         s.RandomValues[i],
		EntityRelationCount: s.EntityDiscovery[i],
	}
}

// Clone returns a deep copy of the series
func (s Series) Clone() Series {
	out := Series{
		ChunkNumbers:       append([]int{}, s.ChunkNumbers...),
		CumulativeKeywords: append([]float64{}, s.CumulativeKeywords...),
		KDR:                append([]float64{}, s.KDR...),
		RandomValues:       append([]float64{}, s.RandomValues...),
		EntityDiscovery:    append([]float64{}, s.EntityDiscovery...),
	}
	if s.ConvergenceChunk != nil {
		c := *s.ConvergenceChunk
		out.ConvergenceChunk = &c
	}
	return out
}

// Integrate folds one result into the series and returns the next value.
// The input series is never mutated. Once a convergence chunk is recorded
// later values, nil or not, are ignored.
func Integrate(series Series, result AnalysisResult) Series {
	next := series.Clone()

	next.ChunkNumbers = append(next.ChunkNumbers, result.ChunkNumber)
	next.CumulativeKeywords = append(next.CumulativeKeywords, result.CumulativeKeywords)
	next.KDR = append(next.KDR, result.KDR)
	next.RandomValues = append(next.RandomValues, result.RandomValue)
	next.EntityDiscovery = append(next.EntityDiscovery, result.EntityRelationCount)

	if next.ConvergenceChunk == nil && result.ConvergenceChunk != nil {
		c := *result.ConvergenceChunk
		next.ConvergenceChunk = &c
	}

	return next
}

// blankChunkResult builds the no-op result integrated for a chunk that has
// no words: cumulative metrics carry over, the rate drops to zero.
func blankChunkResult(series Series, cursor int) AnalysisResult {
	n := series.Len()
	if n == 0 {
		return AnalysisResult{ChunkNumber: cursor + 1}
	}
	last := series.Point(n - 1)
	return AnalysisResult{
		ChunkNumber:         last.ChunkNumber + 1,
		CumulativeKeywords:  last.CumulativeKeywords,
		RandomValue:         last.RandomValue,
		EntityRelationCount: last.EntityRelationCount,
	}
}

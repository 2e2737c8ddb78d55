package textdrift

import "context"

// #region embedder

// Embedder converts texts to fixed-length vectors, one per input string.
// Implementations are typically remote model services. A nil Embedder is a
// valid state: the embedding signal degrades to zero instead of failing
// the run.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// #endregion embedder

// #region config

// Config holds text drift scoring parameters.
type Config struct {
	TextColumns      []string // explicit text columns; nil enables auto-detection
	TopNgrams        int      // bigram ranking depth for the overlap signal
	MaxEmbedSamples  int      // per-side subsample cap for the embedding signal
	DistinctRatioMin float64  // auto-detect: minimum distinct-value ratio
	Seed             int64    // subsample RNG seed; 0 seeds from the clock
}

// DefaultConfig returns the standard scoring parameters.
func DefaultConfig() Config {
	return Config{
		TopNgrams:        10,
		MaxEmbedSamples:  1000,
		DistinctRatioMin: 0.1,
	}
}

// #endregion config

// #region signals

// EmbeddingShift is the embedding-centroid sub-signal. All three values
// are zero when no embedder is available; Err carries a provider failure
// without aborting the run.
type EmbeddingShift struct {
	Score            float64 `json:"embedding_shift_score"`
	CentroidDistance float64 `json:"centroid_distance"`
	VarianceShift    float64 `json:"variance_shift"`
	Err              string  `json:"error,omitempty"`
}

// Signals holds one text column's drift signals and their combination.
type Signals struct {
	Score         float64        `json:"text_drift_score"`
	LengthShift   float64        `json:"length_shift"`
	RichnessShift float64        `json:"richness_shift"`
	NgramShift    float64        `json:"ngram_shift"`
	Embedding     EmbeddingShift `json:"embedding_shift"`
	NewTerms      []string       `json:"top_shifted_terms"`
}

// ToRecord flattens the signals into the nested-mapping shape stored in
// metric records, matching what a JSON round-trip would produce.
func (s Signals) ToRecord() map[string]any {
	embedding := map[string]any{
		"embedding_shift_score": s.Embedding.Score,
		"centroid_distance":     s.Embedding.CentroidDistance,
		"variance_shift":        s.Embedding.VarianceShift,
	}
	if s.Embedding.Err != "" {
		embedding["error"] = s.Embedding.Err
	}
	return map[string]any{
		"text_drift_score":  s.Score,
		"length_shift":      s.LengthShift,
		"richness_shift":    s.RichnessShift,
		"ngram_shift":       s.NgramShift,
		"embedding_shift":   embedding,
		"top_shifted_terms": s.NewTerms,
	}
}

// #endregion signals

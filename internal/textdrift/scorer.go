package textdrift

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/danielpatrickdp/driftwatch/internal/dataset"
)

// epsilon guards divisions against zero-mean references.
const epsilon = 1e-8

// Combination weights for the four signals. The /10 on the embedding score
// keeps the unbounded centroid distance commensurate with the other
// roughly-[0,1] signals.
const (
	weightLength    = 0.2
	weightRichness  = 0.2
	weightNgram     = 0.3
	weightEmbedding = 0.3
	embeddingScale  = 10.0
)

// #region scorer

// Scorer computes four independent drift signals per free-text column and
// combines them into one score. embedder may be nil (embedding signal
// degrades to 0).
type Scorer struct {
	embedder Embedder
	config   Config
	rng      *rand.Rand
}

// NewScorer creates a Scorer.
func NewScorer(embedder Embedder, config Config) *Scorer {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Scorer{
		embedder: embedder,
		config:   config,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// #endregion scorer

// #region score

// Score computes the drift signals for one column's reference and current
// samples. Signal failures degrade to zero values; nothing here aborts
// the run.
func (s *Scorer) Score(ctx context.Context, ref, cur []string) Signals {
	lengthShift := lengthShift(ref, cur)
	richnessShift := math.Abs(uniqueWordRatio(ref) - uniqueWordRatio(cur))

	refTop := topBigrams(ref, s.config.TopNgrams)
	curTop := topBigrams(cur, s.config.TopNgrams)
	ngramShift := 1.0 - jaccard(refTop, curTop)

	embedding := s.embeddingShift(ctx, ref, cur)

	return Signals{
		Score:         combine(lengthShift, richnessShift, ngramShift, embedding.Score),
		LengthShift:   lengthShift,
		RichnessShift: richnessShift,
		NgramShift:    ngramShift,
		Embedding:     embedding,
		NewTerms:      newTerms(refTop, curTop, 10),
	}
}

// combine is the fixed linear combination of the four signals.
func combine(lengthShift, richnessShift, ngramShift, embeddingScore float64) float64 {
	return weightLength*lengthShift +
		weightRichness*richnessShift +
		weightNgram*ngramShift +
		weightEmbedding*(embeddingScore/embeddingScale)
}

// ScoreColumns scores every configured text column present in both tables.
// With no explicit column list, text columns are auto-detected on the
// reference side: non-numeric values with a distinct-value ratio above the
// configured minimum. Columns missing from either side, or empty after
// dropping blank values, are skipped.
func (s *Scorer) ScoreColumns(ctx context.Context, ref, cur *dataset.Table) map[string]Signals {
	columns := s.config.TextColumns
	if columns == nil {
		columns = detectTextColumns(ref, s.config.DistinctRatioMin)
	}

	out := map[string]Signals{}
	for _, col := range columns {
		refVals, ok := ref.Column(col)
		if !ok {
			continue
		}
		curVals, ok := cur.Column(col)
		if !ok {
			continue
		}
		refTexts := dropEmpty(refVals)
		curTexts := dropEmpty(curVals)
		if len(refTexts) == 0 || len(curTexts) == 0 {
			continue
		}
		out[col] = s.Score(ctx, refTexts, curTexts)
	}
	return out
}

// detectTextColumns applies the high-cardinality heuristic.
func detectTextColumns(t *dataset.Table, minRatio float64) []string {
	var cols []string
	for _, name := range t.Columns() {
		if t.IsNumeric(name) {
			continue
		}
		if t.DistinctRatio(name) > minRatio {
			cols = append(cols, name)
		}
	}
	return cols
}

func dropEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// #endregion score

// #region length

// lengthShift is the relative shift in mean character length.
func lengthShift(ref, cur []string) float64 {
	return math.Abs(meanLength(ref)-meanLength(cur)) / (meanLength(ref) + epsilon)
}

func meanLength(texts []string) float64 {
	if len(texts) == 0 {
		return 0
	}
	var total float64
	for _, t := range texts {
		total += float64(len(t))
	}
	return total / float64(len(texts))
}

// #endregion length

// #region richness

// uniqueWordRatio is distinct lowercased whitespace tokens over total
// tokens, across the whole sample rather than per-row.
func uniqueWordRatio(texts []string) float64 {
	distinct := map[string]struct{}{}
	total := 0
	for _, t := range texts {
		for _, tok := range tokenize(t) {
			distinct[tok] = struct{}{}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(len(distinct)) / float64(total)
}

// tokenize splits text into lowercase whitespace-delimited tokens.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// #endregion richness

// #region ngrams

// topBigrams returns the k most frequent bigrams, ranked by raw frequency
// with ties broken by first-encountered order.
func topBigrams(texts []string, k int) []string {
	counts := map[string]int{}
	var order []string
	for _, t := range texts {
		tokens := tokenize(t)
		for i := 0; i+1 < len(tokens); i++ {
			bigram := tokens[i] + " " + tokens[i+1]
			if _, seen := counts[bigram]; !seen {
				order = append(order, bigram)
			}
			counts[bigram]++
		}
	}
	// Stable sort over first-encounter order keeps frequency ties in
	// encounter order.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > k {
		order = order[:k]
	}
	return order
}

// jaccard computes set overlap of two bigram rankings. Two empty sets
// count as full overlap.
func jaccard(a, b []string) float64 {
	setA := map[string]struct{}{}
	for _, x := range a {
		setA[x] = struct{}{}
	}
	union := map[string]struct{}{}
	inter := 0
	for _, x := range a {
		union[x] = struct{}{}
	}
	for _, x := range b {
		if _, ok := setA[x]; ok {
			inter++
		}
		union[x] = struct{}{}
	}
	if len(union) == 0 {
		return 1.0
	}
	return float64(inter) / float64(len(union))
}

// newTerms returns up to limit bigrams in the current top ranking that are
// absent from the reference ranking, in current ranking order.
func newTerms(refTop, curTop []string, limit int) []string {
	refSet := map[string]struct{}{}
	for _, x := range refTop {
		refSet[x] = struct{}{}
	}
	var out []string
	for _, x := range curTop {
		if _, ok := refSet[x]; !ok {
			out = append(out, x)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// #endregion ngrams

// #region embedding

// embeddingShift encodes up to MaxEmbedSamples rows per side and compares
// centroid and variance. Degrades to all-zero on nil embedder, and to
// all-zero plus an error annotation on provider failure.
func (s *Scorer) embeddingShift(ctx context.Context, ref, cur []string) EmbeddingShift {
	if s.embedder == nil {
		return EmbeddingShift{}
	}

	refSample := s.subsample(ref)
	curSample := s.subsample(cur)

	refVecs, err := s.embedder.Embed(ctx, refSample)
	if err != nil {
		return EmbeddingShift{Err: err.Error()}
	}
	curVecs, err := s.embedder.Embed(ctx, curSample)
	if err != nil {
		return EmbeddingShift{Err: err.Error()}
	}
	if len(refVecs) == 0 || len(curVecs) == 0 {
		return EmbeddingShift{}
	}

	refCentroid := centroid(refVecs)
	curCentroid := centroid(curVecs)
	distance := euclidean(refCentroid, curCentroid)

	refVar := grandVariance(refVecs)
	curVar := grandVariance(curVecs)
	varianceShift := math.Abs(refVar-curVar) / (refVar + epsilon)

	return EmbeddingShift{
		Score:            distance * (1 + varianceShift),
		CentroidDistance: distance,
		VarianceShift:    varianceShift,
	}
}

// subsample draws a uniform random subsample without replacement when the
// side exceeds the cap, otherwise returns the full population.
func (s *Scorer) subsample(texts []string) []string {
	max := s.config.MaxEmbedSamples
	if max <= 0 || len(texts) <= max {
		return texts
	}
	shuffled := append([]string(nil), texts...)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:max]
}

// centroid computes the mean vector. Ragged inputs are truncated to the
// shortest dimension.
func centroid(vecs [][]float64) []float64 {
	dim := len(vecs[0])
	for _, v := range vecs {
		if len(v) < dim {
			dim = len(v)
		}
	}
	mean := make([]float64, dim)
	for _, v := range vecs {
		for i := 0; i < dim; i++ {
			mean[i] += v[i]
		}
	}
	for i := range mean {
		mean[i] /= float64(len(vecs))
	}
	return mean
}

// euclidean computes the L2 distance between two vectors of equal length.
func euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// grandVariance is the mean squared deviation of every component from the
// grand mean of all components.
func grandVariance(vecs [][]float64) float64 {
	var sum float64
	var count int
	for _, v := range vecs {
		for _, x := range v {
			sum += x
			count++
		}
	}
	if count == 0 {
		return 0
	}
	mean := sum / float64(count)
	var sq float64
	for _, v := range vecs {
		for _, x := range v {
			d := x - mean
			sq += d * d
		}
	}
	return sq / float64(count)
}

// #endregion embedding

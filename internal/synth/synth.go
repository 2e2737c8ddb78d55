// Package synth generates synthetic reference/current dataset pairs with
// controlled drift, for demos and tests.
package synth

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/driftwatch/internal/dataset"
)

// logVocab is the word pool for synthetic log messages.
var logVocab = []string{
	"error", "success", "warning", "info", "debug",
	"critical", "request", "response", "timeout", "retry",
}

// driftVocab extends the pool on the drifted side to shift vocabulary.
var driftVocab = []string{
	"panic", "degraded", "throttled", "evicted", "backoff",
}

// #region baseline

// Baseline generates the reference dataset: stable numerical, categorical,
// and free-text columns. Deterministic under seed.
func Baseline(n int, seed int64) *dataset.Table {
	rng := rand.New(rand.NewSource(seed))

	t := dataset.NewTable()
	t.AddColumn("payload_bytes", normalColumn(rng, n, 1000, 200))
	t.AddColumn("run_duration_ms", normalColumn(rng, n, 500, 100))
	t.AddColumn("cpu_usage", normalColumn(rng, n, 0.5, 0.1))
	t.AddColumn("status", categoricalColumn(rng, n,
		[]string{"success", "error", "timeout"}, []float64{0.8, 0.15, 0.05}))
	t.AddColumn("region", categoricalColumn(rng, n,
		[]string{"us-east", "us-west", "eu-west"}, []float64{0.5, 0.3, 0.2}))
	t.AddColumn("log_message", textColumn(rng, n, 8, logVocab))
	return t
}

// #endregion baseline

// #region drifted

// Drifted generates the current dataset with controlled drift: shifted
// numerical means, skewed status distribution, and longer log messages
// drawing on new vocabulary. Deterministic under seed.
func Drifted(n int, seed int64) *dataset.Table {
	rng := rand.New(rand.NewSource(seed))

	vocab := append(append([]string(nil), logVocab...), driftVocab...)

	t := dataset.NewTable()
	t.AddColumn("payload_bytes", normalColumn(rng, n, 1200, 200))
	t.AddColumn("run_duration_ms", normalColumn(rng, n, 575, 100))
	t.AddColumn("cpu_usage", normalColumn(rng, n, 0.5, 0.15))
	t.AddColumn("status", categoricalColumn(rng, n,
		[]string{"success", "error", "timeout"}, []float64{0.5, 0.4, 0.1}))
	t.AddColumn("region", categoricalColumn(rng, n,
		[]string{"us-east", "us-west", "eu-west"}, []float64{0.5, 0.3, 0.2}))
	t.AddColumn("log_message", textColumn(rng, n, 11, vocab))
	return t
}

// #endregion drifted

// #region generators

func normalColumn(rng *rand.Rand, n int, mean, std float64) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.FormatFloat(mean+rng.NormFloat64()*std, 'f', 4, 64)
	}
	return out
}

func categoricalColumn(rng *rand.Rand, n int, categories []string, probs []float64) []string {
	out := make([]string, n)
	for i := range out {
		r := rng.Float64()
		acc := 0.0
		choice := categories[len(categories)-1]
		for j, p := range probs {
			acc += p
			if r < acc {
				choice = categories[j]
				break
			}
		}
		out[i] = choice
	}
	return out
}

// textColumn draws messages of roughly avgWords words (±30%).
func textColumn(rng *rand.Rand, n, avgWords int, vocab []string) []string {
	out := make([]string, n)
	for i := range out {
		words := int(float64(avgWords) * (0.7 + rng.Float64()*0.6))
		if words < 1 {
			words = 1
		}
		parts := make([]string, words)
		for j := range parts {
			parts[j] = vocab[rng.Intn(len(vocab))]
		}
		out[i] = strings.Join(parts, " ")
	}
	return out
}

// #endregion generators

package alerts

import "github.com/danielpatrickdp/driftwatch/internal/metrics"

// #region severity

// Severity levels for alert records.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// #endregion severity

// #region alert

// Alert is one alert record. Immutable once created; a pure function of
// the rule's inputs.
type Alert struct {
	Severity        string  `json:"severity"`
	Message         string  `json:"message"`
	MetricName      string  `json:"metric_name"`
	Value           float64 `json:"value"`
	Threshold       float64 `json:"threshold"`
	ConsecutiveRuns int     `json:"consecutive_runs,omitempty"`
}

// #endregion alert

// #region rule

// Rule evaluates one run's metric record and returns zero or more alerts.
// Rules are independent; only the persistence rule has side effects, and
// those are scoped per feature name.
type Rule interface {
	Evaluate(rec metrics.Record) []Alert
}

// #endregion rule

// #region engine

// Engine evaluates a set of rules against one run's combined metric
// record, concatenating outputs in rule-registration order.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over the given rules.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Evaluate runs every rule and returns all alerts in registration order.
func (e *Engine) Evaluate(rec metrics.Record) []Alert {
	var all []Alert
	for _, r := range e.rules {
		all = append(all, r.Evaluate(rec)...)
	}
	return all
}

// #endregion engine

package ai

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	// UnknownLabel is shown when a row has no usable label.
	UnknownLabel = "Unknown"
	// ZeroPercent is shown when a probability cannot be read.
	ZeroPercent = "0.0%"
)

// Results is a read-only view over a scoring response. None of its
// accessors fail; malformed or missing data yields the documented fallback.
type Results struct {
	rows [][]any
}

// NewResults wraps resp, which may be nil.
func NewResults(resp *ScoringResponse) *Results {
	preds := resp.PredictionSet()
	if len(preds) == 0 || preds[0].Values == nil {
		return &Results{rows: [][]any{}}
	}
	return &Results{rows: preds[0].Values}
}

// Rows returns the value rows of the first prediction block.
func (r *Results) Rows() [][]any {
	if r == nil {
		return [][]any{}
	}
	return r.rows
}

// Len is the number of result rows.
func (r *Results) Len() int { return len(r.Rows()) }

// Label returns the predicted label of row i, or UnknownLabel.
func (r *Results) Label(i int) string {
	row, ok := r.row(i)
	if !ok || len(row) == 0 {
		return UnknownLabel
	}
	if s, ok := row[0].(string); ok && s != "" {
		return s
	}
	return UnknownLabel
}

// ProbabilityText formats probability k of row i as "12.3%", or ZeroPercent.
func (r *Results) ProbabilityText(i, k int) string {
	p, ok := r.probability(i, k)
	if !ok {
		return ZeroPercent
	}
	return fmt.Sprintf("%.1f%%", p*100)
}

// ProbabilityPercent returns probability k of row i scaled to [0,100], or 0.
func (r *Results) ProbabilityPercent(i, k int) float64 {
	p, ok := r.probability(i, k)
	if !ok {
		return 0
	}
	return p * 100
}

// ProbabilityCount is the number of probabilities row i carries.
func (r *Results) ProbabilityCount(i int) int {
	row, ok := r.row(i)
	if !ok || len(row) < 2 {
		return 0
	}
	switch v := row[1].(type) {
	case []any:
		return len(v)
	case []float64:
		return len(v)
	}
	if _, ok := asFloat(row[1]); ok {
		return 1
	}
	return 0
}

func (r *Results) row(i int) ([]any, bool) {
	rows := r.Rows()
	if i < 0 || i >= len(rows) || rows[i] == nil {
		return nil, false
	}
	return rows[i], true
}

// probability reads cell [i][1][k]. A bare number in the probability slot
// (the flat backend) is treated as a one-element vector.
func (r *Results) probability(i, k int) (float64, bool) {
	row, ok := r.row(i)
	if !ok || len(row) < 2 || k < 0 {
		return 0, false
	}
	var cell any
	switch v := row[1].(type) {
	case []any:
		if k >= len(v) {
			return 0, false
		}
		cell = v[k]
	case []float64:
		if k >= len(v) {
			return 0, false
		}
		cell = v[k]
	default:
		if k != 0 {
			return 0, false
		}
		cell = v
	}
	p, ok := asFloat(cell)
	if !ok || math.IsNaN(p) || p < 0 || p > 1 {
		return 0, false
	}
	return p, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// LabelClass maps a label to its display class.
func LabelClass(label string) string {
	switch label {
	case "No Risk":
		return "no-risk"
	case "Low Risk":
		return "low-risk"
	case "Medium Risk":
		return "medium-risk"
	case "High Risk":
		return "high-risk"
	default:
		return "unknown-risk"
	}
}

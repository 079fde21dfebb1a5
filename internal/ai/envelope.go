package ai

import "github.com/KaramelBytes/riskcsv-cli/internal/analysis"

// ScoringRequest is the wire body posted to the scoring service.
type ScoringRequest struct {
	InputData []analysis.Envelope `json:"input_data"`
}

// NewScoringRequest wraps a single envelope.
func NewScoringRequest(env *analysis.Envelope) *ScoringRequest {
	return &ScoringRequest{InputData: []analysis.Envelope{*env}}
}

// Rows is the number of records in the first input block.
func (r *ScoringRequest) Rows() int {
	if r == nil || len(r.InputData) == 0 {
		return 0
	}
	return len(r.InputData[0].Values)
}

// Prediction holds one block of scored rows. Each value row is
// [label, probabilities]; cells are left untyped so that malformed
// responses still decode.
type Prediction struct {
	Fields []string `json:"fields"`
	Values [][]any  `json:"values"`
}

// ResultBlock is the "result" wrapper used by the watson-style backend.
type ResultBlock struct {
	Predictions []Prediction `json:"predictions"`
}

// ScoringResponse accepts both response shapes seen from the service:
// predictions nested under "result", or at the top level.
type ScoringResponse struct {
	Engine      string       `json:"engine"`
	OK          bool         `json:"ok"`
	Model       string       `json:"model,omitempty"`
	Result      *ResultBlock `json:"result,omitempty"`
	Predictions []Prediction `json:"predictions,omitempty"`
}

// PredictionSet returns whichever predictions list the response carries,
// preferring the wrapped form.
func (r *ScoringResponse) PredictionSet() []Prediction {
	if r == nil {
		return nil
	}
	if r.Result != nil && r.Result.Predictions != nil {
		return r.Result.Predictions
	}
	return r.Predictions
}

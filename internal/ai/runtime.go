package ai

import (
	"context"
	"encoding/json"
)

// Scorer sends one scoring request and waits for its single response.
// The HTTP client and the local simulator both implement it.
type Scorer interface {
	Score(ctx context.Context, req *ScoringRequest) (*ScoringResponse, error)
}

// ModelLister is implemented by scorers that can enumerate backend models.
type ModelLister interface {
	ListModels(ctx context.Context) (json.RawMessage, error)
}

// Engine identifiers used for selection.
const (
	EngineWatson   = "watson"
	EngineGPT      = "gpt"
	EngineLocal    = "local"
	EngineLocalGPT = "local-gpt"
)

// RiskLabels are the categories a scorer may return.
var RiskLabels = []string{"No Risk", "Low Risk", "Medium Risk", "High Risk"}

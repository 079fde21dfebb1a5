package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, s string) *ScoringResponse {
	t.Helper()
	var r ScoringResponse
	require.NoError(t, json.Unmarshal([]byte(s), &r))
	return &r
}

func TestResultsWrappedShape(t *testing.T) {
	res := NewResults(decodeResponse(t, `{"engine":"watson","ok":true,"result":{"predictions":[{"fields":["prediction","probability"],"values":[["No Risk",[0.2,0.8]],["High Risk",[0.95,0.05]]]}]}}`))
	require.Equal(t, 2, res.Len())
	assert.Equal(t, "No Risk", res.Label(0))
	assert.Equal(t, "20.0%", res.ProbabilityText(0, 0))
	assert.Equal(t, "80.0%", res.ProbabilityText(0, 1))
	assert.InDelta(t, 95.0, res.ProbabilityPercent(1, 0), 1e-9)
	assert.Equal(t, 2, res.ProbabilityCount(1))
}

func TestResultsFlatShape(t *testing.T) {
	res := NewResults(decodeResponse(t, `{"engine":"gpt","ok":true,"model":"m","predictions":[{"fields":["prediction","probability"],"values":[["Low Risk",0.42]]}]}`))
	require.Equal(t, 1, res.Len())
	assert.Equal(t, "Low Risk", res.Label(0))
	assert.Equal(t, "42.0%", res.ProbabilityText(0, 0))
	assert.Equal(t, ZeroPercent, res.ProbabilityText(0, 1))
}

func TestResultsMissingPredictions(t *testing.T) {
	for _, body := range []string{
		`{"engine":"x","ok":false}`,
		`{"engine":"x","ok":true,"result":{}}`,
		`{"predictions":[]}`,
		`{"predictions":[{"fields":[]}]}`,
	} {
		res := NewResults(decodeResponse(t, body))
		assert.NotNil(t, res.Rows(), body)
		assert.Empty(t, res.Rows(), body)
		assert.Equal(t, UnknownLabel, res.Label(0), body)
		assert.Equal(t, ZeroPercent, res.ProbabilityText(0, 0), body)
		assert.Zero(t, res.ProbabilityPercent(0, 0), body)
	}
	assert.Empty(t, NewResults(nil).Rows())
	var nilRes *Results
	assert.Equal(t, UnknownLabel, nilRes.Label(0))
}

func TestResultsMalformedCells(t *testing.T) {
	res := NewResults(decodeResponse(t, `{"predictions":[{"values":[[42,["x",1.5,-0.1,0.5]],[],null,["",[0.1]],["Medium Risk","oops"]]}]}`))
	require.Equal(t, 5, res.Len())

	assert.Equal(t, UnknownLabel, res.Label(0))
	assert.Equal(t, ZeroPercent, res.ProbabilityText(0, 0))
	assert.Equal(t, ZeroPercent, res.ProbabilityText(0, 1))
	assert.Equal(t, ZeroPercent, res.ProbabilityText(0, 2))
	assert.Equal(t, "50.0%", res.ProbabilityText(0, 3))
	assert.Equal(t, ZeroPercent, res.ProbabilityText(0, 4))
	assert.Equal(t, ZeroPercent, res.ProbabilityText(0, -1))

	assert.Equal(t, UnknownLabel, res.Label(1))
	assert.Equal(t, UnknownLabel, res.Label(2))
	assert.Equal(t, ZeroPercent, res.ProbabilityText(2, 0))
	assert.Equal(t, UnknownLabel, res.Label(3))
	assert.Equal(t, "Medium Risk", res.Label(4))
	assert.Zero(t, res.ProbabilityPercent(4, 0))
	assert.Equal(t, UnknownLabel, res.Label(-1))
	assert.Equal(t, UnknownLabel, res.Label(99))
}

func TestResultsPrefersWrappedPredictions(t *testing.T) {
	res := NewResults(decodeResponse(t, `{"result":{"predictions":[{"values":[["No Risk",[1]]]}]},"predictions":[{"values":[["High Risk",[0]]]}]}`))
	assert.Equal(t, "No Risk", res.Label(0))
	assert.Equal(t, "100.0%", res.ProbabilityText(0, 0))
}

func TestLabelClass(t *testing.T) {
	assert.Equal(t, "no-risk", LabelClass("No Risk"))
	assert.Equal(t, "low-risk", LabelClass("Low Risk"))
	assert.Equal(t, "medium-risk", LabelClass("Medium Risk"))
	assert.Equal(t, "high-risk", LabelClass("High Risk"))
	assert.Equal(t, "unknown-risk", LabelClass("no risk"))
	assert.Equal(t, "unknown-risk", LabelClass(""))
}

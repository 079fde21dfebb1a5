package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/riskcsv-cli/internal/analysis"
)

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest()))
	assert.NoError(t, ValidateRequest(requestWithRows(0)))
	assert.NoError(t, ValidateRequest(requestWithRows(analysis.MaxRequestRows)))

	assert.Error(t, ValidateRequest(nil))
	assert.Error(t, ValidateRequest(&ScoringRequest{}))
	assert.Error(t, ValidateRequest(requestWithRows(analysis.MaxRequestRows+1)))

	ragged := requestWithRows(1)
	ragged.InputData[0].Values[0] = append(ragged.InputData[0].Values[0], analysis.StringValue("extra"))
	assert.Error(t, ValidateRequest(ragged))
}

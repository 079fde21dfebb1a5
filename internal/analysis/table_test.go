package analysis_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/riskcsv-cli/internal/analysis"
	"github.com/KaramelBytes/riskcsv-cli/internal/parser"
)

func TestBuildEmpty(t *testing.T) {
	_, err := analysis.Build(nil)
	assert.True(t, errors.Is(err, analysis.ErrEmptyTable))
}

func TestBuildHeaderOnly(t *testing.T) {
	tbl, err := analysis.Build([][]string{{"Age", "Risk"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "Risk"}, tbl.Header)
	assert.Empty(t, tbl.Records)
}

func TestBuildOneRecordPerDataRow(t *testing.T) {
	rows := parser.Parse("Age,LoanAmount,Purpose\n30,1000,car\n45\n\n50,2500,tv,extra\n")
	tbl, err := analysis.Build(rows)
	require.NoError(t, err)
	require.Len(t, tbl.Records, 3)

	for _, rec := range tbl.Records {
		assert.Len(t, rec.Values(), len(tbl.Header))
	}
	assert.Equal(t, "car", tbl.Records[0].Get("Purpose"))
	assert.Equal(t, "45", tbl.Records[1].Get("Age"))
	assert.Equal(t, "", tbl.Records[1].Get("LoanAmount"))
	assert.Equal(t, []string{"50", "2500", "tv"}, tbl.Records[2].Values())
	assert.Equal(t, "", tbl.Records[0].Get("Missing"))
}

func TestRecordDuplicateHeaderReturnsFirst(t *testing.T) {
	tbl, err := analysis.Build([][]string{{"Age", "Age"}, {"30", "99"}})
	require.NoError(t, err)
	assert.Equal(t, "30", tbl.Records[0].Get("Age"))
}

func TestBuildCopiesHeader(t *testing.T) {
	rows := [][]string{{"a", "b"}, {"1", "2"}}
	tbl, err := analysis.Build(rows)
	require.NoError(t, err)
	rows[0][0] = "changed"
	assert.Equal(t, "a", tbl.Header[0])
	assert.True(t, tbl.HasColumn("b"))
	assert.False(t, tbl.HasColumn("Risk"))
}

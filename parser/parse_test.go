package parser_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerrors "sla-insights/errors"
	"sla-insights/models"
	"sla-insights/parser"
)

func TestParseRows(t *testing.T) {
	tests := map[string]struct {
		input        string
		expectedRows []models.Row
	}{
		"HeaderAndRows": {
			input: `Case_ID,Queue_Name,Queue_Depth
C1,Billing,40
C2,Support,12
`,
			expectedRows: []models.Row{
				{"Case_ID": "C1", "Queue_Name": "Billing", "Queue_Depth": "40"},
				{"Case_ID": "C2", "Queue_Name": "Support", "Queue_Depth": "12"},
			},
		},
		"BlankLinesAndWhitespace_AreIgnored": {
			input: `
Case_ID , Risk_Level

C1 ,  High

`,
			expectedRows: []models.Row{
				{"Case_ID": "C1", "Risk_Level": "High"},
			},
		},
		"ShortRow_IsPadded": {
			input: "Case_ID,Operational_Bottleneck,Recommended_Action\nC1,Staffing\n",
			expectedRows: []models.Row{
				{"Case_ID": "C1", "Operational_Bottleneck": "Staffing", "Recommended_Action": ""},
			},
		},
		"ByteOrderMark_IsStripped": {
			input: "\ufeffCase_ID,Risk_Level\nC9,Low\n",
			expectedRows: []models.Row{
				{"Case_ID": "C9", "Risk_Level": "Low"},
			},
		},
		"QuotedFieldWithComma": {
			input: "Case_ID,Recommended_Action\nC1,\"Add agents, then rebalance\"\n",
			expectedRows: []models.Row{
				{"Case_ID": "C1", "Recommended_Action": "Add agents, then rebalance"},
			},
		},
		"HeaderOnly": {
			input:        "Case_ID,Risk_Level\n",
			expectedRows: nil,
		},
		"EmptyInput": {
			input:        "",
			expectedRows: nil,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rows, err := parser.ParseRows(strings.NewReader(tc.input), parser.SourceState)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedRows, rows)
		})
	}
}

func TestParseRows_Errors(t *testing.T) {
	tests := map[string]struct {
		input       string
		expectedErr error
		line        int
	}{
		"UnterminatedQuote": {
			input: "Case_ID,Risk_Level\nC1,\"High\n",
			line:  2,
		},
		"DuplicateHeader": {
			input:       "Case_ID,Risk_Level,Case_ID\nC1,High,C2\n",
			expectedErr: customerrors.ErrDuplicateHeader,
			line:        1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parser.ParseRows(strings.NewReader(tc.input), parser.SourceInsight)
			require.Error(t, err)

			var parseErr *customerrors.ParseError
			require.True(t, errors.As(err, &parseErr), "expected ParseError, got %T", err)
			assert.Equal(t, parser.SourceInsight, parseErr.Source)
			assert.Equal(t, tc.line, parseErr.Line)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			}
		})
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.csv")
	insightPath := filepath.Join(dir, "insight.csv")
	require.NoError(t, os.WriteFile(statePath, []byte("Case_ID,Queue_Name\nC1,Billing\nC2,Claims\n"), 0o600))
	require.NoError(t, os.WriteFile(insightPath, []byte("Case_ID,Risk_Level\nC2,High\n"), 0o600))

	state, insight, err := parser.LoadFiles(context.Background(), statePath, insightPath)
	require.NoError(t, err)
	assert.Len(t, state, 2)
	assert.Equal(t, []models.Row{{"Case_ID": "C2", "Risk_Level": "High"}}, insight)
}

func TestLoadFiles_MissingFile(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.csv")
	require.NoError(t, os.WriteFile(statePath, []byte("Case_ID\nC1\n"), 0o600))

	_, _, err := parser.LoadFiles(context.Background(), statePath, filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

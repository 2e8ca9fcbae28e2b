package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sla-insights/models"
)

func TestCaseJSON_UnparsedTimestamp(t *testing.T) {
	action := "Escalate"
	c := models.Case{CaseID: "C7", Timestamp: "yesterday", RiskLevel: models.RiskHigh, RecommendedAction: &action}

	b, err := json.Marshal(c)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.Equal(t, "C7", fields["case_id"])
	assert.Equal(t, "yesterday", fields["timestamp"])
	assert.Equal(t, "High", fields["risk_level"])
	assert.Equal(t, "Escalate", fields["recommended_action"])
	assert.NotContains(t, fields, "arrived_at", "zero arrival time is omitted")
	assert.Contains(t, fields, "operational_bottleneck")
	assert.Nil(t, fields["operational_bottleneck"])
}

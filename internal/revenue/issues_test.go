package revenue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bess-analytics/internal/model"
)

func TestDetectSOCViolation(t *testing.T) {
	table := testTable()
	// BATCAVE is 100 MW, so the swing bound is 2 * 100 * 24 * 100 = $480,000.
	daily := []model.DailyRevenue{
		{ResourceID: "BATCAVE_BES1", Date: day(2024, 6, 1), StreamRevenue: model.StreamRevenue{DAMDischarge: 1000}},
		{ResourceID: "BATCAVE_BES1", Date: day(2024, 6, 2), StreamRevenue: model.StreamRevenue{DAMDischarge: 600000}},
	}

	issues := DetectIssues(daily, table)
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueSOCViolation, issues[0].Kind)
	assert.Equal(t, day(2024, 6, 2), issues[0].Date)
}

func TestDetectASFailure(t *testing.T) {
	daily := []model.DailyRevenue{
		{ResourceID: "BATCAVE_BES1", Date: day(2024, 6, 1), StreamRevenue: model.StreamRevenue{DAMDischarge: 1000, RegUp: 500}},
		{ResourceID: "BATCAVE_BES1", Date: day(2024, 6, 2), StreamRevenue: model.StreamRevenue{DAMDischarge: 400}},
	}

	issues := DetectIssues(daily, testTable())
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueASFailure, issues[0].Kind)
}

func TestNoIssueAcrossResources(t *testing.T) {
	// Consecutive records from different resources never compare.
	daily := []model.DailyRevenue{
		{ResourceID: "ALVIN_BES1", Date: day(2024, 6, 1), StreamRevenue: model.StreamRevenue{DAMDischarge: 1000, RegUp: 500}},
		{ResourceID: "BATCAVE_BES1", Date: day(2024, 6, 2), StreamRevenue: model.StreamRevenue{DAMDischarge: 900000}},
	}
	assert.Empty(t, DetectIssues(daily, testTable()))
}

func TestNoIssueWithinBounds(t *testing.T) {
	daily := []model.DailyRevenue{
		{ResourceID: "BATCAVE_BES1", Date: day(2024, 6, 1), StreamRevenue: model.StreamRevenue{DAMDischarge: 1000, RegUp: 500}},
		{ResourceID: "BATCAVE_BES1", Date: day(2024, 6, 2), StreamRevenue: model.StreamRevenue{DAMDischarge: 1200, RegUp: 400}},
	}
	assert.Empty(t, DetectIssues(daily, testTable()))
}

package revenue

import (
	"bess-analytics/internal/mapping"
	"bess-analytics/internal/model"
)

// Anomaly heuristic constants. These flag days worth a human look; they are
// advisory signals, not settlement facts.
const (
	// socSwingPriceUSD caps a plausible $/MWh for the energy-swing bound.
	socSwingPriceUSD = 100.0
	// socSwingMultiple scales the 24h x capacity x price bound.
	socSwingMultiple = 2.0
	// asFailureDropRatio: day N+1 total under half of day N total.
	asFailureDropRatio = 0.5
)

// DetectIssues scans date-ordered daily records per resource and flags
// day-over-day anomalies:
//
//   - SOCViolation: the net energy revenue swing between consecutive days
//     exceeds 2 x capacity x 24h x $100/MWh, implying more throughput than
//     the battery can physically hold.
//   - ASFailure: a day with AS revenue followed by a day with none across
//     all products and less than half the prior day's total revenue.
//
// The daily slice must already be sorted by (resource, date), as returned
// by Accumulator.Daily.
func DetectIssues(daily []model.DailyRevenue, table *mapping.Table) []model.OperationalIssue {
	var issues []model.OperationalIssue

	for i := 1; i < len(daily); i++ {
		prev, curr := daily[i-1], daily[i]
		if prev.ResourceID != curr.ResourceID {
			continue
		}

		if res, ok := table.Get(curr.ResourceID); ok && res.CapacityMW > 0 {
			swing := abs(curr.EnergyRevenue() - prev.EnergyRevenue())
			bound := socSwingMultiple * res.CapacityMW * 24.0 * socSwingPriceUSD
			if swing > bound {
				issues = append(issues, model.OperationalIssue{
					ResourceID: curr.ResourceID,
					Date:       curr.Date,
					Kind:       model.IssueSOCViolation,
				})
			}
		}

		if prev.ASRevenue() > 0 && curr.ASRevenue() == 0 &&
			curr.TotalRevenue() < prev.TotalRevenue()*asFailureDropRatio {
			issues = append(issues, model.OperationalIssue{
				ResourceID: curr.ResourceID,
				Date:       curr.Date,
				Kind:       model.IssueASFailure,
			})
		}
	}
	return issues
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"bess-analytics/internal/model"
	"bess-analytics/internal/tbx"
)

// LeaderboardEntry ranks one resource-year by normalized revenue.
type LeaderboardEntry struct {
	ResourceID    string  `json:"resource_id"`
	Year          int     `json:"year"`
	CapacityMW    float64 `json:"capacity_mw"`
	TotalRevenue  float64 `json:"total_revenue"`
	RevenuePerMW  float64 `json:"revenue_per_mw"`
	RevenuePerMWh float64 `json:"revenue_per_mwh"`
}

// Leaderboard ranks annual records descending by $/MW.
func Leaderboard(annual []model.AnnualRevenue) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(annual))
	for _, a := range annual {
		out = append(out, LeaderboardEntry{
			ResourceID:    a.ResourceID,
			Year:          a.Year,
			CapacityMW:    a.CapacityMW,
			TotalRevenue:  a.TotalRevenue(),
			RevenuePerMW:  a.RevenuePerMW(),
			RevenuePerMWh: a.RevenuePerMWh(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RevenuePerMW > out[j].RevenuePerMW
	})
	return out
}

// RenderLeaderboard renders the fleet ranking with summary statistics.
func RenderLeaderboard(entries []LeaderboardEntry, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %-30s %-6s %12s %14s %12s\n",
		"rank", "resource", "year", "$/MW", "total $", "MW")
	fmt.Fprintln(&b, strings.Repeat("-", 84))

	perMW := make([]float64, 0, len(entries))
	totalRevenue, totalCapacity := 0.0, 0.0
	for i, e := range entries {
		perMW = append(perMW, e.RevenuePerMW)
		totalRevenue += e.TotalRevenue
		totalCapacity += e.CapacityMW
		if limit > 0 && i >= limit {
			continue
		}
		fmt.Fprintf(&b, "%-4d %-30s %-6d %12.0f %14.0f %12.1f\n",
			i+1, e.ResourceID, e.Year, e.RevenuePerMW, e.TotalRevenue, e.CapacityMW)
	}

	if len(perMW) > 0 {
		mean, _ := stats.Mean(perMW)
		median, _ := stats.Median(perMW)
		fmt.Fprintf(&b, "\nfleet: resources=%d capacity=%.1f MW revenue=$%.0f mean=$%.0f/MW median=$%.0f/MW\n",
			len(entries), totalCapacity, totalRevenue, mean, median)
	}
	return b.String()
}

// RenderTbxSummary renders per-resource TBX totals across the run window.
func RenderTbxSummary(results []tbx.DailyResult) string {
	type totals struct {
		days                   int
		da, rt, blended, best float64
	}
	byResource := make(map[string]*totals)
	for _, r := range results {
		t, ok := byResource[r.ResourceID]
		if !ok {
			t = &totals{}
			byResource[r.ResourceID] = t
		}
		t.days++
		t.da += r.RevenueDA
		t.rt += r.RevenueRT
		t.blended += r.RevenueBlended
		t.best += r.BestRevenue()
	}

	names := make([]string, 0, len(byResource))
	for name := range byResource {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%-30s %-6s %12s %12s %12s %12s\n",
		"resource", "days", "DA $", "RT $", "blended $", "best $")
	fmt.Fprintln(&b, strings.Repeat("-", 90))
	for _, name := range names {
		t := byResource[name]
		fmt.Fprintf(&b, "%-30s %-6d %12.2f %12.2f %12.2f %12.2f\n",
			name, t.days, t.da, t.rt, t.blended, t.best)
	}
	return b.String()
}

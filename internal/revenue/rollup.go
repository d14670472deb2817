package revenue

import (
	"sort"
	"time"

	"bess-analytics/internal/mapping"
	"bess-analytics/internal/model"
)

// assumedDurationHours normalizes $/MWh when a resource's true duration is
// unknown. Two hours is the fleet-typical assumption.
const assumedDurationHours = 2.0

// Monthly sums daily records per (resource, year, month).
func Monthly(daily []model.DailyRevenue, table *mapping.Table) []model.MonthlyRevenue {
	type monthKey struct {
		resource string
		year     int
		month    time.Month
	}
	agg := make(map[monthKey]*model.StreamRevenue)
	for _, d := range daily {
		k := monthKey{resource: d.ResourceID, year: d.Date.Year(), month: d.Date.Month()}
		s, ok := agg[k]
		if !ok {
			s = &model.StreamRevenue{}
			agg[k] = s
		}
		s.Add(d.StreamRevenue)
	}

	out := make([]model.MonthlyRevenue, 0, len(agg))
	for k, s := range agg {
		m := model.MonthlyRevenue{
			ResourceID:    k.resource,
			Year:          k.year,
			Month:         k.month,
			StreamRevenue: *s,
		}
		if res, ok := table.Get(k.resource); ok {
			m.CapacityMW = res.CapacityMW
		}
		out = append(out, m)
	}
	sortMonthly(out)
	return out
}

// Annual sums monthly records per (resource, year) and attaches the
// normalization parameters for $/MW and $/MWh metrics.
func Annual(monthly []model.MonthlyRevenue, table *mapping.Table) []model.AnnualRevenue {
	type yearKey struct {
		resource string
		year     int
	}
	agg := make(map[yearKey]*model.StreamRevenue)
	for _, m := range monthly {
		k := yearKey{resource: m.ResourceID, year: m.Year}
		s, ok := agg[k]
		if !ok {
			s = &model.StreamRevenue{}
			agg[k] = s
		}
		s.Add(m.StreamRevenue)
	}

	out := make([]model.AnnualRevenue, 0, len(agg))
	for k, s := range agg {
		a := model.AnnualRevenue{
			ResourceID:    k.resource,
			Year:          k.year,
			DurationHours: assumedDurationHours,
			StreamRevenue: *s,
		}
		if res, ok := table.Get(k.resource); ok {
			a.CapacityMW = res.CapacityMW
			if res.DurationHours > 0 {
				a.DurationHours = res.DurationHours
			}
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ResourceID != out[j].ResourceID {
			return out[i].ResourceID < out[j].ResourceID
		}
		return out[i].Year < out[j].Year
	})
	return out
}

func sortMonthly(out []model.MonthlyRevenue) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].ResourceID != out[j].ResourceID {
			return out[i].ResourceID < out[j].ResourceID
		}
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
}

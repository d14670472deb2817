// Package runner orchestrates per-resource valuation and reconciliation.
// Resources are independent, so they fan out across workers; each worker
// owns its partial results and diagnostics, merged once at the end.
package runner

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bess-analytics/internal/blended"
	"bess-analytics/internal/diag"
	"bess-analytics/internal/mapping"
	"bess-analytics/internal/model"
	"bess-analytics/internal/revenue"
	"bess-analytics/internal/tbx"
)

// Valuation configures one TBX/blended run.
type Valuation struct {
	Profile model.BatteryProfile
	Blended bool
	Start   time.Time // zero = unbounded
	End     time.Time // zero = unbounded
	Workers int       // <=0 = GOMAXPROCS
}

func (v Valuation) workers() int {
	if v.Workers > 0 {
		return v.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (v Valuation) inRange(day time.Time) bool {
	if !v.Start.IsZero() && day.Before(model.DayOf(v.Start)) {
		return false
	}
	if !v.End.IsZero() && day.After(model.DayOf(v.End)) {
		return false
	}
	return true
}

// RunTBX values every mapped resource over the price series: per-market TBX
// per day, plus the blended optimizer over the resource's full series when
// requested. Results are ordered by (resource, date).
func RunTBX(ctx context.Context, prices []model.PricePoint, table *mapping.Table, v Valuation) ([]tbx.DailyResult, *diag.Counters, error) {
	bySettlementPoint := make(map[string][]model.PricePoint)
	for _, p := range prices {
		bySettlementPoint[p.SettlementPoint] = append(bySettlementPoint[p.SettlementPoint], p)
	}

	resources := table.Resources()
	perResource := make([][]tbx.DailyResult, len(resources))
	perDiag := make([]*diag.Counters, len(resources))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(v.workers())
	for i, res := range resources {
		i, res := i, res
		g.Go(func() error {
			c := diag.New()
			perResource[i] = valueResource(res, bySettlementPoint[res.SettlementPoint], v, c)
			perDiag[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	merged := diag.New()
	var results []tbx.DailyResult
	for i := range resources {
		results = append(results, perResource[i]...)
		merged.Merge(perDiag[i])
	}
	return results, merged, nil
}

func valueResource(res mapping.Resource, prices []model.PricePoint, v Valuation, c *diag.Counters) []tbx.DailyResult {
	if len(prices) == 0 {
		return nil
	}

	byDay := make(map[time.Time][]model.PricePoint)
	var daSeries, rtSeries []model.PricePoint
	for _, p := range prices {
		day := p.Day()
		if !v.inRange(day) {
			continue
		}
		byDay[day] = append(byDay[day], p)
		switch p.Market {
		case model.MarketDayAhead:
			daSeries = append(daSeries, p)
		case model.MarketRealTime5Min, model.MarketRealTime15Min:
			rtSeries = append(rtSeries, p)
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	selector := tbx.NewSelector(v.Profile)
	resultByDay := make(map[time.Time]int, len(days))
	results := make([]tbx.DailyResult, 0, len(days))
	for _, day := range days {
		r := selector.EvaluateDay(byDay[day], res.Name, res.SettlementPoint, day)
		resultByDay[day] = len(results)
		results = append(results, r)
	}

	if v.Blended && len(daSeries)+len(rtSeries) > 0 {
		opt := blended.NewOptimizer(v.Profile)
		for _, w := range opt.Optimize(daSeries, rtSeries) {
			day := model.DayOf(w.ChargeStart)
			idx, ok := resultByDay[day]
			if !ok {
				continue
			}
			results[idx].BlendedWindows = append(results[idx].BlendedWindows, w)
			results[idx].RevenueBlended += w.Revenue
		}
	}

	for i := range results {
		if results[i].RevenueDA == 0 && results[i].RevenueRT == 0 && len(results[i].BlendedWindows) == 0 {
			c.SkippedDays++
		}
	}
	return results
}

// Reconcile shards award and dispatch streams across workers, each building
// a partial accumulator, and merges the partials. Merge order does not
// affect the totals beyond floating-point rounding.
func Reconcile(ctx context.Context, rec *revenue.Reconciler, awards []model.AwardRecord, dispatch []model.DispatchInterval, workers int) (*revenue.Accumulator, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	total := revenue.NewAccumulator()

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, chunk := range shard(awards, workers) {
		chunk := chunk
		g.Go(func() error {
			acc := revenue.NewAccumulator()
			for _, a := range chunk {
				rec.ApplyAward(acc, a)
			}
			mu.Lock()
			total.Merge(acc)
			mu.Unlock()
			return nil
		})
	}
	for _, chunk := range shard(dispatch, workers) {
		chunk := chunk
		g.Go(func() error {
			acc := revenue.NewAccumulator()
			for _, d := range chunk {
				rec.ApplyDispatch(acc, d)
			}
			mu.Lock()
			total.Merge(acc)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return total, nil
}

func shard[T any](items []T, n int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	size := (len(items) + n - 1) / n
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}

package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bess-analytics/internal/mapping"
	"bess-analytics/internal/model"
	"bess-analytics/internal/pricing"
	"bess-analytics/internal/revenue"
)

var testDay = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func fleet() *mapping.Table {
	t := mapping.NewTable()
	t.Add(mapping.Resource{Name: "ALPHA_BES1", SettlementPoint: "RN_ALPHA", CapacityMW: 100})
	t.Add(mapping.Resource{Name: "BETA_BES1", SettlementPoint: "RN_BETA", CapacityMW: 100})
	return t
}

func spikyDayPrices(day time.Time, sp string) []model.PricePoint {
	out := make([]model.PricePoint, 0, 24)
	for h := 0; h < 24; h++ {
		price := 50.0
		switch h {
		case 2, 3:
			price = 20
		case 18, 19:
			price = 100
		}
		out = append(out, model.PricePoint{
			Timestamp:       day.Add(time.Duration(h) * time.Hour),
			SettlementPoint: sp,
			Price:           price,
			Market:          model.MarketDayAhead,
		})
	}
	return out
}

func TestRunTBX(t *testing.T) {
	var prices []model.PricePoint
	for d := 0; d < 2; d++ {
		day := testDay.AddDate(0, 0, d)
		prices = append(prices, spikyDayPrices(day, "RN_ALPHA")...)
		prices = append(prices, spikyDayPrices(day, "RN_BETA")...)
	}

	v := Valuation{Profile: model.NewTB2(100), Workers: 2}
	results, counters, err := RunTBX(context.Background(), prices, fleet(), v)
	require.NoError(t, err)
	require.Len(t, results, 4)

	// Ordered by (resource, date).
	assert.Equal(t, "ALPHA_BES1", results[0].ResourceID)
	assert.Equal(t, "ALPHA_BES1", results[1].ResourceID)
	assert.Equal(t, "BETA_BES1", results[2].ResourceID)
	assert.True(t, results[0].Date.Before(results[1].Date))

	for _, r := range results {
		assert.InDelta(t, 13600.0, r.RevenueDA, 1e-9)
	}
	assert.Equal(t, int64(0), counters.SkippedDays)
}

func TestRunTBXDateRange(t *testing.T) {
	var prices []model.PricePoint
	for d := 0; d < 3; d++ {
		prices = append(prices, spikyDayPrices(testDay.AddDate(0, 0, d), "RN_ALPHA")...)
	}

	v := Valuation{
		Profile: model.NewTB2(100),
		Start:   testDay.AddDate(0, 0, 1),
		End:     testDay.AddDate(0, 0, 1),
	}
	results, _, err := RunTBX(context.Background(), prices, fleet(), v)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, testDay.AddDate(0, 0, 1), results[0].Date)
}

func TestRunTBXBlendedAttribution(t *testing.T) {
	prices := spikyDayPrices(testDay, "RN_ALPHA")

	v := Valuation{Profile: model.NewTB2(100), Blended: true}
	results, _, err := RunTBX(context.Background(), prices, fleet(), v)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Greater(t, r.RevenueBlended, 0.0)
	assert.NotEmpty(t, r.BlendedWindows)
	for _, w := range r.BlendedWindows {
		assert.Equal(t, testDay, model.DayOf(w.ChargeStart))
	}
}

func TestRunTBXCountsSkippedDays(t *testing.T) {
	// Flat prices: the spread threshold skips the day everywhere.
	var prices []model.PricePoint
	for h := 0; h < 24; h++ {
		prices = append(prices, model.PricePoint{
			Timestamp:       testDay.Add(time.Duration(h) * time.Hour),
			SettlementPoint: "RN_ALPHA",
			Price:           50,
			Market:          model.MarketDayAhead,
		})
	}

	v := Valuation{Profile: model.NewTB2(100)}
	results, counters, err := RunTBX(context.Background(), prices, fleet(), v)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].RevenueDA)
	assert.Equal(t, int64(1), counters.SkippedDays)
}

func TestReconcileMatchesSequential(t *testing.T) {
	idx, err := pricing.Build([]model.PricePoint{
		{Timestamp: testDay.Add(10 * time.Hour), SettlementPoint: "RN_ALPHA", Price: 40, Market: model.MarketRealTime15Min},
	}, "")
	require.NoError(t, err)
	rec, err := revenue.New(idx, fleet(), model.MarketRealTime15Min)
	require.NoError(t, err)

	var awards []model.AwardRecord
	var dispatch []model.DispatchInterval
	for i := 0; i < 50; i++ {
		awards = append(awards, model.AwardRecord{
			ResourceID: "ALPHA_BES1", Date: testDay.AddDate(0, 0, i%5),
			AwardMW: float64(i - 25), ClearingPrice: 30, Stream: model.StreamDAMEnergy,
		})
		dispatch = append(dispatch, model.DispatchInterval{
			ResourceID: "ALPHA_BES1",
			Timestamp:  testDay.Add(10*time.Hour + time.Duration(i%4)*time.Minute),
			SignedMW:   float64(i % 7),
		})
	}

	sequential := revenue.NewAccumulator()
	for _, a := range awards {
		rec.ApplyAward(sequential, a)
	}
	for _, d := range dispatch {
		rec.ApplyDispatch(sequential, d)
	}

	parallel, err := Reconcile(context.Background(), rec, awards, dispatch, 4)
	require.NoError(t, err)

	want := sequential.Daily()
	got := parallel.Daily()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ResourceID, got[i].ResourceID)
		assert.Equal(t, want[i].Date, got[i].Date)
		assert.InDelta(t, want[i].TotalRevenue(), got[i].TotalRevenue(), 1e-6)
	}
}

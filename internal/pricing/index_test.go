package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bess-analytics/internal/model"
)

func ts(hour, minute int) time.Time {
	return time.Date(2024, 6, 1, hour, minute, 0, 0, time.UTC)
}

func samplePoints() []model.PricePoint {
	return []model.PricePoint{
		{Timestamp: ts(10, 0), SettlementPoint: "RN_ALPHA", Price: 42.5, Market: model.MarketRealTime15Min},
		{Timestamp: ts(10, 15), SettlementPoint: "RN_ALPHA", Price: 48.0, Market: model.MarketRealTime15Min},
		{Timestamp: ts(10, 0), SettlementPoint: "HB_HOUSTON", Price: 40.0, Market: model.MarketRealTime15Min},
		{Timestamp: ts(10, 0), SettlementPoint: "RN_ALPHA", Price: 35.0, Market: model.MarketDayAhead},
	}
}

func TestBuildAndLookup(t *testing.T) {
	idx, err := Build(samplePoints(), "HB_HOUSTON")
	require.NoError(t, err)
	assert.Equal(t, 4, idx.Len())

	price, viaHub, ok := idx.Lookup("RN_ALPHA", ts(10, 0), model.MarketRealTime15Min)
	require.True(t, ok)
	assert.False(t, viaHub)
	assert.Equal(t, 42.5, price)

	// Timestamps inside the interval resolve to the bucket start.
	price, _, ok = idx.Lookup("RN_ALPHA", ts(10, 7), model.MarketRealTime15Min)
	require.True(t, ok)
	assert.Equal(t, 42.5, price)

	// Same location and time, different market, different bucket.
	price, _, ok = idx.Lookup("RN_ALPHA", ts(10, 40), model.MarketDayAhead)
	require.True(t, ok)
	assert.Equal(t, 35.0, price)
}

func TestLookupHubFallback(t *testing.T) {
	idx, err := Build(samplePoints(), "HB_HOUSTON")
	require.NoError(t, err)

	price, viaHub, ok := idx.Lookup("RN_MISSING", ts(10, 0), model.MarketRealTime15Min)
	require.True(t, ok)
	assert.True(t, viaHub)
	assert.Equal(t, 40.0, price)

	// Hub has nothing either: absent, not zero.
	_, _, ok = idx.Lookup("RN_MISSING", ts(11, 0), model.MarketRealTime15Min)
	assert.False(t, ok)
}

func TestBuildRejectsEmpty(t *testing.T) {
	_, err := Build(nil, "HB_HOUSTON")
	assert.ErrorIs(t, err, ErrNoPrices)
}

func TestBuildLaterRecordWins(t *testing.T) {
	points := []model.PricePoint{
		{Timestamp: ts(10, 0), SettlementPoint: "RN_ALPHA", Price: 10, Market: model.MarketDayAhead},
		{Timestamp: ts(10, 0), SettlementPoint: "RN_ALPHA", Price: 20, Market: model.MarketDayAhead},
	}
	idx, err := Build(points, "")
	require.NoError(t, err)
	price, _, ok := idx.Lookup("RN_ALPHA", ts(10, 0), model.MarketDayAhead)
	require.True(t, ok)
	assert.Equal(t, 20.0, price)
}

func TestBuildParallelMatchesBuild(t *testing.T) {
	points := samplePoints()
	sequential, err := Build(points, "HB_HOUSTON")
	require.NoError(t, err)

	parallel, err := BuildParallel(context.Background(),
		[][]model.PricePoint{points[:2], points[2:]}, "HB_HOUSTON")
	require.NoError(t, err)

	assert.Equal(t, sequential.Len(), parallel.Len())
	for _, p := range points {
		want, _, ok1 := sequential.Lookup(p.SettlementPoint, p.Timestamp, p.Market)
		got, _, ok2 := parallel.Lookup(p.SettlementPoint, p.Timestamp, p.Market)
		assert.Equal(t, ok1, ok2)
		assert.Equal(t, want, got)
	}
}

// Package pricing provides the read-only price lookup used by every
// downstream component. An Index is built once per run and is safe for
// concurrent readers afterwards.
package pricing

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"bess-analytics/internal/model"
)

// bucketKey addresses one settlement interval at one location in one market.
// Start is the bucket's UTC start, floored to the market's interval width.
type bucketKey struct {
	settlementPoint string
	market          model.Market
	start           int64 // unix seconds
}

// Index is an immutable (settlement point, time bucket, market) -> price map
// with a configured fallback hub. Lookups that miss the requested location
// retry once against the hub before reporting absence.
type Index struct {
	prices      map[bucketKey]float64
	fallbackHub string
}

// ErrNoPrices is returned when an index would be built from zero records.
var ErrNoPrices = errors.New("no price records to index")

// Build groups price points into interval buckets. Later records overwrite
// earlier ones within the same bucket (re-published prices supersede).
func Build(points []model.PricePoint, fallbackHub string) (*Index, error) {
	if len(points) == 0 {
		return nil, ErrNoPrices
	}
	idx := &Index{
		prices:      make(map[bucketKey]float64, len(points)),
		fallbackHub: fallbackHub,
	}
	idx.addAll(points)
	return idx, nil
}

// BuildParallel builds per-shard partial maps concurrently, then merges them
// into one index. The merge is associative, so shard order is irrelevant.
// The index must not be read until BuildParallel returns.
func BuildParallel(ctx context.Context, shards [][]model.PricePoint, fallbackHub string) (*Index, error) {
	total := 0
	for _, s := range shards {
		total += len(s)
	}
	if total == 0 {
		return nil, ErrNoPrices
	}

	partials := make([]map[bucketKey]float64, len(shards))
	g, _ := errgroup.WithContext(ctx)
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			m := make(map[bucketKey]float64, len(shard))
			for _, p := range shard {
				m[keyFor(p.SettlementPoint, p.Timestamp, p.Market)] = p.Price
			}
			partials[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := &Index{
		prices:      make(map[bucketKey]float64, total),
		fallbackHub: fallbackHub,
	}
	for _, m := range partials {
		for k, v := range m {
			idx.prices[k] = v
		}
	}
	return idx, nil
}

func (ix *Index) addAll(points []model.PricePoint) {
	for _, p := range points {
		ix.prices[keyFor(p.SettlementPoint, p.Timestamp, p.Market)] = p.Price
	}
}

func keyFor(sp string, ts time.Time, market model.Market) bucketKey {
	return bucketKey{
		settlementPoint: sp,
		market:          market,
		start:           ts.UTC().Truncate(market.IntervalDuration()).Unix(),
	}
}

// Lookup resolves the price covering ts at the given settlement point.
// On a miss it retries once against the fallback hub. The second return
// reports whether the hub satisfied the lookup; the third reports presence.
// Callers must treat an absent price as "no contribution", never as zero.
func (ix *Index) Lookup(settlementPoint string, ts time.Time, market model.Market) (price float64, viaHub bool, ok bool) {
	if p, found := ix.prices[keyFor(settlementPoint, ts, market)]; found {
		return p, false, true
	}
	if ix.fallbackHub != "" && ix.fallbackHub != settlementPoint {
		if p, found := ix.prices[keyFor(ix.fallbackHub, ts, market)]; found {
			return p, true, true
		}
	}
	return 0, false, false
}

// Len reports how many priced buckets the index holds.
func (ix *Index) Len() int { return len(ix.prices) }

// FallbackHub returns the configured hub location id.
func (ix *Index) FallbackHub() string { return ix.fallbackHub }

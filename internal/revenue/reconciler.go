// Package revenue attributes actual award and dispatch records to revenue
// streams and rolls them up daily -> monthly -> annual. Attribution is pure
// addition on (resource, date) keys, so partial accumulators built by
// independent workers merge in any order.
package revenue

import (
	"fmt"
	"sort"
	"time"

	"bess-analytics/internal/diag"
	"bess-analytics/internal/mapping"
	"bess-analytics/internal/model"
	"bess-analytics/internal/pricing"
)

// Reconciler holds the read-only inputs shared by every worker: the price
// index, the resource mapping, and the RT feed granularity.
type Reconciler struct {
	index       *pricing.Index
	table       *mapping.Table
	granularity model.Market
}

func New(index *pricing.Index, table *mapping.Table, rtGranularity model.Market) (*Reconciler, error) {
	if index == nil {
		return nil, fmt.Errorf("price index is nil")
	}
	if table == nil {
		return nil, fmt.Errorf("resource mapping is nil")
	}
	switch rtGranularity {
	case model.MarketRealTime5Min, model.MarketRealTime15Min:
	default:
		return nil, fmt.Errorf("unsupported RT granularity %q", rtGranularity)
	}
	return &Reconciler{index: index, table: table, granularity: rtGranularity}, nil
}

type dayKey struct {
	resource string
	day      int64 // unix seconds of UTC midnight
}

// Accumulator is one worker's partial (resource, date)-keyed revenue map
// plus its skip counters. Not safe for concurrent use; build one per worker
// and Merge at the end.
type Accumulator struct {
	streams map[dayKey]*model.StreamRevenue
	Diag    *diag.Counters
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		streams: make(map[dayKey]*model.StreamRevenue),
		Diag:    diag.New(),
	}
}

func (a *Accumulator) at(resource string, day time.Time) *model.StreamRevenue {
	k := dayKey{resource: resource, day: day.Unix()}
	s, ok := a.streams[k]
	if !ok {
		s = &model.StreamRevenue{}
		a.streams[k] = s
	}
	return s
}

// Merge folds another partial into a. Addition order does not change the
// result beyond floating-point rounding.
func (a *Accumulator) Merge(o *Accumulator) {
	if o == nil {
		return
	}
	for k, s := range o.streams {
		dst, ok := a.streams[k]
		if !ok {
			dst = &model.StreamRevenue{}
			a.streams[k] = dst
		}
		dst.Add(*s)
	}
	a.Diag.Merge(o.Diag)
}

// ApplyAward attributes one cleared award.
//
// DAM energy settles at the cleared price with no efficiency adjustment: a
// negative award is a charging cost, a positive one discharging revenue.
// Ancillary capacity products pay award x clearing price, and only count
// when both sides are strictly positive.
func (r *Reconciler) ApplyAward(acc *Accumulator, award model.AwardRecord) {
	day := model.DayOf(award.Date)
	switch award.Stream {
	case model.StreamDAMEnergy:
		settled := award.AwardMW * award.ClearingPrice
		s := acc.at(award.ResourceID, day)
		if award.AwardMW < 0 {
			s.DAMCharge += settled
		} else if award.AwardMW > 0 {
			s.DAMDischarge += settled
		}
	case model.StreamRegUp, model.StreamRegDown, model.StreamRRS, model.StreamECRS, model.StreamNonSpin:
		if award.AwardMW <= 0 || award.ClearingPrice <= 0 {
			return
		}
		s := acc.at(award.ResourceID, day)
		settled := award.AwardMW * award.ClearingPrice
		switch award.Stream {
		case model.StreamRegUp:
			s.RegUp += settled
		case model.StreamRegDown:
			s.RegDown += settled
		case model.StreamRRS:
			s.RRS += settled
		case model.StreamECRS:
			s.ECRS += settled
		case model.StreamNonSpin:
			s.NonSpin += settled
		}
	default:
		acc.Diag.CountMalformed("awards")
	}
}

// ApplyDispatch attributes one telemetered RT interval. Intervals whose
// settlement point has no indexed price contribute nothing at all; imputing
// a zero price would record a phantom trade.
func (r *Reconciler) ApplyDispatch(acc *Accumulator, d model.DispatchInterval) {
	if d.SignedMW == 0 {
		return
	}
	sp, ok := r.table.SettlementPoint(d.ResourceID)
	if !ok {
		acc.Diag.UnmappedResources++
		return
	}
	price, viaHub, ok := r.index.Lookup(sp, d.Timestamp, r.granularity)
	if !ok {
		acc.Diag.MissingPrices++
		return
	}
	if viaHub {
		acc.Diag.HubFallbacks++
	}
	settled := d.SignedMW * price / float64(r.granularity.IntervalsPerHour())
	acc.at(d.ResourceID, model.DayOf(d.Timestamp)).RTEnergy += settled
}

// Daily materializes the accumulator as sorted daily revenue records.
func (a *Accumulator) Daily() []model.DailyRevenue {
	out := make([]model.DailyRevenue, 0, len(a.streams))
	for k, s := range a.streams {
		out = append(out, model.DailyRevenue{
			ResourceID:    k.resource,
			Date:          time.Unix(k.day, 0).UTC(),
			StreamRevenue: *s,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ResourceID != out[j].ResourceID {
			return out[i].ResourceID < out[j].ResourceID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

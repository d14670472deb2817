// Package blended fuses day-ahead and real-time price streams and runs a
// single greedy forward pass over the fused sequence under a state-of-charge
// clamp. The percentile-threshold dispatch rule and the local charge/
// discharge pairing are deliberate heuristics, not an optimal control policy.
package blended

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"bess-analytics/internal/model"
)

// rtSpikePremiumUSD is the fixed RT-over-DA premium that promotes a
// real-time interval into the fused dispatch sequence.
const rtSpikePremiumUSD = 10.0

// defaultDAPriceUSD stands in for the containing hour's DA price when the
// day-ahead stream has no observation for that hour.
const defaultDAPriceUSD = 50.0

type Optimizer struct {
	profile model.BatteryProfile
}

func NewOptimizer(profile model.BatteryProfile) *Optimizer {
	return &Optimizer{profile: profile}
}

// interval is one dispatchable slot in the fused DA+RT sequence.
type interval struct {
	start       time.Time
	end         time.Time
	price       float64
	market      model.Market
	availableMW float64
}

func (iv interval) durationHours() float64 {
	return iv.market.IntervalDuration().Hours()
}

// step is one executed dispatch action. PowerMW follows the usual sign
// convention (positive = discharge). SOCAfter is post-clamp.
type step struct {
	interval interval
	powerMW  float64
	socAfter float64
}

type dayStats struct {
	mean float64
	p10  float64
	p90  float64
}

// Optimize runs the full pipeline: fuse, per-day stats, forward pass,
// greedy window pairing.
func (o *Optimizer) Optimize(daPrices, rtPrices []model.PricePoint) []model.ArbitrageWindow {
	intervals := o.fuseIntervals(daPrices, rtPrices)
	if len(intervals) == 0 {
		return nil
	}
	plan := o.forwardPass(intervals, dailyStats(intervals))
	return o.pairWindows(plan)
}

// fuseIntervals emits one 1-hour interval per DA price at full power. Each
// RT price is compared to its containing hour's DA price; when the premium
// exceeds the spike threshold an extra 15-minute interval is emitted and a
// quarter of the hour's DA headroom is handed to it. The result is sorted by
// start time (stable, so DA precedes RT spikes in the same instant).
func (o *Optimizer) fuseIntervals(daPrices, rtPrices []model.PricePoint) []interval {
	intervals := make([]interval, 0, len(daPrices)+len(rtPrices)/4)
	daIdxByHour := make(map[int64]int, len(daPrices))

	for _, p := range daPrices {
		hour := p.Timestamp.UTC().Truncate(time.Hour)
		daIdxByHour[hour.Unix()] = len(intervals)
		intervals = append(intervals, interval{
			start:       hour,
			end:         hour.Add(time.Hour),
			price:       p.Price,
			market:      model.MarketDayAhead,
			availableMW: o.profile.PowerMW,
		})
	}

	for _, p := range rtPrices {
		hour := p.Timestamp.UTC().Truncate(time.Hour)
		daPrice := defaultDAPriceUSD
		daIdx, hasDA := daIdxByHour[hour.Unix()]
		if hasDA {
			daPrice = intervals[daIdx].price
		}
		if p.Price-daPrice <= rtSpikePremiumUSD {
			continue
		}
		if hasDA {
			intervals[daIdx].availableMW -= o.profile.PowerMW / 4.0
		}
		start := p.Timestamp.UTC()
		intervals = append(intervals, interval{
			start:       start,
			end:         start.Add(15 * time.Minute),
			price:       p.Price,
			market:      model.MarketRealTime15Min,
			availableMW: o.profile.PowerMW,
		})
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].start.Before(intervals[j].start)
	})
	return intervals
}

// dailyStats computes the mean, 10th, and 90th percentile of interval prices
// per UTC day. Percentiles are plain sorted-array lookups with no
// interpolation; that exact definition is load-bearing for the dispatch rule.
func dailyStats(intervals []interval) map[time.Time]dayStats {
	pricesByDay := make(map[time.Time][]float64)
	for _, iv := range intervals {
		day := model.DayOf(iv.start)
		pricesByDay[day] = append(pricesByDay[day], iv.price)
	}

	out := make(map[time.Time]dayStats, len(pricesByDay))
	for day, prices := range pricesByDay {
		sorted := make([]float64, len(prices))
		copy(sorted, prices)
		sort.Float64s(sorted)
		mean, _ := stats.Mean(sorted)
		n := len(sorted)
		out[day] = dayStats{
			mean: mean,
			p10:  sorted[n/10],
			p90:  sorted[n*9/10],
		}
	}
	return out
}

// forwardPass iterates the fused sequence once with a single SOC scalar,
// starting at half capacity. SOC is clamped to [0, capacity] after every
// action; clamping silently absorbs infeasible dispatch rather than failing.
// Only nonzero actions enter the plan.
func (o *Optimizer) forwardPass(intervals []interval, statsByDay map[time.Time]dayStats) []step {
	soc := 0.5 * o.profile.CapacityMWh
	oneWay := o.profile.OneWayEfficiency()

	plan := make([]step, 0, len(intervals))
	for _, iv := range intervals {
		action := o.decide(iv, soc, statsByDay[model.DayOf(iv.start)])
		if action == 0 {
			continue
		}
		energyMWh := abs(action) * iv.durationHours()
		if action > 0 {
			soc -= energyMWh / oneWay
		} else {
			soc += energyMWh * oneWay
		}
		soc = clamp(soc, 0, o.profile.CapacityMWh)
		plan = append(plan, step{interval: iv, powerMW: action, socAfter: soc})
	}
	return plan
}

// decide picks the signed dispatch power for one interval.
func (o *Optimizer) decide(iv interval, soc float64, ds dayStats) float64 {
	socPct := soc / o.profile.CapacityMWh
	dispatchMW := min(iv.availableMW, o.profile.PowerMW)

	if iv.price > ds.p90 && socPct > 0.2 {
		return dispatchMW
	}
	if iv.price < ds.p10 && socPct < 0.8 {
		return -dispatchMW
	}
	if iv.market == model.MarketRealTime15Min && iv.price > 1.5*ds.mean && socPct > 0.1 {
		return dispatchMW
	}
	return 0
}

// accumulator tracks one open charge or discharge window during pairing.
type accumulator struct {
	start   time.Time
	end     time.Time
	energy  float64
	dollars float64 // cost when charging, revenue when discharging
}

func (a *accumulator) add(iv interval, energyMWh float64) {
	if a.energy == 0 {
		a.start = iv.start
	}
	a.end = iv.end
	a.energy += energyMWh
	a.dollars += iv.price * energyMWh
}

func (a *accumulator) avgPrice() float64 { return a.dollars / a.energy }

// pairWindows folds consecutive charge and discharge actions into open
// accumulators and closes a window whenever both sides are populated,
// matched at the smaller energy. This pairing is a local greedy match.
func (o *Optimizer) pairWindows(plan []step) []model.ArbitrageWindow {
	var windows []model.ArbitrageWindow
	var charge, discharge accumulator

	for _, st := range plan {
		energyMWh := abs(st.powerMW) * st.interval.durationHours()
		if st.powerMW < 0 {
			charge.add(st.interval, energyMWh)
		} else {
			discharge.add(st.interval, energyMWh)
		}

		if charge.energy > 0 && discharge.energy > 0 {
			energy := min(charge.energy, discharge.energy)
			avgCharge := charge.avgPrice()
			avgDischarge := discharge.avgPrice()
			windows = append(windows, model.ArbitrageWindow{
				ChargeStart:    charge.start,
				ChargeEnd:      charge.end,
				ChargePrice:    avgCharge,
				DischargeStart: discharge.start,
				DischargeEnd:   discharge.end,
				DischargePrice: avgDischarge,
				EnergyMWh:      energy,
				Revenue:        energy * (avgDischarge - avgCharge) * o.profile.RoundTripEfficiency,
			})
			charge = accumulator{}
			discharge = accumulator{}
		}
	}
	return windows
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

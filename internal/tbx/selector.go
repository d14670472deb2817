// Package tbx implements the Top-Bottom-X idealized arbitrage valuation:
// for each day pick the X cheapest intervals to charge and the X priciest to
// discharge, as a single perfect-foresight cycle.
package tbx

import (
	"sort"
	"time"

	"bess-analytics/internal/model"
)

// Selector evaluates TBX windows for one battery profile.
type Selector struct {
	profile model.BatteryProfile
}

func NewSelector(profile model.BatteryProfile) *Selector {
	return &Selector{profile: profile}
}

// SelectWindows groups prices by UTC calendar day and evaluates each day
// independently. Cross-day optimization is intentionally excluded. Days with
// fewer than 2k priced intervals, or with a spread under the profile
// threshold, are skipped, not errors. The returned windows are ordered by day.
func (s *Selector) SelectWindows(prices []model.PricePoint, market model.Market) []model.ArbitrageWindow {
	byDay := groupByDay(prices)

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var windows []model.ArbitrageWindow
	for _, day := range days {
		if w, ok := s.SelectDayWindow(byDay[day], market); ok {
			windows = append(windows, w)
		}
	}
	return windows
}

// SelectDayWindow evaluates a single day's prices. The boolean is false when
// the day is skipped (insufficient data or thin spread).
func (s *Selector) SelectDayWindow(dayPrices []model.PricePoint, market model.Market) (model.ArbitrageWindow, bool) {
	k := s.profile.DurationHours * market.IntervalsPerHour()
	if len(dayPrices) < 2*k {
		return model.ArbitrageWindow{}, false
	}

	// Stable sort keeps the original record order for equal prices, which
	// makes tie-breaks deterministic across runs.
	sorted := make([]model.PricePoint, len(dayPrices))
	copy(sorted, dayPrices)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	chargeSet := sorted[:k]
	dischargeSet := sorted[len(sorted)-k:]

	avgCharge := meanPrice(chargeSet)
	avgDischarge := meanPrice(dischargeSet)
	spread := avgDischarge - avgCharge
	if spread < s.profile.MinSpreadThresholdUSD {
		return model.ArbitrageWindow{}, false
	}

	intervalsPerHour := float64(market.IntervalsPerHour())
	energyMWh := (s.profile.PowerMW / intervalsPerHour) * float64(k)
	revenue := energyMWh * spread * s.profile.RoundTripEfficiency

	chargeStart, chargeEnd := timeBounds(chargeSet)
	dischargeStart, dischargeEnd := timeBounds(dischargeSet)
	pad := market.IntervalDuration()

	return model.ArbitrageWindow{
		ChargeStart:    chargeStart,
		ChargeEnd:      chargeEnd.Add(pad),
		ChargePrice:    avgCharge,
		DischargeStart: dischargeStart,
		DischargeEnd:   dischargeEnd.Add(pad),
		DischargePrice: avgDischarge,
		EnergyMWh:      energyMWh,
		Revenue:        revenue,
	}, true
}

func groupByDay(prices []model.PricePoint) map[time.Time][]model.PricePoint {
	out := make(map[time.Time][]model.PricePoint)
	for _, p := range prices {
		day := p.Day()
		out[day] = append(out[day], p)
	}
	return out
}

func meanPrice(set []model.PricePoint) float64 {
	sum := 0.0
	for _, p := range set {
		sum += p.Price
	}
	return sum / float64(len(set))
}

func timeBounds(set []model.PricePoint) (time.Time, time.Time) {
	earliest, latest := set[0].Timestamp, set[0].Timestamp
	for _, p := range set[1:] {
		if p.Timestamp.Before(earliest) {
			earliest = p.Timestamp
		}
		if p.Timestamp.After(latest) {
			latest = p.Timestamp
		}
	}
	return earliest, latest
}

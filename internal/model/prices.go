package model

import "time"

// Market identifies the settlement stream a price belongs to.
// Keep these values stable; they appear in CSV output and API payloads.
type Market string

const (
	MarketDayAhead      Market = "DAM"
	MarketRealTime5Min  Market = "RT5"
	MarketRealTime15Min Market = "RT15"
)

// IntervalsPerHour returns how many settlement intervals fit in one hour.
func (m Market) IntervalsPerHour() int {
	switch m {
	case MarketRealTime5Min:
		return 12
	case MarketRealTime15Min:
		return 4
	default:
		return 1
	}
}

// IntervalDuration is the fixed width of one settlement interval.
func (m Market) IntervalDuration() time.Duration {
	switch m {
	case MarketRealTime5Min:
		return 5 * time.Minute
	case MarketRealTime15Min:
		return 15 * time.Minute
	default:
		return time.Hour
	}
}

// Valid reports whether m is one of the known markets.
func (m Market) Valid() bool {
	switch m {
	case MarketDayAhead, MarketRealTime5Min, MarketRealTime15Min:
		return true
	}
	return false
}

// PricePoint is one settled price observation at a settlement point.
// Immutable input fact; $/MWh.
type PricePoint struct {
	Timestamp       time.Time
	SettlementPoint string
	Price           float64
	Market          Market
}

// Day returns the UTC calendar day the point settles on, truncated to
// midnight. All per-day grouping in the engine uses this.
func (p PricePoint) Day() time.Time {
	return DayOf(p.Timestamp)
}

// DayOf truncates a timestamp to UTC midnight.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

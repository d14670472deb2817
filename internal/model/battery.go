package model

import (
	"errors"
	"math"
)

// BatteryProfile defines the physical and economic parameters used to value
// a storage resource. Units:
// - PowerMW: MW
// - CapacityMWh: MWh (PowerMW x DurationHours)
// - RoundTripEfficiency: 0..1
// - MinSpreadThresholdUSD: $/MWh spread below which a day is not worth cycling
type BatteryProfile struct {
	DurationHours         int
	PowerMW               float64
	CapacityMWh           float64
	RoundTripEfficiency   float64
	MinSpreadThresholdUSD float64
}

const (
	defaultRoundTripEfficiency = 0.85
	defaultMinSpreadUSD        = 5.0
)

// NewTB1 returns a 1-hour duration profile with industry-default efficiency
// and spread threshold.
func NewTB1(powerMW float64) BatteryProfile { return newProfile(1, powerMW) }

// NewTB2 returns a 2-hour duration profile.
func NewTB2(powerMW float64) BatteryProfile { return newProfile(2, powerMW) }

// NewTB4 returns a 4-hour duration profile.
func NewTB4(powerMW float64) BatteryProfile { return newProfile(4, powerMW) }

func newProfile(durationHours int, powerMW float64) BatteryProfile {
	return BatteryProfile{
		DurationHours:         durationHours,
		PowerMW:               powerMW,
		CapacityMWh:           powerMW * float64(durationHours),
		RoundTripEfficiency:   defaultRoundTripEfficiency,
		MinSpreadThresholdUSD: defaultMinSpreadUSD,
	}
}

// OneWayEfficiency is the per-leg efficiency, sqrt of round-trip.
func (p BatteryProfile) OneWayEfficiency() float64 {
	return math.Sqrt(p.RoundTripEfficiency)
}

func (p BatteryProfile) Validate() error {
	switch p.DurationHours {
	case 1, 2, 4:
	default:
		return errors.New("DurationHours must be 1, 2, or 4")
	}
	if p.PowerMW <= 0 {
		return errors.New("PowerMW must be > 0")
	}
	if p.CapacityMWh <= 0 {
		return errors.New("CapacityMWh must be > 0")
	}
	if p.RoundTripEfficiency <= 0 || p.RoundTripEfficiency > 1 {
		return errors.New("RoundTripEfficiency must be in (0, 1]")
	}
	if p.MinSpreadThresholdUSD < 0 {
		return errors.New("MinSpreadThresholdUSD must be >= 0")
	}
	return nil
}

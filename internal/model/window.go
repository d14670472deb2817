package model

import "time"

// ArbitrageWindow is one matched charge/discharge cycle.
// Invariants: EnergyMWh <= profile capacity, and
// Revenue = EnergyMWh * (DischargePrice - ChargePrice) * round-trip efficiency.
type ArbitrageWindow struct {
	ChargeStart    time.Time `json:"charge_start"`
	ChargeEnd      time.Time `json:"charge_end"`
	ChargePrice    float64   `json:"charge_price"`
	DischargeStart time.Time `json:"discharge_start"`
	DischargeEnd   time.Time `json:"discharge_end"`
	DischargePrice float64   `json:"discharge_price"`
	EnergyMWh      float64   `json:"energy_mwh"`
	Revenue        float64   `json:"revenue"`
}

// Spread is the average discharge-minus-charge price for the window.
func (w ArbitrageWindow) Spread() float64 {
	return w.DischargePrice - w.ChargePrice
}

// TotalWindowRevenue sums revenue over a set of windows.
func TotalWindowRevenue(windows []ArbitrageWindow) float64 {
	total := 0.0
	for _, w := range windows {
		total += w.Revenue
	}
	return total
}

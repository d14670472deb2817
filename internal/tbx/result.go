package tbx

import (
	"time"

	"bess-analytics/internal/model"
)

// DailyResult is the per-resource, per-day valuation across strategies.
type DailyResult struct {
	ResourceID      string    `json:"resource_id"`
	SettlementPoint string    `json:"settlement_point"`
	Date            time.Time `json:"date"`

	RevenueDA      float64 `json:"revenue_da"`
	RevenueRT      float64 `json:"revenue_rt"`
	RevenueBlended float64 `json:"revenue_blended"`

	DAWindows      []model.ArbitrageWindow `json:"da_windows,omitempty"`
	RTWindows      []model.ArbitrageWindow `json:"rt_windows,omitempty"`
	BlendedWindows []model.ArbitrageWindow `json:"blended_windows,omitempty"`

	AvgSpreadDA      float64 `json:"avg_spread_da"`
	AvgSpreadRT      float64 `json:"avg_spread_rt"`
	AvgSpreadBlended float64 `json:"avg_spread_blended"`

	UtilizationFactor float64 `json:"utilization_factor"`
	CyclesPerDay      float64 `json:"cycles_per_day"`
}

// BestRevenue is the highest single-strategy revenue for the day.
func (r DailyResult) BestRevenue() float64 {
	best := r.RevenueDA
	if r.RevenueRT > best {
		best = r.RevenueRT
	}
	if r.RevenueBlended > best {
		best = r.RevenueBlended
	}
	return best
}

// BestStrategy names the strategy behind BestRevenue. Blended wins ties
// against both single markets; RT wins ties against DA.
func (r DailyResult) BestStrategy() string {
	switch {
	case r.RevenueBlended >= r.RevenueDA && r.RevenueBlended >= r.RevenueRT:
		return "Blended"
	case r.RevenueRT >= r.RevenueDA:
		return "RealTime"
	default:
		return "DayAhead"
	}
}

// EvaluateDay values one resource-day: DA-only and RT-only TBX windows from
// the day's prices, split by market. Blended revenue is filled in separately
// when the caller runs the dispatch optimizer.
func (s *Selector) EvaluateDay(prices []model.PricePoint, resourceID, settlementPoint string, date time.Time) DailyResult {
	result := DailyResult{
		ResourceID:      resourceID,
		SettlementPoint: settlementPoint,
		Date:            date,
	}

	var daPrices, rtPrices []model.PricePoint
	rtMarket := model.MarketRealTime15Min
	for _, p := range prices {
		switch p.Market {
		case model.MarketDayAhead:
			daPrices = append(daPrices, p)
		case model.MarketRealTime5Min, model.MarketRealTime15Min:
			rtPrices = append(rtPrices, p)
			rtMarket = p.Market
		}
	}

	if len(daPrices) > 0 {
		result.DAWindows = s.SelectWindows(daPrices, model.MarketDayAhead)
		result.RevenueDA = model.TotalWindowRevenue(result.DAWindows)
		result.AvgSpreadDA = energyWeightedSpread(result.DAWindows)
	}
	if len(rtPrices) > 0 {
		result.RTWindows = s.SelectWindows(rtPrices, rtMarket)
		result.RevenueRT = model.TotalWindowRevenue(result.RTWindows)
		result.AvgSpreadRT = energyWeightedSpread(result.RTWindows)
	}

	result.UtilizationFactor = s.utilization(result)
	result.CyclesPerDay = result.UtilizationFactor
	return result
}

// energyWeightedSpread averages window spreads weighted by energy moved.
func energyWeightedSpread(windows []model.ArbitrageWindow) float64 {
	totalSpread, totalEnergy := 0.0, 0.0
	for _, w := range windows {
		totalSpread += w.Spread() * w.EnergyMWh
		totalEnergy += w.EnergyMWh
	}
	if totalEnergy <= 0 {
		return 0
	}
	return totalSpread / totalEnergy
}

// utilization is the largest single-window energy relative to capacity.
func (s *Selector) utilization(r DailyResult) float64 {
	if s.profile.CapacityMWh <= 0 {
		return 0
	}
	maxEnergy := 0.0
	for _, set := range [][]model.ArbitrageWindow{r.BlendedWindows, r.DAWindows, r.RTWindows} {
		for _, w := range set {
			if w.EnergyMWh > maxEnergy {
				maxEnergy = w.EnergyMWh
			}
		}
	}
	return maxEnergy / s.profile.CapacityMWh
}

package model

import "time"

// StreamRevenue carries per-stream revenue for one rollup period.
// DAMCharge is the cost side of day-ahead energy (<= 0 for real charging
// awards), DAMDischarge the revenue side; both are kept so the breakdown
// survives aggregation. Totals are always recomputed from the stream fields,
// never stored.
type StreamRevenue struct {
	DAMCharge    float64 `json:"dam_charge"`
	DAMDischarge float64 `json:"dam_discharge"`
	RTEnergy     float64 `json:"rt_energy"`
	RegUp        float64 `json:"reg_up"`
	RegDown      float64 `json:"reg_down"`
	RRS          float64 `json:"rrs"`
	ECRS         float64 `json:"ecrs"`
	NonSpin      float64 `json:"non_spin"`
}

// DAMEnergy is the net day-ahead energy position (charge cost + discharge revenue).
func (s StreamRevenue) DAMEnergy() float64 { return s.DAMCharge + s.DAMDischarge }

// EnergyRevenue is net energy arbitrage across both markets.
func (s StreamRevenue) EnergyRevenue() float64 { return s.DAMEnergy() + s.RTEnergy }

// ASRevenue is total ancillary-service revenue.
func (s StreamRevenue) ASRevenue() float64 {
	return s.RegUp + s.RegDown + s.RRS + s.ECRS + s.NonSpin
}

// TotalRevenue is the sum of every stream field.
func (s StreamRevenue) TotalRevenue() float64 {
	return s.EnergyRevenue() + s.ASRevenue()
}

// Add accumulates another period into s. Addition is commutative and
// associative, so partial accumulators can merge in any order.
func (s *StreamRevenue) Add(o StreamRevenue) {
	s.DAMCharge += o.DAMCharge
	s.DAMDischarge += o.DAMDischarge
	s.RTEnergy += o.RTEnergy
	s.RegUp += o.RegUp
	s.RegDown += o.RegDown
	s.RRS += o.RRS
	s.ECRS += o.ECRS
	s.NonSpin += o.NonSpin
}

// DailyRevenue is the attributed revenue of one resource on one day.
type DailyRevenue struct {
	ResourceID string    `json:"resource_id"`
	Date       time.Time `json:"date"`
	StreamRevenue
}

// MonthlyRevenue aggregates DailyRevenue per resource-month.
type MonthlyRevenue struct {
	ResourceID string     `json:"resource_id"`
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`
	CapacityMW float64    `json:"capacity_mw"`
	StreamRevenue
}

// AnnualRevenue aggregates MonthlyRevenue per resource-year.
// DurationHours is the resource's true duration when known, otherwise the
// assumed 2h default used for $/MWh normalization.
type AnnualRevenue struct {
	ResourceID    string  `json:"resource_id"`
	Year          int     `json:"year"`
	CapacityMW    float64 `json:"capacity_mw"`
	DurationHours float64 `json:"duration_hours"`
	StreamRevenue
}

// RevenuePerMW normalizes total revenue by nameplate power.
func (a AnnualRevenue) RevenuePerMW() float64 {
	if a.CapacityMW <= 0 {
		return 0
	}
	return a.TotalRevenue() / a.CapacityMW
}

// RevenuePerMWh normalizes total revenue by energy capacity.
func (a AnnualRevenue) RevenuePerMWh() float64 {
	if a.CapacityMW <= 0 || a.DurationHours <= 0 {
		return 0
	}
	return a.TotalRevenue() / (a.CapacityMW * a.DurationHours)
}

// IssueKind labels an operational anomaly signal.
type IssueKind string

const (
	IssueSOCViolation IssueKind = "SOC_VIOLATION"
	IssueASFailure    IssueKind = "AS_FAILURE"
)

// OperationalIssue is a heuristic anomaly flag, advisory only.
type OperationalIssue struct {
	ResourceID string    `json:"resource_id"`
	Date       time.Time `json:"date"`
	Kind       IssueKind `json:"kind"`
}

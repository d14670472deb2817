package models

import (
	"bess-analytics/internal/model"
	"bess-analytics/internal/report"
	"bess-analytics/internal/tbx"
)

// TbxResponse represents the result of a valuation run.
type TbxResponse struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	Results     []tbx.DailyResult `json:"results"`
	Summary     TbxSummary        `json:"summary"`
	Diagnostics Diagnostics       `json:"diagnostics"`
}

// TbxSummary aggregates a run across all resource-days.
type TbxSummary struct {
	Resources      int     `json:"resources"`
	Days           int     `json:"days"`
	RevenueDA      float64 `json:"revenue_da"`
	RevenueRT      float64 `json:"revenue_rt"`
	RevenueBlended float64 `json:"revenue_blended"`
	BestRevenue    float64 `json:"best_revenue"`
}

// Diagnostics reports data-quality counters for a run.
type Diagnostics struct {
	MissingPrices     int64            `json:"missing_prices"`
	HubFallbacks      int64            `json:"hub_fallbacks"`
	UnmappedResources int64            `json:"unmapped_resources"`
	SkippedDays       int64            `json:"skipped_days"`
	MalformedRows     map[string]int64 `json:"malformed_rows,omitempty"`
}

// RevenueResponse represents the result of a reconciliation run.
type RevenueResponse struct {
	ID          string                    `json:"id"`
	Status      string                    `json:"status"`
	Daily       []model.DailyRevenue      `json:"daily,omitempty"`
	Monthly     []model.MonthlyRevenue    `json:"monthly"`
	Annual      []model.AnnualRevenue     `json:"annual"`
	Leaderboard []report.LeaderboardEntry `json:"leaderboard"`
	Issues      []model.OperationalIssue  `json:"issues,omitempty"`
	Diagnostics Diagnostics               `json:"diagnostics"`
}

// ProfileInfo describes one battery preset.
type ProfileInfo struct {
	Variant             string  `json:"variant"`
	DurationHours       float64 `json:"duration_hours"`
	PowerMW             float64 `json:"power_mw"`
	CapacityMWh         float64 `json:"capacity_mwh"`
	RoundTripEfficiency float64 `json:"round_trip_efficiency"`
	MinSpreadThreshold  float64 `json:"min_spread_threshold"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

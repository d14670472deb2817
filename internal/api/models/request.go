package models

// ProfileConfig selects a battery profile for a valuation request.
// Variant picks the preset; the remaining fields override preset values
// when non-zero.
type ProfileConfig struct {
	Variant             string  `json:"variant"` // "TB1", "TB2", "TB4"
	PowerMW             float64 `json:"power_mw,omitempty"`
	RoundTripEfficiency float64 `json:"round_trip_efficiency,omitempty"`
	MinSpreadThreshold  float64 `json:"min_spread_threshold,omitempty"`
}

// ResourceRecord is one mapped battery resource.
type ResourceRecord struct {
	Name            string  `json:"name"`
	SettlementPoint string  `json:"settlement_point"`
	CapacityMW      float64 `json:"capacity_mw"`
	DurationHours   float64 `json:"duration_hours,omitempty"`
}

// PriceRecord is one settlement point price interval.
type PriceRecord struct {
	Timestamp       string  `json:"timestamp"` // RFC3339
	SettlementPoint string  `json:"settlement_point"`
	Price           float64 `json:"price"`
	Market          string  `json:"market"` // "DAM", "RT5", "RT15"
}

// TbxOptions tunes a valuation run.
type TbxOptions struct {
	Blended        bool   `json:"blended"`
	StartDate      string `json:"start_date,omitempty"` // 2006-01-02
	EndDate        string `json:"end_date,omitempty"`
	Workers        int    `json:"workers,omitempty"`
	IncludeWindows bool   `json:"include_windows"`
}

// TbxRequest represents POST /api/v1/tbx
type TbxRequest struct {
	Profile   ProfileConfig    `json:"profile"`
	Resources []ResourceRecord `json:"resources"`
	Prices    []PriceRecord    `json:"prices"`
	Options   TbxOptions       `json:"options"`
}

// AwardInput is one market award row.
type AwardInput struct {
	ResourceID    string  `json:"resource_id"`
	Date          string  `json:"date"` // 2006-01-02
	Hour          int     `json:"hour"`
	AwardMW       float64 `json:"award_mw"`
	ClearingPrice float64 `json:"clearing_price"`
	Stream        string  `json:"stream"`
}

// DispatchInput is one telemetered dispatch interval.
type DispatchInput struct {
	ResourceID string  `json:"resource_id"`
	Timestamp  string  `json:"timestamp"` // RFC3339
	SignedMW   float64 `json:"signed_mw"`
}

// OverrideRecord maps one resource to a corrected settlement point.
type OverrideRecord struct {
	Resource        string `json:"resource"`
	SettlementPoint string `json:"settlement_point"`
}

// RevenueOptions tunes a reconciliation run.
type RevenueOptions struct {
	RTGranularity string `json:"rt_granularity,omitempty"` // "RT5" or "RT15"
	FallbackHub   string `json:"fallback_hub,omitempty"`
	Workers       int    `json:"workers,omitempty"`
	IncludeDaily  bool   `json:"include_daily"`
}

// RevenueRequest represents POST /api/v1/revenue
type RevenueRequest struct {
	Resources []ResourceRecord `json:"resources"`
	Overrides []OverrideRecord `json:"overrides,omitempty"`
	Prices    []PriceRecord    `json:"prices"`
	Awards    []AwardInput     `json:"awards"`
	Dispatch  []DispatchInput  `json:"dispatch"`
	Options   RevenueOptions   `json:"options"`
}

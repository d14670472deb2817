package model

import "time"

// AwardStream identifies which market product an award settles.
type AwardStream string

const (
	StreamDAMEnergy AwardStream = "DAM_ENERGY"
	StreamRegUp     AwardStream = "REG_UP"
	StreamRegDown   AwardStream = "REG_DOWN"
	StreamRRS       AwardStream = "RRS"
	StreamECRS      AwardStream = "ECRS"
	StreamNonSpin   AwardStream = "NON_SPIN"
)

// AncillaryStreams lists the AS products in rollup column order.
var AncillaryStreams = []AwardStream{
	StreamRegUp, StreamRegDown, StreamRRS, StreamECRS, StreamNonSpin,
}

// AwardRecord is one cleared market award for a resource-hour.
// For DAM energy a negative AwardMW means the resource cleared to charge.
// For RRS, AwardMW already carries the sum of the RRS sub-products
// (PFR + FFR + UFR); they clear at a single RRS price.
type AwardRecord struct {
	ResourceID    string
	Date          time.Time // UTC midnight of the delivery day
	Hour          int       // hour ending, 1..24
	AwardMW       float64
	ClearingPrice float64 // $/MWh (energy) or $/MW (capacity products)
	Stream        AwardStream
}

// DispatchInterval is one telemetered dispatch observation.
// Convention: positive MW = discharge to grid, negative MW = charge from grid.
// Interval width is fixed per run (5- or 15-minute); the reconciler is told
// which granularity the feed uses.
type DispatchInterval struct {
	ResourceID string
	Timestamp  time.Time
	SignedMW   float64
}

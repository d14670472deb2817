// Package ingest reads parsed price, award, and dispatch records from CSV.
// Every reader is the same pipeline parameterized by a dataset-config value;
// the per-dataset variation lives in the config, not in copied code.
// Malformed rows are skipped and counted per source, never fatal.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"bess-analytics/internal/diag"
	"bess-analytics/internal/model"
)

// ercotTimeLayout matches disclosure-file timestamps (MM/DD/YYYY HH:MM:SS).
const ercotTimeLayout = "01/02/2006 15:04:05"

// ercotDateLayout matches delivery-date columns (MM/DD/YYYY).
const ercotDateLayout = "01/02/2006"

// PriceDataset describes one settlement-price CSV shape.
type PriceDataset struct {
	Name         string
	TimestampCol string
	LocationCol  string
	PriceCol     string
	TimeLayout   string
	Market       model.Market
}

// DAMSettlementPrices is the day-ahead settlement point price feed.
var DAMSettlementPrices = PriceDataset{
	Name:         "dam_prices",
	TimestampCol: "Interval Start",
	LocationCol:  "Settlement Point",
	PriceCol:     "Settlement Point Price",
	TimeLayout:   ercotTimeLayout,
	Market:       model.MarketDayAhead,
}

// RTSettlementPrices is the 15-minute real-time settlement point price feed.
var RTSettlementPrices = PriceDataset{
	Name:         "rt_prices",
	TimestampCol: "Interval Start",
	LocationCol:  "Settlement Point",
	PriceCol:     "Settlement Point Price",
	TimeLayout:   ercotTimeLayout,
	Market:       model.MarketRealTime15Min,
}

// ReadPrices loads one price CSV into PricePoint records.
func ReadPrices(path string, ds PriceDataset, counters *diag.Counters) ([]model.PricePoint, error) {
	var out []model.PricePoint
	err := readRows(path, ds.Name, counters, func(col map[string]int, row []string) bool {
		ts, ok1 := field(row, col, ds.TimestampCol)
		loc, ok2 := field(row, col, ds.LocationCol)
		priceStr, ok3 := field(row, col, ds.PriceCol)
		if !ok1 || !ok2 || !ok3 {
			return false
		}
		t, err := time.Parse(ds.TimeLayout, ts)
		if err != nil {
			return false
		}
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			return false
		}
		out = append(out, model.PricePoint{
			Timestamp:       t.UTC(),
			SettlementPoint: loc,
			Price:           price,
			Market:          ds.Market,
		})
		return true
	})
	return out, err
}

// ASColumns maps one ancillary product to its award and price columns.
// Multi-column awards (the RRS sub-products) are summed before pricing.
type ASColumns struct {
	Stream    model.AwardStream
	AwardCols []string
	PriceCol  string
}

// AwardDataset describes one award CSV shape.
type AwardDataset struct {
	Name           string
	DateCol        string
	HourCol        string
	ResourceCol    string
	DateLayout     string
	EnergyAwardCol string
	EnergyPriceCol string
	AS             []ASColumns
}

// DAMGenResourceData is the 60-day DAM disclosure feed carrying both energy
// awards and AS awards per resource-hour.
var DAMGenResourceData = AwardDataset{
	Name:           "dam_awards",
	DateCol:        "Delivery Date",
	HourCol:        "Hour Ending",
	ResourceCol:    "Resource Name",
	DateLayout:     ercotDateLayout,
	EnergyAwardCol: "Awarded Quantity",
	EnergyPriceCol: "Energy Settlement Point Price",
	AS: []ASColumns{
		{Stream: model.StreamRegUp, AwardCols: []string{"RegUp Awarded"}, PriceCol: "RegUp MCPC"},
		{Stream: model.StreamRegDown, AwardCols: []string{"RegDown Awarded"}, PriceCol: "RegDown MCPC"},
		{Stream: model.StreamRRS, AwardCols: []string{"RRSPFR Awarded", "RRSFFR Awarded", "RRSUFR Awarded"}, PriceCol: "RRS MCPC"},
		{Stream: model.StreamECRS, AwardCols: []string{"ECRSSD Awarded"}, PriceCol: "ECRS MCPC"},
		{Stream: model.StreamNonSpin, AwardCols: []string{"NonSpin Awarded"}, PriceCol: "NonSpin MCPC"},
	},
}

// ReadAwards loads one award CSV into AwardRecord values. One row can emit
// several records: an energy award plus one per ancillary product.
func ReadAwards(path string, ds AwardDataset, counters *diag.Counters) ([]model.AwardRecord, error) {
	var out []model.AwardRecord
	err := readRows(path, ds.Name, counters, func(col map[string]int, row []string) bool {
		dateStr, ok1 := field(row, col, ds.DateCol)
		resource, ok2 := field(row, col, ds.ResourceCol)
		if !ok1 || !ok2 {
			return false
		}
		date, err := time.Parse(ds.DateLayout, dateStr)
		if err != nil {
			return false
		}
		date = date.UTC()
		hour := 0
		if hourStr, ok := field(row, col, ds.HourCol); ok {
			if h, err := strconv.Atoi(hourStr); err == nil {
				hour = h
			}
		}

		if ds.EnergyAwardCol != "" {
			award := numericField(row, col, ds.EnergyAwardCol)
			price := numericField(row, col, ds.EnergyPriceCol)
			if award != 0 {
				out = append(out, model.AwardRecord{
					ResourceID:    resource,
					Date:          date,
					Hour:          hour,
					AwardMW:       award,
					ClearingPrice: price,
					Stream:        model.StreamDAMEnergy,
				})
			}
		}

		for _, as := range ds.AS {
			total := 0.0
			for _, c := range as.AwardCols {
				total += numericField(row, col, c)
			}
			if total == 0 {
				continue
			}
			out = append(out, model.AwardRecord{
				ResourceID:    resource,
				Date:          date,
				Hour:          hour,
				AwardMW:       total,
				ClearingPrice: numericField(row, col, as.PriceCol),
				Stream:        as.Stream,
			})
		}
		return true
	})
	return out, err
}

// DispatchDataset describes one dispatch-telemetry CSV shape.
type DispatchDataset struct {
	Name         string
	TimestampCol string
	ResourceCol  string
	OutputCol    string
	TimeLayout   string
}

// SCEDGenResourceData is the 60-day SCED disclosure feed of telemetered
// resource output.
var SCEDGenResourceData = DispatchDataset{
	Name:         "sced_dispatch",
	TimestampCol: "SCED Time Stamp",
	ResourceCol:  "Resource Name",
	OutputCol:    "Telemetered Net Output",
	TimeLayout:   ercotTimeLayout,
}

// ReadDispatch loads one dispatch CSV into DispatchInterval records.
func ReadDispatch(path string, ds DispatchDataset, counters *diag.Counters) ([]model.DispatchInterval, error) {
	var out []model.DispatchInterval
	err := readRows(path, ds.Name, counters, func(col map[string]int, row []string) bool {
		ts, ok1 := field(row, col, ds.TimestampCol)
		resource, ok2 := field(row, col, ds.ResourceCol)
		if !ok1 || !ok2 {
			return false
		}
		t, err := time.Parse(ds.TimeLayout, ts)
		if err != nil {
			return false
		}
		out = append(out, model.DispatchInterval{
			ResourceID: resource,
			Timestamp:  t.UTC(),
			SignedMW:   numericField(row, col, ds.OutputCol),
		})
		return true
	})
	return out, err
}

// readRows opens a CSV and feeds every data row to parse. Rows parse
// rejects are counted against the source name and skipped.
func readRows(path, source string, counters *diag.Counters, parse func(col map[string]int, row []string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read %s header: %w", path, err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			counters.CountMalformed(source)
			continue
		}
		if !parse(col, row) {
			counters.CountMalformed(source)
		}
	}
}

func field(row []string, col map[string]int, name string) (string, bool) {
	idx, ok := col[name]
	if !ok || idx >= len(row) {
		return "", false
	}
	v := strings.TrimSpace(row[idx])
	if v == "" {
		return "", false
	}
	return v, true
}

// numericField parses a float column, treating missing and empty cells as
// zero the way the disclosure files intend.
func numericField(row []string, col map[string]int, name string) float64 {
	v, ok := field(row, col, name)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

package report

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"bess-analytics/internal/model"
	"bess-analytics/internal/tbx"
)

// WriteWindowsCSV writes arbitrage windows, one row per matched cycle.
func WriteWindowsCSV(path string, windows []model.ArbitrageWindow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"charge_start",
		"charge_end",
		"charge_price",
		"discharge_start",
		"discharge_end",
		"discharge_price",
		"energy_mwh",
		"revenue",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, win := range windows {
		row := []string{
			fmtTime(win.ChargeStart),
			fmtTime(win.ChargeEnd),
			fmtFloat(win.ChargePrice),
			fmtTime(win.DischargeStart),
			fmtTime(win.DischargeEnd),
			fmtFloat(win.DischargePrice),
			fmtFloat(win.EnergyMWh),
			fmtFloat(win.Revenue),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteDailyResultsCSV writes per-day TBX valuations.
func WriteDailyResultsCSV(path string, results []tbx.DailyResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"resource_id",
		"settlement_point",
		"date",
		"revenue_da",
		"revenue_rt",
		"revenue_blended",
		"avg_spread_da",
		"avg_spread_rt",
		"avg_spread_blended",
		"utilization_factor",
		"cycles_per_day",
		"best_strategy",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.ResourceID,
			r.SettlementPoint,
			r.Date.Format("2006-01-02"),
			fmtFloat(r.RevenueDA),
			fmtFloat(r.RevenueRT),
			fmtFloat(r.RevenueBlended),
			fmtFloat(r.AvgSpreadDA),
			fmtFloat(r.AvgSpreadRT),
			fmtFloat(r.AvgSpreadBlended),
			fmtFloat(r.UtilizationFactor),
			fmtFloat(r.CyclesPerDay),
			r.BestStrategy(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteDailyRevenueCSV writes reconciled daily revenue records.
func WriteDailyRevenueCSV(path string, daily []model.DailyRevenue) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"resource_id",
		"date",
		"dam_charge",
		"dam_discharge",
		"dam_energy",
		"rt_energy",
		"reg_up",
		"reg_down",
		"rrs",
		"ecrs",
		"non_spin",
		"total_revenue",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, d := range daily {
		row := []string{
			d.ResourceID,
			d.Date.Format("2006-01-02"),
			fmtFloat(d.DAMCharge),
			fmtFloat(d.DAMDischarge),
			fmtFloat(d.DAMEnergy()),
			fmtFloat(d.RTEnergy),
			fmtFloat(d.RegUp),
			fmtFloat(d.RegDown),
			fmtFloat(d.RRS),
			fmtFloat(d.ECRS),
			fmtFloat(d.NonSpin),
			fmtFloat(d.TotalRevenue()),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

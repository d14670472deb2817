package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"bess-analytics/internal/config"
	"bess-analytics/internal/diag"
	"bess-analytics/internal/ingest"
	"bess-analytics/internal/mapping"
	"bess-analytics/internal/model"
	"bess-analytics/internal/pricing"
	"bess-analytics/internal/report"
	"bess-analytics/internal/revenue"
	"bess-analytics/internal/runner"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "tbx":
		cmdTbx(os.Args[2:])
	case "revenue":
		cmdRevenue(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli tbx --mapping resources.csv --da-prices dam.csv [--rt-prices rt.csv] --variant TB2 --power 100 --out results/tbx.csv")
	fmt.Println("  cli revenue --mapping resources.csv --awards dam_awards.csv --dispatch sced.csv --da-prices dam.csv --rt-prices rt.csv --out-dir results")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - tbx values perfect-foresight arbitrage per resource-day (DA, RT, optionally blended)")
	fmt.Println("  - revenue reconciles actual awards and dispatch into daily/monthly/annual streams")
}

func cmdTbx(args []string) {
	fs := flag.NewFlagSet("tbx", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	mappingPath := fs.String("mapping", "", "Fleet resource mapping CSV")
	daPath := fs.String("da-prices", "", "DAM settlement point price CSV")
	rtPath := fs.String("rt-prices", "", "RT settlement point price CSV")
	variant := fs.String("variant", "", "Battery preset: TB1, TB2, or TB4")
	power := fs.Float64("power", 0, "Nameplate power in MW")
	efficiency := fs.Float64("efficiency", 0, "Round-trip efficiency override (0..1)")
	threshold := fs.Float64("threshold", 0, "Minimum spread threshold override ($/MWh)")
	rtGranularity := fs.String("rt-granularity", "", "RT feed interval width: RT5 or RT15")
	startDate := fs.String("start", "", "First day to value (YYYY-MM-DD)")
	endDate := fs.String("end", "", "Last day to value (YYYY-MM-DD)")
	blended := fs.Bool("blended", false, "Also run the blended DA+RT optimizer")
	workers := fs.Int("workers", 0, "Worker count (0 = all CPUs)")
	outPath := fs.String("out", "results/tbx.csv", "Output path")
	format := fs.String("format", "csv", "Output format: csv, json, or summary")
	windowsOut := fs.String("windows-out", "", "Optional CSV of individual arbitrage windows")
	_ = fs.Parse(args)

	if *mappingPath == "" {
		fmt.Println("--mapping is required")
		os.Exit(2)
	}
	if *daPath == "" && *rtPath == "" {
		fmt.Println("at least one of --da-prices or --rt-prices is required")
		os.Exit(2)
	}

	cfg := &config.Config{}
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fatal("load config", err)
		}
		cfg = loaded
	}
	cfg.Profile = config.MergeProfile(cfg.Profile, config.ProfileConfig{
		Variant:             *variant,
		PowerMW:             *power,
		RoundTripEfficiency: *efficiency,
		MinSpreadThreshold:  *threshold,
	})
	if *rtGranularity != "" {
		cfg.Market.RTGranularity = *rtGranularity
	}

	profile, err := cfg.Profile.ToProfile()
	if err != nil {
		fatal("resolve profile", err)
	}
	granularity, err := cfg.Market.Granularity()
	if err != nil {
		fatal("resolve rt granularity", err)
	}

	table, err := mapping.Load(*mappingPath)
	if err != nil {
		fatal("load resource mapping", err)
	}

	counters := diag.New()
	prices := loadPrices(*daPath, *rtPath, granularity, counters)
	logger.Info("loaded inputs", "resources", table.Len(), "prices", len(prices))

	v := runner.Valuation{Profile: profile, Blended: *blended, Workers: *workers}
	if *startDate != "" {
		v.Start = mustDate(*startDate)
	}
	if *endDate != "" {
		v.End = mustDate(*endDate)
	}

	results, runDiag, err := runner.RunTBX(context.Background(), prices, table, v)
	if err != nil {
		fatal("run valuation", err)
	}
	runDiag.Merge(counters)

	switch strings.ToLower(*format) {
	case "csv":
		if err := report.WriteDailyResultsCSV(*outPath, results); err != nil {
			fatal("write results", err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(results), *outPath)
	case "json":
		if err := report.WriteJSON(*outPath, results); err != nil {
			fatal("write results", err)
		}
		fmt.Printf("Wrote %d results to %s\n", len(results), *outPath)
	case "summary":
		fmt.Print(report.RenderTbxSummary(results))
	default:
		fmt.Printf("unsupported format %q\n", *format)
		os.Exit(2)
	}

	if *windowsOut != "" {
		var windows []model.ArbitrageWindow
		for _, r := range results {
			windows = append(windows, r.DAWindows...)
			windows = append(windows, r.RTWindows...)
			windows = append(windows, r.BlendedWindows...)
		}
		if err := report.WriteWindowsCSV(*windowsOut, windows); err != nil {
			fatal("write windows", err)
		}
		fmt.Printf("Wrote %d windows to %s\n", len(windows), *windowsOut)
	}

	logger.Info("run complete", "diagnostics", runDiag.Summary())
}

func cmdRevenue(args []string) {
	fs := flag.NewFlagSet("revenue", flag.ExitOnError)
	mappingPath := fs.String("mapping", "", "Fleet resource mapping CSV")
	overridesPath := fs.String("overrides", "", "Settlement-point override CSV (optional)")
	daPath := fs.String("da-prices", "", "DAM settlement point price CSV")
	rtPath := fs.String("rt-prices", "", "RT settlement point price CSV")
	awardsPath := fs.String("awards", "", "DAM award disclosure CSV")
	dispatchPath := fs.String("dispatch", "", "SCED dispatch disclosure CSV")
	hub := fs.String("hub", "HB_HOUSTON", "Fallback hub settlement point")
	rtGranularity := fs.String("rt-granularity", "RT15", "RT feed interval width: RT5 or RT15")
	workers := fs.Int("workers", 0, "Worker count (0 = all CPUs)")
	outDir := fs.String("out-dir", "results", "Output directory")
	top := fs.Int("top", 20, "Leaderboard rows to print")
	_ = fs.Parse(args)

	if *mappingPath == "" {
		fmt.Println("--mapping is required")
		os.Exit(2)
	}
	if *awardsPath == "" && *dispatchPath == "" {
		fmt.Println("at least one of --awards or --dispatch is required")
		os.Exit(2)
	}
	if *daPath == "" && *rtPath == "" {
		fmt.Println("at least one of --da-prices or --rt-prices is required")
		os.Exit(2)
	}

	granularity, err := config.MarketConfig{RTGranularity: *rtGranularity}.Granularity()
	if err != nil {
		fatal("resolve rt granularity", err)
	}

	table, err := mapping.Load(*mappingPath)
	if err != nil {
		fatal("load resource mapping", err)
	}
	if *overridesPath != "" {
		if err := table.LoadOverrides(*overridesPath); err != nil {
			fatal("load settlement overrides", err)
		}
	}

	counters := diag.New()
	prices := loadPrices(*daPath, *rtPath, granularity, counters)
	index, err := pricing.Build(prices, *hub)
	if err != nil {
		fatal("build price index", err)
	}

	var awards []model.AwardRecord
	if *awardsPath != "" {
		awards, err = ingest.ReadAwards(*awardsPath, ingest.DAMGenResourceData, counters)
		if err != nil {
			fatal("read awards", err)
		}
	}
	var dispatch []model.DispatchInterval
	if *dispatchPath != "" {
		dispatch, err = ingest.ReadDispatch(*dispatchPath, ingest.SCEDGenResourceData, counters)
		if err != nil {
			fatal("read dispatch", err)
		}
	}
	logger.Info("loaded inputs",
		"resources", table.Len(),
		"priced_buckets", index.Len(),
		"awards", len(awards),
		"dispatch_intervals", len(dispatch),
	)

	rec, err := revenue.New(index, table, granularity)
	if err != nil {
		fatal("build reconciler", err)
	}
	acc, err := runner.Reconcile(context.Background(), rec, awards, dispatch, *workers)
	if err != nil {
		fatal("reconcile", err)
	}
	acc.Diag.Merge(counters)

	daily := acc.Daily()
	monthly := revenue.Monthly(daily, table)
	annual := revenue.Annual(monthly, table)
	issues := revenue.DetectIssues(daily, table)

	if err := report.WriteDailyRevenueCSV(*outDir+"/daily_revenue.csv", daily); err != nil {
		fatal("write daily revenue", err)
	}
	if err := report.WriteJSON(*outDir+"/monthly_revenue.json", monthly); err != nil {
		fatal("write monthly revenue", err)
	}
	if err := report.WriteJSON(*outDir+"/annual_revenue.json", annual); err != nil {
		fatal("write annual revenue", err)
	}
	if len(issues) > 0 {
		if err := report.WriteJSON(*outDir+"/operational_issues.json", issues); err != nil {
			fatal("write issues", err)
		}
	}

	fmt.Print(report.RenderLeaderboard(report.Leaderboard(annual), *top))
	fmt.Printf("Wrote daily=%d monthly=%d annual=%d issues=%d records to %s\n",
		len(daily), len(monthly), len(annual), len(issues), *outDir)

	logger.Info("run complete", "diagnostics", acc.Diag.Summary())
}

// loadPrices reads whichever of the two feeds were provided. The RT preset is
// re-tagged when the feed is 5-minute SCED pricing rather than 15-minute
// settlement pricing.
func loadPrices(daPath, rtPath string, granularity model.Market, counters *diag.Counters) []model.PricePoint {
	var prices []model.PricePoint
	if daPath != "" {
		da, err := ingest.ReadPrices(daPath, ingest.DAMSettlementPrices, counters)
		if err != nil {
			fatal("read DA prices", err)
		}
		prices = append(prices, da...)
	}
	if rtPath != "" {
		ds := ingest.RTSettlementPrices
		ds.Market = granularity
		rt, err := ingest.ReadPrices(rtPath, ds, counters)
		if err != nil {
			fatal("read RT prices", err)
		}
		prices = append(prices, rt...)
	}
	return prices
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		fatal("parse date", err)
	}
	return t.UTC()
}

func fatal(what string, err error) {
	logger.Error(what, "error", err)
	os.Exit(1)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bess-analytics/internal/model"
)

func writeYAML(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "config.yaml", `
profile:
  variant: TB2
  power_mw: 100
market:
  fallback_hub: HB_HOUSTON
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	profile, err := cfg.Profile.ToProfile()
	require.NoError(t, err)
	assert.Equal(t, 2, profile.DurationHours)
	assert.Equal(t, 200.0, profile.CapacityMWh)
	assert.Equal(t, 0.85, profile.RoundTripEfficiency)

	g, err := cfg.Market.Granularity()
	require.NoError(t, err)
	assert.Equal(t, model.MarketRealTime15Min, g)
	assert.Equal(t, "HB_HOUSTON", cfg.Market.FallbackHub)
}

func TestLoadProfileFileMerge(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "tb4.yaml", `
profile:
  variant: TB4
  power_mw: 50
  round_trip_efficiency: 0.9
`)
	path := writeYAML(t, dir, "config.yaml", `
profile_file: tb4.yaml
profile:
  power_mw: 200
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	profile, err := cfg.Profile.ToProfile()
	require.NoError(t, err)
	assert.Equal(t, 4, profile.DurationHours)
	assert.Equal(t, 200.0, profile.PowerMW)
	assert.Equal(t, 0.9, profile.RoundTripEfficiency)
}

func TestLoadRejectsBadVariant(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "config.yaml", `
profile:
  variant: TB3
  power_mw: 100
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestGranularity(t *testing.T) {
	g, err := MarketConfig{RTGranularity: "rt5"}.Granularity()
	require.NoError(t, err)
	assert.Equal(t, model.MarketRealTime5Min, g)

	g, err = MarketConfig{}.Granularity()
	require.NoError(t, err)
	assert.Equal(t, model.MarketRealTime15Min, g)

	_, err = MarketConfig{RTGranularity: "RT1"}.Granularity()
	assert.Error(t, err)
}

func TestToProfileOverrides(t *testing.T) {
	p, err := ProfileConfig{Variant: "tb1", PowerMW: 60, MinSpreadThreshold: 12}.ToProfile()
	require.NoError(t, err)
	assert.Equal(t, 1, p.DurationHours)
	assert.Equal(t, 12.0, p.MinSpreadThresholdUSD)
	assert.Equal(t, 0.85, p.RoundTripEfficiency)
}

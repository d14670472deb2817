package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"bess-analytics/internal/model"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load the battery profile from a separate YAML file.
	// If both ProfileFile and Profile are provided, Profile overrides ProfileFile.
	ProfileFile string        `yaml:"profile_file"`
	Profile     ProfileConfig `yaml:"profile"`
	Market      MarketConfig  `yaml:"market"`
}

type ProfileConfig struct {
	Variant             string  `yaml:"variant"` // TB1, TB2, or TB4
	PowerMW             float64 `yaml:"power_mw"`
	RoundTripEfficiency float64 `yaml:"round_trip_efficiency"`
	MinSpreadThreshold  float64 `yaml:"min_spread_threshold"`
}

type MarketConfig struct {
	FallbackHub   string `yaml:"fallback_hub"`
	RTGranularity string `yaml:"rt_granularity"` // RT5 or RT15
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.ProfileFile != "" {
		profilePath := c.ProfileFile
		if !filepath.IsAbs(profilePath) {
			// Prefer interpreting relative paths as relative to the config file
			// directory, falling back to the path as given.
			cand := filepath.Join(filepath.Dir(path), profilePath)
			if _, err := os.Stat(cand); err == nil {
				profilePath = cand
			}
		}
		loaded, err := loadProfileFile(profilePath)
		if err != nil {
			return nil, err
		}
		c.Profile = MergeProfile(loaded, c.Profile)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Market.RTGranularity == "" {
		c.Market.RTGranularity = string(model.MarketRealTime15Min)
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := c.Profile.ToProfile(); err != nil {
		return fmt.Errorf("profile config invalid: %w", err)
	}
	if _, err := c.Market.Granularity(); err != nil {
		return err
	}
	return nil
}

// ToProfile builds and validates the battery profile. Zero efficiency and
// threshold fields keep the variant defaults.
func (p ProfileConfig) ToProfile() (model.BatteryProfile, error) {
	var profile model.BatteryProfile
	switch strings.ToUpper(strings.TrimSpace(p.Variant)) {
	case "TB1":
		profile = model.NewTB1(p.PowerMW)
	case "TB2":
		profile = model.NewTB2(p.PowerMW)
	case "TB4":
		profile = model.NewTB4(p.PowerMW)
	default:
		return model.BatteryProfile{}, fmt.Errorf("unsupported variant %q (want TB1, TB2, or TB4)", p.Variant)
	}
	if p.RoundTripEfficiency != 0 {
		profile.RoundTripEfficiency = p.RoundTripEfficiency
	}
	if p.MinSpreadThreshold != 0 {
		profile.MinSpreadThresholdUSD = p.MinSpreadThreshold
	}
	if err := profile.Validate(); err != nil {
		return model.BatteryProfile{}, err
	}
	return profile, nil
}

// Granularity resolves the RT feed interval width.
func (m MarketConfig) Granularity() (model.Market, error) {
	g := model.Market(strings.ToUpper(strings.TrimSpace(m.RTGranularity)))
	if g == "" {
		g = model.MarketRealTime15Min
	}
	switch g {
	case model.MarketRealTime5Min, model.MarketRealTime15Min:
		return g, nil
	default:
		return "", fmt.Errorf("unsupported rt_granularity %q (want RT5 or RT15)", m.RTGranularity)
	}
}

type profileFileWrapper struct {
	Profile ProfileConfig `yaml:"profile"`
}

func loadProfileFile(path string) (ProfileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ProfileConfig{}, err
	}
	var w profileFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return ProfileConfig{}, err
	}
	return w.Profile, nil
}

// MergeProfile overlays non-zero fields from override onto base.
func MergeProfile(base, override ProfileConfig) ProfileConfig {
	out := base
	if override.Variant != "" {
		out.Variant = override.Variant
	}
	if override.PowerMW != 0 {
		out.PowerMW = override.PowerMW
	}
	if override.RoundTripEfficiency != 0 {
		out.RoundTripEfficiency = override.RoundTripEfficiency
	}
	if override.MinSpreadThreshold != 0 {
		out.MinSpreadThreshold = override.MinSpreadThreshold
	}
	return out
}

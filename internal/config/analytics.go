package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/raseed/internal/common"
	"github.com/Veraticus/raseed/internal/heatmap"
	"github.com/Veraticus/raseed/internal/normalizer"
	"github.com/Veraticus/raseed/internal/period"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Analytics configures how receipts are normalized and summarized.
type Analytics struct {
	Location   *time.Location
	Palette    []string
	Thresholds heatmap.Thresholds
	TopN       int
}

// DefaultAnalytics returns the analytics defaults in the local time zone.
func DefaultAnalytics() Analytics {
	return Analytics{
		Location:   time.Local,
		Palette:    append([]string(nil), normalizer.DefaultPalette...),
		Thresholds: heatmap.DefaultThresholds(),
		TopN:       period.DefaultTopN,
	}
}

// LoadAnalyticsConfig reads the analytics.* keys:
//
//	analytics:
//	  timezone: Asia/Riyadh
//	  palette: ["#4285F4", "#EA4335"]
//	  top_categories: 6
//	  heatmap:
//	    low: 500
//	    medium: 2000
//	    high: 5000
func LoadAnalyticsConfig() (*Analytics, error) {
	cfg := DefaultAnalytics()

	if tz := strings.TrimSpace(viper.GetString("analytics.timezone")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("%w: analytics.timezone %q: %w", common.ErrInvalidConfig, tz, err)
		}
		cfg.Location = loc
	}
	if palette := viper.GetStringSlice("analytics.palette"); len(palette) > 0 {
		cfg.Palette = palette
	}
	if viper.IsSet("analytics.top_categories") {
		cfg.TopN = viper.GetInt("analytics.top_categories")
	}

	for key, dst := range map[string]*decimal.Decimal{
		"analytics.heatmap.low":    &cfg.Thresholds.Low,
		"analytics.heatmap.medium": &cfg.Thresholds.Medium,
		"analytics.heatmap.high":   &cfg.Thresholds.High,
	} {
		if !viper.IsSet(key) {
			continue
		}
		raw, err := cast.ToStringE(viper.Get(key))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, key, err)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %w", common.ErrInvalidConfig, key, raw, err)
		}
		*dst = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the analytics settings.
func (a *Analytics) Validate() error {
	if a.Location == nil {
		return fmt.Errorf("%w: time zone is required", common.ErrInvalidConfig)
	}
	if a.TopN <= 0 {
		return fmt.Errorf("%w: top categories must be positive, got %d", common.ErrInvalidConfig, a.TopN)
	}
	for _, c := range a.Palette {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: palette contains an empty color", common.ErrInvalidConfig)
		}
	}
	if err := a.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/raseed/internal/common"
	"github.com/Veraticus/raseed/internal/heatmap"
	"github.com/Veraticus/raseed/internal/period"
	"github.com/Veraticus/raseed/internal/sheets"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("RASEED_TEST_DIR", "/srv/raseed")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde", in: "~", want: home},
		{name: "tilde prefix", in: "~/data/raseed.db", want: filepath.Join(home, "data", "raseed.db")},
		{name: "env var", in: "$RASEED_TEST_DIR/raseed.db", want: "/srv/raseed/raseed.db"},
		{name: "plain", in: "/tmp/raseed.db", want: "/tmp/raseed.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/etc/xdg-test")

	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/etc/xdg-test/raseed", dir)

	file, err := ConfigFile()
	require.NoError(t, err)
	assert.Equal(t, "/etc/xdg-test/raseed/config.yaml", file)

	token, err := TokenFile()
	require.NoError(t, err)
	assert.Equal(t, "/etc/xdg-test/raseed/sheets-token.json", token)

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	dir, err = ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "raseed"), dir)
}

func TestLoadAnalyticsConfig_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := LoadAnalyticsConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Local, cfg.Location)
	assert.Equal(t, period.DefaultTopN, cfg.TopN)
	assert.True(t, cfg.Thresholds.Low.Equal(heatmap.DefaultThresholds().Low))
	assert.Len(t, cfg.Palette, 4)
}

func TestLoadAnalyticsConfig_Overrides(t *testing.T) {
	resetViper(t)
	viper.Set("analytics.timezone", "Asia/Riyadh")
	viper.Set("analytics.top_categories", 3)
	viper.Set("analytics.palette", []string{"#000000"})
	viper.Set("analytics.heatmap.low", 10)
	viper.Set("analytics.heatmap.medium", "20.5")
	viper.Set("analytics.heatmap.high", 30.25)

	cfg, err := LoadAnalyticsConfig()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Riyadh", cfg.Location.String())
	assert.Equal(t, 3, cfg.TopN)
	assert.Equal(t, []string{"#000000"}, cfg.Palette)
	assert.True(t, cfg.Thresholds.Low.Equal(decimal.NewFromInt(10)))
	assert.True(t, cfg.Thresholds.Medium.Equal(decimal.RequireFromString("20.5")))
	assert.True(t, cfg.Thresholds.High.Equal(decimal.RequireFromString("30.25")))
}

func TestLoadAnalyticsConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
	}{
		{name: "unknown zone", set: map[string]any{"analytics.timezone": "Mars/Olympus"}},
		{name: "zero top", set: map[string]any{"analytics.top_categories": 0}},
		{name: "threshold order", set: map[string]any{"analytics.heatmap.low": 5000}},
		{name: "threshold text", set: map[string]any{"analytics.heatmap.high": "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			for k, v := range tt.set {
				viper.Set(k, v)
			}

			_, err := LoadAnalyticsConfig()
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestLoadSourceConfig(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		wantErr error
		check   func(t *testing.T, cfg *Source)
	}{
		{
			name: "defaults to store",
			check: func(t *testing.T, cfg *Source) {
				t.Helper()
				assert.Equal(t, SourceStore, cfg.Kind)
				assert.Equal(t, "me", cfg.UserID)
				assert.Equal(t, 3, cfg.Retry.MaxAttempts)
				assert.Equal(t, "raseed.db", filepath.Base(cfg.DatabasePath))
			},
		},
		{
			name: "http source",
			set: map[string]any{
				"source.kind":     "HTTP",
				"source.base_url": "https://receipts.example.com/api",
				"source.token":    "secret",
				"source.timeout":  "5s",
				"source.retries":  5,
				"user":            "u-42",
			},
			check: func(t *testing.T, cfg *Source) {
				t.Helper()
				assert.Equal(t, SourceHTTP, cfg.Kind)
				assert.Equal(t, "secret", cfg.Token)
				assert.Equal(t, 5*time.Second, cfg.Timeout)
				assert.Equal(t, 5, cfg.Retry.MaxAttempts)
				assert.Equal(t, "u-42", cfg.UserID)
			},
		},
		{
			name: "file source",
			set:  map[string]any{"source.kind": "file", "source.file": "/tmp/receipts.json"},
			check: func(t *testing.T, cfg *Source) {
				t.Helper()
				assert.Equal(t, "/tmp/receipts.json", cfg.File)
			},
		},
		{name: "http without url", set: map[string]any{"source.kind": "http"}, wantErr: common.ErrMissingConfig},
		{name: "file without path", set: map[string]any{"source.kind": "file"}, wantErr: common.ErrMissingConfig},
		{name: "unknown kind", set: map[string]any{"source.kind": "ftp"}, wantErr: common.ErrInvalidConfig},
		{name: "zero retries", set: map[string]any{"source.retries": 0}, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			for k, v := range tt.set {
				viper.Set(k, v)
			}

			cfg, err := LoadSourceConfig()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadSheetsConfig(t *testing.T) {
	for _, key := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
		"GOOGLE_SHEETS_SPREADSHEET_NAME",
	} {
		t.Setenv(key, "")
	}

	t.Run("viper oauth", func(t *testing.T) {
		resetViper(t)
		viper.Set("sheets.client_id", "id")
		viper.Set("sheets.client_secret", "secret")
		viper.Set("sheets.refresh_token", "refresh")
		viper.Set("sheets.sheet_title", "Q1")

		cfg, err := LoadSheetsConfig()
		require.NoError(t, err)
		assert.True(t, cfg.HasOAuth())
		assert.Equal(t, "Q1", cfg.SheetTitle)
	})

	t.Run("env fallback", func(t *testing.T) {
		resetViper(t)
		t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/etc/raseed/sa.json")
		t.Setenv("GOOGLE_SHEETS_SPREADSHEET_NAME", "Household")

		cfg, err := LoadSheetsConfig()
		require.NoError(t, err)
		assert.Equal(t, "/etc/raseed/sa.json", cfg.ServiceAccountPath)
		assert.Equal(t, "Household", cfg.SpreadsheetName)
	})

	t.Run("no credentials", func(t *testing.T) {
		resetViper(t)

		_, err := LoadSheetsConfig()
		assert.ErrorIs(t, err, sheets.ErrNoAuth)
	})
}

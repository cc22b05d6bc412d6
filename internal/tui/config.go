package tui

import (
	"log/slog"

	"github.com/Veraticus/raseed/internal/model"
	"github.com/Veraticus/raseed/internal/service"
	"github.com/Veraticus/raseed/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Exporter service.Exporter
	Logger   *slog.Logger
	Currency string
	Receipts []model.Receipt
	Width    int
	Height   int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Width:  100,
		Height: 30,
	}
}

// WithReceipts sets the canonical receipts to browse.
func WithReceipts(receipts []model.Receipt) Option {
	return func(c *Config) {
		c.Receipts = receipts
	}
}

// WithExporter sets the bulk action run over the selection.
func WithExporter(exporter service.Exporter) Option {
	return func(c *Config) {
		c.Exporter = exporter
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithCurrency sets the currency prefix for totals.
func WithCurrency(currency string) Option {
	return func(c *Config) {
		c.Currency = currency
	}
}

// WithLogger sets the logger used by bulk actions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

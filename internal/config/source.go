package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/raseed/internal/common"
	"github.com/Veraticus/raseed/internal/service"
	"github.com/spf13/viper"
)

// SourceKind selects where receipts are read from.
type SourceKind string

// Source kinds.
const (
	SourceStore SourceKind = "store"
	SourceHTTP  SourceKind = "http"
	SourceFile  SourceKind = "file"
)

// Source configures the receipt source and the local store.
type Source struct {
	Kind         SourceKind
	BaseURL      string
	Token        string
	File         string
	DatabasePath string
	UserID       string
	Timeout      time.Duration
	Retry        service.RetryOptions
}

// DefaultDatabasePath is where the receipt store lives unless database.path is set.
const DefaultDatabasePath = "$HOME/.local/share/raseed/raseed.db"

// DefaultSource returns a Source reading from the local store.
func DefaultSource() Source {
	return Source{
		Kind:         SourceStore,
		DatabasePath: ExpandPath(DefaultDatabasePath),
		UserID:       "me",
		Timeout:      30 * time.Second,
		Retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// LoadSourceConfig reads the source.*, database.path and user keys.
func LoadSourceConfig() (*Source, error) {
	cfg := DefaultSource()

	if v := strings.TrimSpace(viper.GetString("source.kind")); v != "" {
		cfg.Kind = SourceKind(strings.ToLower(v))
	}
	if v := viper.GetString("source.base_url"); v != "" {
		cfg.BaseURL = v
	}
	if v := viper.GetString("source.token"); v != "" {
		cfg.Token = v
	}
	if v := viper.GetString("source.file"); v != "" {
		cfg.File = ExpandPath(v)
	}
	if v := viper.GetString("database.path"); v != "" {
		cfg.DatabasePath = ExpandPath(v)
	}
	if v := strings.TrimSpace(viper.GetString("user")); v != "" {
		cfg.UserID = v
	}
	if viper.IsSet("source.timeout") {
		cfg.Timeout = viper.GetDuration("source.timeout")
	}
	if viper.IsSet("source.retries") {
		cfg.Retry.MaxAttempts = viper.GetInt("source.retries")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the settings needed by Kind are present.
func (s *Source) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("%w: user id", common.ErrMissingConfig)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("%w: source timeout cannot be negative", common.ErrInvalidConfig)
	}
	if s.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: source retries must be at least 1", common.ErrInvalidConfig)
	}

	switch s.Kind {
	case SourceStore:
		if s.DatabasePath == "" {
			return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
		}
	case SourceHTTP:
		if s.BaseURL == "" {
			return fmt.Errorf("%w: source.base_url", common.ErrMissingConfig)
		}
	case SourceFile:
		if s.File == "" {
			return fmt.Errorf("%w: source.file", common.ErrMissingConfig)
		}
	default:
		return fmt.Errorf("%w: unknown source kind %q (store, http, file)", common.ErrInvalidConfig, s.Kind)
	}
	return nil
}

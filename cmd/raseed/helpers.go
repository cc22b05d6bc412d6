package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/raseed/internal/config"
	"github.com/Veraticus/raseed/internal/model"
	"github.com/Veraticus/raseed/internal/normalizer"
	"github.com/Veraticus/raseed/internal/service"
	"github.com/Veraticus/raseed/internal/source"
	"github.com/Veraticus/raseed/internal/storage"
	"github.com/spf13/viper"
)

// now is swapped in tests.
var now = time.Now

// initStorage opens the receipt store at path and runs migrations.
func initStorage(ctx context.Context, path string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openSource returns the configured receipt source. The returned close
// function releases the store when the source is the local database.
func openSource(ctx context.Context, cfg *config.Source) (service.ReceiptSource, func(), error) {
	switch cfg.Kind {
	case config.SourceHTTP:
		src, err := source.NewHTTPSource(ctx, source.HTTPConfig{
			BaseURL: cfg.BaseURL,
			Token:   cfg.Token,
			Timeout: cfg.Timeout,
			Retry:   cfg.Retry,
		}, slog.Default())
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil

	case config.SourceFile:
		return source.NewFileSource(cfg.File), func() {}, nil

	default:
		store, err := initStorage(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}

// receiptSet is the normalized input every analytics command works on.
type receiptSet struct {
	analytics *config.Analytics
	receipts  []model.Receipt
}

// loadReceipts reads raw receipts from the configured source and
// normalizes them in the configured time zone.
func loadReceipts(ctx context.Context) (*receiptSet, error) {
	srcCfg, err := config.LoadSourceConfig()
	if err != nil {
		return nil, err
	}
	analytics, err := config.LoadAnalyticsConfig()
	if err != nil {
		return nil, err
	}

	src, closeSource, err := openSource(ctx, srcCfg)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	raw, err := src.FetchReceipts(ctx, srcCfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipts: %w", err)
	}

	n := normalizer.New(normalizer.Options{
		Location: analytics.Location,
		Palette:  analytics.Palette,
		Logger:   slog.Default(),
	})
	receipts := n.Normalize(raw)

	slog.Debug("Loaded receipts",
		"source", srcCfg.Kind,
		"user", srcCfg.UserID,
		"count", len(receipts))

	return &receiptSet{analytics: analytics, receipts: receipts}, nil
}

// currency is the optional prefix printed before totals.
func currency() string {
	return viper.GetString("display.currency")
}

// writePNG renders into path via render.
func writePNG(path string, render func(w io.Writer) error) error {
	path = config.ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write chart file: %w", err)
	}

	slog.Info("Chart written", "path", path)
	return nil
}

// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/raseed/internal/model"
)

// ReceiptSource retrieves raw receipt payloads for a user.
type ReceiptSource interface {
	FetchReceipts(ctx context.Context, userID string) ([]model.RawReceipt, error)
}

// ReceiptStore persists raw receipt payloads. Derived aggregates are never stored.
type ReceiptStore interface {
	ReceiptSource
	SaveRawReceipts(ctx context.Context, userID, source string, receipts []model.RawReceipt) (*model.ImportBatch, error)
	CountReceipts(ctx context.Context, userID string) (int, error)
	PruneReceipts(ctx context.Context, userID string, keep []string) (int64, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Exporter runs a bulk action over a set of canonical receipts.
type Exporter interface {
	Export(ctx context.Context, receipts []model.Receipt) error
}

// ExporterFunc adapts a function to the Exporter interface.
type ExporterFunc func(ctx context.Context, receipts []model.Receipt) error

// Export calls f.
func (f ExporterFunc) Export(ctx context.Context, receipts []model.Receipt) error {
	return f(ctx, receipts)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// Package storage keeps raw receipt payloads in SQLite so the analytics can
// run offline. Only raw payloads are stored; every derived view is recomputed.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/raseed/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrEmptySlice     = errors.New("slice cannot be empty")
	ErrInvalidReceipt = errors.New("invalid receipt payload")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRawReceipts validates a batch of payloads for saving.
func validateRawReceipts(receipts []model.RawReceipt) error {
	if receipts == nil {
		return fmt.Errorf("%w: receipts", ErrNilParameter)
	}
	if len(receipts) == 0 {
		return fmt.Errorf("%w: receipts", ErrEmptySlice)
	}

	for i, r := range receipts {
		if r == nil {
			return fmt.Errorf("%w: receipt at index %d is nil", ErrInvalidReceipt, i)
		}
	}
	return nil
}

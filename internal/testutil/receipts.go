package testutil

import (
	"fmt"
	"time"

	"github.com/Veraticus/raseed/internal/model"
	"github.com/shopspring/decimal"
)

// ReceiptBuilder builds canonical receipts for tests with a fluent API.
//
// Example:
//
//	receipts := testutil.NewReceiptBuilder(time.UTC).
//		Add("Cafe", "coffee", 2025, time.January, 1, "12.50").
//		AddUndated("Mystery", "", "3").
//		Build()
type ReceiptBuilder struct {
	loc      *time.Location
	receipts []model.Receipt
}

// NewReceiptBuilder creates a builder whose dates are interpreted in loc.
func NewReceiptBuilder(loc *time.Location) *ReceiptBuilder {
	if loc == nil {
		loc = time.UTC
	}
	return &ReceiptBuilder{loc: loc}
}

// Add appends a dated receipt at the first instant of the given local day.
func (b *ReceiptBuilder) Add(merchant, category string, year int, month time.Month, day int, amount string) *ReceiptBuilder {
	return b.AddAt(merchant, category, model.StartOfDay(year, month, day, b.loc), amount)
}

// AddAt appends a dated receipt at an exact instant.
func (b *ReceiptBuilder) AddAt(merchant, category string, at time.Time, amount string) *ReceiptBuilder {
	ts := at.In(b.loc)
	b.receipts = append(b.receipts, b.receipt(merchant, category, &ts, amount))
	return b
}

// AddUndated appends a receipt without a timestamp.
func (b *ReceiptBuilder) AddUndated(merchant, category, amount string) *ReceiptBuilder {
	b.receipts = append(b.receipts, b.receipt(merchant, category, nil, amount))
	return b
}

// Build returns a copy of the accumulated receipts.
func (b *ReceiptBuilder) Build() []model.Receipt {
	out := make([]model.Receipt, len(b.receipts))
	copy(out, b.receipts)
	return out
}

func (b *ReceiptBuilder) receipt(merchant, category string, ts *time.Time, amount string) model.Receipt {
	index := len(b.receipts)
	return model.Receipt{
		ID:          fmt.Sprintf("r%d", index+1),
		Merchant:    merchant,
		Category:    category,
		Timestamp:   ts,
		TotalAmount: decimal.RequireFromString(amount),
		Index:       index,
	}
}

// Amount parses a decimal literal, panicking on malformed test input.
func Amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// IDs returns the receipt ids in order.
func IDs(receipts []model.Receipt) []string {
	ids := make([]string, len(receipts))
	for i, r := range receipts {
		ids[i] = r.ID
	}
	return ids
}

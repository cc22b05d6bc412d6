// Package normalizer converts loosely typed backend receipt payloads into
// canonical model.Receipt values.
//
// Normalization never fails for a single record: a field that is missing or
// malformed degrades to a safe default (nil timestamp, zero amount, empty
// category) and the degradation is logged at debug level.
package normalizer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/raseed/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// DefaultPalette is the display color rotation applied by input position.
var DefaultPalette = []string{"#4285F4", "#EA4335", "#FBBC05", "#34A853"}

// Payload field names.
const (
	fieldReceiptID = "receipt_id"
	fieldID        = "id"
	fieldStore     = "store"
	fieldTimestamp = "timestamp"
	fieldTotal     = "total_amount"
	fieldItems     = "items"
	fieldLocation  = "location"
	fieldSummary   = "summary"
	fieldOverspent = "overspent"

	fieldItemName     = "item_name"
	fieldItemCategory = "category"
	fieldQuantity     = "quantity"
	fieldUnitPrice    = "unit_price"
)

// Amounts outside these bounds are treated as malformed.
const (
	maxAmountDigits = 15 // digits before the decimal point
	maxAmountScale  = 12 // digits after it
)

// Options configures a Normalizer.
type Options struct {
	// Location is the display time zone. Timestamps without a zone are read
	// in it and every timestamp is converted to it. Defaults to time.Local.
	Location *time.Location
	Logger   *slog.Logger
	// Palette overrides DefaultPalette when non-empty.
	Palette []string
}

// Normalizer turns raw payloads into canonical receipts.
type Normalizer struct {
	loc     *time.Location
	logger  *slog.Logger
	palette []string
}

// New creates a Normalizer.
func New(opts Options) *Normalizer {
	n := &Normalizer{
		loc:     opts.Location,
		logger:  opts.Logger,
		palette: opts.Palette,
	}
	if n.loc == nil {
		n.loc = time.Local
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	if len(n.palette) == 0 {
		n.palette = DefaultPalette
	}
	return n
}

// Location returns the display time zone receipts are converted to.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Normalize converts every payload, preserving input order. The position of
// each payload in raw determines its display color.
func (n *Normalizer) Normalize(raw []model.RawReceipt) []model.Receipt {
	receipts := make([]model.Receipt, len(raw))
	for i, r := range raw {
		receipts[i] = n.NormalizeOne(r, i)
	}
	return receipts
}

// NormalizeOne converts a single payload found at position index.
func (n *Normalizer) NormalizeOne(raw model.RawReceipt, index int) model.Receipt {
	r := model.Receipt{
		ID:          n.id(raw, index),
		Merchant:    model.UnknownMerchant,
		TotalAmount: decimal.Zero,
		Index:       index,
		Color:       n.palette[positiveMod(index, len(n.palette))],
	}

	if merchant := n.optionalString(raw, fieldStore, index); merchant != "" {
		r.Merchant = merchant
	}

	r.Timestamp = n.timestamp(raw, index)
	r.TotalAmount = n.amount(raw[fieldTotal], fieldTotal, index, decimal.Zero)
	r.Items = n.items(raw, index)
	if len(r.Items) > 0 {
		r.Category = r.Items[0].Category
	}

	r.Location = n.optionalString(raw, fieldLocation, index)
	r.Summary = n.optionalString(raw, fieldSummary, index)

	if v, ok := raw[fieldOverspent]; ok && v != nil {
		if b, isBool := v.(bool); isBool {
			r.Overspent = b
		} else {
			n.degraded(index, fieldOverspent, fmt.Errorf("unexpected type %T", v))
		}
	}

	return r
}

func (n *Normalizer) id(raw model.RawReceipt, index int) string {
	for _, field := range []string{fieldReceiptID, fieldID} {
		v, ok := raw[field]
		if !ok || v == nil {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			n.degraded(index, field, err)
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return fmt.Sprintf("receipt-%d", index)
}

func (n *Normalizer) optionalString(raw map[string]any, field string, index int) string {
	v, ok := raw[field]
	if !ok || v == nil {
		return ""
	}
	s, isString := v.(string)
	if !isString {
		n.degraded(index, field, fmt.Errorf("unexpected type %T", v))
		return ""
	}
	return strings.TrimSpace(s)
}

func (n *Normalizer) timestamp(raw model.RawReceipt, index int) *time.Time {
	v, ok := raw[fieldTimestamp]
	if !ok || v == nil {
		return nil
	}

	var (
		t   time.Time
		err error
	)
	switch value := v.(type) {
	case string:
		if strings.TrimSpace(value) == "" {
			return nil
		}
		t, err = cast.ToTimeInDefaultLocationE(strings.TrimSpace(value), n.loc)
	case time.Time:
		t = value
	default:
		err = fmt.Errorf("unexpected type %T", v)
	}
	if err != nil {
		n.degraded(index, fieldTimestamp, err)
		return nil
	}
	if t.IsZero() {
		return nil
	}

	local := t.In(n.loc)
	return &local
}

// amount parses a string or number as a non-negative decimal, falling back
// to def on absence, parse failure, a negative value or a value outside the
// digit bounds.
func (n *Normalizer) amount(v any, field string, index int, def decimal.Decimal) decimal.Decimal {
	if v == nil {
		return def
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		n.degraded(index, field, err)
		return def
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		n.degraded(index, field, err)
		return def
	}
	if d.IsNegative() {
		n.degraded(index, field, fmt.Errorf("negative value %s", d))
		return def
	}
	if exp := int(d.Exponent()); exp < -maxAmountScale || exp > maxAmountDigits || exp+d.NumDigits() > maxAmountDigits {
		n.degraded(index, field, fmt.Errorf("value %q out of range", s))
		return def
	}
	return d
}

func (n *Normalizer) items(raw model.RawReceipt, index int) []model.Item {
	v, ok := raw[fieldItems]
	if !ok || v == nil {
		return nil
	}

	list, err := cast.ToSliceE(v)
	if err != nil {
		n.degraded(index, fieldItems, err)
		return nil
	}

	items := make([]model.Item, 0, len(list))
	for _, entry := range list {
		fields, err := cast.ToStringMapE(entry)
		if err != nil {
			n.degraded(index, fieldItems, err)
			continue
		}
		items = append(items, model.Item{
			Name:      n.optionalString(fields, fieldItemName, index),
			Category:  n.optionalString(fields, fieldItemCategory, index),
			Quantity:  n.amount(fields[fieldQuantity], fieldQuantity, index, decimal.NewFromInt(1)),
			UnitPrice: n.amount(fields[fieldUnitPrice], fieldUnitPrice, index, decimal.Zero),
		})
	}
	return items
}

func (n *Normalizer) degraded(index int, field string, err error) {
	n.logger.Debug("Receipt field degraded to default",
		"index", index,
		"field", field,
		"error", err)
}

func positiveMod(i, m int) int {
	r := i % m
	if r < 0 {
		r += m
	}
	return r
}

// Package listview filters and sorts receipts for list screens and tracks the
// multi-select state used by bulk actions.
package listview

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/raseed/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CategoryAll is the category filter value that matches every receipt.
const CategoryAll = "All"

// SortCriteria names a list ordering.
type SortCriteria string

// Supported orderings.
const (
	SortDateDesc     SortCriteria = "date-desc"
	SortDateAsc      SortCriteria = "date-asc"
	SortAmountDesc   SortCriteria = "amount-desc"
	SortAmountAsc    SortCriteria = "amount-asc"
	SortMerchantAsc  SortCriteria = "merchant-asc"
	SortMerchantDesc SortCriteria = "merchant-desc"
)

// DefaultSort is used when no or an unknown criteria is given.
const DefaultSort = SortDateDesc

// SortOptions lists every ordering in menu order.
func SortOptions() []SortCriteria {
	return []SortCriteria{
		SortDateDesc,
		SortDateAsc,
		SortAmountDesc,
		SortAmountAsc,
		SortMerchantAsc,
		SortMerchantDesc,
	}
}

// ParseSortCriteria parses an ordering name; "" yields DefaultSort.
func ParseSortCriteria(s string) (SortCriteria, error) {
	c := SortCriteria(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return DefaultSort, nil
	}
	for _, known := range SortOptions() {
		if c == known {
			return c, nil
		}
	}
	return DefaultSort, fmt.Errorf("unknown sort %q", s)
}

// Next returns the ordering after c in menu order, wrapping around.
func (c SortCriteria) Next() SortCriteria {
	options := SortOptions()
	for i, o := range options {
		if o == c {
			return options[(i+1)%len(options)]
		}
	}
	return DefaultSort
}

// FilterState is the complete input of a list view. Empty fields do not filter.
type FilterState struct {
	SearchText string
	// Category matches exactly; "" and CategoryAll match everything.
	Category string
	// SelectedDate is a YYYY-MM-DD local date.
	SelectedDate string
	Sort         SortCriteria
}

// View is the filtered, sorted list.
type View struct {
	Items []model.Receipt
	Count int
}

// IDs returns the ids of the visible receipts in display order.
func (v View) IDs() []string {
	ids := make([]string, len(v.Items))
	for i, r := range v.Items {
		ids[i] = r.ID
	}
	return ids
}

// Apply filters receipts by every active predicate of f and sorts the
// survivors stably. Receipt dates are compared in each timestamp's own
// location. The input slice is not modified.
func Apply(receipts []model.Receipt, f FilterState) View {
	search := strings.ToLower(strings.TrimSpace(f.SearchText))

	items := make([]model.Receipt, 0, len(receipts))
	for _, r := range receipts {
		if search != "" && !strings.Contains(strings.ToLower(r.Merchant), search) {
			continue
		}
		if f.Category != "" && f.Category != CategoryAll && r.Category != f.Category {
			continue
		}
		if f.SelectedDate != "" {
			date, ok := r.LocalDate(nil)
			if !ok || date != f.SelectedDate {
				continue
			}
		}
		items = append(items, r)
	}

	sortReceipts(items, f.Sort)
	return View{Items: items, Count: len(items)}
}

func sortReceipts(items []model.Receipt, criteria SortCriteria) {
	var less func(a, b model.Receipt) bool

	switch criteria {
	case SortDateAsc:
		less = func(a, b model.Receipt) bool { return sortTime(a).Before(sortTime(b)) }
	case SortAmountDesc:
		less = func(a, b model.Receipt) bool { return a.TotalAmount.GreaterThan(b.TotalAmount) }
	case SortAmountAsc:
		less = func(a, b model.Receipt) bool { return a.TotalAmount.LessThan(b.TotalAmount) }
	case SortMerchantAsc, SortMerchantDesc:
		collator := collate.New(language.English)
		sign := 1
		if criteria == SortMerchantDesc {
			sign = -1
		}
		less = func(a, b model.Receipt) bool {
			return sign*collator.CompareString(a.Merchant, b.Merchant) < 0
		}
	default:
		less = func(a, b model.Receipt) bool { return sortTime(a).After(sortTime(b)) }
	}

	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// sortTime orders undated receipts as the zero instant.
func sortTime(r model.Receipt) time.Time {
	if r.Timestamp == nil {
		return time.Time{}
	}
	return *r.Timestamp
}

// Categories returns CategoryAll followed by every distinct non-empty
// receipt category in first-seen order. Each entry is a valid
// FilterState.Category.
func Categories(receipts []model.Receipt) []string {
	seen := map[string]bool{CategoryAll: true}
	out := []string{CategoryAll}
	for _, r := range receipts {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		out = append(out, r.Category)
	}
	return out
}

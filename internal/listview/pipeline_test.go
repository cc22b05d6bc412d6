package listview

import (
	"testing"
	"time"

	"github.com/Veraticus/raseed/internal/model"
	"github.com/Veraticus/raseed/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipts() []model.Receipt {
	return testutil.NewReceiptBuilder(time.UTC).
		Add("Whole Foods", "grocery", 2025, time.January, 3, "82.10").     // r1
		Add("Shell", "gas", 2025, time.January, 5, "40").                  // r2
		Add("Blue Bottle", "coffee", 2025, time.January, 5, "6.50").       // r3
		Add("Whole Foods Market", "grocery", 2025, time.January, 7, "40"). // r4
		AddUndated("Ångström Bakery", "food", "12").                       // r5
		Add("Zed's", "", 2025, time.January, 2, "40").                     // r6
		Build()
}

func TestApply_Filters(t *testing.T) {
	receipts := sampleReceipts()

	tests := []struct {
		name    string
		filter  FilterState
		wantIDs []string
	}{
		{name: "no filters sorts newest first", filter: FilterState{}, wantIDs: []string{"r4", "r2", "r3", "r1", "r6", "r5"}},
		{name: "search is case-insensitive", filter: FilterState{SearchText: "  WHOLE "}, wantIDs: []string{"r4", "r1"}},
		{name: "category all bypasses", filter: FilterState{Category: CategoryAll}, wantIDs: []string{"r4", "r2", "r3", "r1", "r6", "r5"}},
		{name: "category exact match", filter: FilterState{Category: "grocery"}, wantIDs: []string{"r4", "r1"}},
		{name: "category is case-sensitive", filter: FilterState{Category: "Grocery"}, wantIDs: []string{}},
		{name: "selected date", filter: FilterState{SelectedDate: "2025-01-05"}, wantIDs: []string{"r2", "r3"}},
		{name: "conjunctive", filter: FilterState{SearchText: "shell", SelectedDate: "2025-01-05", Category: "gas"}, wantIDs: []string{"r2"}},
		{name: "conjunctive with no survivors", filter: FilterState{SearchText: "shell", Category: "coffee"}, wantIDs: []string{}},
		{name: "undated never matches a date", filter: FilterState{SearchText: "bakery", SelectedDate: "0001-01-01"}, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Apply(receipts, tt.filter)
			assert.Equal(t, tt.wantIDs, view.IDs())
			assert.Equal(t, len(tt.wantIDs), view.Count)
		})
	}
}

func TestApply_Sorts(t *testing.T) {
	receipts := sampleReceipts()

	tests := []struct {
		sort    SortCriteria
		wantIDs []string
	}{
		{sort: SortDateDesc, wantIDs: []string{"r4", "r2", "r3", "r1", "r6", "r5"}},
		{sort: SortDateAsc, wantIDs: []string{"r5", "r6", "r1", "r2", "r3", "r4"}},
		{sort: SortAmountDesc, wantIDs: []string{"r1", "r2", "r4", "r6", "r5", "r3"}},
		{sort: SortAmountAsc, wantIDs: []string{"r3", "r5", "r2", "r4", "r6", "r1"}},
		{sort: SortMerchantAsc, wantIDs: []string{"r5", "r3", "r2", "r1", "r4", "r6"}},
		{sort: SortMerchantDesc, wantIDs: []string{"r6", "r4", "r1", "r2", "r3", "r5"}},
		{sort: "bogus", wantIDs: []string{"r4", "r2", "r3", "r1", "r6", "r5"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			assert.Equal(t, tt.wantIDs, Apply(receipts, FilterState{Sort: tt.sort}).IDs())
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	receipts := sampleReceipts()
	before := testutil.IDs(receipts)

	Apply(receipts, FilterState{Sort: SortAmountAsc})
	assert.Equal(t, before, testutil.IDs(receipts))
}

func TestApply_Idempotent(t *testing.T) {
	receipts := sampleReceipts()
	f := FilterState{SearchText: "o", Sort: SortAmountDesc}

	once := Apply(receipts, f)
	twice := Apply(once.Items, f)
	assert.Equal(t, once.IDs(), twice.IDs())
}

func TestApply_AmountOrdersReverseExceptTies(t *testing.T) {
	receipts := sampleReceipts()

	desc := Apply(receipts, FilterState{Sort: SortAmountDesc}).Items
	asc := Apply(receipts, FilterState{Sort: SortAmountAsc}).Items
	require.Len(t, asc, len(desc))

	for i := range desc {
		mirrored := asc[len(asc)-1-i]
		assert.True(t, desc[i].TotalAmount.Equal(mirrored.TotalAmount), "position %d", i)
	}
}

func TestParseSortCriteria(t *testing.T) {
	c, err := ParseSortCriteria("")
	require.NoError(t, err)
	assert.Equal(t, SortDateDesc, c)

	c, err = ParseSortCriteria("Merchant-ASC")
	require.NoError(t, err)
	assert.Equal(t, SortMerchantAsc, c)

	c, err = ParseSortCriteria("price")
	assert.Error(t, err)
	assert.Equal(t, DefaultSort, c)
}

func TestSortCriteria_Next(t *testing.T) {
	assert.Equal(t, SortDateAsc, SortDateDesc.Next())
	assert.Equal(t, SortDateDesc, SortMerchantDesc.Next())
	assert.Equal(t, DefaultSort, SortCriteria("bogus").Next())
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"All", "grocery", "gas", "coffee", "food"}, Categories(sampleReceipts()))
	assert.Equal(t, []string{"All"}, Categories(nil))
}

func TestCategories_EveryTabMatches(t *testing.T) {
	receipts := sampleReceipts()
	// A later item's category is not the receipt category.
	receipts[0].Items = []model.Item{{Name: "Apples", Category: "grocery"}, {Name: "Soap", Category: "household"}}

	tabs := Categories(receipts)
	assert.NotContains(t, tabs, "household")
	for _, tab := range tabs[1:] {
		assert.NotZero(t, Apply(receipts, FilterState{Category: tab}).Count, "tab %s", tab)
	}
}

package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/raseed/internal/listview"
	"github.com/Veraticus/raseed/internal/model"
	"github.com/Veraticus/raseed/internal/service"
	"github.com/Veraticus/raseed/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func browserReceipts() []model.Receipt {
	return testutil.NewReceiptBuilder(time.UTC).
		Add("Blue Bottle", "coffee", 2025, time.March, 4, "4.50").
		Add("Safeway", "groceries", 2025, time.March, 5, "82.10").
		Add("Blue Bottle", "coffee", 2025, time.March, 5, "6").
		AddUndated("Mystery", "shopping", "10").
		Build()
}

// recordingExporter captures the ids of every export.
type recordingExporter struct {
	err   error
	calls [][]string
	mu    sync.Mutex
}

func (r *recordingExporter) Export(_ context.Context, receipts []model.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, testutil.IDs(receipts))
	return r.err
}

func newTestModel(t *testing.T, opts ...Option) Model {
	t.Helper()
	cfg := defaultConfig()
	cfg.Receipts = browserReceipts()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newModel(context.Background(), cfg)
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyCtrlA = tea.KeyMsg{Type: tea.KeyCtrlA}
)

func TestModel_InitialView(t *testing.T) {
	m := newTestModel(t)

	assert.Equal(t, listview.CategoryAll, m.Filter().Category)
	assert.Equal(t, listview.DefaultSort, m.Filter().Sort)
	assert.Equal(t, []string{"r2", "r3", "r1", "r4"}, m.Visible().IDs())
	assert.Equal(t, listview.ModeBrowsing, m.Selection().Mode())

	view := m.View()
	assert.Contains(t, view, "Receipts")
	assert.Contains(t, view, "4 of 4 shown")
	assert.Contains(t, view, "All")
}

func TestModel_CategoryCycling(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, runes("c"))
	assert.Equal(t, "coffee", m.Filter().Category)
	assert.Equal(t, []string{"r3", "r1"}, m.Visible().IDs())

	m = update(t, m, runes("c"))
	assert.Equal(t, "groceries", m.Filter().Category)
	assert.Equal(t, []string{"r2"}, m.Visible().IDs())

	m = update(t, m, runes("c"), runes("c"))
	assert.Equal(t, listview.CategoryAll, m.Filter().Category)
	assert.Equal(t, 4, m.Visible().Count)
}

func TestModel_SortCycling(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, runes("o"))
	assert.Equal(t, listview.SortDateAsc, m.Filter().Sort)
	assert.Equal(t, []string{"r4", "r1", "r2", "r3"}, m.Visible().IDs())

	m = update(t, m, runes("o"))
	assert.Equal(t, listview.SortAmountDesc, m.Filter().Sort)
	assert.Equal(t, []string{"r2", "r4", "r3", "r1"}, m.Visible().IDs())
}

func TestModel_Search(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, runes("/"), runes("BLUE"), keyEnter)
	assert.Equal(t, "BLUE", m.Filter().SearchText)
	assert.Equal(t, []string{"r3", "r1"}, m.Visible().IDs())
	assert.False(t, m.searching)

	// Keys typed while searching go to the input, not the bindings.
	m = update(t, m, runes("/"), runes("c"))
	assert.Equal(t, "BLUEc", m.Filter().SearchText)
	assert.Equal(t, listview.CategoryAll, m.Filter().Category)
	assert.Zero(t, m.Visible().Count)

	m = update(t, m, keyEsc)
	assert.Empty(t, m.Filter().SearchText)
	assert.Equal(t, 4, m.Visible().Count)
}

func TestModel_DateFilter(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, runes("]"))
	assert.Equal(t, "2025-03-05", m.Filter().SelectedDate)
	assert.Equal(t, []string{"r2", "r3"}, m.Visible().IDs())

	m = update(t, m, runes("]"))
	assert.Equal(t, "2025-03-04", m.Filter().SelectedDate)
	assert.Equal(t, []string{"r1"}, m.Visible().IDs())

	m = update(t, m, runes("]"))
	assert.Empty(t, m.Filter().SelectedDate)
	assert.Equal(t, 4, m.Visible().Count)

	m = update(t, m, runes("["))
	assert.Equal(t, "2025-03-04", m.Filter().SelectedDate)

	m = update(t, m, runes("."))
	assert.Empty(t, m.Filter().SelectedDate)
}

func TestModel_ToggleDay(t *testing.T) {
	m := newTestModel(t)

	// The cursor starts on the newest receipt.
	m = update(t, m, runes("."))
	assert.Equal(t, "2025-03-05", m.Filter().SelectedDate)
	assert.Equal(t, []string{"r2", "r3"}, m.Visible().IDs())

	m = update(t, m, runes("."))
	assert.Empty(t, m.Filter().SelectedDate)
	assert.Equal(t, 4, m.Visible().Count)

	// An undated receipt has no day to filter by.
	m = update(t, m, runes("G"), runes("."))
	assert.Empty(t, m.Filter().SelectedDate)
	assert.Equal(t, 4, m.Visible().Count)
}

func TestModel_ClearFiltersKeepsSort(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, runes("o"), runes("c"), runes("]"))
	require.NotEqual(t, 4, m.Visible().Count)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})

	assert.Equal(t, listview.FilterState{Category: listview.CategoryAll, Sort: listview.SortDateAsc}, m.Filter())
	assert.Equal(t, 4, m.Visible().Count)
}

func TestModel_Selection(t *testing.T) {
	m := newTestModel(t)

	// Toggling while browsing does nothing.
	m = update(t, m, keySpace)
	assert.Zero(t, m.Selection().Len())

	m = update(t, m, runes("v"), keySpace, runes("j"), keySpace)
	assert.True(t, m.Selection().Selecting())
	assert.Equal(t, []string{"r2", "r3"}, m.Selection().IDs())

	m = update(t, m, keyCtrlA)
	assert.Equal(t, 4, m.Selection().Len())

	m = update(t, m, keyCtrlA)
	assert.Zero(t, m.Selection().Len())
	assert.True(t, m.Selection().Selecting())

	m = update(t, m, keySpace, keyEsc)
	assert.Equal(t, listview.ModeBrowsing, m.Selection().Mode())
	assert.Zero(t, m.Selection().Len())
}

func TestModel_SelectAllOnlyVisible(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, runes("c"), runes("v"), keyCtrlA)

	assert.ElementsMatch(t, []string{"r1", "r3"}, m.Selection().IDs())
}

func TestModel_Export(t *testing.T) {
	exporter := &recordingExporter{}
	m := newTestModel(t, WithExporter(exporter))

	m = update(t, m, runes("v"), keyCtrlA)
	m, cmd := updateCmd(t, m, runes("e"))
	require.NotNil(t, cmd)
	assert.True(t, m.exporting)
	assert.Contains(t, m.status, "Exporting 4 receipts")

	// A second export while one is in flight is refused.
	m, again := updateCmd(t, m, runes("e"))
	assert.Nil(t, again)
	assert.Contains(t, m.status, "already running")

	m = update(t, m, cmd())

	assert.False(t, m.exporting)
	assert.Equal(t, listview.ModeBrowsing, m.Selection().Mode())
	assert.Zero(t, m.Selection().Len())
	assert.Equal(t, "Exported 4 receipts", m.status)
	require.Len(t, exporter.calls, 1)
	assert.Equal(t, []string{"r1", "r2", "r3", "r4"}, exporter.calls[0])
}

func TestModel_ExportFailureKeepsSelection(t *testing.T) {
	exporter := &recordingExporter{err: errors.New("disk full")}
	m := newTestModel(t, WithExporter(exporter))

	m = update(t, m, runes("v"), keySpace)
	m, cmd := updateCmd(t, m, runes("e"))
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	assert.True(t, m.Selection().Selecting())
	assert.Equal(t, []string{"r2"}, m.Selection().IDs())
	assert.Equal(t, statusError, m.statusKind)
	assert.Contains(t, m.status, "disk full")
}

func TestModel_ExportCancel(t *testing.T) {
	started := make(chan struct{})
	exporter := service.ExporterFunc(func(ctx context.Context, _ []model.Receipt) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	m := newTestModel(t, WithExporter(exporter))

	m = update(t, m, runes("v"), keyCtrlA)
	m, cmd := updateCmd(t, m, runes("e"))
	require.NotNil(t, cmd)

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	<-started

	// Quitting is refused while the export runs.
	m, quit := updateCmd(t, m, runes("q"))
	assert.Nil(t, quit)

	m = update(t, m, keyEsc)
	m = update(t, m, <-done)

	assert.False(t, m.exporting)
	assert.Equal(t, listview.ModeBrowsing, m.Selection().Mode())
	assert.Equal(t, "Export canceled", m.status)
}

func TestModel_ExportGuards(t *testing.T) {
	t.Run("no exporter", func(t *testing.T) {
		m := newTestModel(t)
		m, cmd := updateCmd(t, update(t, m, runes("v"), keySpace), runes("e"))
		assert.Nil(t, cmd)
		assert.Contains(t, m.status, "No export target")
	})

	t.Run("not selecting", func(t *testing.T) {
		m := newTestModel(t, WithExporter(&recordingExporter{}))
		m, cmd := updateCmd(t, m, runes("e"))
		assert.Nil(t, cmd)
		assert.Contains(t, m.status, "Press v")
	})

	t.Run("empty selection", func(t *testing.T) {
		m := newTestModel(t, WithExporter(&recordingExporter{}))
		m, cmd := updateCmd(t, update(t, m, runes("v")), runes("e"))
		assert.Nil(t, cmd)
		assert.Contains(t, m.status, listview.ErrEmptySelection.Error())
	})
}

func TestModel_Paging(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 12})
	require.Equal(t, 3, m.listHeight())

	m = update(t, m, runes("G"))
	assert.Equal(t, 3, m.cursor)
	assert.Equal(t, 1, m.offset)

	m = update(t, m, runes("g"))
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, 0, m.offset)

	m = update(t, m, runes("k"))
	assert.Equal(t, 0, m.cursor)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)

	m, cmd := updateCmd(t, m, runes("q"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

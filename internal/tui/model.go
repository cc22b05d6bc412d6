// Package tui implements the interactive receipts browser.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Veraticus/raseed/internal/cli"
	"github.com/Veraticus/raseed/internal/heatmap"
	"github.com/Veraticus/raseed/internal/listview"
	"github.com/Veraticus/raseed/internal/model"
	"github.com/Veraticus/raseed/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the browser state. The filtered view is recomputed from
// receipts and filter after every change.
type Model struct {
	ctx          context.Context
	theme        themes.Theme
	formatter    *cli.Formatter
	bulk         *listview.BulkAction
	cancelExport context.CancelFunc
	keymap       KeyMap
	help         help.Model
	search       textinput.Model
	status       string
	receipts     []model.Receipt
	categories   []string
	dates        []string
	view         listview.View
	filter       listview.FilterState
	sel          listview.Selection
	statusKind   statusKind
	categoryIdx  int
	cursor       int
	offset       int
	width        int
	height       int
	searching    bool
	exporting    bool
	quitting     bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	search := textinput.New()
	search.Placeholder = "merchant"
	search.Prompt = "/ "
	search.CharLimit = 64

	m := Model{
		ctx:        ctx,
		theme:      cfg.Theme,
		formatter:  cli.NewFormatter(cfg.Currency),
		keymap:     DefaultKeyMap(),
		help:       help.New(),
		search:     search,
		receipts:   cfg.Receipts,
		categories: listview.Categories(cfg.Receipts),
		dates:      receiptDates(cfg.Receipts),
		filter:     listview.FilterState{Category: listview.CategoryAll, Sort: listview.DefaultSort},
		width:      cfg.Width,
		height:     cfg.Height,
	}
	if cfg.Exporter != nil {
		m.bulk = listview.NewBulkAction(cfg.Exporter, cfg.Logger)
	}
	m.refresh()
	return m
}

// receiptDates returns the distinct receipt dates, newest first.
func receiptDates(receipts []model.Receipt) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, r := range receipts {
		date, ok := r.LocalDate(nil)
		if !ok || seen[date] {
			continue
		}
		seen[date] = true
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case exportDoneMsg:
		m.handleExportDone(msg)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.abortExport()
			m.quitting = true
			return m, tea.Quit
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.filter.SearchText = ""
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.filter.SearchText != m.search.Value() {
		m.filter.SearchText = m.search.Value()
		m.refresh()
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keymap
	switch {
	case key.Matches(msg, k.Quit):
		if m.exporting {
			m.setStatus(statusWarning, "Export in progress; Esc cancels it")
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, k.Up):
		m.moveCursor(-1)
	case key.Matches(msg, k.Down):
		m.moveCursor(1)
	case key.Matches(msg, k.PageUp):
		m.moveCursor(-m.listHeight())
	case key.Matches(msg, k.PageDown):
		m.moveCursor(m.listHeight())
	case key.Matches(msg, k.Home):
		m.moveCursor(-len(m.view.Items))
	case key.Matches(msg, k.End):
		m.moveCursor(len(m.view.Items))

	case key.Matches(msg, k.Search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(msg, k.Category):
		m.categoryIdx = (m.categoryIdx + 1) % len(m.categories)
		m.filter.Category = m.categories[m.categoryIdx]
		m.refresh()

	case key.Matches(msg, k.Sort):
		m.filter.Sort = m.filter.Sort.Next()
		m.refresh()

	case key.Matches(msg, k.NextDate):
		m.stepDate(1)
	case key.Matches(msg, k.PrevDate):
		m.stepDate(-1)
	case key.Matches(msg, k.ToggleDay):
		var day string
		if r, ok := m.current(); ok {
			day, _ = r.LocalDate(nil)
		}
		m.filter.SelectedDate = heatmap.ToggleDate(m.filter.SelectedDate, day)
		m.refresh()

	case key.Matches(msg, k.ClearFilters):
		m.search.SetValue("")
		m.categoryIdx = 0
		m.filter = listview.FilterState{Category: listview.CategoryAll, Sort: m.filter.Sort}
		m.refresh()

	case key.Matches(msg, k.SelectMode):
		if m.exporting {
			return m, nil
		}
		if m.sel.Selecting() {
			m.sel = m.sel.Cancel()
		} else {
			m.sel = m.sel.Enter()
		}

	case key.Matches(msg, k.ToggleSelect):
		if r, ok := m.current(); ok && m.sel.Selecting() && !m.exporting {
			m.sel = m.sel.Toggle(r.ID)
		}

	case key.Matches(msg, k.SelectAll):
		if !m.exporting {
			m.sel = m.sel.ToggleAll(m.view.Items)
		}

	case key.Matches(msg, k.Export):
		return m.startExport()

	case key.Matches(msg, k.Cancel):
		switch {
		case m.exporting:
			m.abortExport()
		case m.sel.Selecting():
			m.sel = m.sel.Cancel()
		}
	}

	return m, nil
}

func (m Model) startExport() (tea.Model, tea.Cmd) {
	switch {
	case m.bulk == nil:
		m.setStatus(statusError, "No export target configured")
		return m, nil
	case m.exporting || m.bulk.Pending():
		m.setStatus(statusWarning, listview.ErrBulkActionPending.Error())
		return m, nil
	case !m.sel.Selecting():
		m.setStatus(statusInfo, "Press v to select receipts first")
		return m, nil
	case m.sel.Len() == 0:
		m.setStatus(statusWarning, listview.ErrEmptySelection.Error())
		return m, nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelExport = cancel
	m.exporting = true
	m.setStatus(statusPending, fmt.Sprintf("Exporting %d receipts...", m.sel.Len()))
	return m, exportCmd(ctx, m.bulk, m.sel, m.receipts)
}

func (m *Model) abortExport() {
	if m.cancelExport != nil {
		m.cancelExport()
	}
}

func (m *Model) handleExportDone(msg exportDoneMsg) {
	m.abortExport()
	m.cancelExport = nil
	m.exporting = false
	m.sel = msg.sel

	switch {
	case msg.err == nil:
		m.setStatus(statusSuccess, fmt.Sprintf("Exported %d receipts", msg.count))
	case errors.Is(msg.err, context.Canceled):
		m.setStatus(statusWarning, "Export canceled")
	default:
		m.setStatus(statusError, msg.err.Error())
	}
}

// stepDate moves the date filter through the dates that have receipts.
// Stepping past either end clears it.
func (m *Model) stepDate(delta int) {
	idx := -1
	for i, d := range m.dates {
		if d == m.filter.SelectedDate {
			idx = i
			break
		}
	}

	var next string
	switch {
	case len(m.dates) == 0:
	case idx < 0 && delta > 0:
		next = m.dates[0]
	case idx < 0:
		next = m.dates[len(m.dates)-1]
	case idx+delta >= 0 && idx+delta < len(m.dates):
		next = m.dates[idx+delta]
	}
	m.filter.SelectedDate = next
	m.refresh()
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

// refresh recomputes the filtered view.
func (m *Model) refresh() {
	m.view = listview.Apply(m.receipts, m.filter)
	m.clampCursor()
}

func (m *Model) current() (model.Receipt, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Items) {
		return model.Receipt{}, false
	}
	return m.view.Items[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.view.Items)
	m.cursor = max(min(m.cursor, n-1), 0)

	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(min(m.offset, n-h), 0)
}

// listHeight is the number of receipt rows that fit on screen.
func (m Model) listHeight() int {
	return max(m.height-10, 3)
}

// Filter returns the active filter state.
func (m Model) Filter() listview.FilterState {
	return m.filter
}

// Selection returns the selection state.
func (m Model) Selection() listview.Selection {
	return m.sel
}

// Visible returns the filtered, sorted receipts.
func (m Model) Visible() listview.View {
	return m.view
}

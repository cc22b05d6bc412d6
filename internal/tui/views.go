package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/raseed/internal/cli"
	"github.com/Veraticus/raseed/internal/listview"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.renderFilters(),
		m.renderList(),
		m.renderStatus(),
		m.help.View(m.keymap),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	total := decimal.Zero
	for _, r := range m.view.Items {
		total = total.Add(r.TotalAmount)
	}

	title := m.theme.Title.Render(cli.ReceiptIcon + " Receipts")
	mode := m.theme.Subtitle.Render(m.sel.Mode().String())
	summary := m.theme.Subtitle.Render(fmt.Sprintf("%d of %d shown, %s",
		m.view.Count, len(m.receipts), m.formatter.Amount(total)))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", mode, "  ", summary)
}

func (m Model) renderFilters() string {
	date := m.filter.SelectedDate
	if date == "" {
		date = "any day"
	}

	parts := []string{
		m.filterPart("category", m.filter.Category),
		m.filterPart("day", date),
		m.filterPart("sort", string(m.filter.Sort)),
	}
	if m.searching {
		parts = append([]string{m.search.View()}, parts...)
	} else if m.filter.SearchText != "" {
		parts = append([]string{m.filterPart("search", m.filter.SearchText)}, parts...)
	}
	return m.theme.BorderedBox.Render(strings.Join(parts, "   "))
}

func (m Model) filterPart(label, value string) string {
	return m.theme.FilterLabel.Render(label+": ") + m.theme.FilterValue.Render(value)
}

func (m Model) renderList() string {
	end := min(m.offset+m.listHeight(), len(m.view.Items))
	page := listview.View{Items: m.view.Items[m.offset:end], Count: m.view.Count}
	return m.formatter.FormatReceipts(page, m.sel, m.cursor-m.offset)
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	var style lipgloss.Style
	switch m.statusKind {
	case statusSuccess:
		style = m.theme.StatusSuccess
	case statusWarning:
		style = m.theme.StatusWarning
	case statusError:
		style = m.theme.StatusError
	case statusPending:
		style = m.theme.StatusPending
	default:
		style = m.theme.StatusInfo
	}
	return style.Render(m.status)
}

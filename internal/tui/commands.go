package tui

import (
	"context"

	"github.com/Veraticus/raseed/internal/listview"
	"github.com/Veraticus/raseed/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// exportCmd runs the bulk action off the UI goroutine.
func exportCmd(ctx context.Context, bulk *listview.BulkAction, sel listview.Selection, receipts []model.Receipt) tea.Cmd {
	return func() tea.Msg {
		next, err := bulk.Run(ctx, sel, receipts)
		return exportDoneMsg{sel: next, err: err, count: sel.Len()}
	}
}

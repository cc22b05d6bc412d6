package listview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/Veraticus/raseed/internal/model"
	"github.com/Veraticus/raseed/internal/service"
)

// Mode is the list interaction mode.
type Mode int

// Modes.
const (
	ModeBrowsing Mode = iota
	ModeSelecting
)

func (m Mode) String() string {
	if m == ModeSelecting {
		return "selecting"
	}
	return "browsing"
}

// Selection is the multi-select state of a list. It is a value: every
// transition returns a new Selection and never shares its id slice with the
// receiver. Leaving ModeSelecting always clears the selected ids.
type Selection struct {
	ids  []string
	mode Mode
}

// Mode returns the current mode.
func (s Selection) Mode() Mode {
	return s.mode
}

// Selecting reports whether s is in ModeSelecting.
func (s Selection) Selecting() bool {
	return s.mode == ModeSelecting
}

// Enter switches to ModeSelecting with nothing selected.
func (s Selection) Enter() Selection {
	return Selection{mode: ModeSelecting}
}

// Cancel abandons the selection and returns to ModeBrowsing.
func (s Selection) Cancel() Selection {
	return Selection{mode: ModeBrowsing}
}

// Complete finishes a bulk action and returns to ModeBrowsing.
func (s Selection) Complete() Selection {
	return Selection{mode: ModeBrowsing}
}

// Toggle flips id in the selection. It has no effect while browsing.
func (s Selection) Toggle(id string) Selection {
	if s.mode != ModeSelecting {
		return s
	}
	next := Selection{mode: ModeSelecting, ids: make([]string, 0, len(s.ids)+1)}
	removed := false
	for _, existing := range s.ids {
		if existing == id {
			removed = true
			continue
		}
		next.ids = append(next.ids, existing)
	}
	if !removed {
		next.ids = append(next.ids, id)
	}
	return next
}

// ToggleAll selects exactly the visible receipts, or clears the selection
// when every visible receipt is already selected. Receipts that are not
// visible are never selected by it. It has no effect while browsing.
func (s Selection) ToggleAll(visible []model.Receipt) Selection {
	if s.mode != ModeSelecting {
		return s
	}
	allSelected := true
	for _, r := range visible {
		if !s.IsSelected(r.ID) {
			allSelected = false
			break
		}
	}
	if allSelected && len(s.ids) > 0 {
		return Selection{mode: ModeSelecting}
	}

	next := Selection{mode: ModeSelecting, ids: make([]string, 0, len(visible))}
	for _, r := range visible {
		next.ids = append(next.ids, r.ID)
	}
	return next
}

// IsSelected reports whether id is selected.
func (s Selection) IsSelected(id string) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// IDs returns a copy of the selected ids in selection order.
func (s Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of selected ids.
func (s Selection) Len() int {
	return len(s.ids)
}

// Bulk action errors.
var (
	ErrBulkActionPending = errors.New("a bulk action is already running")
	ErrNotSelecting      = errors.New("bulk actions require selection mode")
	ErrEmptySelection    = errors.New("no receipts selected")
)

// BulkAction runs an Exporter over the selected receipts, one run at a time.
type BulkAction struct {
	exporter service.Exporter
	logger   *slog.Logger
	pending  atomic.Bool
}

// NewBulkAction creates a BulkAction around exporter.
func NewBulkAction(exporter service.Exporter, logger *slog.Logger) *BulkAction {
	if logger == nil {
		logger = slog.Default()
	}
	return &BulkAction{exporter: exporter, logger: logger}
}

// Pending reports whether a run is in flight.
func (b *BulkAction) Pending() bool {
	return b.pending.Load()
}

// Run exports the selected receipts, in the order they appear in receipts,
// and returns the next selection state. A successful run completes the
// selection and a canceled one cancels it; on any other failure sel is
// returned unchanged so the action can be retried.
func (b *BulkAction) Run(ctx context.Context, sel Selection, receipts []model.Receipt) (Selection, error) {
	if !sel.Selecting() {
		return sel, ErrNotSelecting
	}
	if sel.Len() == 0 {
		return sel, ErrEmptySelection
	}
	if !b.pending.CompareAndSwap(false, true) {
		return sel, ErrBulkActionPending
	}
	defer b.pending.Store(false)

	chosen := make([]model.Receipt, 0, sel.Len())
	for _, r := range receipts {
		if sel.IsSelected(r.ID) {
			chosen = append(chosen, r)
		}
	}

	b.logger.Info("Running bulk action", "selected", sel.Len(), "matched", len(chosen))

	if err := b.exporter.Export(ctx, chosen); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			b.logger.Info("Bulk action canceled", "error", ctxErr)
			return sel.Cancel(), fmt.Errorf("bulk action canceled: %w", ctxErr)
		}
		return sel, fmt.Errorf("bulk action failed: %w", err)
	}

	return sel.Complete(), nil
}

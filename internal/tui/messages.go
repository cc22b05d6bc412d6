package tui

import "github.com/Veraticus/raseed/internal/listview"

// exportDoneMsg reports the end of a bulk export.
type exportDoneMsg struct {
	err   error
	sel   listview.Selection
	count int
}

type statusKind int

const (
	statusNone statusKind = iota
	statusInfo
	statusPending
	statusSuccess
	statusWarning
	statusError
)

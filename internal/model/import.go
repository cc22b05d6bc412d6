package model

import "time"

// ImportBatch records one load of raw receipts into the local store.
type ImportBatch struct {
	ImportedAt   time.Time
	ID           string
	UserID       string
	Source       string
	ReceiptCount int
}

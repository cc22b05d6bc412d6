// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/raseed/internal/model"
	"github.com/Veraticus/raseed/internal/storage"
)

// SetupTestStore creates a migrated in-memory receipt store seeded with raw
// payloads for userID. The store is closed when the test ends.
func SetupTestStore(t *testing.T, userID string, raw ...model.RawReceipt) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if len(raw) > 0 {
		if _, err := store.SaveRawReceipts(ctx, userID, "testutil", raw); err != nil {
			t.Fatalf("failed to seed receipts: %v", err)
		}
	}

	return store
}

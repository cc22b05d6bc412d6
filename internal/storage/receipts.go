package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/Veraticus/raseed/internal/common"
	"github.com/Veraticus/raseed/internal/model"
	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// SaveRawReceipts upserts payloads for userID in one transaction and records
// the import batch. Payloads without an id get a generated one, written back
// into the stored payload as receipt_id so later loads stay stable.
func (s *SQLiteStorage) SaveRawReceipts(ctx context.Context, userID, source string, receipts []model.RawReceipt) (*model.ImportBatch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(source, "source"); err != nil {
		return nil, err
	}
	if err := validateRawReceipts(receipts); err != nil {
		return nil, err
	}

	batch := &model.ImportBatch{
		ID:           uuid.NewString(),
		UserID:       userID,
		Source:       source,
		ReceiptCount: len(receipts),
		ImportedAt:   time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO import_batches (id, user_id, source, receipt_count, imported_at) VALUES (?, ?, ?, ?, ?)`,
		batch.ID, batch.UserID, batch.Source, batch.ReceiptCount, batch.ImportedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to record import batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO receipts (user_id, id, payload, imported_at, batch_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			payload = excluded.payload,
			imported_at = excluded.imported_at,
			batch_id = excluded.batch_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare receipt insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i, raw := range receipts {
		id := payloadID(raw)
		payload := maps.Clone(raw)
		if id == "" {
			id = uuid.NewString()
			payload["receipt_id"] = id
		}

		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: receipt at index %d: %w", ErrInvalidReceipt, i, err)
		}

		if _, err := stmt.ExecContext(ctx, userID, id, string(encoded), batch.ImportedAt, batch.ID); err != nil {
			return nil, fmt.Errorf("failed to save receipt %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit receipts: %w", err)
	}

	return batch, nil
}

// ListRawReceipts returns every stored payload for userID in first-import order.
// Numbers are decoded as json.Number so amounts keep their exact digits.
func (s *SQLiteStorage) ListRawReceipts(ctx context.Context, userID string) ([]model.RawReceipt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, payload FROM receipts WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var receipts []model.RawReceipt
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}

		raw, err := decodePayload(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: receipt %s: %w", common.ErrDatabaseCorrupted, id, err)
		}
		receipts = append(receipts, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}

	return receipts, nil
}

// FetchReceipts implements service.ReceiptSource.
func (s *SQLiteStorage) FetchReceipts(ctx context.Context, userID string) ([]model.RawReceipt, error) {
	return s.ListRawReceipts(ctx, userID)
}

// CountReceipts returns the number of stored payloads for userID.
func (s *SQLiteStorage) CountReceipts(ctx context.Context, userID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count receipts: %w", err)
	}
	return count, nil
}

// LatestImport returns the most recent import batch for userID.
func (s *SQLiteStorage) LatestImport(ctx context.Context, userID string) (*model.ImportBatch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var batch model.ImportBatch
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, source, receipt_count, imported_at
		FROM import_batches
		WHERE user_id = ?
		ORDER BY imported_at DESC, rowid DESC
		LIMIT 1`, userID).Scan(&batch.ID, &batch.UserID, &batch.Source, &batch.ReceiptCount, &batch.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no imports for user %s: %w", userID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest import: %w", err)
	}
	return &batch, nil
}

// DeleteReceipts removes every stored payload and import batch for userID.
func (s *SQLiteStorage) DeleteReceipts(ctx context.Context, userID string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `DELETE FROM receipts WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete receipts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM import_batches WHERE user_id = ?`, userID); err != nil {
		return 0, fmt.Errorf("failed to delete import batches: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}

	return result.RowsAffected()
}

// PruneReceipts removes the stored payloads and import batches of userID
// that do not belong to one of the keep batches. It runs after a replacing
// import has committed all of its batches, so a failed import never loses
// receipts. An empty keep removes everything.
func (s *SQLiteStorage) PruneReceipts(ctx context.Context, userID string, keep []string) (int64, error) {
	if len(keep) == 0 {
		return s.DeleteReceipts(ctx, userID)
	}
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
	args := make([]any, 0, len(keep)+1)
	args = append(args, userID)
	for _, id := range keep {
		args = append(args, id)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM receipts WHERE user_id = ? AND (batch_id IS NULL OR batch_id NOT IN (`+placeholders+`))`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune receipts: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM import_batches WHERE user_id = ? AND id NOT IN (`+placeholders+`)`, args...); err != nil {
		return 0, fmt.Errorf("failed to prune import batches: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}

	return result.RowsAffected()
}

func payloadID(raw model.RawReceipt) string {
	for _, field := range []string{"receipt_id", "id"} {
		if v, ok := raw[field]; ok && v != nil {
			if id := strings.TrimSpace(cast.ToString(v)); id != "" {
				return id
			}
		}
	}
	return ""
}

func decodePayload(payload string) (model.RawReceipt, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var raw model.RawReceipt
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

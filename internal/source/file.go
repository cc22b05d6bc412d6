package source

import (
	"context"
	"fmt"
	"os"

	"github.com/Veraticus/raseed/internal/model"
	"github.com/Veraticus/raseed/internal/service"
)

var _ service.ReceiptSource = (*FileSource)(nil)

// FileSource reads payloads from a JSON file holding either an array of
// receipts or {"receipts": [...]}. The user id is ignored.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// FetchReceipts implements service.ReceiptSource.
func (s *FileSource) FetchReceipts(ctx context.Context, _ string) ([]model.RawReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open receipts file: %w", err)
	}
	defer func() { _ = f.Close() }()

	receipts, err := decodeReceipts(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return receipts, nil
}

// Package export writes receipt selections to local files.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/raseed/internal/common"
	"github.com/Veraticus/raseed/internal/model"
	"github.com/Veraticus/raseed/internal/service"
	"github.com/google/uuid"
)

// Format is an output file format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown export format")

// Columns is the tabular layout shared by the CSV and XLSX writers.
var Columns = []string{"Receipt ID", "Date", "Merchant", "Category", "Amount", "Items", "Location", "Summary"}

// ParseFormat maps a case-insensitive name onto a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

var _ service.Exporter = (*FileExporter)(nil)

// FileExporter writes each Export call to a new file in an output directory.
// Files are written to a temporary name first and renamed into place, so a
// cancelled export never leaves a partial file behind.
type FileExporter struct {
	logger   *slog.Logger
	now      func() time.Time
	outDir   string
	format   Format
	mu       sync.Mutex
	lastPath string
}

// NewFileExporter creates an exporter writing format files into outDir.
func NewFileExporter(outDir string, format Format, logger *slog.Logger) (*FileExporter, error) {
	if strings.TrimSpace(outDir) == "" {
		return nil, fmt.Errorf("%w: output directory is required", common.ErrInvalidConfig)
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileExporter{outDir: outDir, format: format, logger: logger, now: time.Now}, nil
}

// LastPath returns the path of the most recent successful export.
func (e *FileExporter) LastPath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastPath
}

// Export writes receipts to a new file named after the export job.
func (e *FileExporter) Export(ctx context.Context, receipts []model.Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	job := Job{ID: uuid.NewString(), ExportedAt: e.now().UTC(), Count: len(receipts)}

	if err := os.MkdirAll(e.outDir, 0o750); err != nil {
		return fmt.Errorf("%w: create output directory: %w", common.ErrExportFailed, err)
	}

	tmp, err := os.CreateTemp(e.outDir, ".raseed-export-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", common.ErrExportFailed, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup
		}
	}()

	writeErr := e.write(ctx, tmp, job, receipts)
	closeErr := tmp.Close()
	if writeErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", common.ErrExportFailed, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close file: %w", common.ErrExportFailed, closeErr)
	}

	path := filepath.Join(e.outDir, job.FileName(e.format))
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: rename: %w", common.ErrExportFailed, err)
	}
	tmpPath = ""

	e.mu.Lock()
	e.lastPath = path
	e.mu.Unlock()

	e.logger.Info("export written",
		"path", path,
		"format", e.format,
		"receipts", len(receipts),
		"job_id", job.ID)
	return nil
}

func (e *FileExporter) write(ctx context.Context, w io.Writer, job Job, receipts []model.Receipt) error {
	switch e.format {
	case FormatJSON:
		return writeJSON(ctx, w, job, receipts)
	case FormatCSV:
		return writeCSV(ctx, w, receipts)
	case FormatXLSX:
		return writeXLSX(ctx, w, receipts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, e.format)
	}
}

// Job identifies a single export run.
type Job struct {
	ExportedAt time.Time `json:"exported_at"`
	ID         string    `json:"job_id"`
	Count      int       `json:"count"`
}

// FileName returns the output file name for the job.
func (j Job) FileName(format Format) string {
	return fmt.Sprintf("raseed-export-%s-%s.%s", j.ExportedAt.Format("20060102T150405Z"), j.ID, format)
}

type jsonDocument struct {
	Receipts []jsonReceipt `json:"receipts"`
	Job
}

type jsonReceipt struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	ID        string     `json:"id"`
	Date      string     `json:"date,omitempty"`
	Merchant  string     `json:"merchant"`
	Category  string     `json:"category"`
	Amount    string     `json:"amount"`
	Location  string     `json:"location,omitempty"`
	Summary   string     `json:"summary,omitempty"`
	Items     []jsonItem `json:"items,omitempty"`
	Overspent bool       `json:"overspent,omitempty"`
}

type jsonItem struct {
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

func writeJSON(ctx context.Context, w io.Writer, job Job, receipts []model.Receipt) error {
	doc := jsonDocument{Job: job, Receipts: make([]jsonReceipt, 0, len(receipts))}
	for _, r := range receipts {
		if err := ctx.Err(); err != nil {
			return err
		}
		date, _ := r.LocalDate(nil)
		jr := jsonReceipt{
			Timestamp: r.Timestamp,
			ID:        r.ID,
			Date:      date,
			Merchant:  r.Merchant,
			Category:  r.CategoryOrOther(),
			Amount:    r.TotalAmount.StringFixed(2),
			Location:  r.Location,
			Summary:   r.Summary,
			Overspent: r.Overspent,
		}
		for _, item := range r.Items {
			jr.Items = append(jr.Items, jsonItem{
				Name:      item.Name,
				Category:  item.Category,
				Quantity:  item.Quantity.String(),
				UnitPrice: item.UnitPrice.StringFixed(2),
			})
		}
		doc.Receipts = append(doc.Receipts, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// Record returns the receipt as a row in Columns order.
func Record(r model.Receipt) []string {
	date, _ := r.LocalDate(nil)
	return []string{
		r.ID,
		date,
		r.Merchant,
		r.CategoryOrOther(),
		r.TotalAmount.StringFixed(2),
		strconv.Itoa(len(r.Items)),
		r.Location,
		r.Summary,
	}
}

func writeCSV(ctx context.Context, w io.Writer, receipts []model.Receipt) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range receipts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write(Record(r)); err != nil {
			return fmt.Errorf("write receipt %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/raseed/internal/common"
	"github.com/Veraticus/raseed/internal/model"
	"github.com/Veraticus/raseed/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Header is the first row of the receipts tab.
var Header = []any{"Receipt ID", "Date", "Merchant", "Category", "Amount", "Items", "Location", "Summary"}

var _ service.Exporter = (*Exporter)(nil)

// Exporter appends receipts to a spreadsheet tab.
type Exporter struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewExporter creates an exporter authenticated from config.
func NewExporter(ctx context.Context, config Config, logger *slog.Logger) (*Exporter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewExporterWithService(srv, config, logger), nil
}

// NewExporterWithService creates an exporter around an existing service.
func NewExporterWithService(srv *sheets.Service, config Config, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if config.SheetTitle == "" {
		config.SheetTitle = DefaultSheetTitle
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Exporter{service: srv, config: config, logger: logger}
}

// Export appends one row per receipt, writing the header first when the tab
// is empty. Rows are sent in batches, each retried with backoff.
func (e *Exporter) Export(ctx context.Context, receipts []model.Receipt) error {
	e.logger.Info("starting sheets export", "receipts", len(receipts))

	spreadsheetID, err := e.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  e.config.RetryAttempts,
		InitialDelay: e.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if err := common.WithRetry(ctx, func() error {
		return e.ensureHeader(ctx, spreadsheetID)
	}, retryOpts); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	values := Rows(receipts)
	for start := 0; start < len(values); start += e.config.BatchSize {
		end := min(start+e.config.BatchSize, len(values))
		batch := values[start:end]

		if err := common.WithRetry(ctx, func() error {
			return e.appendRows(ctx, spreadsheetID, batch)
		}, retryOpts); err != nil {
			return fmt.Errorf("%w: batch starting at receipt %d: %w", common.ErrExportFailed, start, err)
		}
		e.logger.Debug("appended batch", "start", start, "rows", len(batch))
	}

	e.logger.Info("sheets export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))
	return nil
}

// Rows converts receipts into sheet rows in Header column order.
func Rows(receipts []model.Receipt) [][]any {
	values := make([][]any, 0, len(receipts))
	for _, r := range receipts {
		date, _ := r.LocalDate(nil)
		values = append(values, []any{
			r.ID,
			date,
			r.Merchant,
			r.CategoryOrOther(),
			r.TotalAmount.StringFixed(2),
			len(r.Items),
			r.Location,
			r.Summary,
		})
	}
	return values
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		tokenSource = oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
func (e *Exporter) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if e.config.SpreadsheetID != "" {
		if _, err := e.service.Spreadsheets.Get(e.config.SpreadsheetID).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", e.config.SpreadsheetID, err)
		}
		return e.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    e.config.SpreadsheetName,
			TimeZone: e.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: e.config.SheetTitle}},
		},
	}

	created, err := e.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	e.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	// Later exports in this process append to the same spreadsheet.
	e.config.SpreadsheetID = created.SpreadsheetId
	return created.SpreadsheetId, nil
}

func (e *Exporter) headerRange() string {
	return fmt.Sprintf("%s!A1:H1", e.config.SheetTitle)
}

func (e *Exporter) ensureHeader(ctx context.Context, spreadsheetID string) error {
	existing, err := e.service.Spreadsheets.Values.Get(spreadsheetID, e.headerRange()).Context(ctx).Do()
	if err != nil {
		return err
	}
	if len(existing.Values) > 0 {
		return nil
	}

	_, err = e.service.Spreadsheets.Values.Update(spreadsheetID, e.headerRange(), &sheets.ValueRange{
		Values: [][]any{Header},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	if e.config.EnableFormatting {
		if err := e.freezeHeader(ctx, spreadsheetID); err != nil {
			e.logger.Warn("failed to format header", "error", err)
		}
	}
	return nil
}

func (e *Exporter) appendRows(ctx context.Context, spreadsheetID string, rows [][]any) error {
	_, err := e.service.Spreadsheets.Values.Append(spreadsheetID, e.config.SheetTitle+"!A1", &sheets.ValueRange{
		Values: rows,
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

// freezeHeader bolds and freezes the header row of the first tab.
func (e *Exporter) freezeHeader(ctx context.Context, spreadsheetID string) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(len(Header)),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: 0,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := e.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

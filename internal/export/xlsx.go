package export

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/raseed/internal/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet receipts are written to.
const SheetName = "Receipts"

// amountColumn is the 1-based column index of Amount in Columns.
const amountColumn = 5

var columnWidths = []float64{38, 12, 28, 16, 12, 8, 24, 40}

func writeXLSX(ctx context.Context, w io.Writer, receipts []model.Receipt) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4285F4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range receipts {
		if err := ctx.Err(); err != nil {
			return err
		}
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		row := xlsxRow(r)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write receipt %s: %w", r.ID, err)
		}
		amountCell, err := excelize.CoordinatesToCellName(amountColumn, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, amountCell, amountCell, amountStyle); err != nil {
			return fmt.Errorf("style amount: %w", err)
		}
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// xlsxRow mirrors Record but keeps numeric cells numeric.
func xlsxRow(r model.Receipt) []any {
	rec := Record(r)
	row := make([]any, len(rec))
	for i, v := range rec {
		row[i] = v
	}
	row[amountColumn-1] = r.TotalAmount.Round(2).InexactFloat64()
	row[5] = len(r.Items)
	return row
}

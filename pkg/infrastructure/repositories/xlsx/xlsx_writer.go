package xlsx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/lotalloc/pkg/application/dto"
)

// DefaultSheetName is the report sheet name used when none is configured
const DefaultSheetName = "Updated_DataFrame"

// WriteReport writes report as a workbook with one sheet
func WriteReport(w io.Writer, report *dto.Report, sheet string) error {
	f, err := buildReport(report, sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveReport writes report to a workbook file, creating parent directories
func SaveReport(filename string, report *dto.Report, sheet string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := buildReport(report, sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", filename, err)
	}
	return nil
}

func buildReport(report *dto.Report, sheet string) (*excelize.File, error) {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet %s: %w", sheet, err)
	}

	header := make([]any, len(dto.ReportColumns))
	for i, col := range dto.ReportColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, bold)
	}

	for i, row := range report.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := []any{
			row.LotNo, row.SKUDescription, row.Warehouse, row.Remarks,
			row.MFGDate, row.ExpirationDate, row.Freshness,
			int64(row.InHandQty), int64(row.TotalStock),
			int64(row.Requested), int64(row.Allocated), int64(row.RemainingInHand),
			row.OrderedDate,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return f, nil
}

// Package xlsx reads inventory and order workbooks and writes the allocation
// report as a single-sheet workbook.
package xlsx

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/vsinha/lotalloc/pkg/domain/entities"
	"github.com/vsinha/lotalloc/pkg/domain/repositories"
)

// dateColumns hold calendar dates that may be stored as Excel serial numbers
var dateColumns = []string{entities.ColMFGDate, entities.ColExpirationDate, entities.ColOrderedDate}

// Loader reads inventory and order rows from workbooks
type Loader struct {
	sheet  string
	logger *zap.Logger
}

var _ repositories.RecordReader = (*Loader)(nil)

// Option configures a Loader
type Option func(*Loader)

// WithSheet reads the named sheet instead of the first one
func WithSheet(sheet string) Option {
	return func(l *Loader) {
		l.sheet = sheet
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a new workbook loader
func NewLoader(opts ...Option) *Loader {
	l := &Loader{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadInventory loads inventory rows from a workbook file
func (l *Loader) LoadInventory(filename string) ([]entities.LotRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadInventory(file)
}

// LoadOrders loads order rows from a workbook file
func (l *Loader) LoadOrders(filename string) ([]entities.OrderRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open orders file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadOrders(file)
}

// ReadInventory reads inventory rows from a workbook
func (l *Loader) ReadInventory(r io.Reader) ([]entities.LotRecord, error) {
	header, rows, err := l.readSheet(r, "inventory", entities.RequiredLotColumns)
	if err != nil {
		return nil, err
	}

	records := make([]entities.LotRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, entities.NewLotRecord(row.number, header, row.fields))
	}
	l.logger.Debug("read inventory workbook", zap.Int("rows", len(records)))
	return records, nil
}

// ReadOrders reads order rows from a workbook
func (l *Loader) ReadOrders(r io.Reader) ([]entities.OrderRecord, error) {
	header, rows, err := l.readSheet(r, "orders", entities.RequiredOrderColumns)
	if err != nil {
		return nil, err
	}

	records := make([]entities.OrderRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, entities.NewOrderRecord(row.number, header, row.fields))
	}
	l.logger.Debug("read orders workbook", zap.Int("rows", len(records)))
	return records, nil
}

type dataRow struct {
	number int
	fields []string
}

// readSheet returns the header index and the non-blank data rows of the
// selected sheet. Cells are read as displayed, except date columns holding
// serial numbers, which are converted to ISO dates.
func (l *Loader) readSheet(r io.Reader, kind string, required []string) (map[string]int, []dataRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s workbook: %w", kind, err)
	}
	defer f.Close()

	sheet, err := l.sheetName(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s workbook: %w", kind, err)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s sheet %s: %w", kind, sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s workbook: %w", kind, entities.ErrEmptyInput)
	}

	header := entities.HeaderIndex(rows[0])
	if missing := entities.MissingColumns(header, required); len(missing) > 0 {
		return nil, nil, fmt.Errorf("%s workbook: %w: %s", kind, entities.ErrMissingColumn, strings.Join(missing, ", "))
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s sheet %s: %w", kind, sheet, err)
	}

	var data []dataRow
	for i := 1; i < len(rows); i++ {
		fields := rows[i]
		if isBlank(fields) {
			continue
		}
		if i < len(raw) {
			fields = convertDates(header, fields, raw[i])
		}
		data = append(data, dataRow{number: i + 1, fields: fields})
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%s workbook: %w", kind, entities.ErrEmptyInput)
	}
	return header, data, nil
}

func (l *Loader) sheetName(f *excelize.File) (string, error) {
	if l.sheet != "" {
		idx, err := f.GetSheetIndex(l.sheet)
		if err != nil || idx < 0 {
			return "", fmt.Errorf("sheet %q not found", l.sheet)
		}
		return l.sheet, nil
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", entities.ErrEmptyInput
	}
	return sheets[0], nil
}

// convertDates replaces date cells whose raw value is a serial number
func convertDates(header map[string]int, fields, raw []string) []string {
	out := append([]string(nil), fields...)
	for _, col := range dateColumns {
		idx, ok := header[col]
		if !ok || idx >= len(raw) || idx >= len(fields) {
			continue
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(raw[idx]), 64)
		if err != nil {
			continue
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			continue
		}
		out[idx] = t.Format("2006-01-02")
	}
	return out
}

func isBlank(fields []string) bool {
	for _, field := range fields {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

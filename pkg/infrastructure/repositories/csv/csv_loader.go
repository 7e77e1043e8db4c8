package csv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/vsinha/lotalloc/pkg/domain/entities"
	"github.com/vsinha/lotalloc/pkg/domain/repositories"
)

// Supported input encodings
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader reads inventory and order rows from CSV files
type Loader struct {
	encoding string
	logger   *zap.Logger
}

var _ repositories.RecordReader = (*Loader)(nil)

// Option configures a Loader
type Option func(*Loader)

// WithEncoding sets the source character encoding ("utf-8" or "shift_jis")
func WithEncoding(encoding string) Option {
	return func(l *Loader) {
		if encoding != "" {
			l.encoding = strings.ToLower(encoding)
		}
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

// NewLoader creates a new CSV loader
func NewLoader(opts ...Option) *Loader {
	l := &Loader{encoding: EncodingUTF8, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadInventory loads inventory rows from a CSV file
func (l *Loader) LoadInventory(filename string) ([]entities.LotRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadInventory(file)
}

// LoadOrders loads order rows from a CSV file
func (l *Loader) LoadOrders(filename string) ([]entities.OrderRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open orders file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadOrders(file)
}

// ReadInventory reads inventory rows. Columns are matched by header name;
// unrecognised columns are carried in LotRecord.Extra.
func (l *Loader) ReadInventory(r io.Reader) ([]entities.LotRecord, error) {
	header, rows, err := l.readTable(r, "inventory", entities.RequiredLotColumns)
	if err != nil {
		return nil, err
	}

	records := make([]entities.LotRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, entities.NewLotRecord(row.number, header, row.fields))
	}
	l.logger.Debug("read inventory CSV", zap.Int("rows", len(records)))
	return records, nil
}

// ReadOrders reads order rows
func (l *Loader) ReadOrders(r io.Reader) ([]entities.OrderRecord, error) {
	header, rows, err := l.readTable(r, "orders", entities.RequiredOrderColumns)
	if err != nil {
		return nil, err
	}

	records := make([]entities.OrderRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, entities.NewOrderRecord(row.number, header, row.fields))
	}
	l.logger.Debug("read orders CSV", zap.Int("rows", len(records)))
	return records, nil
}

type dataRow struct {
	number int
	fields []string
}

// readTable decodes r, maps the header and returns the non-blank data rows
// numbered as in a spreadsheet (header is row 1)
func (l *Loader) readTable(r io.Reader, kind string, required []string) (map[string]int, []dataRow, error) {
	decoded, err := l.decode(r)
	if err != nil {
		return nil, nil, err
	}

	reader := csv.NewReader(skipBOM(decoded))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s CSV: %w", kind, entities.ErrEmptyInput)
	}

	header := entities.HeaderIndex(records[0])
	if missing := entities.MissingColumns(header, required); len(missing) > 0 {
		return nil, nil, fmt.Errorf("%s CSV: %w: %s", kind, entities.ErrMissingColumn, strings.Join(missing, ", "))
	}

	var rows []dataRow
	for i, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		rows = append(rows, dataRow{number: i + 2, fields: record})
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s CSV: %w", kind, entities.ErrEmptyInput)
	}
	return header, rows, nil
}

func (l *Loader) decode(r io.Reader) (io.Reader, error) {
	switch l.encoding {
	case EncodingUTF8, "utf8":
		return r, nil
	case EncodingShiftJIS, "sjis", "shift-jis":
		return transform.NewReader(r, japanese.ShiftJIS.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported input encoding: %s", l.encoding)
	}
}

func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if peeked, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(peeked, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

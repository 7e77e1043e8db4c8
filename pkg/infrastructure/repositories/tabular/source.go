// Package tabular picks a record reader by file type and exposes an input
// file, or an uploaded stream, as a source of inventory or order rows.
package tabular

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/lotalloc/pkg/domain/entities"
	"github.com/vsinha/lotalloc/pkg/domain/repositories"
	"github.com/vsinha/lotalloc/pkg/infrastructure/config"
	"github.com/vsinha/lotalloc/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/lotalloc/pkg/infrastructure/repositories/xlsx"
)

// Format identifies a tabular file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for file names with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DetectFormat infers the format from the file extension
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s (expected .csv or .xlsx)", ErrUnsupportedFormat, filename)
	}
}

// NewReader returns the record reader for format
func NewReader(format Format, cfg config.InputConfig, logger *zap.Logger) (repositories.RecordReader, error) {
	switch format {
	case FormatCSV:
		return csv.NewLoader(csv.WithEncoding(cfg.Encoding), csv.WithLogger(logger)), nil
	case FormatXLSX:
		return xlsx.NewLoader(xlsx.WithSheet(cfg.Sheet), xlsx.WithLogger(logger)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Source reads rows from one named input on demand
type Source struct {
	name   string
	open   func() (io.ReadCloser, error)
	reader repositories.RecordReader
}

// FileSource reads rows from a file on disk, choosing the reader by extension
func FileSource(path string, cfg config.InputConfig, logger *zap.Logger) (*Source, error) {
	return StreamSource(path, func() (io.ReadCloser, error) { return os.Open(path) }, cfg, logger)
}

// StreamSource reads rows from the stream returned by open; name selects the reader
func StreamSource(name string, open func() (io.ReadCloser, error), cfg config.InputConfig, logger *zap.Logger) (*Source, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	reader, err := NewReader(format, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Source{name: name, open: open, reader: reader}, nil
}

// Name returns the input name
func (s *Source) Name() string {
	return s.name
}

// LotRecords reads the input as an inventory file
func (s *Source) LotRecords(ctx context.Context) ([]entities.LotRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.name, err)
	}
	defer rc.Close()

	records, err := s.reader.ReadInventory(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return records, nil
}

// OrderRecords reads the input as an orders file
func (s *Source) OrderRecords(ctx context.Context) ([]entities.OrderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.name, err)
	}
	defer rc.Close()

	records, err := s.reader.ReadOrders(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return records, nil
}

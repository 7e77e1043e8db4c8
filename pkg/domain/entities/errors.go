package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatchingLots marks an order line whose SKU and warehouse match no lot
	ErrNoMatchingLots = errors.New("no matching lots")

	// ErrInsufficientStock marks an order line that could not be fully allocated
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrEmptyInput is returned when an input file holds no data rows
	ErrEmptyInput = errors.New("input contains no data rows")

	// ErrMissingColumn is returned when a required header is absent
	ErrMissingColumn = errors.New("missing required column")
)

// ParseError reports a malformed field in a source record.
// It aborts the run before allocation begins.
type ParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("row %d, field %q: %v", e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("row %d, field %q: invalid value %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

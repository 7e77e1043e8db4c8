// Package normalizer turns raw inventory and order rows into typed records
// and produces the canonical lot ordering the allocator depends on.
package normalizer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/lotalloc/pkg/domain/entities"
)

var (
	errRequired        = errors.New("value is required")
	errNotInteger      = errors.New("quantity must be a whole number")
	errNotPercent      = errors.New("expected a percentage like 30.00%")
	errNegativePercent = errors.New("percentage cannot be negative")
	errUnknownDate     = errors.New("date does not match any accepted layout")
	hundred            = decimal.NewFromInt(100)
	defaultLayouts     = []string{"2006-01-02", "2006/01/02", "01/02/2006", "02-01-2006"}
	structFieldCols    = map[string]string{
		"LotNo":          entities.ColLotNo,
		"SKUDescription": entities.ColSKUDescription,
		"Warehouse":      entities.ColWarehouse,
		"OnHandQty":      entities.ColInHandQty,
		"TotalStockQty":  entities.ColTotalStock,
		"RequestedQty":   entities.ColRequestedQty,
	}
)

// Normalizer parses raw rows. It is safe for concurrent use.
type Normalizer struct {
	dateLayouts []string
	validate    *validator.Validate
	logger      *zap.Logger
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithDateLayouts sets the layouts tried, in order, when parsing dates
func WithDateLayouts(layouts []string) Option {
	return func(n *Normalizer) {
		if len(layouts) > 0 {
			n.dateLayouts = layouts
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNormalizer creates a Normalizer
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		dateLayouts: defaultLayouts,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NormalizeLots parses inventory rows and returns them sorted by
// (warehouse, remarks, MFG date). The first malformed field aborts with a
// *entities.ParseError.
func (n *Normalizer) NormalizeLots(records []entities.LotRecord) ([]*entities.InventoryLot, error) {
	lots := make([]*entities.InventoryLot, 0, len(records))
	for _, rec := range records {
		lot, err := n.parseLot(rec)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}

	SortLots(lots)
	n.logger.Debug("normalized inventory", zap.Int("lots", len(lots)))
	return lots, nil
}

// NormalizeOrders parses order rows, keeping their input order
func (n *Normalizer) NormalizeOrders(records []entities.OrderRecord) ([]entities.OrderLine, error) {
	orders := make([]entities.OrderLine, 0, len(records))
	for i, rec := range records {
		order, err := n.parseOrder(rec)
		if err != nil {
			return nil, err
		}
		order.Index = i
		orders = append(orders, order)
	}

	n.logger.Debug("normalized orders", zap.Int("orders", len(orders)))
	return orders, nil
}

func (n *Normalizer) parseLot(rec entities.LotRecord) (*entities.InventoryLot, error) {
	freshness, err := ParsePercent(rec.Freshness)
	if err != nil {
		return nil, parseErr(rec.Row, entities.ColFreshness, rec.Freshness, err)
	}
	mfgDate, err := n.ParseDate(rec.MFGDate)
	if err != nil {
		return nil, parseErr(rec.Row, entities.ColMFGDate, rec.MFGDate, err)
	}

	// Expiration is carried through only, so an empty cell is allowed
	var expDate time.Time
	if strings.TrimSpace(rec.ExpirationDate) != "" {
		expDate, err = n.ParseDate(rec.ExpirationDate)
		if err != nil {
			return nil, parseErr(rec.Row, entities.ColExpirationDate, rec.ExpirationDate, err)
		}
	}

	onHand, err := ParseQuantity(rec.InHandQty)
	if err != nil {
		return nil, parseErr(rec.Row, entities.ColInHandQty, rec.InHandQty, err)
	}
	totalStock, err := ParseQuantity(rec.TotalStock)
	if err != nil {
		return nil, parseErr(rec.Row, entities.ColTotalStock, rec.TotalStock, err)
	}

	lot := &entities.InventoryLot{
		LotNo:          strings.TrimSpace(rec.LotNo),
		SKUDescription: strings.TrimSpace(rec.SKUDescription),
		Warehouse:      strings.TrimSpace(rec.Warehouse),
		Remarks:        strings.TrimSpace(rec.Remarks),
		MFGDate:        mfgDate,
		ExpirationDate: expDate,
		Freshness:      freshness,
		OnHandQty:      onHand,
		TotalStockQty:  totalStock,
		Row:            rec.Row,
		Extra:          rec.Extra,
	}
	if err := n.validateStruct(rec.Row, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

func (n *Normalizer) parseOrder(rec entities.OrderRecord) (entities.OrderLine, error) {
	requested, err := ParseQuantity(rec.RequestedQty)
	if err != nil {
		return entities.OrderLine{}, parseErr(rec.Row, entities.ColRequestedQty, rec.RequestedQty, err)
	}
	orderedDate, err := n.ParseDate(rec.OrderedDate)
	if err != nil {
		return entities.OrderLine{}, parseErr(rec.Row, entities.ColOrderedDate, rec.OrderedDate, err)
	}

	order := entities.OrderLine{
		SKUDescription: strings.TrimSpace(rec.SKUDescription),
		Warehouse:      strings.TrimSpace(rec.Warehouse),
		RequestedQty:   requested,
		OrderedDate:    orderedDate,
		Row:            rec.Row,
	}
	if err := n.validateStruct(rec.Row, &order); err != nil {
		return entities.OrderLine{}, err
	}
	return order, nil
}

// validateStruct runs the struct tags and reports the first failure as a ParseError
func (n *Normalizer) validateStruct(row int, v any) error {
	err := n.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		col, ok := structFieldCols[fe.StructField()]
		if !ok {
			col = fe.StructField()
		}
		cause := errRequired
		if fe.Tag() != "required" {
			cause = fmt.Errorf("failed %s=%s check", fe.Tag(), fe.Param())
		}
		return parseErr(row, col, fmt.Sprint(fe.Value()), cause)
	}
	return fmt.Errorf("row %d: %w", row, err)
}

// ParseDate parses a calendar date using the configured layouts
func (n *Normalizer) ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errRequired
	}
	for _, layout := range n.dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return entities.CalendarDate(t), nil
		}
	}
	return time.Time{}, errUnknownDate
}

// ParsePercent parses "NN.NN%" into a fraction (30.00% -> 0.3).
// A single trailing percent sign is optional; negative values are rejected.
func ParsePercent(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, errRequired
	}
	trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "%"))
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, errNotPercent
	}
	if d.IsNegative() {
		return decimal.Zero, errNegativePercent
	}
	return d.Div(hundred), nil
}

// ParseQuantity parses a whole-number quantity. Spreadsheet renderings such
// as "1,000" and "100.0" are accepted.
func ParseQuantity(value string) (entities.Quantity, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return 0, errRequired
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, errNotInteger
	}
	if !d.IsInteger() {
		return 0, errNotInteger
	}
	return entities.Quantity(d.IntPart()), nil
}

// SortLots orders lots ascending by (warehouse, remarks, MFG date).
// The sort is stable so lots with equal keys keep their input order.
func SortLots(lots []*entities.InventoryLot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if a.Warehouse != b.Warehouse {
			return a.Warehouse < b.Warehouse
		}
		if a.Remarks != b.Remarks {
			return a.Remarks < b.Remarks
		}
		return a.MFGDate.Before(b.MFGDate)
	})
}

func parseErr(row int, field, value string, err error) *entities.ParseError {
	return &entities.ParseError{Row: row, Field: field, Value: value, Err: err}
}

// Package report joins the post-allocation lot pool, the allocation ledger and
// the order lines into the tabular report shown to users and exported.
package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/lotalloc/pkg/application/dto"
	"github.com/vsinha/lotalloc/pkg/domain/entities"
)

// DefaultDateLayout renders dates as dd-mm-yyyy
const DefaultDateLayout = "02-01-2006"

var hundred = decimal.NewFromInt(100)

// Composer builds reports
type Composer struct {
	dateLayout string
	logger     *zap.Logger
}

// Option configures a Composer
type Option func(*Composer)

// WithDateLayout sets the layout used for date columns
func WithDateLayout(layout string) Option {
	return func(c *Composer) {
		if layout != "" {
			c.dateLayout = layout
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewComposer creates a Composer
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		dateLayout: DefaultDateLayout,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose produces one report row per lot in pool order, repeated once per
// order line sharing the lot's SKU and warehouse.
//
// Stock, freshness and date columns come from snapshot, the pool as it was
// before allocation, matched by position so lots sharing a lot number keep
// their own values. A lot without a snapshot entry at its position falls back
// to its pool values. Ledger events are joined by lot number.
func (c *Composer) Compose(snapshot, pool []*entities.InventoryLot, ledger []entities.AllocationEvent, orders []entities.OrderLine) *dto.Report {
	events := make(map[string]entities.AllocationEvent, len(ledger))
	for _, ev := range ledger {
		if _, ok := events[ev.LotNo]; !ok {
			events[ev.LotNo] = ev
		}
	}

	ordersByKey := make(map[entities.StockKey][]entities.OrderLine)
	for _, order := range orders {
		ordersByKey[order.Key()] = append(ordersByKey[order.Key()], order)
	}

	report := &dto.Report{Rows: make([]dto.ReportRow, 0, len(pool))}
	for i, lot := range pool {
		original := lot
		if i < len(snapshot) && snapshot[i].LotNo == lot.LotNo {
			original = snapshot[i]
		}
		ev, allocated := events[lot.LotNo]

		matching := ordersByKey[lot.Key()]
		if len(matching) == 0 {
			report.Rows = append(report.Rows, c.row(original, nil, nil))
			continue
		}
		for i := range matching {
			if allocated {
				report.Rows = append(report.Rows, c.row(original, &ev, &matching[i]))
			} else {
				report.Rows = append(report.Rows, c.row(original, nil, &matching[i]))
			}
		}
	}

	c.logger.Debug("composed report",
		zap.Int("lots", len(pool)),
		zap.Int("ledger_events", len(ledger)),
		zap.Int("rows", len(report.Rows)))
	return report
}

// row renders one lot. ev is nil when the lot has no ledger event and order is
// nil when no order line shares its SKU and warehouse.
func (c *Composer) row(lot *entities.InventoryLot, ev *entities.AllocationEvent, order *entities.OrderLine) dto.ReportRow {
	r := dto.ReportRow{
		LotNo:          lot.LotNo,
		SKUDescription: lot.SKUDescription,
		Warehouse:      lot.Warehouse,
		Remarks:        lot.Remarks,
		MFGDate:        c.FormatDate(lot.MFGDate),
		ExpirationDate: c.FormatDate(lot.ExpirationDate),
		Freshness:      FormatPercent(lot.Freshness),
		InHandQty:      lot.OnHandQty,
		TotalStock:     lot.TotalStockQty,
	}

	if order != nil {
		r.OrderedDate = c.FormatDate(order.OrderedDate)
		if ev != nil {
			r.Requested = ev.RequestedAtAllocation
			r.Allocated = ev.AllocatedQty
		}
	}

	if r.Requested == 0 {
		r.PreviousInHand = lot.OnHandQty
		r.RemainingInHand = lot.OnHandQty
	} else {
		r.PreviousInHand = ev.OnHandBefore
		r.RemainingInHand = ev.OnHandAfter
	}
	return r
}

// FormatDate renders t with the composer's layout; the zero time renders empty
func (c *Composer) FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(c.dateLayout)
}

// FormatPercent renders a fraction as a percentage rounded to two decimals,
// always with a fractional part: 0.3 -> "30.0%", 0.4525 -> "45.25%"
func FormatPercent(fraction decimal.Decimal) string {
	s := fraction.Mul(hundred).Round(2).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}

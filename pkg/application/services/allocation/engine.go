// Package allocation draws order line demand from a lot pool: promotion lots
// first inside the promotion window, then oldest-manufactured normal stock.
package allocation

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/vsinha/lotalloc/pkg/domain/entities"
	"github.com/vsinha/lotalloc/pkg/domain/repositories"
	"github.com/vsinha/lotalloc/pkg/infrastructure/repositories/memory"
)

// Options holds the priority rule settings
type Options struct {
	// PromotionTag is the Remarks value that marks promotion lots
	PromotionTag string
	// PromotionCutoffDay is the last day of the month that honours promotion priority
	PromotionCutoffDay int
}

// DefaultOptions returns the standard rule: "Promotion" lots on days 1-15
func DefaultOptions() Options {
	return Options{
		PromotionTag:       entities.PromotionTag,
		PromotionCutoffDay: 15,
	}
}

// Result is the outcome of one allocation run
type Result struct {
	// Lots is the pool after allocation, in pool order
	Lots []*entities.InventoryLot
	// Ledger holds at most one event per lot, in the order lots were first drawn
	Ledger []entities.AllocationEvent
	// Fulfillments has one entry per order line, in input order
	Fulfillments []entities.OrderFulfillment
}

// ShortOrders returns the fulfillments that received less than requested
func (r *Result) ShortOrders() []entities.OrderFulfillment {
	var short []entities.OrderFulfillment
	for _, f := range r.Fulfillments {
		if f.Status != entities.Fulfilled {
			short = append(short, f)
		}
	}
	return short
}

// TotalAllocated returns the quantity drawn across all order lines
func (r *Result) TotalAllocated() entities.Quantity {
	var total entities.Quantity
	for _, f := range r.Fulfillments {
		total += f.AllocatedQty
	}
	return total
}

// Engine allocates order lines against a lot pool.
// A single Allocate call is sequential; the pool must not be shared with
// another goroutine while it runs.
type Engine struct {
	opts   Options
	logger *zap.Logger
}

// NewEngine creates an allocation engine
func NewEngine(opts Options, logger *zap.Logger) *Engine {
	if opts.PromotionTag == "" {
		opts.PromotionTag = entities.PromotionTag
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{opts: opts, logger: logger}
}

// Allocate processes order lines in input order, mutating the pool in place
func (e *Engine) Allocate(pool repositories.LotRepository, orders []entities.OrderLine) (*Result, error) {
	run := &run{
		engine:   e,
		recorded: make(map[string]bool),
	}

	for _, order := range orders {
		candidates, err := pool.GetCandidateLots(order.SKUDescription, order.Warehouse)
		if err != nil {
			return nil, fmt.Errorf("failed to get lots for %s: %w", order.Key(), err)
		}
		f := run.allocateOrder(order, candidates)
		if f.Status == entities.InsufficientStock {
			// stock left at a short-allocated key is held back by the promotion rule
			heldBack, err := pool.GetAvailableQuantity(order.SKUDescription, order.Warehouse)
			if err != nil {
				return nil, fmt.Errorf("failed to read available stock for %s: %w", order.Key(), err)
			}
			e.logger.Warn("order line short-allocated",
				zap.Int("order_index", order.Index),
				zap.String("sku", order.SKUDescription),
				zap.String("warehouse", order.Warehouse),
				zap.Int64("requested", int64(order.RequestedQty)),
				zap.Int64("allocated", int64(f.AllocatedQty)),
				zap.Int64("short", int64(f.ShortQty)),
				zap.Int64("held_back", int64(heldBack)))
		}
		run.fulfillments = append(run.fulfillments, f)
	}

	lots, err := pool.GetAllLots()
	if err != nil {
		return nil, fmt.Errorf("failed to read lot pool: %w", err)
	}

	return &Result{
		Lots:         lots,
		Ledger:       run.ledger,
		Fulfillments: run.fulfillments,
	}, nil
}

// Allocate runs the default rule over lots that are already normalized and
// sorted. The lots are mutated in place and returned with the ledger.
// A nil lot is rejected before any order line is processed.
func Allocate(lots []*entities.InventoryLot, orders []entities.OrderLine) ([]*entities.InventoryLot, []entities.AllocationEvent, error) {
	pool := memory.NewLotRepository(len(lots))
	if err := pool.LoadLots(lots); err != nil {
		return nil, nil, fmt.Errorf("failed to load lot pool: %w", err)
	}

	result, err := NewEngine(DefaultOptions(), nil).Allocate(pool, orders)
	if err != nil {
		return nil, nil, err
	}
	return result.Lots, result.Ledger, nil
}

// run carries the state shared by every order line of one Allocate call
type run struct {
	engine       *Engine
	ledger       []entities.AllocationEvent
	recorded     map[string]bool
	fulfillments []entities.OrderFulfillment
}

func (r *run) allocateOrder(order entities.OrderLine, candidates []*entities.InventoryLot) entities.OrderFulfillment {
	opts := r.engine.opts
	f := entities.OrderFulfillment{Order: order}
	logger := r.engine.logger.With(
		zap.Int("order_index", order.Index),
		zap.String("sku", order.SKUDescription),
		zap.String("warehouse", order.Warehouse),
	)

	if len(candidates) == 0 {
		f.Status = entities.NoMatchingLots
		f.ShortQty = order.RequestedQty
		logger.Warn("no lots match order line", zap.Int64("requested", int64(order.RequestedQty)))
		return f
	}

	var promo, normal []*entities.InventoryLot
	for _, lot := range candidates {
		if lot.IsPromotion(opts.PromotionTag) {
			if !lot.MFGDate.After(order.OrderedDate) {
				promo = append(promo, lot)
			}
			continue
		}
		normal = append(normal, lot)
	}

	outstanding := order.RequestedQty
	if len(promo) > 0 && order.PromotionWindowOpen(opts.PromotionCutoffDay) {
		f.UsedPromo = true
		outstanding = r.drawFrom(byMFGDate(promo), outstanding, true, &f)
	}
	if outstanding > 0 {
		outstanding = r.drawFrom(byMFGDate(normal), outstanding, false, &f)
	}

	f.AllocatedQty = order.RequestedQty - outstanding
	f.ShortQty = outstanding
	if outstanding > 0 {
		f.Status = entities.InsufficientStock
	} else {
		f.Status = entities.Fulfilled
		logger.Debug("order line fulfilled",
			zap.Int64("requested", int64(order.RequestedQty)),
			zap.Bool("promotion", f.UsedPromo),
			zap.Int("lots", len(f.Draws)))
	}
	return f
}

// drawFrom takes stock from lots in order until nothing is outstanding.
// Only the first draw against a lot in the whole run reaches the ledger.
func (r *run) drawFrom(lots []*entities.InventoryLot, outstanding entities.Quantity, promotion bool, f *entities.OrderFulfillment) entities.Quantity {
	for _, lot := range lots {
		if outstanding <= 0 {
			break
		}

		before := lot.OnHandQty
		taken := lot.Draw(outstanding)
		outstanding -= taken

		draw := entities.LotDraw{
			LotNo:        lot.LotNo,
			Promotion:    promotion,
			OnHandBefore: before,
			AllocatedQty: taken,
			OnHandAfter:  lot.OnHandQty,
		}

		if !r.recorded[lot.LotNo] {
			r.recorded[lot.LotNo] = true
			draw.Recorded = true
			r.ledger = append(r.ledger, entities.AllocationEvent{
				LotNo:                 lot.LotNo,
				RequestedAtAllocation: outstanding + taken,
				OnHandBefore:          before,
				AllocatedQty:          taken,
				OnHandAfter:           lot.OnHandQty,
				OrderIndex:            f.Order.Index,
			})
		}
		f.Draws = append(f.Draws, draw)
	}
	return outstanding
}

// byMFGDate returns a copy of lots ordered oldest manufacture date first,
// keeping pool order for equal dates
func byMFGDate(lots []*entities.InventoryLot) []*entities.InventoryLot {
	sorted := make([]*entities.InventoryLot, len(lots))
	copy(sorted, lots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MFGDate.Before(sorted[j].MFGDate)
	})
	return sorted
}

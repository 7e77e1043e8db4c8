package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/lotalloc/pkg/application/dto"
	"github.com/vsinha/lotalloc/pkg/application/services/allocation"
	"github.com/vsinha/lotalloc/pkg/application/services/normalizer"
	"github.com/vsinha/lotalloc/pkg/application/services/report"
	"github.com/vsinha/lotalloc/pkg/domain/entities"
	"github.com/vsinha/lotalloc/pkg/infrastructure/config"
	"github.com/vsinha/lotalloc/pkg/infrastructure/repositories/memory"
)

// LotSource supplies unparsed inventory rows
type LotSource interface {
	LotRecords(ctx context.Context) ([]entities.LotRecord, error)
}

// OrderSource supplies unparsed order rows
type OrderSource interface {
	OrderRecords(ctx context.Context) ([]entities.OrderRecord, error)
}

// RunInput names the inputs of one allocation run
type RunInput struct {
	Inventory LotSource
	Orders    OrderSource
}

// AllocationOrchestrator wires normalization, allocation and reporting into a run
type AllocationOrchestrator struct {
	normalizer *normalizer.Normalizer
	composer   *report.Composer
	options    allocation.Options
	logger     *zap.Logger
	now        func() time.Time
}

// NewAllocationOrchestrator creates an orchestrator from configuration
func NewAllocationOrchestrator(cfg *config.Config, logger *zap.Logger) *AllocationOrchestrator {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AllocationOrchestrator{
		normalizer: normalizer.NewNormalizer(
			normalizer.WithDateLayouts(cfg.Input.DateLayouts),
			normalizer.WithLogger(logger),
		),
		composer: report.NewComposer(
			report.WithDateLayout(cfg.Output.DateLayout),
			report.WithLogger(logger),
		),
		options: allocation.Options{
			PromotionTag:       cfg.Allocation.PromotionTag,
			PromotionCutoffDay: cfg.Allocation.PromotionCutoffDay,
		},
		logger: logger,
		now:    time.Now,
	}
}

// Run loads both inputs concurrently, then allocates and composes the report.
// Allocation itself is sequential over the orders in input order.
func (o *AllocationOrchestrator) Run(ctx context.Context, in RunInput) (*dto.AllocationRun, error) {
	if in.Inventory == nil || in.Orders == nil {
		return nil, fmt.Errorf("both inventory and orders inputs are required")
	}

	var (
		lotRecords   []entities.LotRecord
		orderRecords []entities.OrderRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := in.Inventory.LotRecords(gctx)
		if err != nil {
			return fmt.Errorf("failed to load inventory: %w", err)
		}
		lotRecords = records
		return nil
	})
	g.Go(func() error {
		records, err := in.Orders.OrderRecords(gctx)
		if err != nil {
			return fmt.Errorf("failed to load orders: %w", err)
		}
		orderRecords = records
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return o.RunRecords(ctx, lotRecords, orderRecords)
}

// RunRecords allocates already loaded rows. Malformed rows abort the run
// with a *entities.ParseError before any lot is touched.
func (o *AllocationOrchestrator) RunRecords(ctx context.Context, lotRecords []entities.LotRecord, orderRecords []entities.OrderRecord) (*dto.AllocationRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(lotRecords) == 0 {
		return nil, fmt.Errorf("inventory: %w", entities.ErrEmptyInput)
	}

	runID := uuid.NewString()
	logger := o.logger.With(zap.String("run_id", runID))
	started := o.now()

	lots, err := o.normalizer.NormalizeLots(lotRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize inventory: %w", err)
	}
	orders, err := o.normalizer.NormalizeOrders(orderRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize orders: %w", err)
	}

	pool := memory.NewLotRepository(len(lots))
	if err := pool.LoadLots(lots); err != nil {
		return nil, fmt.Errorf("failed to load lot pool: %w", err)
	}
	logger.Debug("lot pool loaded", zap.Int("lots", pool.Size()), zap.Int("order_lines", len(orders)))
	snapshot, err := pool.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot lot pool: %w", err)
	}

	result, err := allocation.NewEngine(o.options, logger).Allocate(pool, orders)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate: %w", err)
	}

	run := &dto.AllocationRun{
		RunID:        runID,
		StartedAt:    started,
		Report:       o.composer.Compose(snapshot, result.Lots, result.Ledger, orders),
		Ledger:       result.Ledger,
		Fulfillments: result.Fulfillments,
		Lots:         result.Lots,
	}
	run.Duration = o.now().Sub(started)

	summary := run.Summary()
	logger.Info("allocation run completed",
		zap.Int("lots", summary.Lots),
		zap.Int("order_lines", summary.OrderLines),
		zap.Int("ledger_events", summary.LedgerEvents),
		zap.Int64("allocated", int64(summary.Allocated)),
		zap.Int64("short", int64(summary.Short)),
		zap.Duration("duration", run.Duration))
	return run, nil
}

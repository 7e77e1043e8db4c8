package orchestration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vsinha/lotalloc/pkg/domain/entities"
	"github.com/vsinha/lotalloc/pkg/infrastructure/config"
	fixtures "github.com/vsinha/lotalloc/pkg/infrastructure/testing"
)

type staticLots struct {
	records []entities.LotRecord
	err     error
}

func (s staticLots) LotRecords(ctx context.Context) ([]entities.LotRecord, error) {
	return s.records, s.err
}

type staticOrders struct {
	records []entities.OrderRecord
	err     error
}

func (s staticOrders) OrderRecords(ctx context.Context) ([]entities.OrderRecord, error) {
	return s.records, s.err
}

// blockingLots waits for the run context to be cancelled
type blockingLots struct{}

func (blockingLots) LotRecords(ctx context.Context) ([]entities.LotRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestOrchestrator(t *testing.T) *AllocationOrchestrator {
	return NewAllocationOrchestrator(config.Default(), zaptest.NewLogger(t))
}

func TestRun_EndToEnd(t *testing.T) {
	run, err := newTestOrchestrator(t).Run(context.Background(), RunInput{
		Inventory: staticLots{records: fixtures.LotRecords()},
		Orders:    staticOrders{records: fixtures.OrderRecords()},
	})
	require.NoError(t, err)

	_, err = uuid.Parse(run.RunID)
	assert.NoError(t, err, "run id is a uuid")

	require.Len(t, run.Ledger, 2)
	assert.Equal(t, "A", run.Ledger[0].LotNo)
	assert.Equal(t, entities.Quantity(50), run.Ledger[0].AllocatedQty)
	assert.Equal(t, "B", run.Ledger[1].LotNo)
	assert.Equal(t, entities.Quantity(10), run.Ledger[1].AllocatedQty)

	// pool order: WH1 Normal, WH1 Promotion, WH2
	require.Len(t, run.Report.Rows, 3)
	assert.Equal(t, "B", run.Report.Rows[0].LotNo)
	assert.Equal(t, "A", run.Report.Rows[1].LotNo)
	assert.Equal(t, "C", run.Report.Rows[2].LotNo)

	b := run.Report.Rows[0]
	assert.Equal(t, "45.5%", b.Freshness)
	assert.Equal(t, "05-01-2024", b.MFGDate)
	assert.Equal(t, entities.Quantity(100), b.InHandQty)
	assert.Equal(t, entities.Quantity(120), b.TotalStock)
	assert.Equal(t, entities.Quantity(90), b.RemainingInHand)
	assert.Equal(t, "10-02-2024", b.OrderedDate)

	c := run.Report.Rows[2]
	assert.Equal(t, "80.0%", c.Freshness)
	assert.Equal(t, "", c.OrderedDate)
	assert.Equal(t, entities.Quantity(10), c.RemainingInHand)

	// the pool reflects the depletion
	for _, lot := range run.Lots {
		switch lot.LotNo {
		case "A":
			assert.Equal(t, entities.Quantity(0), lot.OnHandQty)
		case "B":
			assert.Equal(t, entities.Quantity(90), lot.OnHandQty)
			assert.Equal(t, entities.Quantity(110), lot.TotalStockQty)
		}
	}

	summary := run.Summary()
	assert.Equal(t, 3, summary.Lots)
	assert.Equal(t, 1, summary.OrderLines)
	assert.Equal(t, entities.Quantity(60), summary.Allocated)
	assert.Equal(t, 1, summary.PromotionLines)
	assert.Zero(t, summary.ShortLines)
}

func TestRun_CustomRule(t *testing.T) {
	cfg := config.Default()
	cfg.Allocation.PromotionCutoffDay = 5

	run, err := NewAllocationOrchestrator(cfg, nil).Run(context.Background(), RunInput{
		Inventory: staticLots{records: fixtures.LotRecords()},
		Orders:    staticOrders{records: fixtures.OrderRecords()},
	})
	require.NoError(t, err)

	// day 10 is past the cutoff, so only B is drawn
	require.Len(t, run.Ledger, 1)
	assert.Equal(t, "B", run.Ledger[0].LotNo)
	assert.Equal(t, entities.Quantity(60), run.Ledger[0].AllocatedQty)
}

func TestRun_ShortAndUnmatchedOrders(t *testing.T) {
	orders := []entities.OrderRecord{
		{Row: 2, SKUDescription: "Milk 1L", Warehouse: "WH1", RequestedQty: "500", OrderedDate: "2024-02-10"},
		{Row: 3, SKUDescription: "Cheese", Warehouse: "WH1", RequestedQty: "5", OrderedDate: "2024-02-10"},
	}

	run, err := newTestOrchestrator(t).Run(context.Background(), RunInput{
		Inventory: staticLots{records: fixtures.LotRecords()},
		Orders:    staticOrders{records: orders},
	})
	require.NoError(t, err)

	require.Len(t, run.Fulfillments, 2)
	assert.Equal(t, entities.InsufficientStock, run.Fulfillments[0].Status)
	assert.Equal(t, entities.Quantity(350), run.Fulfillments[0].ShortQty)
	assert.Equal(t, entities.NoMatchingLots, run.Fulfillments[1].Status)

	summary := run.Summary()
	assert.Equal(t, 1, summary.ShortLines)
	assert.Equal(t, 1, summary.NoMatchLines)
	assert.Equal(t, entities.Quantity(355), summary.Short)
}

func TestRun_ParseErrorAbortsBeforeAllocation(t *testing.T) {
	lots := fixtures.LotRecords()
	lots[1].Freshness = "fresh"

	_, err := newTestOrchestrator(t).Run(context.Background(), RunInput{
		Inventory: staticLots{records: lots},
		Orders:    staticOrders{records: fixtures.OrderRecords()},
	})
	require.Error(t, err)

	var parseErr *entities.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 3, parseErr.Row)
	assert.Equal(t, entities.ColFreshness, parseErr.Field)
}

func TestRun_SourceErrors(t *testing.T) {
	loadErr := errors.New("disk on fire")

	_, err := newTestOrchestrator(t).Run(context.Background(), RunInput{
		Inventory: staticLots{err: loadErr},
		Orders:    staticOrders{records: fixtures.OrderRecords()},
	})
	assert.ErrorIs(t, err, loadErr)
	assert.Contains(t, err.Error(), "failed to load inventory")

	// a failing source cancels the other one
	_, err = newTestOrchestrator(t).Run(context.Background(), RunInput{
		Inventory: blockingLots{},
		Orders:    staticOrders{err: loadErr},
	})
	assert.ErrorIs(t, err, loadErr)
	assert.Contains(t, err.Error(), "failed to load orders")
}

func TestRun_MissingInputs(t *testing.T) {
	_, err := newTestOrchestrator(t).Run(context.Background(), RunInput{
		Inventory: staticLots{records: fixtures.LotRecords()},
	})
	assert.Error(t, err)
}

func TestRunRecords(t *testing.T) {
	o := newTestOrchestrator(t)

	_, err := o.RunRecords(context.Background(), nil, fixtures.OrderRecords())
	assert.ErrorIs(t, err, entities.ErrEmptyInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.RunRecords(ctx, fixtures.LotRecords(), fixtures.OrderRecords())
	assert.ErrorIs(t, err, context.Canceled)

	// no orders still yields the inventory report
	run, err := o.RunRecords(context.Background(), fixtures.LotRecords(), nil)
	require.NoError(t, err)
	assert.Empty(t, run.Ledger)
	assert.Len(t, run.Report.Rows, 3)
}

func TestRun_RunIDsAreUnique(t *testing.T) {
	o := newTestOrchestrator(t)
	first, err := o.RunRecords(context.Background(), fixtures.LotRecords(), fixtures.OrderRecords())
	require.NoError(t, err)
	second, err := o.RunRecords(context.Background(), fixtures.LotRecords(), fixtures.OrderRecords())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Ledger, second.Ledger)
}

package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/lotalloc/pkg/application/dto"
	"github.com/vsinha/lotalloc/pkg/application/services/allocation"
	"github.com/vsinha/lotalloc/pkg/domain/entities"
	fixtures "github.com/vsinha/lotalloc/pkg/infrastructure/testing"
)

// allocateAndCompose runs the default engine over lots and composes the report
func allocateAndCompose(t *testing.T, lots []*entities.InventoryLot, orders []entities.OrderLine) *dto.Report {
	t.Helper()
	pool := fixtures.Pool(lots...)
	snapshot, err := pool.Snapshot()
	require.NoError(t, err)

	result, err := allocation.NewEngine(allocation.DefaultOptions(), nil).Allocate(pool, orders)
	require.NoError(t, err)

	return NewComposer().Compose(snapshot, result.Lots, result.Ledger, orders)
}

func rowFor(t *testing.T, report *dto.Report, lotNo string) dto.ReportRow {
	t.Helper()
	for _, row := range report.Rows {
		if row.LotNo == lotNo {
			return row
		}
	}
	t.Fatalf("no report row for lot %s", lotNo)
	return dto.ReportRow{}
}

func TestCompose_PromotionScenario(t *testing.T) {
	orders := fixtures.Orders(fixtures.Order("Milk 1L", "WH1", 60, fixtures.Date(2024, 2, 10)))
	report := allocateAndCompose(t, fixtures.BuildPromotionScenario(), orders)

	require.Len(t, report.Rows, 2)
	// pool order is kept
	assert.Equal(t, "B", report.Rows[0].LotNo)
	assert.Equal(t, "A", report.Rows[1].LotNo)

	a := rowFor(t, report, "A")
	assert.Equal(t, dto.ReportRow{
		LotNo:           "A",
		SKUDescription:  "Milk 1L",
		Warehouse:       "WH1",
		Remarks:         entities.PromotionTag,
		MFGDate:         "01-01-2024",
		ExpirationDate:  "01-01-2025",
		Freshness:       "50.0%",
		InHandQty:       50,
		TotalStock:      50,
		Requested:       60,
		Allocated:       50,
		PreviousInHand:  50,
		RemainingInHand: 0,
		OrderedDate:     "10-02-2024",
	}, a)

	b := rowFor(t, report, "B")
	assert.Equal(t, entities.Quantity(100), b.InHandQty, "stock columns show pre-allocation values")
	assert.Equal(t, entities.Quantity(100), b.TotalStock)
	assert.Equal(t, entities.Quantity(10), b.Requested)
	assert.Equal(t, entities.Quantity(10), b.Allocated)
	assert.Equal(t, entities.Quantity(100), b.PreviousInHand)
	assert.Equal(t, entities.Quantity(90), b.RemainingInHand)
}

func TestCompose_LotWithoutOrders(t *testing.T) {
	lots := append(fixtures.BuildPromotionScenario(),
		fixtures.Lot("C", "Bread", "WH2", "Normal", fixtures.Date(2024, 2, 1), 10))
	orders := fixtures.Orders(fixtures.Order("Milk 1L", "WH1", 60, fixtures.Date(2024, 2, 20)))

	report := allocateAndCompose(t, lots, orders)

	c := rowFor(t, report, "C")
	assert.Equal(t, "", c.OrderedDate)
	assert.Equal(t, entities.Quantity(0), c.Requested)
	assert.Equal(t, entities.Quantity(0), c.Allocated)
	assert.Equal(t, entities.Quantity(10), c.PreviousInHand)
	assert.Equal(t, entities.Quantity(10), c.RemainingInHand)
}

func TestCompose_OrderedLotWithoutLedgerEvent(t *testing.T) {
	// day 20: promotion lot A is skipped but still shares the order's SKU and warehouse
	orders := fixtures.Orders(fixtures.Order("Milk 1L", "WH1", 60, fixtures.Date(2024, 2, 20)))
	report := allocateAndCompose(t, fixtures.BuildPromotionScenario(), orders)

	a := rowFor(t, report, "A")
	assert.Equal(t, "20-02-2024", a.OrderedDate)
	assert.Equal(t, entities.Quantity(0), a.Requested)
	assert.Equal(t, entities.Quantity(0), a.Allocated)
	assert.Equal(t, entities.Quantity(50), a.PreviousInHand)
	assert.Equal(t, entities.Quantity(50), a.RemainingInHand)
}

func TestCompose_FansOutPerMatchingOrder(t *testing.T) {
	orders := fixtures.Orders(
		fixtures.Order("Milk 1L", "WH1", 30, fixtures.Date(2024, 2, 20)),
		fixtures.Order("Milk 1L", "WH1", 25, fixtures.Date(2024, 2, 21)),
		fixtures.Order("Bread", "WH1", 5, fixtures.Date(2024, 2, 21)),
	)
	report := allocateAndCompose(t, fixtures.BuildPromotionScenario(), orders)

	require.Len(t, report.Rows, 4)
	var dates []string
	for _, row := range report.Rows {
		if row.LotNo != "B" {
			continue
		}
		dates = append(dates, row.OrderedDate)
		// the single ledger event is repeated on every fanned-out row
		assert.Equal(t, entities.Quantity(30), row.Requested)
		assert.Equal(t, entities.Quantity(30), row.Allocated)
		assert.Equal(t, entities.Quantity(70), row.RemainingInHand)
	}
	assert.Equal(t, []string{"20-02-2024", "21-02-2024"}, dates)
}

func TestCompose_RestoresFromSnapshot(t *testing.T) {
	lot := fixtures.Lot("X", "Milk 1L", "WH1", "Normal", fixtures.Date(2024, 1, 1), 40)
	lot.TotalStockQty = 55
	snapshot := []*entities.InventoryLot{lot.Clone()}

	lot.OnHandQty = 5
	lot.TotalStockQty = 20
	ledger := []entities.AllocationEvent{{
		LotNo: "X", RequestedAtAllocation: 35, OnHandBefore: 40, AllocatedQty: 35, OnHandAfter: 5,
	}}
	orders := fixtures.Orders(fixtures.Order("Milk 1L", "WH1", 35, fixtures.Date(2024, 2, 1)))

	report := NewComposer().Compose(snapshot, []*entities.InventoryLot{lot}, ledger, orders)

	row := rowFor(t, report, "X")
	assert.Equal(t, entities.Quantity(40), row.InHandQty)
	assert.Equal(t, entities.Quantity(55), row.TotalStock)
	assert.Equal(t, entities.Quantity(5), row.RemainingInHand)
}

func TestCompose_DuplicateLotNumbersKeepOwnColumns(t *testing.T) {
	milk := fixtures.Lot("X1", "Milk 1L", "WH1", "Normal", fixtures.Date(2024, 1, 1), 50)
	bread := fixtures.Lot("X1", "Bread", "WH2", "Normal", fixtures.Date(2024, 1, 3), 70)
	orders := fixtures.Orders(fixtures.Order("Bread", "WH2", 10, fixtures.Date(2024, 2, 20)))

	report := allocateAndCompose(t, []*entities.InventoryLot{milk, bread}, orders)

	require.Len(t, report.Rows, 2)
	first, second := report.Rows[0], report.Rows[1]

	assert.Equal(t, "Milk 1L", first.SKUDescription)
	assert.Equal(t, "WH1", first.Warehouse)
	assert.Equal(t, entities.Quantity(50), first.InHandQty)
	assert.Equal(t, entities.Quantity(0), first.Requested)
	assert.Equal(t, "", first.OrderedDate)

	assert.Equal(t, "X1", second.LotNo)
	assert.Equal(t, "Bread", second.SKUDescription)
	assert.Equal(t, "WH2", second.Warehouse)
	assert.Equal(t, "03-01-2024", second.MFGDate)
	assert.Equal(t, entities.Quantity(70), second.InHandQty)
	assert.Equal(t, entities.Quantity(10), second.Requested)
	assert.Equal(t, entities.Quantity(60), second.RemainingInHand)
	assert.Equal(t, "20-02-2024", second.OrderedDate)
}

func TestCompose_MissingSnapshotFallsBackToPool(t *testing.T) {
	lot := fixtures.Lot("X", "Milk 1L", "WH1", "Normal", fixtures.Date(2024, 1, 1), 7)
	report := NewComposer().Compose(nil, []*entities.InventoryLot{lot}, nil, nil)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, entities.Quantity(7), report.Rows[0].InHandQty)
}

func TestCompose_ZeroExpirationRendersEmpty(t *testing.T) {
	lot := fixtures.Lot("X", "Milk 1L", "WH1", "Normal", fixtures.Date(2024, 1, 1), 7)
	lot.ExpirationDate = time.Time{}

	report := NewComposer().Compose(nil, []*entities.InventoryLot{lot}, nil, nil)

	assert.Equal(t, "", report.Rows[0].ExpirationDate)
	assert.Equal(t, "01-01-2024", report.Rows[0].MFGDate)
}

func TestCompose_CustomDateLayout(t *testing.T) {
	lot := fixtures.Lot("X", "Milk 1L", "WH1", "Normal", fixtures.Date(2024, 3, 9), 7)
	report := NewComposer(WithDateLayout("2006/01/02")).Compose(nil, []*entities.InventoryLot{lot}, nil, nil)

	assert.Equal(t, "2024/03/09", report.Rows[0].MFGDate)
	assert.Equal(t, "2025/03/09", report.Rows[0].ExpirationDate)
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		fraction string
		expected string
	}{
		{"0.3", "30.0%"},
		{"0.4525", "45.25%"},
		{"0.455", "45.5%"},
		{"1", "100.0%"},
		{"0", "0.0%"},
		{"0.123456", "12.35%"},
	}

	for _, tt := range tests {
		t.Run(tt.fraction, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPercent(decimal.RequireFromString(tt.fraction)))
		})
	}
}

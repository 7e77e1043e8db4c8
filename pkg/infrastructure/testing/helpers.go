package testing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/lotalloc/pkg/domain/entities"
	"github.com/vsinha/lotalloc/pkg/infrastructure/repositories/memory"
)

// Date builds a calendar date in UTC
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Lot builds an inventory lot with total stock equal to on hand and 50% freshness
func Lot(lotNo, sku, warehouse, remarks string, mfgDate time.Time, onHand entities.Quantity) *entities.InventoryLot {
	return &entities.InventoryLot{
		LotNo:          lotNo,
		SKUDescription: sku,
		Warehouse:      warehouse,
		Remarks:        remarks,
		MFGDate:        mfgDate,
		ExpirationDate: mfgDate.AddDate(1, 0, 0),
		Freshness:      decimal.RequireFromString("0.5"),
		OnHandQty:      onHand,
		TotalStockQty:  onHand,
	}
}

// Order builds an order line; Index is left for the caller or Orders to set
func Order(sku, warehouse string, requested entities.Quantity, orderedDate time.Time) entities.OrderLine {
	return entities.OrderLine{
		SKUDescription: sku,
		Warehouse:      warehouse,
		RequestedQty:   requested,
		OrderedDate:    orderedDate,
	}
}

// Orders numbers the given order lines in input order
func Orders(lines ...entities.OrderLine) []entities.OrderLine {
	orders := make([]entities.OrderLine, len(lines))
	for i, line := range lines {
		line.Index = i
		orders[i] = line
	}
	return orders
}

// Pool loads lots into a fresh in-memory pool
func Pool(lots ...*entities.InventoryLot) *memory.LotRepository {
	pool := memory.NewLotRepository(len(lots))
	if err := pool.LoadLots(lots); err != nil {
		panic(err)
	}
	return pool
}

// BuildPromotionScenario returns the two-lot pool used across the test suites:
// lot A is a promotion lot (mfg 2024-01-01, 50 on hand) and lot B is normal
// stock (mfg 2024-01-05, 100 on hand), both Milk 1L at WH1, in normalized order.
func BuildPromotionScenario() []*entities.InventoryLot {
	return []*entities.InventoryLot{
		Lot("B", "Milk 1L", "WH1", "Normal", Date(2024, 1, 5), 100),
		Lot("A", "Milk 1L", "WH1", entities.PromotionTag, Date(2024, 1, 1), 50),
	}
}

// BuildMixedWarehouseScenario returns lots for two SKUs across two warehouses,
// with several normal lots per group to exercise oldest-first depletion
func BuildMixedWarehouseScenario() []*entities.InventoryLot {
	return []*entities.InventoryLot{
		Lot("M-1-OLD", "Milk 1L", "WH1", "Normal", Date(2024, 1, 2), 20),
		Lot("M-1-NEW", "Milk 1L", "WH1", "Normal", Date(2024, 1, 20), 40),
		Lot("M-1-P1", "Milk 1L", "WH1", entities.PromotionTag, Date(2024, 1, 3), 10),
		Lot("M-1-P2", "Milk 1L", "WH1", entities.PromotionTag, Date(2024, 3, 1), 30),
		Lot("B-1", "Bread", "WH1", "Normal", Date(2024, 2, 1), 15),
		Lot("M-2-OLD", "Milk 1L", "WH2", "Normal", Date(2024, 1, 1), 25),
	}
}

// LotRecords returns raw rows matching BuildPromotionScenario before normalization
func LotRecords() []entities.LotRecord {
	return []entities.LotRecord{
		{
			Row: 2, LotNo: "A", SKUDescription: "Milk 1L", Warehouse: "WH1", Remarks: entities.PromotionTag,
			MFGDate: "2024-01-01", ExpirationDate: "2024-06-30", Freshness: "30.00%", InHandQty: "50", TotalStock: "50",
		},
		{
			Row: 3, LotNo: "B", SKUDescription: "Milk 1L", Warehouse: "WH1", Remarks: "Normal",
			MFGDate: "2024-01-05", ExpirationDate: "2024-07-05", Freshness: "45.50%", InHandQty: "100", TotalStock: "120",
		},
		{
			Row: 4, LotNo: "C", SKUDescription: "Bread", Warehouse: "WH2", Remarks: "Normal",
			MFGDate: "2024-02-01", ExpirationDate: "2024-02-10", Freshness: "80%", InHandQty: "10", TotalStock: "10",
		},
	}
}

// OrderRecords returns raw order rows against LotRecords
func OrderRecords() []entities.OrderRecord {
	return []entities.OrderRecord{
		{Row: 2, SKUDescription: "Milk 1L", Warehouse: "WH1", RequestedQty: "60", OrderedDate: "2024-02-10"},
	}
}

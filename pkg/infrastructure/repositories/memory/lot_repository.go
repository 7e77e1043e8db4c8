package memory

import (
	"fmt"

	"github.com/vsinha/lotalloc/pkg/domain/entities"
	"github.com/vsinha/lotalloc/pkg/domain/repositories"
)

// LotRepository is the in-memory lot pool for one allocation run.
// Lots keep the order they were loaded in; the allocator relies on that
// order being the normalized (warehouse, remarks, MFG date) sort.
type LotRepository struct {
	lots  []*entities.InventoryLot
	byKey map[entities.StockKey][]int
}

// NewLotRepository creates a new in-memory lot pool
func NewLotRepository(capacity int) *LotRepository {
	return &LotRepository{
		lots:  make([]*entities.InventoryLot, 0, capacity),
		byKey: make(map[entities.StockKey][]int),
	}
}

// Verify interface compliance
var _ repositories.LotRepository = (*LotRepository)(nil)

// LoadLots adds lots to the pool in the given order.
// The pool keeps the pointers, so later draws mutate the caller's lots.
func (r *LotRepository) LoadLots(lots []*entities.InventoryLot) error {
	for _, lot := range lots {
		if err := r.AddLot(lot); err != nil {
			return err
		}
	}
	return nil
}

// AddLot appends a single lot to the pool
func (r *LotRepository) AddLot(lot *entities.InventoryLot) error {
	if lot == nil {
		return fmt.Errorf("lot cannot be nil")
	}
	idx := len(r.lots)
	r.lots = append(r.lots, lot)

	key := lot.Key()
	r.byKey[key] = append(r.byKey[key], idx)
	return nil
}

// GetAllLots returns every lot in pool order
func (r *LotRepository) GetAllLots() ([]*entities.InventoryLot, error) {
	lots := make([]*entities.InventoryLot, len(r.lots))
	copy(lots, r.lots)
	return lots, nil
}

// GetCandidateLots returns the lots for a SKU at a warehouse in pool order
func (r *LotRepository) GetCandidateLots(skuDescription, warehouse string) ([]*entities.InventoryLot, error) {
	indexes := r.byKey[entities.StockKey{SKUDescription: skuDescription, Warehouse: warehouse}]
	candidates := make([]*entities.InventoryLot, 0, len(indexes))
	for _, idx := range indexes {
		candidates = append(candidates, r.lots[idx])
	}
	return candidates, nil
}

// Snapshot returns deep copies of every lot in pool order
func (r *LotRepository) Snapshot() ([]*entities.InventoryLot, error) {
	snapshot := make([]*entities.InventoryLot, len(r.lots))
	for i, lot := range r.lots {
		snapshot[i] = lot.Clone()
	}
	return snapshot, nil
}

// GetAvailableQuantity returns the total on-hand quantity for a SKU at a warehouse
func (r *LotRepository) GetAvailableQuantity(skuDescription, warehouse string) (entities.Quantity, error) {
	var total entities.Quantity
	lots, err := r.GetCandidateLots(skuDescription, warehouse)
	if err != nil {
		return 0, err
	}
	for _, lot := range lots {
		total += lot.OnHandQty
	}
	return total, nil
}

// Size returns the number of lots in the pool
func (r *LotRepository) Size() int {
	return len(r.lots)
}

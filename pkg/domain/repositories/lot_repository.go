package repositories

import "github.com/vsinha/lotalloc/pkg/domain/entities"

// LotRepository holds the mutable lot pool for one allocation run.
// Lots are returned as live pointers in pool order; callers that draw from
// them mutate the pool.
type LotRepository interface {
	LoadLots(lots []*entities.InventoryLot) error
	GetAllLots() ([]*entities.InventoryLot, error)
	GetCandidateLots(skuDescription, warehouse string) ([]*entities.InventoryLot, error)
	GetAvailableQuantity(skuDescription, warehouse string) (entities.Quantity, error)
	Snapshot() ([]*entities.InventoryLot, error)
}

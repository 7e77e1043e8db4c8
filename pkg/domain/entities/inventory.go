package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Quantity represents an integer quantity of stock units
type Quantity int64

// PromotionTag is the Remarks value that marks a lot for promotional priority.
// Any other value is treated as normal stock.
const PromotionTag = "Promotion"

// InventoryLot represents one manufactured batch of one SKU at one warehouse
type InventoryLot struct {
	LotNo          string          `json:"lot_no" validate:"required"`
	SKUDescription string          `json:"sku_description" validate:"required"`
	Warehouse      string          `json:"warehouse" validate:"required"`
	Remarks        string          `json:"remarks"`
	MFGDate        time.Time       `json:"mfg_date"`
	ExpirationDate time.Time       `json:"expiration_date"`
	Freshness      decimal.Decimal `json:"freshness"`
	OnHandQty      Quantity        `json:"on_hand_qty" validate:"gte=0"`
	TotalStockQty  Quantity        `json:"total_stock_qty" validate:"gte=0"`

	// Row is the source row number, 0 when the lot was not loaded from a file.
	Row int `json:"row,omitempty"`
	// Extra holds source columns the allocator does not interpret.
	Extra map[string]string `json:"extra,omitempty"`
}

// NewInventoryLot creates a validated InventoryLot
func NewInventoryLot(
	lotNo, skuDescription, warehouse, remarks string,
	mfgDate, expirationDate time.Time,
	freshness decimal.Decimal,
	onHand, totalStock Quantity,
) (*InventoryLot, error) {
	if lotNo == "" {
		return nil, fmt.Errorf("lot number cannot be empty")
	}
	if skuDescription == "" {
		return nil, fmt.Errorf("sku description cannot be empty")
	}
	if warehouse == "" {
		return nil, fmt.Errorf("warehouse cannot be empty")
	}
	if onHand < 0 {
		return nil, fmt.Errorf("on hand quantity cannot be negative, got %d", onHand)
	}
	if totalStock < 0 {
		return nil, fmt.Errorf("total stock quantity cannot be negative, got %d", totalStock)
	}

	return &InventoryLot{
		LotNo:          lotNo,
		SKUDescription: skuDescription,
		Warehouse:      warehouse,
		Remarks:        remarks,
		MFGDate:        CalendarDate(mfgDate),
		ExpirationDate: CalendarDate(expirationDate),
		Freshness:      freshness,
		OnHandQty:      onHand,
		TotalStockQty:  totalStock,
	}, nil
}

// IsPromotion reports whether the lot carries the given promotion tag
func (l *InventoryLot) IsPromotion(tag string) bool {
	return l.Remarks == tag
}

// Key returns the (SKU, warehouse) identity of the lot
func (l *InventoryLot) Key() StockKey {
	return StockKey{SKUDescription: l.SKUDescription, Warehouse: l.Warehouse}
}

// Draw removes up to qty units from the lot and returns the amount taken.
// OnHandQty and TotalStockQty are decremented by the same amount.
func (l *InventoryLot) Draw(qty Quantity) Quantity {
	if qty <= 0 {
		return 0
	}
	taken := min(qty, l.OnHandQty)
	if taken < 0 {
		taken = 0
	}
	l.OnHandQty -= taken
	l.TotalStockQty -= taken
	return taken
}

// Clone returns a deep copy of the lot
func (l *InventoryLot) Clone() *InventoryLot {
	c := *l
	if l.Extra != nil {
		c.Extra = make(map[string]string, len(l.Extra))
		for k, v := range l.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// CalendarDate strips the time of day, keeping the calendar date in UTC
func CalendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

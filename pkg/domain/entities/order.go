package entities

import (
	"fmt"
	"time"
)

// OrderLine represents one requested quantity of one SKU at one warehouse
type OrderLine struct {
	SKUDescription string    `json:"sku_description" validate:"required"`
	Warehouse      string    `json:"warehouse" validate:"required"`
	RequestedQty   Quantity  `json:"requested_qty" validate:"gte=0"`
	OrderedDate    time.Time `json:"ordered_date"`

	// Index is the position of the line in its input batch
	Index int `json:"index"`
	Row   int `json:"row,omitempty"`
}

// NewOrderLine creates a validated OrderLine
func NewOrderLine(skuDescription, warehouse string, requested Quantity, orderedDate time.Time) (*OrderLine, error) {
	if skuDescription == "" {
		return nil, fmt.Errorf("sku description cannot be empty")
	}
	if warehouse == "" {
		return nil, fmt.Errorf("warehouse cannot be empty")
	}
	if requested < 0 {
		return nil, fmt.Errorf("requested quantity cannot be negative, got %d", requested)
	}
	if orderedDate.IsZero() {
		return nil, fmt.Errorf("ordered date cannot be empty")
	}

	return &OrderLine{
		SKUDescription: skuDescription,
		Warehouse:      warehouse,
		RequestedQty:   requested,
		OrderedDate:    CalendarDate(orderedDate),
	}, nil
}

// PromotionWindowOpen reports whether the order date falls on or before the cutoff day of its month
func (o OrderLine) PromotionWindowOpen(cutoffDay int) bool {
	return o.OrderedDate.Day() <= cutoffDay
}

// Key returns the (SKU, warehouse) identity used to join orders to lots
func (o OrderLine) Key() StockKey {
	return StockKey{SKUDescription: o.SKUDescription, Warehouse: o.Warehouse}
}

// StockKey identifies a SKU held at one warehouse
type StockKey struct {
	SKUDescription string
	Warehouse      string
}

// String renders the key as sku@warehouse
func (k StockKey) String() string {
	return fmt.Sprintf("%s@%s", k.SKUDescription, k.Warehouse)
}

package entities

import "fmt"

// AllocationEvent records inventory drawn from one lot to satisfy demand.
//
// The ledger holds at most one event per LotNo for a run: a lot drawn by a
// second order line is still decremented but gets no new event.
type AllocationEvent struct {
	LotNo string `json:"lot_no"`
	// RequestedAtAllocation is the outstanding quantity after this draw plus
	// the drawn amount, i.e. what was still outstanding when the lot was reached.
	RequestedAtAllocation Quantity `json:"requested"`
	OnHandBefore          Quantity `json:"previous_on_hand"`
	AllocatedQty          Quantity `json:"allocated"`
	OnHandAfter           Quantity `json:"remaining_on_hand"`

	// OrderIndex is the index of the order line that produced the event
	OrderIndex int `json:"order_index"`
}

// LotDraw is one decrement of one lot while serving an order line.
// Unlike AllocationEvent it is recorded for every draw.
type LotDraw struct {
	LotNo        string   `json:"lot_no"`
	Promotion    bool     `json:"promotion"`
	OnHandBefore Quantity `json:"previous_on_hand"`
	AllocatedQty Quantity `json:"allocated"`
	OnHandAfter  Quantity `json:"remaining_on_hand"`
	Recorded     bool     `json:"recorded"`
}

// FulfillmentStatus classifies how an order line was served
type FulfillmentStatus int

const (
	Fulfilled FulfillmentStatus = iota
	NoMatchingLots
	InsufficientStock
)

// String method for FulfillmentStatus enum
func (s FulfillmentStatus) String() string {
	switch s {
	case Fulfilled:
		return "Fulfilled"
	case NoMatchingLots:
		return "NoMatchingLots"
	case InsufficientStock:
		return "InsufficientStock"
	default:
		return "Unknown"
	}
}

// MarshalText renders the status by name
func (s FulfillmentStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// OrderFulfillment summarises what one order line received
type OrderFulfillment struct {
	Order        OrderLine         `json:"order"`
	AllocatedQty Quantity          `json:"allocated_qty"`
	ShortQty     Quantity          `json:"short_qty"`
	UsedPromo    bool              `json:"used_promotion"`
	Draws        []LotDraw         `json:"draws"`
	Status       FulfillmentStatus `json:"status"`
}

// Err returns the non-fatal condition behind a short allocation, or nil
func (f OrderFulfillment) Err() error {
	switch f.Status {
	case NoMatchingLots:
		return fmt.Errorf("order line %d (%s): %w", f.Order.Index, f.Order.Key(), ErrNoMatchingLots)
	case InsufficientStock:
		return fmt.Errorf("order line %d (%s) short by %d: %w",
			f.Order.Index, f.Order.Key(), f.ShortQty, ErrInsufficientStock)
	default:
		return nil
	}
}

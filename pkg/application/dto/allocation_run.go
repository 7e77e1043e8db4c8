package dto

import (
	"time"

	"github.com/vsinha/lotalloc/pkg/domain/entities"
)

// AllocationRun contains the complete output of one allocation run
type AllocationRun struct {
	RunID        string                      `json:"run_id"`
	StartedAt    time.Time                   `json:"started_at"`
	Duration     time.Duration               `json:"duration_ns"`
	Report       *Report                     `json:"report"`
	Ledger       []entities.AllocationEvent  `json:"ledger"`
	Fulfillments []entities.OrderFulfillment `json:"fulfillments"`
	Lots         []*entities.InventoryLot    `json:"-"`
}

// RunSummary holds headline counts for a run
type RunSummary struct {
	Lots           int               `json:"lots"`
	OrderLines     int               `json:"order_lines"`
	LedgerEvents   int               `json:"ledger_events"`
	Requested      entities.Quantity `json:"requested"`
	Allocated      entities.Quantity `json:"allocated"`
	Short          entities.Quantity `json:"short"`
	ShortLines     int               `json:"short_lines"`
	NoMatchLines   int               `json:"no_match_lines"`
	PromotionLines int               `json:"promotion_lines"`
}

// Summary computes headline counts from the fulfillments
func (r *AllocationRun) Summary() RunSummary {
	s := RunSummary{
		Lots:         len(r.Lots),
		OrderLines:   len(r.Fulfillments),
		LedgerEvents: len(r.Ledger),
	}
	for _, f := range r.Fulfillments {
		s.Requested += f.Order.RequestedQty
		s.Allocated += f.AllocatedQty
		s.Short += f.ShortQty
		switch f.Status {
		case entities.InsufficientStock:
			s.ShortLines++
		case entities.NoMatchingLots:
			s.NoMatchLines++
		}
		if f.UsedPromo {
			s.PromotionLines++
		}
	}
	return s
}

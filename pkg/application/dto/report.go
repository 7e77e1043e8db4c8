package dto

import (
	"strconv"

	"github.com/vsinha/lotalloc/pkg/domain/entities"
)

// Report column names added to the lot columns
const (
	ColRequested       = "Requested"
	ColAllocated       = "Allocated"
	ColRemainingInHand = "Remaining In hand"
)

// ReportColumns lists the exported report columns in order
var ReportColumns = []string{
	entities.ColLotNo, entities.ColSKUDescription, entities.ColWarehouse, entities.ColRemarks,
	entities.ColMFGDate, entities.ColExpirationDate, entities.ColFreshness, entities.ColInHandQty,
	entities.ColTotalStock, ColRequested, ColAllocated, ColRemainingInHand, entities.ColOrderedDate,
}

// ReportRow is one line of the allocation report: a lot, joined with its
// ledger event and one of the order lines for its SKU and warehouse
type ReportRow struct {
	LotNo          string            `json:"lot_no"`
	SKUDescription string            `json:"sku_description"`
	Warehouse      string            `json:"warehouse"`
	Remarks        string            `json:"remarks"`
	MFGDate        string            `json:"mfg_date"`
	ExpirationDate string            `json:"expiration_date"`
	Freshness      string            `json:"freshness"`
	InHandQty      entities.Quantity `json:"in_hand_qty"`
	TotalStock     entities.Quantity `json:"total_stock"`

	Requested       entities.Quantity `json:"requested"`
	Allocated       entities.Quantity `json:"allocated"`
	PreviousInHand  entities.Quantity `json:"previous_in_hand"`
	RemainingInHand entities.Quantity `json:"remaining_in_hand"`
	OrderedDate     string            `json:"ordered_date"`
}

// Values renders the row in ReportColumns order
func (r ReportRow) Values() []string {
	return []string{
		r.LotNo, r.SKUDescription, r.Warehouse, r.Remarks,
		r.MFGDate, r.ExpirationDate, r.Freshness,
		qty(r.InHandQty), qty(r.TotalStock),
		qty(r.Requested), qty(r.Allocated), qty(r.RemainingInHand),
		r.OrderedDate,
	}
}

func qty(q entities.Quantity) string {
	return strconv.FormatInt(int64(q), 10)
}

// Report is the composed allocation report
type Report struct {
	Rows []ReportRow `json:"rows"`
}

// Filter returns the rows matching sku and warehouse exactly.
// An empty argument matches everything.
func (r *Report) Filter(sku, warehouse string) *Report {
	filtered := &Report{Rows: make([]ReportRow, 0, len(r.Rows))}
	for _, row := range r.Rows {
		if sku != "" && row.SKUDescription != sku {
			continue
		}
		if warehouse != "" && row.Warehouse != warehouse {
			continue
		}
		filtered.Rows = append(filtered.Rows, row)
	}
	return filtered
}

// SKUs returns the distinct SKU descriptions in first-seen order
func (r *Report) SKUs() []string {
	return r.distinct(func(row ReportRow) string { return row.SKUDescription })
}

// Warehouses returns the distinct warehouses in first-seen order
func (r *Report) Warehouses() []string {
	return r.distinct(func(row ReportRow) string { return row.Warehouse })
}

func (r *Report) distinct(field func(ReportRow) string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, row := range r.Rows {
		v := field(row)
		if seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}

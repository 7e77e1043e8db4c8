package entities

import "strings"

// Source column names recognised in inventory and order files
const (
	ColLotNo          = "lotNo"
	ColSKUDescription = "SKU Description"
	ColWarehouse      = "WH"
	ColRemarks        = "Remarks"
	ColMFGDate        = "MFG Date"
	ColExpirationDate = "Expiration Date"
	ColFreshness      = "Freshness"
	ColInHandQty      = "IN_HAND_QTY"
	ColTotalStock     = "Total Stock"
	ColRequestedQty   = "Requested QTY"
	ColOrderedDate    = "Ordered Date"
)

// LotColumns lists the inventory columns in report order
var LotColumns = []string{
	ColLotNo, ColSKUDescription, ColWarehouse, ColRemarks, ColMFGDate,
	ColExpirationDate, ColFreshness, ColInHandQty, ColTotalStock,
}

// RequiredLotColumns must be present in every inventory file
var RequiredLotColumns = []string{
	ColLotNo, ColSKUDescription, ColWarehouse, ColRemarks, ColMFGDate,
	ColFreshness, ColInHandQty, ColTotalStock,
}

// RequiredOrderColumns must be present in every order file
var RequiredOrderColumns = []string{
	ColSKUDescription, ColWarehouse, ColRequestedQty, ColOrderedDate,
}

// LotRecord is one unparsed inventory row as read from a file
type LotRecord struct {
	Row            int
	LotNo          string
	SKUDescription string
	Warehouse      string
	Remarks        string
	MFGDate        string
	ExpirationDate string
	Freshness      string
	InHandQty      string
	TotalStock     string
	Extra          map[string]string
}

// OrderRecord is one unparsed order row as read from a file
type OrderRecord struct {
	Row            int
	SKUDescription string
	Warehouse      string
	RequestedQty   string
	OrderedDate    string
}

// NewLotRecord maps a data row onto a LotRecord using a header index.
// Columns outside LotColumns are kept in Extra.
func NewLotRecord(row int, header map[string]int, fields []string) LotRecord {
	get := fieldGetter(header, fields)
	rec := LotRecord{
		Row:            row,
		LotNo:          get(ColLotNo),
		SKUDescription: get(ColSKUDescription),
		Warehouse:      get(ColWarehouse),
		Remarks:        get(ColRemarks),
		MFGDate:        get(ColMFGDate),
		ExpirationDate: get(ColExpirationDate),
		Freshness:      get(ColFreshness),
		InHandQty:      get(ColInHandQty),
		TotalStock:     get(ColTotalStock),
	}

	known := make(map[string]bool, len(LotColumns))
	for _, col := range LotColumns {
		known[col] = true
	}
	for name := range header {
		if known[name] || name == "" {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[name] = get(name)
	}
	return rec
}

// NewOrderRecord maps a data row onto an OrderRecord using a header index
func NewOrderRecord(row int, header map[string]int, fields []string) OrderRecord {
	get := fieldGetter(header, fields)
	return OrderRecord{
		Row:            row,
		SKUDescription: get(ColSKUDescription),
		Warehouse:      get(ColWarehouse),
		RequestedQty:   get(ColRequestedQty),
		OrderedDate:    get(ColOrderedDate),
	}
}

// HeaderIndex maps trimmed header names to their column index. A leading
// UTF-8 byte order mark is dropped and the first of repeated names wins.
func HeaderIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	return index
}

// MissingColumns returns the required names absent from the header
func MissingColumns(header map[string]int, required []string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

func fieldGetter(header map[string]int, fields []string) func(string) string {
	return func(name string) string {
		idx, ok := header[name]
		if !ok || idx >= len(fields) {
			return ""
		}
		return fields[idx]
	}
}

package entities

import "testing"

func TestNewLotRecord_MapsColumnsAndExtras(t *testing.T) {
	header := map[string]int{
		ColLotNo: 0, ColSKUDescription: 1, ColWarehouse: 2, ColRemarks: 3,
		ColMFGDate: 4, ColFreshness: 5, ColInHandQty: 6, ColTotalStock: 7,
		"IN_TRANSIT_QTY": 8,
	}
	fields := []string{"L1", "Milk 1L", "WH1", "Promotion", "2024-01-01", "30.00%", "50", "55", "4"}

	rec := NewLotRecord(2, header, fields)

	if rec.Row != 2 || rec.LotNo != "L1" || rec.Warehouse != "WH1" || rec.InHandQty != "50" {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if rec.ExpirationDate != "" {
		t.Errorf("Expected missing column to map to empty string, got %q", rec.ExpirationDate)
	}
	if rec.Extra["IN_TRANSIT_QTY"] != "4" {
		t.Errorf("Expected IN_TRANSIT_QTY kept as extra column, got %v", rec.Extra)
	}
}

func TestNewOrderRecord_ShortRow(t *testing.T) {
	header := map[string]int{ColSKUDescription: 0, ColWarehouse: 1, ColRequestedQty: 2, ColOrderedDate: 3}

	rec := NewOrderRecord(3, header, []string{"Milk 1L", "WH1"})

	if rec.SKUDescription != "Milk 1L" || rec.RequestedQty != "" || rec.OrderedDate != "" {
		t.Errorf("Unexpected record: %+v", rec)
	}
}

func TestMissingColumns(t *testing.T) {
	header := map[string]int{ColSKUDescription: 0, ColWarehouse: 1}

	missing := MissingColumns(header, RequiredOrderColumns)

	if len(missing) != 2 || missing[0] != ColRequestedQty || missing[1] != ColOrderedDate {
		t.Errorf("Expected Requested QTY and Ordered Date missing, got %v", missing)
	}
}

func TestHeaderIndex(t *testing.T) {
	index := HeaderIndex([]string{"\ufefflotNo", " WH ", "WH"})

	if len(index) != 2 {
		t.Fatalf("Expected 2 header names, got %d", len(index))
	}
	if index["lotNo"] != 0 {
		t.Errorf("Expected lotNo at 0 with BOM stripped, got %d", index["lotNo"])
	}
	if index["WH"] != 1 {
		t.Errorf("Expected first WH at 1, got %d", index["WH"])
	}
}

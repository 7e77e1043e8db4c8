package xlsx

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/lotalloc/pkg/application/dto"
	"github.com/vsinha/lotalloc/pkg/domain/entities"
)

// workbook builds an in-memory workbook with one sheet holding rows
func workbook(t *testing.T, sheet string, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

var inventoryHeader = []any{
	"lotNo", "SKU Description", "WH", "Remarks", "MFG Date", "Expiration Date",
	"Freshness", "IN_HAND_QTY", "IN_TRANSIT_QTY", "Total Stock",
}

func TestReadInventory(t *testing.T) {
	buf := workbook(t, "Stock",
		inventoryHeader,
		[]any{"A", "Milk 1L", "WH1", "Promotion", 45292, "2024-06-30", "30.00%", 50, 5, 50},
		[]any{"B", "Milk 1L", "WH1", "Normal", "2024-01-05", 45478, "45.50%", 100, 0, 120},
	)

	records, err := NewLoader().ReadInventory(buf)
	require.NoError(t, err)
	require.Len(t, records, 2)

	a := records[0]
	assert.Equal(t, 2, a.Row)
	assert.Equal(t, "A", a.LotNo)
	assert.Equal(t, "2024-01-01", a.MFGDate, "serial dates are converted")
	assert.Equal(t, "2024-06-30", a.ExpirationDate)
	assert.Equal(t, "30.00%", a.Freshness)
	assert.Equal(t, "50", a.InHandQty)
	assert.Equal(t, "5", a.Extra["IN_TRANSIT_QTY"])

	b := records[1]
	assert.Equal(t, "2024-01-05", b.MFGDate)
	assert.Equal(t, "2024-07-05", b.ExpirationDate)
	assert.Equal(t, "120", b.TotalStock)
}

func TestReadInventory_NamedSheet(t *testing.T) {
	buf := workbook(t, "Stock",
		inventoryHeader,
		[]any{"A", "Milk 1L", "WH1", "Normal", "2024-01-01", "", "30%", 1, 0, 1},
	)

	_, err := NewLoader(WithSheet("Missing")).ReadInventory(bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Missing" not found`)

	records, err := NewLoader(WithSheet("Stock")).ReadInventory(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestReadInventory_MissingColumns(t *testing.T) {
	buf := workbook(t, "Sheet1", []any{"lotNo", "WH"}, []any{"A", "WH1"})

	_, err := NewLoader().ReadInventory(buf)
	assert.ErrorIs(t, err, entities.ErrMissingColumn)
}

func TestReadOrders(t *testing.T) {
	buf := workbook(t, "Orders",
		[]any{"SKU Description", "WH", "Requested QTY", "Ordered Date"},
		[]any{"Milk 1L", "WH1", 60, 45332},
		[]any{},
		[]any{"Bread", "WH2", 5, "2024-02-20"},
	)

	records, err := NewLoader().ReadOrders(buf)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, entities.OrderRecord{
		Row: 2, SKUDescription: "Milk 1L", Warehouse: "WH1", RequestedQty: "60", OrderedDate: "2024-02-10",
	}, records[0])
	assert.Equal(t, 4, records[1].Row)
}

func TestReadOrders_HeaderOnly(t *testing.T) {
	buf := workbook(t, "Orders", []any{"SKU Description", "WH", "Requested QTY", "Ordered Date"})

	_, err := NewLoader().ReadOrders(buf)
	assert.ErrorIs(t, err, entities.ErrEmptyInput)
}

func TestReadOrders_NotAWorkbook(t *testing.T) {
	_, err := NewLoader().ReadOrders(bytes.NewBufferString("SKU Description,WH\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open orders workbook")
}

func sampleReport() *dto.Report {
	return &dto.Report{Rows: []dto.ReportRow{
		{
			LotNo: "A", SKUDescription: "Milk 1L", Warehouse: "WH1", Remarks: "Promotion",
			MFGDate: "01-01-2024", ExpirationDate: "30-06-2024", Freshness: "30.0%",
			InHandQty: 50, TotalStock: 50, Requested: 60, Allocated: 50,
			PreviousInHand: 50, RemainingInHand: 0, OrderedDate: "10-02-2024",
		},
		{
			LotNo: "C", SKUDescription: "Bread", Warehouse: "WH2", Remarks: "Normal",
			MFGDate: "01-02-2024", Freshness: "80.0%", InHandQty: 10, TotalStock: 10,
			PreviousInHand: 10, RemainingInHand: 10,
		},
	}}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleReport(), ""))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheetName}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, dto.ReportColumns, rows[0])
	assert.Equal(t, []string{
		"A", "Milk 1L", "WH1", "Promotion", "01-01-2024", "30-06-2024", "30.0%",
		"50", "50", "60", "50", "0", "10-02-2024",
	}, rows[1])
	assert.Equal(t, "C", rows[2][0])
	assert.Equal(t, "10", rows[2][11])
}

func TestSaveReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "Updated_DataFrame.xlsx")
	require.NoError(t, SaveReport(path, sampleReport(), "Report"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Report"}, f.GetSheetList())
	value, err := f.GetCellValue("Report", "J2")
	require.NoError(t, err)
	assert.Equal(t, "60", value)
}

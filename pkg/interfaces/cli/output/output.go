package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vsinha/lotalloc/pkg/application/dto"
	"github.com/vsinha/lotalloc/pkg/domain/entities"
	"github.com/vsinha/lotalloc/pkg/infrastructure/repositories/xlsx"
)

// Output file names
const (
	TextFileName   = "allocation_report.txt"
	JSONFileName   = "allocation_report.json"
	CSVFileName    = "allocation_report.csv"
	LedgerFileName = "allocation_ledger.csv"
	XLSXFileName   = "Updated_DataFrame.xlsx"
	HTMLFileName   = "allocation_report.html"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	SheetName string
	Verbose   bool

	// SKU and Warehouse narrow the report rows by exact match when set
	SKU       string
	Warehouse string

	// Stdout receives console output; os.Stdout when nil
	Stdout io.Writer
}

func (c Config) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

// Generate creates output in the specified format
func Generate(run *dto.AllocationRun, config Config) error {
	report := run.Report.Filter(config.SKU, config.Warehouse)

	switch config.Format {
	case "text", "":
		return generateTextOutput(run, report, config)
	case "json":
		return generateJSONOutput(run, report, config)
	case "csv":
		return generateCSVOutput(run, report, config)
	case "xlsx":
		return generateXLSXOutput(report, config)
	case "html":
		return generateHTMLOutput(run, report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(run *dto.AllocationRun, report *dto.Report, config Config) error {
	if err := WriteText(config.stdout(), run, report); err != nil {
		return err
	}

	if config.OutputDir == "" {
		return nil
	}
	filename, err := createOutputFile(config.OutputDir, TextFileName, func(w io.Writer) error {
		return WriteText(w, run, report)
	})
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 Results saved to: %s\n", filename)
	}
	return nil
}

// WriteText renders the run summary and report table
func WriteText(w io.Writer, run *dto.AllocationRun, report *dto.Report) error {
	summary := run.Summary()

	fmt.Fprintf(w, "📊 Allocation Results Summary\n")
	fmt.Fprintf(w, "=============================\n\n")
	fmt.Fprintf(w, "Run ID: %s\n", run.RunID)
	fmt.Fprintf(w, "Lots: %d\n", summary.Lots)
	fmt.Fprintf(w, "Order Lines: %d\n", summary.OrderLines)
	fmt.Fprintf(w, "Requested: %d\n", summary.Requested)
	fmt.Fprintf(w, "Allocated: %d\n", summary.Allocated)
	fmt.Fprintf(w, "Short: %d\n", summary.Short)
	fmt.Fprintf(w, "Ledger Events: %d\n", summary.LedgerEvents)
	fmt.Fprintf(w, "Run Time: %v\n\n", run.Duration)

	if len(report.Rows) > 0 {
		fmt.Fprintf(w, "📦 Lot Allocations:\n")
		fmt.Fprintf(w, "%-12s %-20s %-6s %-10s %-10s %-10s %-8s %-8s %-9s %-9s %-9s %-10s\n",
			"Lot", "SKU", "WH", "Remarks", "MFG Date", "Expiry", "Fresh", "In Hand", "Requested", "Allocated", "Remaining", "Ordered")
		fmt.Fprintf(w, "%-12s %-20s %-6s %-10s %-10s %-10s %-8s %-8s %-9s %-9s %-9s %-10s\n",
			"------------", "--------------------", "------", "----------", "----------", "----------",
			"--------", "--------", "---------", "---------", "---------", "----------")

		for _, row := range report.Rows {
			fmt.Fprintf(w, "%-12s %-20s %-6s %-10s %-10s %-10s %-8s %-8d %-9d %-9d %-9d %-10s\n",
				row.LotNo,
				row.SKUDescription,
				row.Warehouse,
				row.Remarks,
				row.MFGDate,
				row.ExpirationDate,
				row.Freshness,
				row.InHandQty,
				row.Requested,
				row.Allocated,
				row.RemainingInHand,
				row.OrderedDate)
		}
		fmt.Fprintln(w)
	}

	var short []string
	for _, f := range run.Fulfillments {
		if err := f.Err(); err != nil {
			short = append(short, err.Error())
		}
	}
	if len(short) > 0 {
		fmt.Fprintf(w, "⚠️  Unfilled Order Lines:\n")
		for _, line := range short {
			fmt.Fprintf(w, "  %s\n", line)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// JSONDocument is the JSON rendering of a run. SKUs and Warehouses list the
// filter choices across the whole report; Rows may be filtered.
type JSONDocument struct {
	RunID        string                      `json:"run_id"`
	Summary      dto.RunSummary              `json:"summary"`
	SKUs         []string                    `json:"skus"`
	Warehouses   []string                    `json:"warehouses"`
	Rows         []dto.ReportRow             `json:"rows"`
	Ledger       []entities.AllocationEvent  `json:"ledger"`
	Fulfillments []entities.OrderFulfillment `json:"fulfillments"`
}

// NewJSONDocument builds the JSON body shared by the CLI and HTTP service
func NewJSONDocument(run *dto.AllocationRun, report *dto.Report) JSONDocument {
	return JSONDocument{
		RunID:        run.RunID,
		Summary:      run.Summary(),
		SKUs:         run.Report.SKUs(),
		Warehouses:   run.Report.Warehouses(),
		Rows:         report.Rows,
		Ledger:       run.Ledger,
		Fulfillments: run.Fulfillments,
	}
}

// generateJSONOutput creates JSON output
func generateJSONOutput(run *dto.AllocationRun, report *dto.Report, config Config) error {
	jsonData, err := json.MarshalIndent(NewJSONDocument(run, report), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.stdout(), string(jsonData))
		return nil
	}

	filename, err := createOutputFile(config.OutputDir, JSONFileName, func(w io.Writer) error {
		_, err := w.Write(jsonData)
		return err
	})
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes the report, and the ledger when saving to a directory
func generateCSVOutput(run *dto.AllocationRun, report *dto.Report, config Config) error {
	if config.OutputDir == "" {
		return WriteReportCSV(config.stdout(), report)
	}

	reportFile, err := createOutputFile(config.OutputDir, CSVFileName, func(w io.Writer) error {
		return WriteReportCSV(w, report)
	})
	if err != nil {
		return fmt.Errorf("failed to write report CSV: %w", err)
	}
	ledgerFile, err := createOutputFile(config.OutputDir, LedgerFileName, func(w io.Writer) error {
		return WriteLedgerCSV(w, run)
	})
	if err != nil {
		return fmt.Errorf("failed to write ledger CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 CSV results saved to:\n")
		fmt.Fprintf(config.stdout(), "  Report: %s\n", reportFile)
		fmt.Fprintf(config.stdout(), "  Ledger: %s\n", ledgerFile)
	}
	return nil
}

// WriteReportCSV writes the report rows with a header line
func WriteReportCSV(w io.Writer, report *dto.Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(dto.ReportColumns); err != nil {
		return err
	}
	for _, row := range report.Rows {
		if err := writer.Write(row.Values()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteLedgerCSV writes one line per ledger event
func WriteLedgerCSV(w io.Writer, run *dto.AllocationRun) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"lotNo", "Requested", "Previous In hand", "Allocated", "Remaining In hand", "Order Line"}); err != nil {
		return err
	}
	for _, ev := range run.Ledger {
		record := []string{
			ev.LotNo,
			fmt.Sprint(ev.RequestedAtAllocation),
			fmt.Sprint(ev.OnHandBefore),
			fmt.Sprint(ev.AllocatedQty),
			fmt.Sprint(ev.OnHandAfter),
			fmt.Sprint(ev.OrderIndex + 1),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// generateXLSXOutput saves the report workbook
func generateXLSXOutput(report *dto.Report, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for xlsx format")
	}

	filename := filepath.Join(config.OutputDir, XLSXFileName)
	if err := xlsx.SaveReport(filename, report, config.SheetName); err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 Workbook saved to: %s\n", filename)
	}
	return nil
}

// createOutputFile creates dir and writes name inside it
func createOutputFile(dir, name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(dir, name)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filename, err)
	}

	if err := write(file); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", filename, err)
	}
	return filename, nil
}

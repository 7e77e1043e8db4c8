package output

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/vsinha/lotalloc/pkg/application/dto"
)

//go:embed templates/*.html
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html"))

// HTMLTemplateData contains all data for rendering the HTML report
type HTMLTemplateData struct {
	RunID       string
	Summary     dto.RunSummary
	Columns     []string
	Rows        [][]string
	SKUs        []string
	Warehouses  []string
	SKU         string
	Warehouse   string
	GeneratedAt string
}

// WriteHTML renders the report as a standalone page with SKU and warehouse
// select filters applied in the browser
func WriteHTML(w io.Writer, run *dto.AllocationRun, report *dto.Report, sku, warehouse string) error {
	data := HTMLTemplateData{
		RunID:       run.RunID,
		Summary:     run.Summary(),
		Columns:     dto.ReportColumns,
		SKUs:        run.Report.SKUs(),
		Warehouses:  run.Report.Warehouses(),
		SKU:         sku,
		Warehouse:   warehouse,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
	}
	for _, row := range report.Rows {
		data.Rows = append(data.Rows, row.Values())
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// generateHTMLOutput writes the HTML report to stdout or the output directory
func generateHTMLOutput(run *dto.AllocationRun, report *dto.Report, config Config) error {
	if config.OutputDir == "" {
		return WriteHTML(config.stdout(), run, report, config.SKU, config.Warehouse)
	}

	filename, err := createOutputFile(config.OutputDir, HTMLFileName, func(w io.Writer) error {
		return WriteHTML(w, run, report, config.SKU, config.Warehouse)
	})
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 HTML report saved to: %s\n", filename)
	}
	return nil
}

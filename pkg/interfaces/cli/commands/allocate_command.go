package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vsinha/lotalloc/pkg/application/services/orchestration"
	"github.com/vsinha/lotalloc/pkg/infrastructure/config"
	"github.com/vsinha/lotalloc/pkg/infrastructure/logging"
	"github.com/vsinha/lotalloc/pkg/infrastructure/repositories/tabular"
	"github.com/vsinha/lotalloc/pkg/interfaces/cli/output"
)

// Config holds configuration for the allocate command
type Config struct {
	ScenarioDir   string
	InventoryFile string
	OrdersFile    string
	ConfigFile    string
	OutputDir     string
	Format        string
	SKU           string
	Warehouse     string
	Verbose       bool
	Help          bool

	// Stdout receives command output; os.Stdout when nil
	Stdout io.Writer
}

// AllocateCommand handles the allocation run from the command line
type AllocateCommand struct {
	config Config
	out    io.Writer
}

// NewAllocateCommand creates a new allocate command with the given configuration
func NewAllocateCommand(config Config) *AllocateCommand {
	out := config.Stdout
	if out == nil {
		out = os.Stdout
	}
	return &AllocateCommand{config: config, out: out}
}

// Execute runs the allocate command
func (c *AllocateCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewWithSystem(cfg.Logging, "cli")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	files, err := c.resolveInputFiles()
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	if c.config.Verbose {
		c.printHeader(files, cfg)
	}

	inventory, err := tabular.FileSource(files["Inventory"], cfg.Input, logger)
	if err != nil {
		return fmt.Errorf("error opening inventory: %w", err)
	}
	orders, err := tabular.FileSource(files["Orders"], cfg.Input, logger)
	if err != nil {
		return fmt.Errorf("error opening orders: %w", err)
	}

	orchestrator := orchestration.NewAllocationOrchestrator(cfg, logger)
	run, err := orchestrator.Run(ctx, orchestration.RunInput{Inventory: inventory, Orders: orders})
	if err != nil {
		return fmt.Errorf("error running allocation: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintf(c.out, "✅ Allocation completed in %v\n\n", run.Duration)
	}

	outputConfig := output.Config{
		Format:    cfg.Output.Format,
		OutputDir: cfg.Output.Dir,
		SheetName: cfg.Output.SheetName,
		Verbose:   c.config.Verbose,
		SKU:       c.config.SKU,
		Warehouse: c.config.Warehouse,
		Stdout:    c.out,
	}
	if err := output.Generate(run, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	for _, f := range run.Fulfillments {
		if err := f.Err(); err != nil {
			logger.Debug("unfilled order line", zap.Error(err))
		}
	}

	if c.config.Verbose {
		fmt.Fprintln(c.out, "🏁 Allocation complete!")
	}
	return nil
}

// validateInputs validates the command configuration
func (c *AllocateCommand) validateInputs() error {
	if c.config.ScenarioDir == "" && (c.config.InventoryFile == "" || c.config.OrdersFile == "") {
		return fmt.Errorf("must specify either -scenario directory or both -inventory and -orders files")
	}
	return nil
}

// loadConfig reads the config file, then applies command line overrides
func (c *AllocateCommand) loadConfig() (*config.Config, error) {
	path := c.config.ConfigFile
	if path == "" {
		path = "lotalloc.yaml"
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.config.Format != "" {
		cfg.Output.Format = c.config.Format
	}
	if c.config.OutputDir != "" {
		cfg.Output.Dir = c.config.OutputDir
	}
	if c.config.Verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// resolveInputFiles determines the actual file paths to use
func (c *AllocateCommand) resolveInputFiles() (map[string]string, error) {
	files := map[string]string{
		"Inventory": c.config.InventoryFile,
		"Orders":    c.config.OrdersFile,
	}

	if c.config.ScenarioDir != "" {
		for name, base := range map[string]string{"Inventory": "inventory", "Orders": "orders"} {
			if files[name] != "" {
				continue
			}
			files[name] = findScenarioFile(c.config.ScenarioDir, base)
		}
	}

	for name, path := range files {
		if path == "" {
			return nil, fmt.Errorf("%s file not found in %s", name, c.config.ScenarioDir)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", name, path)
		}
	}
	return files, nil
}

// findScenarioFile returns dir/base.csv or dir/base.xlsx, whichever exists
func findScenarioFile(dir, base string) string {
	for _, ext := range []string{".csv", ".xlsx"} {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// printHeader prints the command header information
func (c *AllocateCommand) printHeader(files map[string]string, cfg *config.Config) {
	fmt.Fprintf(c.out, "🚀 Lot Allocation CLI\n")
	fmt.Fprintf(c.out, "Input files:\n")
	fmt.Fprintf(c.out, "  Inventory: %s\n", files["Inventory"])
	fmt.Fprintf(c.out, "  Orders: %s\n", files["Orders"])
	fmt.Fprintf(c.out, "Promotion rule: %q lots on days 1-%d\n",
		cfg.Allocation.PromotionTag, cfg.Allocation.PromotionCutoffDay)
	fmt.Fprintf(c.out, "Output format: %s\n", cfg.Output.Format)
	if cfg.Output.Dir != "" {
		fmt.Fprintf(c.out, "Output directory: %s\n", cfg.Output.Dir)
	}
	fmt.Fprintln(c.out)
}

// showHelp displays the help message
func (c *AllocateCommand) showHelp() {
	fmt.Fprintf(c.out, `Lot Allocation CLI - allocate lot-tracked inventory to sales orders

USAGE:
    lotalloc -scenario <directory>                 # inventory.csv|xlsx and orders.csv|xlsx
    lotalloc -inventory <file> -orders <file>      # individual CSV or XLSX files

OPTIONS:
    -scenario <dir>     Directory containing inventory and orders files
    -inventory <file>   Path to inventory file (.csv or .xlsx)
    -orders <file>      Path to orders file (.csv or .xlsx)
    -config <file>      Path to YAML config (default: lotalloc.yaml if present)
    -output <dir>       Output directory for results (required for xlsx)
    -format <fmt>       Output format: text, json, csv, xlsx, html (default: text)
    -sku <name>         Show only rows for this SKU Description
    -warehouse <code>   Show only rows for this warehouse
    -verbose            Enable verbose output and debug logging
    -help               Show this help message

ALLOCATION RULES:
    Orders are processed in file order against one shared stock pool.
    Lots tagged "Promotion" that were manufactured on or before the order date
    are drawn first when the order falls on day 1-15 of the month. Remaining
    demand draws the oldest-manufactured non-promotion lots first. Demand that
    cannot be met is left short without error.

FILE FORMATS:

inventory:
    lotNo,SKU Description,WH,Remarks,MFG Date,Expiration Date,Freshness,IN_HAND_QTY,Total Stock
    A,Milk 1L,WH1,Promotion,2024-01-01,2024-06-30,30.00%%,50,50

orders:
    SKU Description,WH,Requested QTY,Ordered Date
    Milk 1L,WH1,60,2024-02-10

EXAMPLES:
    # Allocate and print the report
    lotalloc -inventory data/inventory.csv -orders data/orders.csv

    # Export the workbook
    lotalloc -scenario data/ -format xlsx -output results/

    # Filter to one SKU in one warehouse
    lotalloc -scenario data/ -sku "Milk 1L" -warehouse WH1
`)
}

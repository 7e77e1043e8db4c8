package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vsinha/lotalloc/pkg/interfaces/cli/commands"
)

func main() {
	// Command line flags
	var (
		scenarioDir = flag.String(
			"scenario",
			"",
			"Path to directory containing inventory and orders files",
		)
		inventoryFile = flag.String("inventory", "", "Path to inventory CSV or XLSX file")
		ordersFile    = flag.String("orders", "", "Path to orders CSV or XLSX file")
		configFile    = flag.String("config", "", "Path to YAML config file (optional)")
		outputDir     = flag.String("output", "", "Output directory for results (optional)")
		format        = flag.String("format", "", "Output format: text, json, csv, xlsx, html")
		sku           = flag.String("sku", "", "Show only rows for this SKU Description")
		warehouse     = flag.String("warehouse", "", "Show only rows for this warehouse")
		verbose       = flag.Bool("verbose", false, "Enable verbose output")
		help          = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	// Create command configuration
	config := commands.Config{
		ScenarioDir:   *scenarioDir,
		InventoryFile: *inventoryFile,
		OrdersFile:    *ordersFile,
		ConfigFile:    *configFile,
		OutputDir:     *outputDir,
		Format:        *format,
		SKU:           *sku,
		Warehouse:     *warehouse,
		Verbose:       *verbose,
		Help:          *help,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := commands.NewAllocateCommand(config)
	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

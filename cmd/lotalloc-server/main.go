package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vsinha/lotalloc/pkg/infrastructure/config"
	"github.com/vsinha/lotalloc/pkg/infrastructure/logging"
	"github.com/vsinha/lotalloc/pkg/interfaces/api"
)

func main() {
	var (
		configFile = flag.String("config", "lotalloc.yaml", "Path to YAML config file")
		port       = flag.Int("port", 0, "Listen port (overrides config)")
		debug      = flag.Bool("debug", false, "Enable gin debug mode and debug logging")
	)
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *debug {
		cfg.Logging.Level = "debug"
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger, err := logging.NewWithSystem(cfg.Logging, "server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.NewServer(cfg, logger).Run(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server exited")
}

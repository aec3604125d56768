// Package main provides the entry point for the paperlift batch OCR runner
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/paperlift/paperlift/internal/config"
	"github.com/paperlift/paperlift/internal/discover"
	"github.com/paperlift/paperlift/internal/pipeline"
	"github.com/paperlift/paperlift/internal/processing"
	"github.com/paperlift/paperlift/internal/sink"
	"github.com/paperlift/paperlift/pkg/logging"
	"github.com/paperlift/paperlift/pkg/preprocess"
	"github.com/paperlift/paperlift/pkg/rasterize"
	"github.com/paperlift/paperlift/pkg/recognize"
)

func main() {
	configPath := flag.String("config", "", "Path to the config YAML file (optional)")
	inputDir := flag.String("input", "", "Input directory override")
	outputDir := flag.String("output", "", "Output directory override")
	logLevel := flag.String("log-level", "", "Log level override (trace|debug|info|warn|error)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	applyOverrides(cfg, *inputDir, *outputDir, *logLevel)

	// Setup logging first
	if err := logging.Setup(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	logger := logging.GetStageLogger("main", "startup")
	logger.Info().Msg("Paperlift starting up")

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Configuration validation failed")
	}

	fileSink, err := sink.NewFileSink(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to setup output directory")
	}

	// Create batch context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	descriptors, err := discover.Discover(cfg.InputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Input discovery failed")
	}

	pl := pipeline.New(pipeline.Options{
		Rasterizer:    rasterize.New(cfg.PDF),
		Preprocessor:  preprocess.New(cfg.Preprocessing),
		Engine:        recognize.NewTesseract(cfg.OCR),
		Normalizer:    processing.NewNormalizer(),
		NormalizeText: cfg.Postprocessing.Enabled,
		Sink:          fileSink,
	})

	report, runErr := pl.Run(ctx, descriptors)
	if runErr != nil {
		logger.Error().Err(runErr).Msg("Batch interrupted")
	}

	reportJSON, _ := json.MarshalIndent(report, "", "  ")
	logger.Info().RawJSON("report", reportJSON).Msg("Run report")

	if runErr != nil || !report.Succeeded() {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// applyOverrides lets flags win over the config file.
func applyOverrides(cfg *config.Config, inputDir, outputDir, logLevel string) {
	if inputDir != "" {
		cfg.InputDir = inputDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}

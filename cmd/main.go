package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"menu-extractor/extractor"
	"menu-extractor/internal/config"
	"menu-extractor/internal/types"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <menu-url>\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Parse command line flags
	var (
		configFlag   = flag.String("config", "", "YAML config file (default: ./config.yaml if present)")
		strategyFlag = flag.String("strategy", "", "Extraction strategy: dom or state")
		outputFlag   = flag.String("output", "", "Output file path (default: data/output.json)")
		policyFlag   = flag.String("failure-policy", "", "What to do when a product modal fails: abort or skip")
		httpOnly     = flag.Bool("http-only", false, "Read the state blob over plain HTTP (state strategy only)")
		showBrowser  = flag.Bool("show-browser", false, "Run the browser with a visible window")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	url := flag.Arg(0)

	// Setup logging
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	// Set log level from LOG_LEVEL env if present
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags win over file and environment
	if *strategyFlag != "" {
		cfg.Strategy = types.Strategy(*strategyFlag)
	}
	if *policyFlag != "" {
		cfg.FailurePolicy = types.FailurePolicy(*policyFlag)
	}
	if *outputFlag != "" {
		cfg.OutputPath = *outputFlag
	}
	if *httpOnly {
		cfg.UseHTTPOnly = true
	}
	if *showBrowser {
		cfg.Headless = false
	}
	if err := config.Validate(cfg); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	catalogExtractor, err := extractor.New(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create extractor: %v", err)
	}
	defer catalogExtractor.Close()

	logger.Infof("Extracting %s with the %s strategy", url, cfg.Strategy)

	result, err := extractor.ExtractToJSON(context.Background(), catalogExtractor, url, cfg.OutputPath, logger)
	if err != nil {
		catalogExtractor.Close()
		logger.Fatalf("Extraction failed: %v", err)
	}

	// Print summary
	logger.Infof("Extraction completed successfully")
	logger.Infof("Total categories found: %d", len(result.Categories))
	logger.Infof("Total products found: %d", result.ProductCount())
	if len(result.Skipped) > 0 {
		logger.Warnf("Products skipped: %d", len(result.Skipped))
	}
}

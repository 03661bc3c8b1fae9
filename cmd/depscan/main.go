// # cmd/depscan/main.go
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"depscan/internal/config"
)

var (
	configPath = flag.String("config", "./depscan.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single scan and exit")
	format     = flag.String("format", "", "Output format: text, tsv or json (overrides config)")
	outPath    = flag.String("out", "", "Write output to file instead of stdout (overrides config)")
	namesOnly  = flag.Bool("names", false, "Print discovered external package names and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("depscan v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./depscan.toml" && os.IsNotExist(err) {
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	if flag.NArg() > 0 {
		cfg.ScanPath = flag.Arg(0)
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *outPath != "" {
		cfg.Output.Path = *outPath
	}

	runner, err := NewRunner(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	if *namesOnly {
		names, err := runner.app.ScanExternalNames(cfg.ScanPath)
		if err != nil {
			slog.Error("scan failed", "error", err)
			os.Exit(1)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		os.Exit(0)
	}

	// Initial resolution
	if err := runner.RunOnce(); err != nil {
		slog.Error("resolution failed", "error", err)
		os.Exit(1)
	}

	if *once {
		os.Exit(0)
	}

	// Watch mode
	if err := runner.StartWatch(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	// Block forever
	select {}
}

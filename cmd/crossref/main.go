package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"crossref/internal/core/config"
	"crossref/internal/impact"
	"crossref/internal/query"
)

var (
	configPath   = flag.String("config", "./crossref.toml", "Path to config file")
	project      = flag.String("project", "", "Project id (snapshot document name without .json)")
	queryType    = flag.String("query", "", "Relationship query type: calls, calls-me, imports, imports-me, depends-on, depends-on-me")
	depth        = flag.Int("depth", 0, "Traversal depth, 0 uses the configured default")
	impactTarget = flag.String("impact", "", "Analyze change impact for an element name or id")
	op           = flag.String("op", "modify", "Impact operation: modify, delete or refactor")
	driftMode    = flag.Bool("drift", false, "Reload the project snapshot and report drift")
	patterns     = flag.Bool("patterns", false, "Print cached pattern-frequency statistics")
	watch        = flag.Bool("watch", false, "Watch the snapshot directory and reload on change")
	ui           = flag.Bool("ui", false, "Enable terminal UI in watch mode")
	serve        = flag.Bool("serve", false, "Serve /metrics and /health in watch mode")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("crossref v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	if *ui {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if err == nil {
				output = f
			} else {
				fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config; a missing default config file just means defaults.
	cfg, err := config.Load(*configPath)
	if err != nil {
		if os.IsNotExist(err) && *configPath == "./crossref.toml" {
			slog.Debug("no config file found, using defaults")
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *watch:
		err = app.RunWatch(ctx, *ui, *serve)
	case *queryType != "":
		if flag.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "query mode requires one target argument: crossref --project <id> --query <type> <target>")
			os.Exit(1)
		}
		err = app.RunQuery(ctx, *project, query.Type(*queryType), flag.Arg(0), *depth)
	case *impactTarget != "":
		err = app.RunImpact(ctx, *project, *impactTarget, impact.Operation(*op), *depth)
	case *driftMode:
		err = app.RunDrift(ctx, *project)
	case *patterns:
		err = app.RunPatterns(ctx, *project)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func resolveLogPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "crossref", "crossref.log")
	}
	return filepath.Join(os.TempDir(), "crossref.log")
}

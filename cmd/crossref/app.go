package main

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"crossref/internal/core/config"
	"crossref/internal/history"
	"crossref/internal/impact"
	"crossref/internal/query"
	"crossref/internal/service"
	"crossref/internal/watcher"
)

// App wires the engine facade to its ambient infrastructure: history store,
// snapshot watcher, observability server and the optional TUI.
type App struct {
	cfg     *config.Config
	svc     *service.Service
	history *history.Store
	watcher *watcher.Watcher
	obs     *service.ObservabilityServer
}

func NewApp(cfg *config.Config) (*App, error) {
	var hist *history.Store
	if cfg.DB.Enabled {
		var err error
		hist, err = history.Open(cfg.DB.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
	}

	return &App{
		cfg:     cfg,
		svc:     service.New(cfg, hist),
		history: hist,
	}, nil
}

func (a *App) Close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	if a.history != nil {
		_ = a.history.Close()
	}
}

func (a *App) RunQuery(ctx context.Context, projectID string, queryType query.Type, target string, depth int) error {
	records, err := a.svc.Relationships(ctx, projectID, queryType, target, depth)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Printf("no %s relationships for %s\n", queryType, target)
		return nil
	}
	fmt.Printf("%s %s (%d results):\n", target, queryType, len(records))
	for _, r := range records {
		fmt.Printf("  depth %d  %s  (%s:%d)\n", r.Depth, r.To, r.File, r.Line)
	}
	return nil
}

func (a *App) RunImpact(ctx context.Context, projectID, target string, op impact.Operation, depth int) error {
	result, err := a.svc.Impact(ctx, projectID, target, op, depth)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s: %d affected, risk %s\n", op, target, result.AffectedCount, result.RiskLevel)
	for _, effect := range result.RippleEffects {
		fmt.Printf("  %-10s %-20s %s\n", effect.Severity, effect.Impact, effect.File)
	}
	return nil
}

func (a *App) RunDrift(ctx context.Context, projectID string) error {
	result, err := a.svc.Drift(ctx, projectID)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s (severity %s)\n", projectID, result.Message, result.Severity)
	return nil
}

func (a *App) RunPatterns(ctx context.Context, projectID string) error {
	freq, err := a.svc.PatternFrequency(ctx, projectID)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d elements, %.0f%% exported\n", projectID, freq.TotalElements, freq.ExportedRatio*100)
	for elementType, n := range freq.ByType {
		fmt.Printf("  %-10s %d\n", elementType, n)
	}
	if len(freq.HotFiles) > 0 {
		fmt.Println("hot files:")
		for _, hf := range freq.HotFiles {
			fmt.Printf("  %4d  %s\n", hf.Elements, hf.File)
		}
	}
	return nil
}

// RunWatch blocks until the context is cancelled, reloading snapshots as the
// external analyzer rewrites them.
func (a *App) RunWatch(ctx context.Context, withUI, withServe bool) error {
	var program *tea.Program
	if withUI {
		program = tea.NewProgram(initialModel(), tea.WithAltScreen())
	}

	onChange := func(paths []string) {
		results := a.svc.HandleSnapshotChanges(ctx, paths)
		if program == nil {
			return
		}
		projects := a.svc.Store().Projects()
		program.Send(updateMsg{
			results:  results,
			projects: len(projects),
		})
	}

	w, err := watcher.NewWatcher(a.cfg.Watch.Debounce, a.cfg.Watch.ExcludeFiles, onChange)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	a.watcher = w

	if err := w.Watch(a.cfg.Paths.SnapshotDir); err != nil {
		return fmt.Errorf("watch %s: %w", a.cfg.Paths.SnapshotDir, err)
	}
	slog.Info("watching snapshot directory", "dir", a.cfg.Paths.SnapshotDir)

	if withServe || a.cfg.Observability.Enabled {
		a.obs = service.NewObservabilityServer(a.cfg.Observability.Address, a.svc)
		if err := a.obs.Start(ctx); err != nil {
			return fmt.Errorf("start observability server: %w", err)
		}
		defer func() { _ = a.obs.Stop(context.Background()) }()
	}

	if program != nil {
		go func() {
			<-ctx.Done()
			program.Quit()
		}()
		_, err := program.Run()
		return err
	}

	<-ctx.Done()
	return nil
}

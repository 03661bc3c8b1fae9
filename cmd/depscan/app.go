// # cmd/depscan/app.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"depscan/internal/app"
	"depscan/internal/config"
	"depscan/internal/output"
	"depscan/internal/pyenv"
	"depscan/internal/shared/observability"
	"depscan/internal/watcher"
)

// Runner wires the configured environment, the resolution pipeline and the
// output generator, and keeps them alive across rescans in watch mode.
type Runner struct {
	cfg *config.Config
	app *app.App
	gen output.Generator

	watcher *watcher.Watcher
	obs     *observability.Server

	mu         sync.Mutex
	lastScan   time.Time
	lastScanOK bool
}

func NewRunner(cfg *config.Config) (*Runner, error) {
	sitePackages := cfg.SitePackages
	if sitePackages == "" {
		discovered, err := pyenv.Discover()
		if err != nil {
			return nil, fmt.Errorf("no site-packages configured and none discovered: %w", err)
		}
		sitePackages = discovered
	}
	slog.Debug("using site-packages", "path", sitePackages)

	a, err := app.New(cfg, pyenv.NewSitePackages(sitePackages), &pyenv.EmbeddedStdlib{})
	if err != nil {
		return nil, err
	}

	gen, err := output.ForFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	return &Runner{cfg: cfg, app: a, gen: gen}, nil
}

// RunOnce resolves the configured tree and emits the result.
func (r *Runner) RunOnce() error {
	res, err := r.app.Resolve(r.cfg.ScanPath)

	r.mu.Lock()
	r.lastScan = time.Now()
	r.lastScanOK = err == nil
	r.mu.Unlock()

	if err != nil {
		return err
	}

	rendered, err := r.gen.Generate(res)
	if err != nil {
		return err
	}

	if r.cfg.Output.Path == "" {
		fmt.Print(rendered)
		return nil
	}
	return os.WriteFile(r.cfg.Output.Path, []byte(rendered), 0644)
}

// StartWatch rescans after debounced file changes under the scan path.
func (r *Runner) StartWatch() error {
	w, err := watcher.NewWatcher(r.cfg.Watch.Debounce, r.cfg.Exclude.Dirs, r.cfg.Exclude.Files, func(paths []string) {
		slog.Info("change detected, rescanning", "changed_files", len(paths))
		if err := r.RunOnce(); err != nil {
			slog.Error("rescan failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	if err := w.Watch([]string{r.cfg.ScanPath}); err != nil {
		w.Close()
		return err
	}
	r.watcher = w

	if addr := r.cfg.Watch.MetricsAddr; addr != "" {
		r.obs = observability.NewServer(addr, r.health)
		if err := r.obs.Start(context.Background()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) Close() error {
	if r.obs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = r.obs.Stop(ctx)
	}
	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}

func (r *Runner) health() observability.Health {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := observability.Health{Status: "up", LastScanOK: r.lastScanOK, WatchedRoots: 1}
	if !r.lastScan.IsZero() {
		h.LastScan = r.lastScan.Format(time.RFC3339)
	}
	return h
}

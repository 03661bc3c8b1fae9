// Package app wires the scanning and resolution stages into one pipeline:
// scan -> normalize -> resolve -> pin -> inject mandatory -> compute
// implicit.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"depscan/internal/config"
	"depscan/internal/pyenv"
	"depscan/internal/requirement"
	"depscan/internal/resolver"
	"depscan/internal/scanner"
	"depscan/internal/shared/observability"
)

// Resolution is the outcome of one full pipeline pass. Explicit is what a
// package manifest should list; Implicit is informational (supplied
// transitively by a mandatory requirement) and never overlaps Explicit;
// Mandatory is the subset of Explicit imposed by the packaging tool itself.
type Resolution struct {
	Explicit  *requirement.Set
	Implicit  *requirement.Set
	Mandatory *requirement.Set
}

type App struct {
	Config *config.Config

	walker    *scanner.Walker
	resolver  *resolver.Resolver
	stdlib    pyenv.StdlibProvider
	mandatory *requirement.Set

	cache     SpecCache
	confirmer Confirmer
}

func New(cfg *config.Config, env pyenv.Environment, stdlib pyenv.StdlibProvider) (*App, error) {
	walker, err := scanner.NewWalker(cfg.Exclude.Dirs, cfg.Exclude.Files)
	if err != nil {
		return nil, err
	}

	mandatory := requirement.NewSet()
	for _, raw := range cfg.Requirements.Mandatory {
		req, err := requirement.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid mandatory requirement %q: %w", raw, err)
		}
		mandatory.Add(req)
	}

	return &App{
		Config:    cfg,
		walker:    walker,
		resolver:  resolver.New(env),
		stdlib:    stdlib,
		mandatory: mandatory,
	}, nil
}

// SetCache installs an optional result cache collaborator.
func (a *App) SetCache(cache SpecCache) { a.cache = cache }

// SetConfirmer installs an optional confirmation collaborator whose edited
// explicit set is accepted verbatim.
func (a *App) SetConfirmer(c Confirmer) { a.confirmer = c }

// ScanExternalNames walks root and returns the external top-level package
// names its sources use, sorted.
func (a *App) ScanExternalNames(root string) ([]string, error) {
	start := time.Now()
	defer func() {
		observability.ResolutionDuration.WithLabelValues("scan").Observe(time.Since(start).Seconds())
	}()

	result, err := a.walker.Scan(root)
	if err != nil {
		return nil, err
	}

	stdlib, err := a.stdlib.Names()
	if err != nil {
		return nil, fmt.Errorf("enumerating stdlib modules: %w", err)
	}

	external := scanner.Normalize(result.UsedImports, result.LocalModules, stdlib, a.toolkitExclusions())
	names := make([]string, 0, len(external))
	for name := range external {
		names = append(names, name)
	}
	sort.Strings(names)
	slog.Info("scan finished",
		"python_files", result.PyFiles,
		"ui_files", result.UIFiles,
		"external_packages", len(names))
	return names, nil
}

// Resolve runs the full pipeline over root.
func (a *App) Resolve(root string) (*Resolution, error) {
	cacheKey := ""
	if a.cache != nil {
		cacheKey = CacheKey(root)
		if previous, ok := a.cache.Load(cacheKey); ok {
			slog.Debug("previous resolution found in cache", "explicit", previous.Explicit.Strings())
		}
	}

	names, err := a.ScanExternalNames(root)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	discovered := a.resolver.ResolveAll(names)
	observability.ResolutionDuration.WithLabelValues("resolve").Observe(time.Since(start).Seconds())

	start = time.Now()
	if err := a.resolver.PinToInstalled(discovered); err != nil {
		return nil, fmt.Errorf("pinning to installed versions: %w", err)
	}
	observability.ResolutionDuration.WithLabelValues("pin").Observe(time.Since(start).Seconds())

	start = time.Now()
	mandatory := a.mandatory.Clone()
	resolver.InjectMandatory(discovered, mandatory)
	implicit, err := a.resolver.ComputeImplicit(discovered, mandatory)
	if err != nil {
		return nil, err
	}
	observability.ResolutionDuration.WithLabelValues("reconcile").Observe(time.Since(start).Seconds())

	res := &Resolution{
		Explicit:  discovered,
		Implicit:  implicit,
		Mandatory: mandatory,
	}

	if a.confirmer != nil {
		edited, err := a.confirmer.Confirm(res)
		if err != nil {
			return nil, err
		}
		if edited != nil {
			res.Explicit = edited
		}
	}

	if a.cache != nil {
		if err := a.cache.Store(cacheKey, res); err != nil {
			slog.Warn("failed to persist resolution cache", "error", err)
		}
	}
	return res, nil
}

// toolkitExclusions returns the GUI toolkit binding names to filter out, so
// the packaged app does not over-constrain its dependency on a specific
// binding. Active when configured or when the host environment flag is set.
func (a *App) toolkitExclusions() []string {
	if a.Config.Toolkit.ExcludeBindings {
		return a.Config.Toolkit.Bindings
	}
	if flag := a.Config.Toolkit.EnvFlag; flag != "" && os.Getenv(flag) != "" {
		return a.Config.Toolkit.Bindings
	}
	return nil
}

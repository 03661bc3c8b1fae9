// Package resolver turns discovered external module names into a concrete,
// version-pinned, conflict-free requirement list.
package resolver

import (
	"log/slog"

	"depscan/internal/pyenv"
	"depscan/internal/requirement"
	"depscan/internal/shared/observability"
)

type Resolver struct {
	env pyenv.Environment
}

func New(env pyenv.Environment) *Resolver {
	return &Resolver{env: env}
}

// MakeRequirementSafe builds a requirement from a discovered module name.
// The module name is first replaced with the name of the installable
// distribution providing it when the environment knows one (the two
// frequently differ, e.g. qtpy -> QtPy). An unparsable name yields nil and
// a warning; it never fails the pipeline.
func (r *Resolver) MakeRequirementSafe(module string) *requirement.Requirement {
	name := module
	if dist, ok := r.env.DistributionFor(module); ok {
		name = dist
	}

	req, err := requirement.Parse(name)
	if err != nil {
		slog.Warn("cannot parse requirement, the package won't be included in suggestions",
			"input", name, "error", err)
		observability.RequirementsDropped.Inc()
		return nil
	}
	return &req
}

// ResolveAll maps every discovered module name through MakeRequirementSafe,
// dropping the unparsable ones.
func (r *Resolver) ResolveAll(modules []string) *requirement.Set {
	resolved := requirement.NewSet()
	for _, module := range modules {
		if req := r.MakeRequirementSafe(module); req != nil {
			resolved.Add(*req)
		}
	}
	return resolved
}

// PinToInstalled replaces every requirement whose name matches an installed
// distribution with one pinned to the exact installed version. A discovered
// requirement must never ship unpinned when a concrete version is known.
func (r *Resolver) PinToInstalled(reqs *requirement.Set) error {
	installed, err := r.env.Installed()
	if err != nil {
		return err
	}
	for _, dist := range installed {
		if existing, ok := reqs.Get(dist.Name); ok {
			pinned := existing
			pinned.Name = dist.Name
			reqs.Add(pinned.Pinned(dist.Version))
		}
	}
	return nil
}

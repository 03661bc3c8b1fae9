// Package pyenv exposes read-only views of the active Python environment:
// the installed distributions, the module-to-distribution reverse index and
// the interpreter's standard library module names. Everything is behind
// small interfaces so a resolution pass can run against fixtures instead of
// the real environment.
package pyenv

import (
	"depscan/internal/requirement"
)

// Distribution is one installed package as described by its dist-info
// metadata.
type Distribution struct {
	Name     string
	Version  string
	Requires []requirement.Requirement // declared install-time requirements
	Modules  []string                  // importable top-level modules it provides
}

// Environment answers queries about installed distributions.
type Environment interface {
	// Installed lists every installed distribution with its exact version.
	Installed() ([]Distribution, error)
	// DistributionFor maps an importable module name to the distribution
	// providing it, e.g. qtpy -> QtPy.
	DistributionFor(module string) (string, bool)
	// Requires returns the declared requirements of the named distribution.
	Requires(dist string) ([]requirement.Requirement, error)
}

// StdlibProvider enumerates the standard-library module names of the host
// interpreter.
type StdlibProvider interface {
	Names() (map[string]bool, error)
}

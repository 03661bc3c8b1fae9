package scanner

import (
	"log/slog"
	"strings"

	"depscan/internal/parser"
	"depscan/internal/shared/util"
)

// Normalize classifies every used import as local or external, reduces
// external imports to their top-level package names and removes standard
// library modules plus any explicitly excluded names. The result is the set
// of external top-level package names the scanned tree depends on.
func Normalize(used parser.ImportSet, localModules, stdlib map[string]bool, excluded []string) map[string]bool {
	external := make(map[string]bool)
	for imp := range used {
		qualified := util.JoinPkgPath(imp.RelativeLoc, imp.Package)
		if matchesLocalModule(qualified, localModules) {
			slog.Debug("import resolves to a local module", "package", imp.Package, "location", imp.RelativeLoc)
			continue
		}
		external[imp.Package] = true
	}

	topLevel := make(map[string]bool, len(external))
	for pkg := range external {
		topLevel[util.TopLevelPkg(pkg)] = true
	}

	for name := range stdlib {
		delete(topLevel, name)
	}
	for _, name := range excluded {
		delete(topLevel, name)
	}
	return topLevel
}

// matchesLocalModule reports whether qualified names a module inside the
// scanned tree. The boundary check matters: "foo" matches local module
// "foo" or "foo.bar", never "foobar".
func matchesLocalModule(qualified string, localModules map[string]bool) bool {
	for local := range localModules {
		if !strings.HasPrefix(local, qualified) {
			continue
		}
		if len(local) == len(qualified) || local[len(qualified)] == '.' {
			return true
		}
	}
	return false
}

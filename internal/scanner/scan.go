package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"

	"depscan/internal/parser"
	"depscan/internal/shared/observability"
	"depscan/internal/shared/util"
)

const (
	pyExt = ".py"
	uiExt = ".ui"
)

// ScanResult is the raw outcome of one walk over a source tree.
type ScanResult struct {
	// UsedImports aggregates every import occurrence found in any scanned
	// file, tagged with the relative location it was found in.
	UsedImports parser.ImportSet
	// LocalModules is the set of dotted module paths corresponding to the
	// Python files actually present in the tree.
	LocalModules map[string]bool
	// PyFiles and UIFiles count the files visited, for reporting.
	PyFiles int
	UIFiles int
}

// Walker enumerates Python and Designer descriptor files under a root
// directory and feeds them to the source scanners. One bad file never
// aborts a walk: per-file failures are logged and skipped.
type Walker struct {
	py           *parser.PythonScanner
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
}

func NewWalker(excludeDirs, excludeFiles []string) (*Walker, error) {
	w := &Walker{py: parser.NewPythonScanner()}

	for _, pattern := range excludeDirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad exclude dir pattern %q: %w", pattern, err)
		}
		w.excludeDirs = append(w.excludeDirs, g)
	}
	for _, pattern := range excludeFiles {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad exclude file pattern %q: %w", pattern, err)
		}
		w.excludeFiles = append(w.excludeFiles, g)
	}
	return w, nil
}

// Scan walks root and returns the aggregate used-import set together with
// the local-module set.
func (w *Walker) Scan(root string) (*ScanResult, error) {
	result := &ScanResult{
		UsedImports:  make(parser.ImportSet),
		LocalModules: make(map[string]bool),
	}
	ui := NewUIScanner(w.py)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && w.excludedDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.excludedFile(path) {
			return nil
		}

		switch filepath.Ext(path) {
		case pyExt:
			w.scanPyFile(path, root, result)
		case uiExt:
			w.scanUIFile(ui, path, root, result)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	observability.ImportsDiscovered.Set(float64(len(result.UsedImports)))
	return result, nil
}

func (w *Walker) scanPyFile(path, root string, result *ScanResult) {
	relativeLoc, err := util.RelativePkgPath(path, root)
	if err != nil {
		slog.Warn("failed to locate file under scan root", "path", path, "error", err)
		return
	}

	// The file is a local module whether or not it parses.
	rel, err := filepath.Rel(root, path)
	if err == nil {
		module := util.FSPathToPkgPath(filepath.ToSlash(rel[:len(rel)-len(pyExt)]))
		result.LocalModules[module] = true
	}
	result.PyFiles++

	start := time.Now()
	defer func() {
		observability.ScanDuration.WithLabelValues("python").Observe(time.Since(start).Seconds())
	}()
	observability.FilesScannedTotal.WithLabelValues("python").Inc()

	source, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to read python file", "path", path, "error", err)
		observability.ScanWarningsTotal.WithLabelValues("read_error").Inc()
		return
	}

	imports, err := w.py.ScanSource(source, relativeLoc)
	if err != nil {
		var syntaxErr *parser.SyntaxError
		if errors.As(err, &syntaxErr) {
			slog.Warn("python file contains invalid syntax", "path", path, "error", err)
			observability.ScanWarningsTotal.WithLabelValues("python_syntax").Inc()
			return
		}
		slog.Warn("failed to scan python file", "path", path, "error", err)
		observability.ScanWarningsTotal.WithLabelValues("scan_error").Inc()
		return
	}
	result.UsedImports.Union(imports)
}

func (w *Walker) scanUIFile(ui *UIScanner, path, root string, result *ScanResult) {
	relativeLoc, err := util.RelativePkgPath(path, root)
	if err != nil {
		slog.Warn("failed to locate file under scan root", "path", path, "error", err)
		return
	}
	result.UIFiles++

	start := time.Now()
	defer func() {
		observability.ScanDuration.WithLabelValues("ui").Observe(time.Since(start).Seconds())
	}()
	observability.FilesScannedTotal.WithLabelValues("ui").Inc()

	result.UsedImports.Union(ui.ScanFile(path, relativeLoc))
}

func (w *Walker) excludedDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Walker) excludedFile(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}

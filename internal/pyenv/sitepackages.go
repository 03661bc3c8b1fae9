package pyenv

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"depscan/internal/requirement"
	"depscan/internal/shared/util"
)

// SitePackages reads installed-distribution metadata from a site-packages
// directory: every *.dist-info holds a METADATA file with the name, version
// and Requires-Dist entries, usually a top_level.txt naming the importable
// modules, and a RECORD manifest as a fallback for the same.
type SitePackages struct {
	dir string

	once    sync.Once
	loadErr error
	dists   map[string]Distribution // keyed by normalized name
	modules map[string][]string     // module -> distribution names
}

func NewSitePackages(dir string) *SitePackages {
	return &SitePackages{dir: dir}
}

// Discover locates the site-packages directory of the active virtual
// environment via $VIRTUAL_ENV.
func Discover() (string, error) {
	venv := os.Getenv("VIRTUAL_ENV")
	if venv == "" {
		return "", fmt.Errorf("no active environment: VIRTUAL_ENV is not set")
	}
	matches, err := filepath.Glob(filepath.Join(venv, "lib", "python*", "site-packages"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no site-packages under %s", venv)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

func (s *SitePackages) Installed() ([]Distribution, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	out := make([]Distribution, 0, len(s.dists))
	for _, key := range util.SortedStringKeys(s.dists) {
		out = append(out, s.dists[key])
	}
	return out, nil
}

func (s *SitePackages) DistributionFor(module string) (string, bool) {
	if err := s.load(); err != nil {
		return "", false
	}
	names := s.modules[module]
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

func (s *SitePackages) Requires(dist string) ([]requirement.Requirement, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	d, ok := s.dists[requirement.NormalizeName(dist)]
	if !ok {
		return nil, fmt.Errorf("distribution %q is not installed", dist)
	}
	return d.Requires, nil
}

func (s *SitePackages) load() error {
	s.once.Do(func() {
		s.dists = make(map[string]Distribution)
		s.modules = make(map[string][]string)

		entries, err := os.ReadDir(s.dir)
		if err != nil {
			s.loadErr = fmt.Errorf("reading site-packages %s: %w", s.dir, err)
			return
		}

		for _, entry := range entries {
			if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".dist-info") {
				continue
			}
			infoDir := filepath.Join(s.dir, entry.Name())
			dist, err := readDistInfo(infoDir)
			if err != nil {
				slog.Warn("skipping unreadable dist-info", "path", infoDir, "error", err)
				continue
			}
			key := requirement.NormalizeName(dist.Name)
			s.dists[key] = dist
			for _, mod := range dist.Modules {
				s.modules[mod] = append(s.modules[mod], dist.Name)
			}
		}

		// Deterministic reverse lookups when several distributions claim
		// the same module name.
		for mod := range s.modules {
			sort.Strings(s.modules[mod])
		}
	})
	return s.loadErr
}

func readDistInfo(infoDir string) (Distribution, error) {
	dist, err := parseMetadata(filepath.Join(infoDir, "METADATA"))
	if err != nil {
		return Distribution{}, err
	}

	modules, err := readTopLevel(filepath.Join(infoDir, "top_level.txt"))
	if err != nil {
		modules = modulesFromRecord(filepath.Join(infoDir, "RECORD"))
	}
	if len(modules) == 0 {
		// Last guess: the import name usually mirrors the dist name.
		modules = []string{strings.ReplaceAll(strings.ToLower(dist.Name), "-", "_")}
	}
	dist.Modules = modules
	return dist, nil
}

func parseMetadata(path string) (Distribution, error) {
	f, err := os.Open(path)
	if err != nil {
		return Distribution{}, err
	}
	defer f.Close()

	var dist Distribution
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break // end of headers, body is the long description
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Name":
			dist.Name = value
		case "Version":
			dist.Version = value
		case "Requires-Dist":
			req, err := requirement.Parse(value)
			if err != nil {
				slog.Debug("ignoring unparsable Requires-Dist", "path", path, "value", value, "error", err)
				continue
			}
			dist.Requires = append(dist.Requires, req)
		}
	}
	if err := scanner.Err(); err != nil {
		return Distribution{}, err
	}
	if dist.Name == "" || dist.Version == "" {
		return Distribution{}, fmt.Errorf("metadata in %s misses Name or Version", path)
	}
	return dist, nil
}

func readTopLevel(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var modules []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			modules = append(modules, line)
		}
	}
	return modules, nil
}

// modulesFromRecord derives top-level module names from the RECORD manifest
// when top_level.txt is absent.
func modulesFromRecord(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var modules []string
	for _, line := range strings.Split(string(data), "\n") {
		entry, _, _ := strings.Cut(line, ",")
		entry = strings.TrimSpace(entry)
		if entry == "" || strings.HasPrefix(entry, "..") {
			continue
		}
		top, rest, nested := strings.Cut(entry, "/")
		switch {
		case nested:
			if strings.HasSuffix(top, ".dist-info") || strings.HasSuffix(top, ".data") || rest == "" {
				continue
			}
		case strings.HasSuffix(top, ".py"):
			top = strings.TrimSuffix(top, ".py")
		default:
			continue
		}
		if top == "" || seen[top] {
			continue
		}
		seen[top] = true
		modules = append(modules, top)
	}
	sort.Strings(modules)
	return modules
}

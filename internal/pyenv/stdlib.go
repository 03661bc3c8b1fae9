package pyenv

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

//go:embed stdlib/python.txt
var pythonStdlibData string

// EmbeddedStdlib serves the bundled standard-library enumeration. Should
// the bundled data ever be unavailable, it falls back to asking the
// interpreter itself; that path carries subprocess latency and must never
// be reached in ordinary operation.
type EmbeddedStdlib struct {
	// PythonExe overrides the interpreter used for the last-resort
	// enumeration. Defaults to "python3".
	PythonExe string
}

func (p *EmbeddedStdlib) Names() (map[string]bool, error) {
	names := make(map[string]bool)
	for _, line := range strings.Split(pythonStdlibData, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Keep the top-level segment too, e.g. urllib.request -> urllib.
		names[line] = true
		names[strings.Split(line, ".")[0]] = true
	}
	if len(names) > 0 {
		return names, nil
	}

	slog.Warn("bundled stdlib enumeration is empty, falling back to interpreter introspection")
	return p.introspect()
}

// introspect shells out to the interpreter and enumerates both the compiled
// built-in modules and everything discoverable on the module path.
func (p *EmbeddedStdlib) introspect() (map[string]bool, error) {
	exe := p.PythonExe
	if exe == "" {
		exe = "python3"
	}

	const script = "import sys\n" +
		"try:\n" +
		"    names = set(sys.stdlib_module_names)\n" +
		"except AttributeError:\n" +
		"    import pkgutil\n" +
		"    names = {m.name for m in pkgutil.iter_modules()} | set(sys.builtin_module_names)\n" +
		"print('\\n'.join(sorted(names)))\n"

	out, err := exec.Command(exe, "-I", "-c", script).Output()
	if err != nil {
		return nil, fmt.Errorf("enumerating stdlib modules via %s: %w", exe, err)
	}

	names := make(map[string]bool)
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names[line] = true
		}
	}
	return names, nil
}

// StaticStdlib is a fixed name set, for tests and overrides.
type StaticStdlib map[string]bool

func (s StaticStdlib) Names() (map[string]bool, error) {
	return s, nil
}

package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ScanPath     string       `toml:"scan_path"`
	SitePackages string       `toml:"site_packages"`
	Exclude      Exclude      `toml:"exclude"`
	Toolkit      Toolkit      `toml:"toolkit"`
	Requirements Requirements `toml:"requirements"`
	Watch        Watch        `toml:"watch"`
	Output       Output       `toml:"output"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

// Toolkit controls the optional exclusion of the GUI toolkit binding's own
// top-level names, so the binding is chosen transitively by the framework
// dependency instead of being pinned by the scanned app.
type Toolkit struct {
	ExcludeBindings bool     `toml:"exclude_bindings"`
	Bindings        []string `toml:"bindings"`
	EnvFlag         string   `toml:"env_flag"`
}

type Requirements struct {
	// Mandatory requirements the packaging tool itself imposes. Always
	// present in the final explicit set.
	Mandatory []string `toml:"mandatory"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// MetricsAddr enables the /metrics and /health endpoint in watch mode.
	MetricsAddr string `toml:"metrics_addr"`
}

type Output struct {
	Format string `toml:"format"` // text, tsv or json
	Path   string `toml:"path"`   // stdout when empty
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.ScanPath == "" {
		cfg.ScanPath = "."
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "__pycache__", "*.egg-info", ".venv", "venv"}
	}
	if len(cfg.Toolkit.Bindings) == 0 {
		cfg.Toolkit.Bindings = []string{"PyQt5", "PyQt6"}
	}
	if cfg.Toolkit.EnvFlag == "" {
		cfg.Toolkit.EnvFlag = "ACC_PYTHON_ACTIVE"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "text"
	}
}

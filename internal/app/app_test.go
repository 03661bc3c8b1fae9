package app

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscan/internal/config"
	"depscan/internal/pyenv"
	"depscan/internal/requirement"
)

type fixtureEnv struct {
	dists   []pyenv.Distribution
	modules map[string]string
}

func (e *fixtureEnv) Installed() ([]pyenv.Distribution, error) {
	return e.dists, nil
}

func (e *fixtureEnv) DistributionFor(module string) (string, bool) {
	name, ok := e.modules[module]
	return name, ok
}

func (e *fixtureEnv) Requires(dist string) ([]requirement.Requirement, error) {
	key := requirement.NormalizeName(dist)
	for _, d := range e.dists {
		if requirement.NormalizeName(d.Name) == key {
			return d.Requires, nil
		}
	}
	return nil, fmt.Errorf("distribution %q is not installed", dist)
}

type fakeCache struct {
	stored map[string]*Resolution
}

func (c *fakeCache) Load(key string) (*Resolution, bool) {
	res, ok := c.stored[key]
	return res, ok
}

func (c *fakeCache) Store(key string, res *Resolution) error {
	if c.stored == nil {
		c.stored = make(map[string]*Resolution)
	}
	c.stored[key] = res
	return nil
}

type editingConfirmer struct {
	explicit *requirement.Set
}

func (c *editingConfirmer) Confirm(*Resolution) (*requirement.Set, error) {
	return c.explicit, nil
}

var fixtureStdlib = pyenv.StaticStdlib{"os": true, "sys": true, "logging": true, "json": true}

func fixtureApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	env := &fixtureEnv{
		dists: []pyenv.Distribution{
			{
				Name:    "comrad",
				Version: "0.5.0",
				Requires: []requirement.Requirement{
					requirement.MustParse("numpy>=1.20"),
					requirement.MustParse("QtPy"),
				},
			},
			{Name: "numpy", Version: "1.24.0"},
			{Name: "pytest", Version: "7.4.0"},
		},
		modules: map[string]string{"comrad": "comrad", "numpy": "numpy", "pytest": "pytest"},
	}
	a, err := New(cfg, env, fixtureStdlib)
	require.NoError(t, err)
	return a
}

func fixtureTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"),
		[]byte("import logging\nfrom comrad import CDisplay\nimport pytest\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.ui"), []byte(`<?xml version="1.0" encoding="UTF-8"?>
<ui version="4.0">
 <widget class="QWidget" name="Form">
  <property name="valueTransformation">
   <string notr="true">import numpy as np</string>
  </property>
 </widget>
 <customwidgets>
  <customwidget>
   <class>CDisplay</class>
   <extends>QWidget</extends>
   <header>comrad.widgets.indicators</header>
  </customwidget>
 </customwidgets>
</ui>`), 0644))
	return root
}

func TestScanExternalNames(t *testing.T) {
	a := fixtureApp(t, config.Default())
	names, err := a.ScanExternalNames(fixtureTree(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"comrad", "numpy", "pytest"}, names)
}

func TestResolvePipeline(t *testing.T) {
	cfg := config.Default()
	cfg.Requirements.Mandatory = []string{"comrad==0.5.0"}
	a := fixtureApp(t, cfg)

	res, err := a.Resolve(fixtureTree(t))
	require.NoError(t, err)

	// comrad is mandatory; numpy is transitively supplied by it and
	// demoted; pytest stays explicit, pinned to the installed version.
	assert.Equal(t, []string{"comrad==0.5.0", "pytest==7.4.0"}, res.Explicit.Strings())
	assert.Equal(t, []string{"numpy>=1.20"}, res.Implicit.Strings())
	assert.Equal(t, []string{"comrad==0.5.0"}, res.Mandatory.Strings())

	// Implicit never double-lists an explicit entry.
	for _, name := range res.Implicit.Names() {
		assert.False(t, res.Explicit.Contains(name), "%s listed both explicit and implicit", name)
	}
}

func TestResolveConfirmerOverridesVerbatim(t *testing.T) {
	cfg := config.Default()
	cfg.Requirements.Mandatory = []string{"comrad==0.5.0"}
	a := fixtureApp(t, cfg)

	edited := requirement.NewSet(requirement.MustParse("comrad==0.5.0"), requirement.MustParse("extra_pkg==1.0"))
	a.SetConfirmer(&editingConfirmer{explicit: edited})

	res, err := a.Resolve(fixtureTree(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"comrad==0.5.0", "extra_pkg==1.0"}, res.Explicit.Strings())
	assert.True(t, res.Explicit.Contains("extra_pkg"))
}

func TestResolveStoresCache(t *testing.T) {
	cfg := config.Default()
	cfg.Requirements.Mandatory = []string{"comrad==0.5.0"}
	a := fixtureApp(t, cfg)

	cache := &fakeCache{}
	a.SetCache(cache)

	root := fixtureTree(t)
	res, err := a.Resolve(root)
	require.NoError(t, err)

	stored, ok := cache.Load(CacheKey(root))
	require.True(t, ok, "resolution must be persisted")
	assert.Equal(t, res.Explicit.Strings(), stored.Explicit.Strings())

	// A second pass tolerates the existing entry and yields the same result.
	again, err := a.Resolve(root)
	require.NoError(t, err)
	assert.Equal(t, res.Explicit.Strings(), again.Explicit.Strings())
}

func TestResolveToolkitExclusion(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"),
		[]byte("import PyQt5\nimport pytest\n"), 0644))

	cfg := config.Default()
	cfg.Toolkit.ExcludeBindings = true
	a := fixtureApp(t, cfg)

	names, err := a.ScanExternalNames(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"pytest"}, names)
}

func TestResolveInvalidMandatory(t *testing.T) {
	cfg := config.Default()
	cfg.Requirements.Mandatory = []string{"???"}
	env := &fixtureEnv{}
	_, err := New(cfg, env, fixtureStdlib)
	assert.Error(t, err)
}

func TestCacheKeyStable(t *testing.T) {
	k1 := CacheKey("/some/root")
	k2 := CacheKey("/some/root")
	k3 := CacheKey("/other/root")
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Len(t, k1, 40)
}

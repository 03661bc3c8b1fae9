package scanner

import (
	"path/filepath"
	"testing"

	"depscan/internal/parser"
)

func newWalker(t *testing.T) *Walker {
	t.Helper()
	w, err := NewWalker([]string{"__pycache__"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestScanTree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.py"), "from comrad import CDisplay\nimport reused\n")
	writeFile(t, filepath.Join(root, "reused.py"), "import logging\n")
	writeFile(t, filepath.Join(root, "sub", "helper.py"), "import numpy\n")

	result, err := newWalker(t).Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	if result.PyFiles != 3 {
		t.Errorf("expected 3 python files, got %d", result.PyFiles)
	}
	for _, module := range []string{"app", "reused", "sub.helper"} {
		if !result.LocalModules[module] {
			t.Errorf("missing local module %q in %v", module, result.LocalModules)
		}
	}

	expected := []parser.UsedImport{
		{Package: "comrad", RelativeLoc: ""},
		{Package: "reused", RelativeLoc: ""},
		{Package: "logging", RelativeLoc: ""},
		{Package: "numpy", RelativeLoc: "sub"},
	}
	if len(result.UsedImports) != len(expected) {
		t.Fatalf("expected %d imports, got %v", len(expected), result.UsedImports)
	}
	for _, imp := range expected {
		if !result.UsedImports[imp] {
			t.Errorf("missing %v in %v", imp, result.UsedImports)
		}
	}
}

func TestScanTreeBadFileDoesNotAbort(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "broken.py"), "import\n")
	writeFile(t, filepath.Join(root, "good.py"), "import numpy\n")

	result, err := newWalker(t).Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	if !result.UsedImports[parser.UsedImport{Package: "numpy"}] {
		t.Errorf("good file must still be scanned, got %v", result.UsedImports)
	}
	// The broken file still counts as a local module.
	if !result.LocalModules["broken"] {
		t.Errorf("broken.py must still register as local module, got %v", result.LocalModules)
	}
}

func TestScanTreeExcludesDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.py"), "import numpy\n")
	writeFile(t, filepath.Join(root, "__pycache__", "cached.py"), "import badpkg\n")

	result, err := newWalker(t).Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	for imp := range result.UsedImports {
		if imp.Package == "badpkg" {
			t.Error("excluded directory was scanned")
		}
	}
	if result.LocalModules["__pycache__.cached"] {
		t.Error("excluded directory contributed a local module")
	}
}

// End-to-end: a tree with a Python entrypoint and a Designer file carrying
// a custom-widget header and an inline snippet. Enumeration order must not
// matter, and stdlib names must be filtered out.
func TestScanTreeEndToEnd(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.py"), "import logging\nfrom comrad import CDisplay\n")
	writeFile(t, filepath.Join(root, "app.ui"), `<?xml version="1.0" encoding="UTF-8"?>
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
</ui>`)

	walker := newWalker(t)
	stdlib := map[string]bool{"logging": true, "os": true, "sys": true}

	for i := 0; i < 3; i++ { // repeat scans: result must be identical
		result, err := walker.Scan(root)
		if err != nil {
			t.Fatal(err)
		}
		got := Normalize(result.UsedImports, result.LocalModules, stdlib, nil)
		if len(got) != 2 || !got["comrad"] || !got["numpy"] {
			t.Fatalf("pass %d: expected {comrad, numpy}, got %v", i, got)
		}
	}
}

func TestScanTreeMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := newWalker(t).Scan(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Error("expected error for missing root")
	}
}

func TestScanTreeUISnippetFileAlsoLocalModule(t *testing.T) {
	t.Parallel()

	// A referenced snippet file is itself enumerated by the walk: its
	// imports appear once under its own location and once under the
	// descriptor-threaded location.
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "app.ui"), `<?xml version="1.0" encoding="UTF-8"?>
<ui version="4.0">
 <widget class="QWidget" name="Form">
  <property name="snippetFilename">
   <string notr="true">b/external.py</string>
  </property>
 </widget>
</ui>`)
	writeFile(t, filepath.Join(root, "a", "b", "external.py"), "import pytest\n")

	result, err := newWalker(t).Scan(root)
	if err != nil {
		t.Fatal(err)
	}

	if !result.UsedImports[parser.UsedImport{Package: "pytest", RelativeLoc: "a.b"}] {
		t.Errorf("missing threaded location a.b in %v", result.UsedImports)
	}
	if !result.LocalModules["a.b.external"] {
		t.Errorf("snippet file must register as local module, got %v", result.LocalModules)
	}
}

func TestWalkerBadPattern(t *testing.T) {
	t.Parallel()

	if _, err := NewWalker([]string{"["}, nil); err == nil {
		t.Error("expected error for malformed glob pattern")
	}
}

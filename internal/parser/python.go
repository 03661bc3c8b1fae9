package parser

import (
	"errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// PythonScanner extracts import statements from Python source text. The
// source is only ever parsed, never executed.
type PythonScanner struct {
	language *sitter.Language
}

func NewPythonScanner() *PythonScanner {
	return &PythonScanner{
		language: sitter.NewLanguage(tree_sitter_python.Language()),
	}
}

// ScanSource parses source and collects every import occurrence, tagged
// with relativeLoc. The walk is flat: imports nested inside classes,
// functions or conditionals are collected all the same. Returns a
// *SyntaxError when the source does not parse as Python.
func (s *PythonScanner) ScanSource(source []byte, relativeLoc string) (ImportSet, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(s.language)

	tree := p.Parse(source, nil)
	if tree == nil {
		return nil, errors.New("parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if err := findSyntaxError(root); err != nil {
		return nil, err
	}

	imports := make(ImportSet)
	s.walk(root, source, relativeLoc, imports)
	return imports, nil
}

func (s *PythonScanner) walk(node *sitter.Node, source []byte, relativeLoc string, imports ImportSet) {
	switch node.Kind() {
	case "import_statement":
		s.extractImport(node, source, relativeLoc, imports)
	case "import_from_statement":
		s.extractFromImport(node, source, relativeLoc, imports)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		s.walk(node.Child(i), source, relativeLoc, imports)
	}
}

// extractImport handles "import a.b.c" (and "import a.b.c as x", and
// comma-separated lists). The full dotted path is kept: normalization needs
// it to recognize deep local-module references.
func (s *PythonScanner) extractImport(node *sitter.Node, source []byte, relativeLoc string, imports ImportSet) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		switch child.Kind() {
		case "dotted_name", "identifier":
			imports.Add(UsedImport{Package: text(child, source), RelativeLoc: relativeLoc})
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				imports.Add(UsedImport{Package: text(name, source), RelativeLoc: relativeLoc})
			}
		}
	}
}

// extractFromImport handles "from a.b import c". Only absolute imports are
// recorded; a relative import (any leading dot) can never name an external
// dependency, so recording it would only add false local noise.
func (s *PythonScanner) extractFromImport(node *sitter.Node, source []byte, relativeLoc string, imports ImportSet) {
	module := node.ChildByFieldName("module_name")
	if module == nil || module.Kind() == "relative_import" {
		return
	}
	imports.Add(UsedImport{Package: text(module, source), RelativeLoc: relativeLoc})
}

func text(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// findSyntaxError locates the first error or missing node in the tree,
// or nil when the parse is clean. The tree's error flag alone is not
// enough: a truncated suite like "def f():" produces only a MISSING node,
// which the flag does not report.
func findSyntaxError(node *sitter.Node) *SyntaxError {
	if node.IsError() || node.IsMissing() {
		return &SyntaxError{
			Line:   int(node.StartPosition().Row) + 1,
			Column: int(node.StartPosition().Column) + 1,
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if err := findSyntaxError(node.Child(i)); err != nil {
			return err
		}
	}
	return nil
}

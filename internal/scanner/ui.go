package scanner

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"depscan/internal/parser"
	"depscan/internal/shared/observability"
	"depscan/internal/shared/util"
)

// Designer descriptor files reference external code in three places: the
// custom-widget headers, inline transformation snippets and externally
// referenced snippet files.
const (
	customWidgetHeaderPath = "./customwidgets/customwidget/header"
	inlineSnippetPath      = "//property[@name='valueTransformation']/string"
	snippetFilePath        = "//property[@name='snippetFilename']/string"
)

type snippetKey struct {
	path        string
	relativeLoc string
}

// UIScanner extracts import occurrences from Qt Designer *.ui XML files.
// Every failure it can encounter is recoverable: a warning is logged and
// the offending element contributes nothing. Use one scanner per tree walk;
// the visited set guards referenced snippet files against being scanned
// twice under the same location.
type UIScanner struct {
	py      *parser.PythonScanner
	visited map[snippetKey]bool
}

func NewUIScanner(py *parser.PythonScanner) *UIScanner {
	return &UIScanner{
		py:      py,
		visited: make(map[snippetKey]bool),
	}
}

// ScanFile parses uiFile and collects imports from all three slots.
func (s *UIScanner) ScanFile(uiFile, relativeLoc string) parser.ImportSet {
	imports := make(parser.ImportSet)

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(uiFile); err != nil {
		slog.Warn("ui file cannot be parsed as XML", "path", uiFile, "error", err)
		observability.ScanWarningsTotal.WithLabelValues("xml_parse").Inc()
		return imports
	}
	root := doc.Root()
	if root == nil {
		slog.Warn("ui file has no root element", "path", uiFile)
		observability.ScanWarningsTotal.WithLabelValues("xml_parse").Inc()
		return imports
	}

	imports.Union(s.scanCustomWidgets(root, relativeLoc))
	imports.Union(s.scanInlineSnippets(root, uiFile, relativeLoc))
	imports.Union(s.scanSnippetFiles(root, uiFile, relativeLoc))
	return imports
}

// scanCustomWidgets reads <customwidget><header> entries. A header names
// either a dotted package path or a filesystem-style path to a header or
// source file.
func (s *UIScanner) scanCustomWidgets(root *etree.Element, relativeLoc string) parser.ImportSet {
	imports := make(parser.ImportSet)
	for _, header := range root.FindElements(customWidgetHeaderPath) {
		text := header.Text()
		if text == "" {
			continue
		}
		imports.Add(parser.UsedImport{
			Package:     headerToPkgPath(text),
			RelativeLoc: relativeLoc,
		})
	}
	return imports
}

// headerToPkgPath strips a literal trailing header or source extension and
// converts filesystem separators to package separators. A trailing segment
// that is really a subpackage name (e.g. ".qt" in "accwidgets.qt") is kept.
func headerToPkgPath(header string) string {
	if strings.HasSuffix(header, ".h") {
		header = header[:len(header)-2]
	} else if strings.HasSuffix(header, ".py") {
		header = header[:len(header)-3]
	}
	return util.FSPathToPkgPath(header)
}

// scanInlineSnippets runs the Python scanner over embedded transformation
// code, at the same relative location as the descriptor itself.
func (s *UIScanner) scanInlineSnippets(root *etree.Element, uiFile, relativeLoc string) parser.ImportSet {
	imports := make(parser.ImportSet)
	for _, snippet := range root.FindElements(inlineSnippetPath) {
		text := snippet.Text()
		if text == "" {
			continue
		}
		found, err := s.py.ScanSource([]byte(text), relativeLoc)
		if err != nil {
			slog.Warn("inline transformation contains invalid Python syntax",
				"snippet", text, "path", uiFile, "error", err)
			observability.ScanWarningsTotal.WithLabelValues("snippet_syntax").Inc()
			continue
		}
		imports.Union(found)
	}
	return imports
}

// scanSnippetFiles follows snippetFilename references, which are sibling
// paths relative to the descriptor's own directory. The referenced file is
// scanned under a relative location extended by the dotted path of its
// directory relative to the descriptor's directory.
func (s *UIScanner) scanSnippetFiles(root *etree.Element, uiFile, relativeLoc string) parser.ImportSet {
	imports := make(parser.ImportSet)
	uiDir := filepath.Dir(uiFile)

	for _, ref := range root.FindElements(snippetFilePath) {
		text := ref.Text()
		if text == "" {
			continue
		}

		target := filepath.Join(uiDir, text)
		info, err := os.Stat(target)
		if err != nil || !info.Mode().IsRegular() {
			slog.Warn("referenced snippet file cannot be opened", "snippet", text, "path", uiFile)
			observability.ScanWarningsTotal.WithLabelValues("snippet_missing").Inc()
			continue
		}

		childLoc, err := util.RelativePkgPath(target, uiDir)
		if err == nil && strings.HasPrefix(childLoc, "..") {
			err = os.ErrInvalid
		}
		if err != nil {
			slog.Warn("referenced snippet file escapes the descriptor directory",
				"snippet", text, "path", uiFile, "error", err)
			observability.ScanWarningsTotal.WithLabelValues("snippet_missing").Inc()
			continue
		}
		targetLoc := util.JoinPkgPath(relativeLoc, childLoc)

		key := snippetKey{path: target, relativeLoc: targetLoc}
		if s.visited[key] {
			continue
		}
		s.visited[key] = true

		source, err := os.ReadFile(target)
		if err != nil {
			slog.Warn("referenced snippet file cannot be read", "snippet", text, "path", uiFile, "error", err)
			observability.ScanWarningsTotal.WithLabelValues("snippet_missing").Inc()
			continue
		}
		found, err := s.py.ScanSource(source, targetLoc)
		if err != nil {
			slog.Warn("referenced snippet file contains invalid Python syntax",
				"snippet", text, "path", uiFile, "error", err)
			observability.ScanWarningsTotal.WithLabelValues("snippet_syntax").Inc()
			continue
		}
		imports.Union(found)
	}
	return imports
}

package parser

import "fmt"

// UsedImport is a single discovered import occurrence. RelativeLoc is the
// dotted path of the directory (relative to the scan root) holding the file
// the import was found in; "" means the scan root itself. Two occurrences
// are equal iff both fields match, which makes the struct usable as a set
// key directly.
type UsedImport struct {
	Package     string
	RelativeLoc string
}

// ImportSet is a set of discovered import occurrences.
type ImportSet map[UsedImport]bool

func (s ImportSet) Add(imp UsedImport) {
	s[imp] = true
}

// Union merges other into s.
func (s ImportSet) Union(other ImportSet) {
	for imp := range other {
		s[imp] = true
	}
}

// SyntaxError reports that a scanned source text is not valid Python. The
// position points at the first error node of the parse tree.
type SyntaxError struct {
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid python syntax at line %d, column %d", e.Line, e.Column)
}

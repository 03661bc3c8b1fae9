// Package requirement models PEP 508 dependency specifiers with the
// name-keyed identity the reconciliation stages rely on: two requirements
// with the same (normalized) name are the same entry, whatever their
// version constraints say.
package requirement

import (
	"fmt"
	"regexp"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

// Requirement is a single parsed dependency specifier, e.g.
// "comrad[extra1]==0.5; python_version >= '3.9'".
type Requirement struct {
	Name      string
	Extras    []string
	Specifier string // version constraints, "" when unconstrained
	Marker    string // environment marker, "" when absent
}

var (
	namePattern   = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)`)
	extrasPattern = regexp.MustCompile(`^\[\s*([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?(?:\s*,\s*[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)*)\s*\]`)
	normalizeRe   = regexp.MustCompile(`[-_.]+`)
)

// Parse parses a PEP 508 requirement string. URL references are not
// supported; version constraints are validated as PEP 440 specifiers.
func Parse(input string) (Requirement, error) {
	var req Requirement

	spec := input
	if i := strings.Index(spec, ";"); i >= 0 {
		req.Marker = strings.TrimSpace(spec[i+1:])
		spec = spec[:i]
	}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Requirement{}, fmt.Errorf("empty requirement %q", input)
	}

	name := namePattern.FindString(spec)
	if name == "" {
		return Requirement{}, fmt.Errorf("invalid requirement name in %q", input)
	}
	req.Name = name
	rest := strings.TrimSpace(spec[len(name):])

	if m := extrasPattern.FindStringSubmatch(rest); m != nil {
		for _, extra := range strings.Split(m[1], ",") {
			req.Extras = append(req.Extras, strings.TrimSpace(extra))
		}
		rest = strings.TrimSpace(rest[len(m[0]):])
	}

	// PEP 508 allows the constraint list to be parenthesized.
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		rest = strings.TrimSpace(rest[1 : len(rest)-1])
	}

	if rest != "" {
		if _, err := pep440.NewSpecifiers(rest); err != nil {
			return Requirement{}, fmt.Errorf("invalid version constraint %q in %q: %w", rest, input, err)
		}
		req.Specifier = normalizeSpecifier(rest)
	}

	return req, nil
}

// MustParse parses input and panics on failure. Intended for fixed
// requirement literals in configuration defaults and tests.
func MustParse(input string) Requirement {
	req, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return req
}

// NormalizeName normalizes a distribution name per PEP 503: lowercase with
// runs of "-", "_" and "." collapsed into a single "-".
func NormalizeName(name string) string {
	return strings.ToLower(normalizeRe.ReplaceAllString(name, "-"))
}

// Key returns the identity of the requirement for reconciliation purposes.
func (r Requirement) Key() string {
	return NormalizeName(r.Name)
}

// Pinned returns a copy of the requirement constrained to exactly version.
func (r Requirement) Pinned(version string) Requirement {
	pinned := r
	pinned.Specifier = "==" + version
	return pinned
}

// DependsOnExtra reports whether the requirement is conditional on an
// optional extra of its parent distribution.
func (r Requirement) DependsOnExtra() bool {
	return strings.Contains(r.Marker, "extra ==")
}

func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteString("]")
	}
	b.WriteString(r.Specifier)
	if r.Marker != "" {
		b.WriteString("; ")
		b.WriteString(r.Marker)
	}
	return b.String()
}

func normalizeSpecifier(spec string) string {
	parts := strings.Split(spec, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, ",")
}

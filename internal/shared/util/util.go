package util

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// PkgSep separates segments of a dotted package path.
const PkgSep = "."

// NormalizePatternPath cleans and normalizes paths for matcher/pattern usage.
func NormalizePatternPath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	clean := path.Clean(trimmed)
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}

// FSPathToPkgPath converts a filesystem path into a dotted package path
// ("my/file" -> "my.file"). The input may use either separator style.
func FSPathToPkgPath(p string) string {
	return strings.ReplaceAll(NormalizePatternPath(p), "/", PkgSep)
}

// RelativePkgPath returns the dotted path of file's parent directory relative
// to root, or "" when the parent is root itself.
func RelativePkgPath(file, root string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		return "", nil
	}
	return FSPathToPkgPath(filepath.ToSlash(dir)), nil
}

// JoinPkgPath dot-joins the non-empty halves of a package path.
func JoinPkgPath(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, PkgSep)
}

// TopLevelPkg returns the first dot-separated segment of a package path.
func TopLevelPkg(pkg string) string {
	if i := strings.Index(pkg, PkgSep); i >= 0 {
		return pkg[:i]
	}
	return pkg
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

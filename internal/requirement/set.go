package requirement

import "depscan/internal/shared/util"

// Set is a collection of requirements keyed by normalized name. Adding a
// requirement whose name is already present replaces the previous entry.
type Set struct {
	entries map[string]Requirement
}

func NewSet(reqs ...Requirement) *Set {
	s := &Set{entries: make(map[string]Requirement, len(reqs))}
	for _, r := range reqs {
		s.Add(r)
	}
	return s
}

func (s *Set) Add(r Requirement) {
	s.entries[r.Key()] = r
}

// Get looks a requirement up by name; the lookup name is normalized first.
func (s *Set) Get(name string) (Requirement, bool) {
	r, ok := s.entries[NormalizeName(name)]
	return r, ok
}

func (s *Set) Contains(name string) bool {
	_, ok := s.entries[NormalizeName(name)]
	return ok
}

func (s *Set) Remove(name string) {
	delete(s.entries, NormalizeName(name))
}

func (s *Set) Len() int {
	return len(s.entries)
}

// Sorted returns the requirements ordered by normalized name.
func (s *Set) Sorted() []Requirement {
	keys := util.SortedStringKeys(s.entries)
	out := make([]Requirement, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.entries[k])
	}
	return out
}

// Names returns the normalized names present in the set, sorted.
func (s *Set) Names() []string {
	return util.SortedStringKeys(s.entries)
}

// Strings renders every requirement, ordered by normalized name.
func (s *Set) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, r.String())
	}
	return out
}

func (s *Set) Clone() *Set {
	clone := &Set{entries: make(map[string]Requirement, len(s.entries))}
	for k, v := range s.entries {
		clone.entries[k] = v
	}
	return clone
}

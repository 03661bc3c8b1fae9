package resolver

import (
	"depscan/internal/requirement"
)

// InjectMandatory merges the mandatory requirements into discovered. Any
// discovered requirement sharing a name with a mandatory one is removed
// first, whatever its constraint: mandatory requirements always win.
func InjectMandatory(discovered, mandatory *requirement.Set) {
	for _, req := range mandatory.Sorted() {
		discovered.Remove(req.Name)
		discovered.Add(req)
	}
}

// ComputeImplicit removes from discovered the requirements that are already
// supplied transitively by a mandatory requirement's installed distribution
// and returns them. The returned entries carry the transitive set's own
// declared constraint, not the discovered one. Requirements that are
// themselves mandatory are never demoted.
func (r *Resolver) ComputeImplicit(discovered, mandatory *requirement.Set) (*requirement.Set, error) {
	implicit := requirement.NewSet()

	for _, mandatoryReq := range mandatory.Sorted() {
		transitive, err := r.env.Requires(mandatoryReq.Name)
		if err != nil {
			// The mandatory distribution may not be installed in the
			// active environment; nothing can be implied from it then.
			continue
		}
		for _, dep := range transitive {
			if dep.DependsOnExtra() {
				continue
			}
			if mandatory.Contains(dep.Name) {
				continue
			}
			if _, ok := discovered.Get(dep.Name); !ok {
				continue
			}
			discovered.Remove(dep.Name)
			implicit.Add(dep)
		}
	}
	return implicit, nil
}

// Package kinship answers relationship queries over a built gedcom.Tree:
// ancestry, common ancestors with distance tie-breaking, and annotated paths
// between relatives.
//
// Every traversal is iterative and tracks visited records, so malformed input
// where a family ends up among its own ancestors terminates instead of
// looping. Queries never modify the tree.
package kinship

import (
	"github.com/FocuswithJustin/pedigree/core/gedcom"
)

// IsParent reports whether candidate is a parent of ind.
func IsParent(ind, candidate *gedcom.Individual) bool {
	return contains(ind.Parents(), candidate)
}

// MutualParentFamilies returns the parent families a and b share, in a's order.
func MutualParentFamilies(a, b *gedcom.Individual) []*gedcom.Family {
	theirs := make(map[*gedcom.Family]struct{}, len(b.ParentFamilies()))
	for _, f := range b.ParentFamilies() {
		theirs[f] = struct{}{}
	}
	var out []*gedcom.Family
	for _, f := range a.ParentFamilies() {
		if _, ok := theirs[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// IsSibling reports whether a and b are distinct children of a common family.
func IsSibling(a, b *gedcom.Individual) bool {
	return a != b && len(MutualParentFamilies(a, b)) > 0
}

// IsAncestor reports whether candidate is a parent of ind or, transitively,
// an ancestor of one of its parents.
func IsAncestor(ind, candidate *gedcom.Individual) bool {
	if ind == nil || candidate == nil {
		return false
	}
	visited := map[*gedcom.Individual]struct{}{ind: {}}
	generation := []*gedcom.Individual{ind}
	for len(generation) > 0 {
		var next []*gedcom.Individual
		for _, member := range generation {
			for _, p := range member.Parents() {
				if p == candidate {
					return true
				}
				if _, seen := visited[p]; seen {
					continue
				}
				visited[p] = struct{}{}
				next = append(next, p)
			}
		}
		generation = next
	}
	return false
}

// IsRelative reports whether a and b are in a lineal line or share a common
// ancestor family.
func IsRelative(a, b *gedcom.Individual) bool {
	if a == nil || b == nil {
		return false
	}
	if IsAncestor(a, b) || IsAncestor(b, a) {
		return true
	}
	return len(CommonAncestorFamilies(a, b)) > 0
}

// FamilyIsRelative reports whether candidate is a relative of either spouse.
func FamilyIsRelative(fam *gedcom.Family, candidate *gedcom.Individual) bool {
	for _, p := range fam.Parents() {
		if IsRelative(p, candidate) {
			return true
		}
	}
	return false
}

// DistanceToAncestor counts generations between ind and ancestor: 0 for ind
// itself, 1 for a parent, 2 for a grandparent. It reports false when
// ancestor is not found before the generations run out.
func DistanceToAncestor(ind, ancestor *gedcom.Individual) (int, bool) {
	if ind == nil || ancestor == nil {
		return 0, false
	}
	visited := map[*gedcom.Individual]struct{}{ind: {}}
	generation := []*gedcom.Individual{ind}
	for distance := 0; len(generation) > 0; distance++ {
		if contains(generation, ancestor) {
			return distance, true
		}
		var next []*gedcom.Individual
		for _, member := range generation {
			for _, p := range member.Parents() {
				if _, seen := visited[p]; seen {
					continue
				}
				visited[p] = struct{}{}
				next = append(next, p)
			}
		}
		generation = next
	}
	return 0, false
}

func contains[T comparable](items []T, want T) bool {
	for _, it := range items {
		if it == want {
			return true
		}
	}
	return false
}

package kinship

import (
	"github.com/FocuswithJustin/pedigree/core/errors"
	"github.com/FocuswithJustin/pedigree/core/gedcom"
)

// FamilyDistance pairs an ancestor family with its generational distance.
// Distance 0 is the individual's own parent family, 1 a grandparents'
// family, and so on.
type FamilyDistance struct {
	Family   *gedcom.Family
	Distance int
}

// AncestorFamilies lists every ancestor family of ind with its minimal
// distance, sorted ascending. Families at equal distance keep discovery
// order (declaration order, husband's side first).
func AncestorFamilies(ind *gedcom.Individual) []FamilyDistance {
	if ind == nil {
		return nil
	}
	return familiesByGeneration(ind.ParentFamilies())
}

// FamilyAncestors lists the ancestor families of fam: the spouses' parent
// families at distance 0, their parents' families at 1, and so on.
func FamilyAncestors(fam *gedcom.Family) []FamilyDistance {
	if fam == nil {
		return nil
	}
	return familiesByGeneration(fam.ParentFamilies())
}

func familiesByGeneration(start []*gedcom.Family) []FamilyDistance {
	var out []FamilyDistance
	seen := make(map[*gedcom.Family]struct{})
	var generation []*gedcom.Family
	for _, f := range start {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		generation = append(generation, f)
	}
	for distance := 0; len(generation) > 0; distance++ {
		var next []*gedcom.Family
		for _, f := range generation {
			out = append(out, FamilyDistance{Family: f, Distance: distance})
			for _, pf := range f.ParentFamilies() {
				if _, ok := seen[pf]; ok {
					continue
				}
				seen[pf] = struct{}{}
				next = append(next, pf)
			}
		}
		generation = next
	}
	return out
}

// CommonAncestorFamilies finds the nearest families that a and b both
// descend from. Siblings and half-siblings short-circuit to their shared
// parent families at distance 0. Otherwise the ancestor families of both are
// intersected and every family at the minimum distance, measured from a, is
// returned; ties are kept.
func CommonAncestorFamilies(a, b *gedcom.Individual) []FamilyDistance {
	if a == nil || b == nil {
		return nil
	}
	if mutual := MutualParentFamilies(a, b); len(mutual) > 0 {
		out := make([]FamilyDistance, len(mutual))
		for i, f := range mutual {
			out[i] = FamilyDistance{Family: f}
		}
		return out
	}

	mine := AncestorFamilies(a)
	if len(mine) == 0 {
		return nil
	}
	theirs := AncestorFamilies(b)
	if len(theirs) == 0 {
		return nil
	}
	inTheirs := make(map[*gedcom.Family]struct{}, len(theirs))
	for _, fd := range theirs {
		inTheirs[fd.Family] = struct{}{}
	}

	var out []FamilyDistance
	for _, fd := range mine {
		if _, ok := inTheirs[fd.Family]; !ok {
			continue
		}
		// mine is sorted, so the first hit fixes the minimum
		if len(out) > 0 && fd.Distance > out[0].Distance {
			break
		}
		out = append(out, fd)
	}
	return out
}

// CommonAncestors returns the parents of every nearest common ancestor
// family, deduplicated, husbands before wives.
func CommonAncestors(a, b *gedcom.Individual) []*gedcom.Individual {
	var out []*gedcom.Individual
	seen := make(map[*gedcom.Individual]struct{})
	for _, fd := range CommonAncestorFamilies(a, b) {
		for _, p := range fd.Family.Parents() {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// CommonAncestor returns the single nearest common ancestor. It returns nil
// when there is none and an AmbiguousError when there are several.
func CommonAncestor(a, b *gedcom.Individual) (*gedcom.Individual, error) {
	ancestors := CommonAncestors(a, b)
	switch len(ancestors) {
	case 0:
		return nil, nil
	case 1:
		return ancestors[0], nil
	}
	return nil, errors.NewAmbiguous(a.Xref(), "common ancestor with "+b.Xref(), len(ancestors))
}

package kinship

import (
	"math"
	"slices"

	"github.com/FocuswithJustin/pedigree/core/gedcom"
)

// Direction labels how a path step was reached from the previous one.
type Direction int

const (
	Start Direction = iota
	Parent
	Child
	Sibling
)

func (d Direction) String() string {
	switch d {
	case Start:
		return "start"
	case Parent:
		return "parent"
	case Child:
		return "child"
	case Sibling:
		return "sibling"
	}
	return "unknown"
}

// Step is one individual on a relationship path.
type Step struct {
	Individual *gedcom.Individual
	Direction  Direction
}

// DownPath finds a descent from ancestor to descendant of at most limit
// generations. The result starts at ancestor and ends at descendant. A
// negative limit means unbounded; a limit of 0 only matches ancestor itself
// when it is also the descendant. Children are explored in file order.
func DownPath(ancestor, descendant *gedcom.Individual, limit int) ([]*gedcom.Individual, bool) {
	if ancestor == nil || descendant == nil {
		return nil, false
	}
	if ancestor == descendant {
		return []*gedcom.Individual{ancestor}, true
	}
	if limit == 0 {
		return nil, false
	}
	if limit < 0 {
		limit = math.MaxInt
	}

	type frame struct {
		node   *gedcom.Individual
		budget int
		path   []*gedcom.Individual
	}
	// explored records the largest budget a node has been expanded with;
	// expanding again with a smaller one cannot find anything new.
	explored := make(map[*gedcom.Individual]int)
	stack := []frame{{node: ancestor, budget: limit, path: []*gedcom.Individual{ancestor}}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if b, ok := explored[top.node]; ok && b >= top.budget {
			continue
		}
		explored[top.node] = top.budget

		children := top.node.Children()
		if contains(children, descendant) {
			return append(slices.Clone(top.path), descendant), true
		}
		if top.budget <= 1 {
			continue
		}
		// push in reverse so the first child is expanded first
		for i := len(children) - 1; i >= 0; i-- {
			c := children[i]
			if b, ok := explored[c]; ok && b >= top.budget-1 {
				continue
			}
			next := make([]*gedcom.Individual, len(top.path), len(top.path)+1)
			copy(next, top.path)
			stack = append(stack, frame{node: c, budget: top.budget - 1, path: append(next, c)})
		}
	}
	return nil, false
}

// PathToRelative builds an annotated path from a to b. The first step is a
// with direction Start. Lineal relatives are walked directly; otherwise the
// path climbs from a to the first nearest common ancestor and descends to b.
// With compact set, a sibling hop replaces the climb through the common
// ancestor where the two sides are siblings. It reports false when a and b
// are unrelated.
func PathToRelative(a, b *gedcom.Individual, compact bool) ([]Step, bool) {
	if a == nil || b == nil {
		return nil, false
	}
	start := Step{Individual: a, Direction: Start}
	switch {
	case a == b:
		return []Step{start}, true
	case IsParent(a, b):
		return []Step{start, {Individual: b, Direction: Parent}}, true
	case IsParent(b, a):
		return []Step{start, {Individual: b, Direction: Child}}, true
	}

	if up, ok := DownPath(b, a, -1); ok {
		slices.Reverse(up)
		return label(up, Parent), true
	}
	if down, ok := DownPath(a, b, -1); ok {
		return label(down, Child), true
	}

	ancestors := CommonAncestors(a, b)
	if len(ancestors) == 0 {
		return nil, false
	}
	ca := ancestors[0]
	upDist, ok := DistanceToAncestor(a, ca)
	if !ok {
		return nil, false
	}
	downDist, ok := DistanceToAncestor(b, ca)
	if !ok {
		return nil, false
	}
	up, ok := DownPath(ca, a, upDist)
	if !ok {
		return nil, false
	}
	down, ok := DownPath(ca, b, downDist)
	if !ok {
		return nil, false
	}
	slices.Reverse(up)

	// up runs a..ca, down runs ca..b
	path := []Step{start}
	for _, ind := range up[1 : len(up)-1] {
		path = append(path, Step{Individual: ind, Direction: Parent})
	}
	last := up[len(up)-2]
	if compact && len(down) > 1 && IsSibling(last, down[1]) {
		path = append(path, Step{Individual: down[1], Direction: Sibling})
	} else {
		path = append(path, Step{Individual: ca, Direction: Parent})
		path = append(path, Step{Individual: down[1], Direction: Child})
	}
	for _, ind := range down[2:] {
		path = append(path, Step{Individual: ind, Direction: Child})
	}
	return path, true
}

func label(inds []*gedcom.Individual, dir Direction) []Step {
	out := make([]Step, len(inds))
	for i, ind := range inds {
		out[i] = Step{Individual: ind, Direction: dir}
	}
	out[0].Direction = Start
	return out
}

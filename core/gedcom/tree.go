package gedcom

import (
	"bufio"
	"io"
)

// Tree is the result of a completed build: the record forest, the registry,
// and typed views of individuals and families. It is read-only and safe for
// concurrent readers.
type Tree struct {
	records     []*Record
	registry    *Registry
	individuals []*Individual
	families    []*Family
}

// Records returns every level-0 record in input order.
func (t *Tree) Records() []*Record { return t.records }

// Registry returns the xref registry.
func (t *Tree) Registry() *Registry { return t.registry }

// Individuals returns every INDI record in input order.
func (t *Tree) Individuals() []*Individual { return t.individuals }

// Families returns every FAM record in input order.
func (t *Tree) Families() []*Family { return t.families }

// Record looks up a record by xref.
func (t *Tree) Record(xref string) (*Record, bool) {
	return t.registry.Lookup(xref)
}

// Individual looks up an individual by xref.
func (t *Tree) Individual(xref string) (*Individual, bool) {
	rec, ok := t.registry.Lookup(xref)
	if !ok {
		return nil, false
	}
	return rec.Individual()
}

// Family looks up a family by xref.
func (t *Tree) Family(xref string) (*Family, bool) {
	rec, ok := t.registry.Lookup(xref)
	if !ok {
		return nil, false
	}
	return rec.Family()
}

// Dangling returns every unresolved reference in record order.
func (t *Tree) Dangling() []DanglingRef {
	var out []DanglingRef
	for _, rec := range t.records {
		out = append(out, rec.Dangling()...)
	}
	return out
}

// WriteTo re-emits the flat line representation.
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, rec := range t.records {
		var err error
		rec.Walk(func(l *Line) bool {
			if err != nil {
				return false
			}
			var c int
			c, err = bw.WriteString(l.String() + "\n")
			n += int64(c)
			return true
		})
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

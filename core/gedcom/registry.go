package gedcom

// Registry maps cross-reference identifiers to the records that declare them.
// It is populated by the Builder and never modified afterwards.
type Registry struct {
	records map[string]*Record
	lines   map[string]*Line
	order   []string
}

func newRegistry() *Registry {
	return &Registry{
		records: make(map[string]*Record),
		lines:   make(map[string]*Line),
	}
}

// declare registers a line under its xref and reports whether the xref was
// already taken. The new declaration always wins.
func (r *Registry) declare(l *Line) (duplicate bool) {
	_, duplicate = r.lines[l.xref]
	if !duplicate {
		r.order = append(r.order, l.xref)
	}
	r.lines[l.xref] = l
	if l.record != nil {
		r.records[l.xref] = l.record
	} else {
		delete(r.records, l.xref)
	}
	return duplicate
}

// Lookup returns the record declaring xref.
func (r *Registry) Lookup(xref string) (*Record, bool) {
	rec, ok := r.records[xref]
	return rec, ok
}

// LookupLine returns the line declaring xref, including nested declarations.
func (r *Registry) LookupLine(xref string) (*Line, bool) {
	l, ok := r.lines[xref]
	return l, ok
}

// Len returns the number of declared xrefs.
func (r *Registry) Len() int { return len(r.order) }

// Xrefs returns declared identifiers in first-declaration order.
func (r *Registry) Xrefs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

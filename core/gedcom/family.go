package gedcom

// Family is a FAM record linking up to two parents and any number of
// children. Members are references into the registry, never owned.
type Family struct {
	*Record

	husbands  []*Individual
	wives     []*Individual
	children  []*Individual
	marriages []Event
	others    []Event
	dangling  []DanglingRef
}

func (f *Family) resolve() {
	var d1, d2, d3 []DanglingRef
	f.husbands, d1 = referencedIndividuals(f.Record, "HUSB")
	f.wives, d2 = referencedIndividuals(f.Record, "WIFE")
	f.children, d3 = referencedIndividuals(f.Record, "CHIL")
	f.husbands = uniq(f.husbands)
	f.wives = uniq(f.wives)
	f.children = uniq(f.children)
	f.dangling = append(append(d1, d2...), d3...)

	f.marriages = f.Events("MARR")
	f.others = f.eventsOf(familyOtherEventTags...)
}

// Husbands returns every resolved HUSB reference.
func (f *Family) Husbands() []*Individual { return f.husbands }

// Husband returns the only husband, or nil.
func (f *Family) Husband() (*Individual, error) {
	return single(f.husbands, f.xref, "husband")
}

// Wives returns every resolved WIFE reference.
func (f *Family) Wives() []*Individual { return f.wives }

// Wife returns the only wife, or nil.
func (f *Family) Wife() (*Individual, error) {
	return single(f.wives, f.xref, "wife")
}

// Parents returns husbands then wives.
func (f *Family) Parents() []*Individual {
	out := make([]*Individual, 0, len(f.husbands)+len(f.wives))
	out = append(out, f.husbands...)
	out = append(out, f.wives...)
	return uniq(out)
}

// Children returns the CHIL references in input order.
func (f *Family) Children() []*Individual { return f.children }

// Married reports whether the family has a MARR line.
func (f *Family) Married() bool {
	return len(f.ChildrenWithTag("MARR")) > 0
}

// Marriages returns every MARR event.
func (f *Family) Marriages() []Event { return f.marriages }

// Marriage returns the only marriage event, or nil.
func (f *Family) Marriage() (Event, error) {
	return single(f.marriages, f.xref, "marriage")
}

// OtherEvents returns divorce, engagement and other family events.
func (f *Family) OtherEvents() []Event { return f.others }

// ParentFamilies returns the husbands' parent families followed by the wives'.
func (f *Family) ParentFamilies() []*Family {
	var out []*Family
	for _, h := range f.husbands {
		out = append(out, h.parentFamilies...)
	}
	for _, w := range f.wives {
		out = append(out, w.parentFamilies...)
	}
	return uniq(out)
}

// Dangling returns HUSB/WIFE/CHIL pointers that did not resolve to an individual.
func (f *Family) Dangling() []DanglingRef { return f.dangling }

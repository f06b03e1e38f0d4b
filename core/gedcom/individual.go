package gedcom

import (
	"strings"
)

// Individual is an INDI record. Parents, children and siblings are derived
// from family membership on every call; only the family edges are stored.
type Individual struct {
	*Record

	parentFamilies []*Family
	families       []*Family
	births         []Event
	deaths         []Event
	others         []Event
	dangling       []DanglingRef
}

func (i *Individual) resolve() {
	var d1, d2 []DanglingRef
	i.parentFamilies, d1 = referencedFamilies(i.Record, "FAMC")
	i.families, d2 = referencedFamilies(i.Record, "FAMS")
	i.parentFamilies = uniq(i.parentFamilies)
	i.families = uniq(i.families)
	i.dangling = append(d1, d2...)

	i.births = i.Events("BIRT")
	i.deaths = i.Events("DEAT")
	i.others = i.eventsOf(individualOtherEventTags...)
}

// Name is a personal name split into given name and surname.
type Name struct {
	Given   string
	Surname string
}

// String renders the name as "Given Surname".
func (n Name) String() string {
	return strings.TrimSpace(n.Given + " " + n.Surname)
}

// Sex returns the SEX value ("M", "F", ...), or "" when unspecified.
func (i *Individual) Sex() (string, error) {
	l, err := single(i.ChildrenWithTag("SEX"), i.xref, "sex")
	if err != nil || l == nil {
		return "", err
	}
	return l.value, nil
}

// Names returns every NAME of the individual in input order. Older files put
// the name in the NAME value with the surname between slashes; newer ones use
// GIVN and SURN sub-lines.
func (i *Individual) Names() []Name {
	var names []Name
	for _, l := range i.ChildrenWithTag("NAME") {
		var n Name
		if l.value != "" {
			parts := strings.Split(l.value, "/")
			n.Given = strings.TrimSpace(parts[0])
			if len(parts) > 1 {
				n.Surname = strings.TrimSpace(parts[1])
			}
		} else {
			if g, ok := l.FirstChildWithTag("GIVN"); ok {
				n.Given = g.value
			}
			if s, ok := l.FirstChildWithTag("SURN"); ok {
				n.Surname = s.value
			}
		}
		names = append(names, n)
	}
	return names
}

// Name returns the individual's only name.
func (i *Individual) Name() (Name, error) {
	return single(i.Names(), i.xref, "name")
}

// GivenName returns the given part of the individual's only name.
func (i *Individual) GivenName() (string, error) {
	n, err := i.Name()
	return n.Given, err
}

// Surname returns the surname part of the individual's only name.
func (i *Individual) Surname() (string, error) {
	n, err := i.Name()
	return n.Surname, err
}

// FathersName returns the father's given name (patronymic), or "" without a father.
func (i *Individual) FathersName() (string, error) {
	f, err := i.Father()
	if err != nil || f == nil {
		return "", err
	}
	return f.GivenName()
}

// ParentFamilies returns the families in which the individual is a child,
// in declaration order. Adopted children may have several.
func (i *Individual) ParentFamilies() []*Family { return i.parentFamilies }

// ParentFamily returns the only parent family.
func (i *Individual) ParentFamily() (*Family, error) {
	return single(i.parentFamilies, i.xref, "parent family")
}

// Families returns the families in which the individual is a spouse.
func (i *Individual) Families() []*Family { return i.families }

// Family returns the only spouse family.
func (i *Individual) Family() (*Family, error) {
	return single(i.families, i.xref, "family")
}

// Fathers returns the husbands of every parent family.
func (i *Individual) Fathers() []*Individual {
	var out []*Individual
	for _, f := range i.parentFamilies {
		out = append(out, f.husbands...)
	}
	return uniq(out)
}

// Father returns the only father.
func (i *Individual) Father() (*Individual, error) {
	return single(i.Fathers(), i.xref, "father")
}

// Mothers returns the wives of every parent family.
func (i *Individual) Mothers() []*Individual {
	var out []*Individual
	for _, f := range i.parentFamilies {
		out = append(out, f.wives...)
	}
	return uniq(out)
}

// Mother returns the only mother.
func (i *Individual) Mother() (*Individual, error) {
	return single(i.Mothers(), i.xref, "mother")
}

// Parents returns the parents of every parent family, husbands first.
func (i *Individual) Parents() []*Individual {
	var out []*Individual
	for _, f := range i.parentFamilies {
		out = append(out, f.Parents()...)
	}
	return uniq(out)
}

// Children returns the children of every spouse family in family order.
func (i *Individual) Children() []*Individual {
	var out []*Individual
	for _, f := range i.families {
		out = append(out, f.children...)
	}
	return uniq(out)
}

// Siblings returns the other children of every parent family, half-siblings included.
func (i *Individual) Siblings() []*Individual {
	var out []*Individual
	for _, f := range i.parentFamilies {
		for _, c := range f.children {
			if c != i {
				out = append(out, c)
			}
		}
	}
	return uniq(out)
}

// Births returns every BIRT event.
func (i *Individual) Births() []Event { return i.births }

// Birth returns the only birth event, or nil.
func (i *Individual) Birth() (Event, error) {
	return single(i.births, i.xref, "birth")
}

// BirthYear returns the year of the only birth event, or NoYear.
func (i *Individual) BirthYear() (int, error) {
	return eventYear(i.Birth())
}

// Deaths returns every DEAT event.
func (i *Individual) Deaths() []Event { return i.deaths }

// Death returns the only death event, or nil.
func (i *Individual) Death() (Event, error) {
	return single(i.deaths, i.xref, "death")
}

// DeathYear returns the year of the only death event, or NoYear.
func (i *Individual) DeathYear() (int, error) {
	return eventYear(i.Death())
}

// Alive reports whether the individual lacks any death event.
func (i *Individual) Alive() bool { return len(i.deaths) == 0 }

// Deceased reports whether the individual has a death event.
func (i *Individual) Deceased() bool { return !i.Alive() }

// OtherEvents returns life events other than birth and death
// (baptism, burial, census, emigration, ...).
func (i *Individual) OtherEvents() []Event { return i.others }

// Marriages returns the marriage events of every spouse family.
func (i *Individual) Marriages() []Event {
	var out []Event
	for _, f := range i.families {
		out = append(out, f.marriages...)
	}
	return out
}

// MarriageYears returns the years of marriage events that carry one.
func (i *Individual) MarriageYears() []int {
	var out []int
	for _, m := range i.Marriages() {
		if y, ok := Year(m); ok {
			out = append(out, y)
		}
	}
	return out
}

// Dangling returns FAMC/FAMS pointers that did not resolve to a family.
func (i *Individual) Dangling() []DanglingRef { return i.dangling }

func eventYear(e Event, err error) (int, error) {
	if err != nil {
		return NoYear, err
	}
	y, _ := Year(e)
	return y, nil
}

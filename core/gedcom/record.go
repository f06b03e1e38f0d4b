package gedcom

import (
	"github.com/FocuswithJustin/pedigree/core/errors"
)

// Kind is the closed set of record variants, chosen from the level-0 tag.
type Kind int

// Record kinds.
const (
	KindGeneric Kind = iota
	KindMultimedia
	KindNote
	KindRepository
	KindSource
	KindSubmission
	KindSubmitter
	KindIndividual
	KindFamily
)

var kindNames = map[Kind]string{
	KindGeneric:    "Record",
	KindMultimedia: "Multimedia",
	KindNote:       "Note",
	KindRepository: "Repository",
	KindSource:     "Source",
	KindSubmission: "Submission",
	KindSubmitter:  "Submitter",
	KindIndividual: "Individual",
	KindFamily:     "Family",
}

var kindByTag = map[string]Kind{
	"OBJE": KindMultimedia,
	"NOTE": KindNote,
	"REPO": KindRepository,
	"SOUR": KindSource,
	"SUBN": KindSubmission,
	"SUBM": KindSubmitter,
	"INDI": KindIndividual,
	"FAM":  KindFamily,
}

// String returns the variant name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Record"
}

// KindForTag returns the record kind a level-0 tag constructs.
func KindForTag(tag string) Kind {
	if k, ok := kindByTag[tag]; ok {
		return k
	}
	return KindGeneric
}

// DanglingRef is a pointer-valued sub-line whose target could not be used:
// either nothing declares the xref or the declared record has the wrong kind.
type DanglingRef struct {
	Owner  string // xref of the record holding the pointer
	Tag    string // tag of the pointer line (FAMC, HUSB, ...)
	Xref   string // the unresolved value
	Reason string
}

// Dangling reasons.
const (
	ReasonUndeclared = "undeclared"
	ReasonWrongKind  = "wrong kind"
)

// Record is a level-0 line together with its variant payload.
type Record struct {
	*Line
	kind       Kind
	registry   *Registry
	events     EventSource
	individual *Individual
	family     *Family
}

func newRecord(l *Line, reg *Registry, events EventSource) *Record {
	rec := &Record{
		Line:     l,
		kind:     KindForTag(l.tag),
		registry: reg,
		events:   events,
	}
	l.record = rec
	switch rec.kind {
	case KindIndividual:
		rec.individual = &Individual{Record: rec}
	case KindFamily:
		rec.family = &Family{Record: rec}
	}
	return rec
}

// shadowed reports whether a later declaration of the same xref replaced r.
func (r *Record) shadowed() bool {
	if r.xref == "" {
		return false
	}
	winner, ok := r.registry.Lookup(r.xref)
	return !ok || winner != r
}

// Kind returns the record variant.
func (r *Record) Kind() Kind { return r.kind }

// Type returns the variant name ("Individual", "Family", "Note", ...).
func (r *Record) Type() string { return r.kind.String() }

// Individual returns the individual payload when the record is one.
func (r *Record) Individual() (*Individual, bool) {
	return r.individual, r.individual != nil
}

// Family returns the family payload when the record is one.
func (r *Record) Family() (*Family, bool) {
	return r.family, r.family != nil
}

// ReferencedRecords dereferences every child line with the tag through the
// registry. Unresolvable pointers are returned separately, never dropped silently.
func (r *Record) ReferencedRecords(tag string) ([]*Record, []DanglingRef) {
	var (
		found    []*Record
		dangling []DanglingRef
	)
	for _, c := range r.ChildrenWithTag(tag) {
		target, ok := r.registry.Lookup(c.value)
		if !ok {
			dangling = append(dangling, DanglingRef{Owner: r.xref, Tag: tag, Xref: c.value, Reason: ReasonUndeclared})
			continue
		}
		found = append(found, target)
	}
	return found, dangling
}

// Events returns the events of the given tag through the event source.
func (r *Record) Events(tag string) []Event {
	return r.events.Events(r.Line, tag)
}

func (r *Record) eventsOf(tags ...string) []Event {
	var out []Event
	for _, tag := range tags {
		out = append(out, r.Events(tag)...)
	}
	return out
}

// resolve runs the one-time post-parse step for the record's variant.
func (r *Record) resolve() {
	switch r.kind {
	case KindIndividual:
		r.individual.resolve()
	case KindFamily:
		r.family.resolve()
	}
}

// Dangling returns the unresolved references found during resolution.
func (r *Record) Dangling() []DanglingRef {
	switch {
	case r.individual != nil:
		return r.individual.dangling
	case r.family != nil:
		return r.family.dangling
	}
	return nil
}

func referencedIndividuals(r *Record, tag string) ([]*Individual, []DanglingRef) {
	recs, dangling := r.ReferencedRecords(tag)
	var out []*Individual
	for _, rec := range recs {
		if ind, ok := rec.Individual(); ok {
			out = append(out, ind)
			continue
		}
		dangling = append(dangling, DanglingRef{Owner: r.xref, Tag: tag, Xref: rec.xref, Reason: ReasonWrongKind})
	}
	return out, dangling
}

func referencedFamilies(r *Record, tag string) ([]*Family, []DanglingRef) {
	recs, dangling := r.ReferencedRecords(tag)
	var out []*Family
	for _, rec := range recs {
		if fam, ok := rec.Family(); ok {
			out = append(out, fam)
			continue
		}
		dangling = append(dangling, DanglingRef{Owner: r.xref, Tag: tag, Xref: rec.xref, Reason: ReasonWrongKind})
	}
	return out, dangling
}

// single returns the only element, the zero value for none, and an
// AmbiguousError for more than one.
func single[T any](items []T, subject, what string) (T, error) {
	var zero T
	switch len(items) {
	case 0:
		return zero, nil
	case 1:
		return items[0], nil
	}
	return zero, errors.NewAmbiguous(subject, what, len(items))
}

// uniq drops repeated pointers, keeping first occurrences.
func uniq[T comparable](items []T) []T {
	if len(items) < 2 {
		return items
	}
	seen := make(map[T]struct{}, len(items))
	out := items[:0:0]
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

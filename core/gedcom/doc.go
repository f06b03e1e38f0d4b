// Package gedcom rebuilds the record graph of a genealogical line file.
//
// Each input line has the form
//
//	level [xref] tag [value]
//
// Lines nest by level: a line at level n+1 belongs to the closest preceding
// line at level n. Lines at level 0 are records. A record may declare an
// xref (for example @I1@) that other lines use as a pointer value.
//
// # Two-Phase Build
//
// Building is strictly sequential:
//
//   - Phase 1: the Builder consumes entries in order, maintains a stack of
//     open lines, attaches each entry to its parent and registers declared
//     xrefs in the Registry.
//   - Phase 2: Finish resolves every record exactly once. Individuals resolve
//     their FAMC/FAMS pointers and events; families resolve HUSB/WIFE/CHIL.
//
// After Finish the Tree is immutable and every accessor is a pure read, so
// a Tree may be shared by concurrent readers without locking.
//
// # Record Kinds
//
// The level-0 tag selects one of a closed set of kinds: Individual (INDI),
// Family (FAM), Multimedia (OBJE), Note (NOTE), Repository (REPO),
// Source (SOUR), Submission (SUBN), Submitter (SUBM) or Generic.
//
// # Failure Policy
//
//   - Singular accessors (Father, ParentFamily, Birth, ...) return an
//     AmbiguousError when more than one candidate exists and a nil value
//     when none does. Plural accessors never fail.
//   - Pointers whose target is undeclared, or of the wrong kind, are left out
//     of the relationship accessors and reported through Dangling.
//   - Level skips, orphaned sub-lines and duplicate xrefs fail the build
//     with a MalformedError unless WithLenient is set.
//
// # Example
//
//	tree, err := gedcom.Parse(f)
//	if err != nil {
//	    return err
//	}
//	ind, _ := tree.Individual("@I1@")
//	father, err := ind.Father()
package gedcom

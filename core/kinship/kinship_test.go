package kinship

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/pedigree/core/errors"
	"github.com/FocuswithJustin/pedigree/core/gedcom"
)

// Three generations plus cousins:
//
//	G1 + G2 (F1)
//	 ├── P1 + S1 (F2) ── K1, K2
//	 └── P2 + S2 (F3) ── K3
//	U1 unrelated
const cousinsFixture = `0 @G1@ INDI
1 FAMS @F1@
0 @G2@ INDI
1 FAMS @F1@
0 @P1@ INDI
1 FAMC @F1@
1 FAMS @F2@
0 @P2@ INDI
1 FAMC @F1@
1 FAMS @F3@
0 @S1@ INDI
1 FAMS @F2@
0 @S2@ INDI
1 FAMS @F3@
0 @K1@ INDI
1 FAMC @F2@
0 @K2@ INDI
1 FAMC @F2@
0 @K3@ INDI
1 FAMC @F3@
0 @U1@ INDI
0 @F1@ FAM
1 HUSB @G1@
1 WIFE @G2@
1 CHIL @P1@
1 CHIL @P2@
0 @F2@ FAM
1 HUSB @P1@
1 WIFE @S1@
1 CHIL @K1@
1 CHIL @K2@
0 @F3@ FAM
1 HUSB @P2@
1 WIFE @S2@
1 CHIL @K3@
`

// A1 and A2 are each other's parents through F1 and F2.
const cycleFixture = `0 @A1@ INDI
1 FAMC @F1@
1 FAMS @F2@
0 @A2@ INDI
1 FAMC @F2@
1 FAMS @F1@
0 @B1@ INDI
0 @F1@ FAM
1 HUSB @A2@
1 CHIL @A1@
0 @F2@ FAM
1 HUSB @A1@
1 CHIL @A2@
`

type fixture struct {
	t    *testing.T
	tree *gedcom.Tree
}

func load(t *testing.T, src string) fixture {
	t.Helper()
	tree, err := gedcom.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return fixture{t: t, tree: tree}
}

func (f fixture) ind(xref string) *gedcom.Individual {
	f.t.Helper()
	ind, ok := f.tree.Individual(xref)
	if !ok {
		f.t.Fatalf("individual %s not found", xref)
	}
	return ind
}

func (f fixture) fam(xref string) *gedcom.Family {
	f.t.Helper()
	fam, ok := f.tree.Family(xref)
	if !ok {
		f.t.Fatalf("family %s not found", xref)
	}
	return fam
}

func xrefs[T interface{ Xref() string }](items []T) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Xref()
	}
	return strings.Join(out, " ")
}

func render(path []Step) string {
	out := make([]string, len(path))
	for i, s := range path {
		out[i] = s.Individual.Xref() + ":" + s.Direction.String()
	}
	return strings.Join(out, " ")
}

func TestIsAncestor(t *testing.T) {
	f := load(t, cousinsFixture)

	tests := []struct {
		ind, candidate string
		want           bool
	}{
		{"@K1@", "@P1@", true},
		{"@K1@", "@S1@", true},
		{"@K1@", "@G1@", true},
		{"@K3@", "@G2@", true},
		{"@K1@", "@P2@", false},
		{"@K1@", "@K1@", false},
		{"@G1@", "@K1@", false},
		{"@K1@", "@U1@", false},
	}

	for _, tt := range tests {
		t.Run(tt.ind+"_"+tt.candidate, func(t *testing.T) {
			if got := IsAncestor(f.ind(tt.ind), f.ind(tt.candidate)); got != tt.want {
				t.Errorf("IsAncestor(%s, %s) = %v, want %v", tt.ind, tt.candidate, got, tt.want)
			}
		})
	}

	for _, ind := range f.tree.Individuals() {
		for _, p := range ind.Parents() {
			if !IsAncestor(ind, p) {
				t.Errorf("parent %s of %s is not an ancestor", p.Xref(), ind.Xref())
			}
		}
	}
}

func TestDistanceToAncestor(t *testing.T) {
	f := load(t, cousinsFixture)

	tests := []struct {
		ind, ancestor string
		want          int
		ok            bool
	}{
		{"@K1@", "@K1@", 0, true},
		{"@K1@", "@P1@", 1, true},
		{"@K1@", "@G1@", 2, true},
		{"@K1@", "@P2@", 0, false},
		{"@G1@", "@K1@", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.ind+"_"+tt.ancestor, func(t *testing.T) {
			got, ok := DistanceToAncestor(f.ind(tt.ind), f.ind(tt.ancestor))
			if got != tt.want || ok != tt.ok {
				t.Errorf("DistanceToAncestor = %d, %v; want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}

	for _, ind := range f.tree.Individuals() {
		if d, ok := DistanceToAncestor(ind, ind); !ok || d != 0 {
			t.Errorf("DistanceToAncestor(%s, self) = %d, %v", ind.Xref(), d, ok)
		}
	}
}

func TestCycleTerminates(t *testing.T) {
	f := load(t, cycleFixture)
	a1, a2, b1 := f.ind("@A1@"), f.ind("@A2@"), f.ind("@B1@")

	if !IsAncestor(a1, a2) || !IsAncestor(a2, a1) {
		t.Error("cycle members should be mutual ancestors")
	}
	if IsAncestor(a1, b1) {
		t.Error("B1 is not an ancestor of A1")
	}
	if _, ok := DistanceToAncestor(a1, b1); ok {
		t.Error("distance to unrelated individual should not be found")
	}
	if got := AncestorFamilies(a1); len(got) != 2 {
		t.Errorf("AncestorFamilies = %v, want both families once", got)
	}
	if IsRelative(a1, b1) {
		t.Error("A1 and B1 are not related")
	}
	if _, ok := DownPath(a1, b1, -1); ok {
		t.Error("DownPath to unrelated individual should fail")
	}
	if _, ok := PathToRelative(a1, b1, false); ok {
		t.Error("PathToRelative to unrelated individual should fail")
	}
}

func TestSiblingsCommonAncestors(t *testing.T) {
	f := load(t, cousinsFixture)
	k1, k2 := f.ind("@K1@"), f.ind("@K2@")

	if !IsSibling(k1, k2) {
		t.Error("K1 and K2 should be siblings")
	}
	if IsSibling(k1, k1) {
		t.Error("an individual is not its own sibling")
	}

	fams := CommonAncestorFamilies(k1, k2)
	if len(fams) != 1 || fams[0].Family != f.fam("@F2@") || fams[0].Distance != 0 {
		t.Errorf("CommonAncestorFamilies = %+v, want [F2 at 0]", fams)
	}
	reverse := CommonAncestorFamilies(k2, k1)
	if len(reverse) != 1 || reverse[0].Family != fams[0].Family {
		t.Errorf("CommonAncestorFamilies not symmetric: %+v", reverse)
	}

	if got := xrefs(CommonAncestors(k1, k2)); got != "@P1@ @S1@" {
		t.Errorf("CommonAncestors = %q, want parents of F2", got)
	}
	if _, err := CommonAncestor(k1, k2); !errors.Is(err, errors.ErrAmbiguous) {
		t.Errorf("CommonAncestor err = %v, want ambiguous", err)
	}
}

func TestCousinsCommonAncestors(t *testing.T) {
	f := load(t, cousinsFixture)
	k1, k3 := f.ind("@K1@"), f.ind("@K3@")

	fams := CommonAncestorFamilies(k1, k3)
	if len(fams) != 1 || fams[0].Family != f.fam("@F1@") || fams[0].Distance != 1 {
		t.Errorf("CommonAncestorFamilies = %+v, want [F1 at 1]", fams)
	}
	if got := xrefs(CommonAncestors(k1, k3)); got != "@G1@ @G2@" {
		t.Errorf("CommonAncestors = %q", got)
	}
	if !IsRelative(k1, k3) {
		t.Error("cousins should be relatives")
	}
	if IsRelative(k1, f.ind("@U1@")) {
		t.Error("U1 is unrelated")
	}
	if got := CommonAncestors(k1, f.ind("@U1@")); len(got) != 0 {
		t.Errorf("CommonAncestors with unrelated = %v", got)
	}
	if ca, err := CommonAncestor(k1, f.ind("@U1@")); ca != nil || err != nil {
		t.Errorf("CommonAncestor with unrelated = %v, %v; want nil, nil", ca, err)
	}
}

func TestCommonAncestorSingle(t *testing.T) {
	src := `0 @M@ INDI
1 FAMS @F0@
0 @P@ INDI
1 FAMC @F0@
1 FAMS @F1@
0 @Q@ INDI
1 FAMC @F0@
1 FAMS @F2@
0 @X@ INDI
1 FAMC @F1@
0 @Y@ INDI
1 FAMC @F2@
0 @F0@ FAM
1 WIFE @M@
1 CHIL @P@
1 CHIL @Q@
0 @F1@ FAM
1 HUSB @P@
1 CHIL @X@
0 @F2@ FAM
1 HUSB @Q@
1 CHIL @Y@
`
	f := load(t, src)
	x, y := f.ind("@X@"), f.ind("@Y@")

	ca, err := CommonAncestor(x, y)
	if err != nil {
		t.Fatalf("CommonAncestor failed: %v", err)
	}
	if ca != f.ind("@M@") {
		t.Errorf("CommonAncestor = %v, want @M@", ca)
	}
	path, ok := PathToRelative(x, y, true)
	if !ok {
		t.Fatal("no path between cousins")
	}
	if got := render(path); got != "@X@:start @P@:parent @Q@:sibling @Y@:child" {
		t.Errorf("compact path = %q", got)
	}
}

func TestFamilyAncestors(t *testing.T) {
	f := load(t, cousinsFixture)

	got := FamilyAncestors(f.fam("@F2@"))
	if len(got) != 1 || got[0].Family != f.fam("@F1@") || got[0].Distance != 0 {
		t.Errorf("FamilyAncestors(F2) = %+v", got)
	}
	if got := FamilyAncestors(f.fam("@F1@")); len(got) != 0 {
		t.Errorf("FamilyAncestors(F1) = %+v, want none", got)
	}
	if !FamilyIsRelative(f.fam("@F3@"), f.ind("@K1@")) {
		t.Error("F3's husband is K1's uncle")
	}
}

func TestDownPath(t *testing.T) {
	f := load(t, cousinsFixture)
	g1, k1 := f.ind("@G1@"), f.ind("@K1@")

	tests := []struct {
		name  string
		limit int
		want  string
		ok    bool
	}{
		{"unbounded", -1, "@G1@ @P1@ @K1@", true},
		{"exact", 2, "@G1@ @P1@ @K1@", true},
		{"too short", 1, "", false},
		{"zero", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DownPath(g1, k1, tt.limit)
			if ok != tt.ok || xrefs(got) != tt.want {
				t.Errorf("DownPath = %q, %v; want %q, %v", xrefs(got), ok, tt.want, tt.ok)
			}
		})
	}

	if got, ok := DownPath(k1, k1, 0); !ok || xrefs(got) != "@K1@" {
		t.Errorf("DownPath(self) = %q, %v", xrefs(got), ok)
	}
}

func TestPathToRelative(t *testing.T) {
	f := load(t, cousinsFixture)

	tests := []struct {
		name    string
		a, b    string
		compact bool
		want    string
	}{
		{"self", "@K1@", "@K1@", false, "@K1@:start"},
		{"parent", "@K1@", "@P1@", false, "@K1@:start @P1@:parent"},
		{"child", "@P1@", "@K1@", false, "@P1@:start @K1@:child"},
		{"grandparent", "@K1@", "@G1@", false, "@K1@:start @P1@:parent @G1@:parent"},
		{"grandchild", "@G1@", "@K3@", false, "@G1@:start @P2@:child @K3@:child"},
		{"sibling", "@K1@", "@K2@", false, "@K1@:start @P1@:parent @K2@:child"},
		{"sibling compact", "@K1@", "@K2@", true, "@K1@:start @K2@:sibling"},
		{"uncle", "@K1@", "@P2@", false, "@K1@:start @P1@:parent @G1@:parent @P2@:child"},
		{"uncle compact", "@K1@", "@P2@", true, "@K1@:start @P1@:parent @P2@:sibling"},
		{"cousin", "@K1@", "@K3@", false, "@K1@:start @P1@:parent @G1@:parent @P2@:child @K3@:child"},
		{"cousin compact", "@K1@", "@K3@", true, "@K1@:start @P1@:parent @P2@:sibling @K3@:child"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := PathToRelative(f.ind(tt.a), f.ind(tt.b), tt.compact)
			if !ok {
				t.Fatalf("PathToRelative(%s, %s) found nothing", tt.a, tt.b)
			}
			if got := render(path); got != tt.want {
				t.Errorf("PathToRelative(%s, %s) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}

	if _, ok := PathToRelative(f.ind("@K1@"), f.ind("@U1@"), false); ok {
		t.Error("path to unrelated individual should not be found")
	}
}

// H1 and H2 share their father M through different marriages, so the
// nearest common ancestor family is M's parent family FG.
const halfSiblingsFixture = `0 @GG@ INDI
1 FAMS @FG@
0 @M@ INDI
1 FAMC @FG@
1 FAMS @FA@
1 FAMS @FB@
0 @W1@ INDI
1 FAMS @FA@
0 @W2@ INDI
1 FAMS @FB@
0 @H1@ INDI
1 FAMC @FA@
0 @H2@ INDI
1 FAMC @FB@
0 @FG@ FAM
1 HUSB @GG@
1 CHIL @M@
0 @FA@ FAM
1 HUSB @M@
1 WIFE @W1@
1 CHIL @H1@
0 @FB@ FAM
1 HUSB @M@
1 WIFE @W2@
1 CHIL @H2@
`

func TestPathCompactFallsBackThroughSameChild(t *testing.T) {
	f := load(t, halfSiblingsFixture)
	h1, h2 := f.ind("@H1@"), f.ind("@H2@")

	if got := xrefs(CommonAncestors(h1, h2)); got != "@GG@" {
		t.Fatalf("CommonAncestors = %q, want @GG@", got)
	}

	want := "@H1@:start @M@:parent @GG@:parent @M@:child @H2@:child"
	for _, compact := range []bool{false, true} {
		path, ok := PathToRelative(h1, h2, compact)
		if !ok {
			t.Fatalf("compact=%t: no path", compact)
		}
		if got := render(path); got != want {
			t.Errorf("compact=%t: path = %q, want %q", compact, got, want)
		}
	}
}

func TestParentChildPath(t *testing.T) {
	src := `0 @A@ INDI
1 FAMS @F@
0 @B@ INDI
1 FAMC @F@
0 @F@ FAM
1 HUSB @A@
1 CHIL @B@
`
	f := load(t, src)
	a, b := f.ind("@A@"), f.ind("@B@")

	father, err := b.Father()
	if err != nil || father != a {
		t.Fatalf("Father = %v, %v; want @A@", father, err)
	}
	path, ok := PathToRelative(b, a, false)
	if !ok {
		t.Fatal("no path")
	}
	if got := render(path); got != "@B@:start @A@:parent" {
		t.Errorf("path = %q", got)
	}
}

func TestDirectionString(t *testing.T) {
	tests := []struct {
		d    Direction
		want string
	}{
		{Start, "start"},
		{Parent, "parent"},
		{Child, "child"},
		{Sibling, "sibling"},
		{Direction(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("Direction(%d).String() = %q, want %q", tt.d, got, tt.want)
		}
	}
}

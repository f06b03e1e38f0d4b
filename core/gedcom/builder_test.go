package gedcom

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/FocuswithJustin/pedigree/core/errors"
)

const familyFixture = `0 HEAD
1 CHAR UTF-8
0 @I1@ INDI
1 NAME Adam /Smith/
1 SEX M
1 BIRT
2 DATE 12 MAR 1901
2 PLAC Springfield
1 FAMS @F1@
0 @I2@ INDI
1 NAME Beth /Jones/
1 SEX F
1 FAMS @F1@
0 @I3@ INDI
1 NAME Carl /Smith/
1 BIRT
2 DATE ABT 1930
1 DEAT
2 DATE 1999
1 FAMC @F1@
0 @I4@ INDI
1 NAME Dora /Smith/
1 FAMC @F1@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
1 CHIL @I4@
1 MARR
2 DATE 1925
0 TRLR
`

func mustParse(t *testing.T, src string, opts ...Option) *Tree {
	t.Helper()
	tree, err := Parse(strings.NewReader(src), opts...)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return tree
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestBuildRecords(t *testing.T) {
	tree := mustParse(t, familyFixture)

	if got := len(tree.Records()); got != 7 {
		t.Fatalf("records = %d, want 7", got)
	}
	if got := len(tree.Individuals()); got != 4 {
		t.Errorf("individuals = %d, want 4", got)
	}
	if got := len(tree.Families()); got != 1 {
		t.Errorf("families = %d, want 1", got)
	}

	kinds := []Kind{KindGeneric, KindIndividual, KindIndividual, KindIndividual, KindIndividual, KindFamily, KindGeneric}
	for i, rec := range tree.Records() {
		if rec.Kind() != kinds[i] {
			t.Errorf("record %d kind = %v, want %v", i, rec.Kind(), kinds[i])
		}
	}
}

func TestRegistryIdentity(t *testing.T) {
	tree := mustParse(t, familyFixture)

	for _, rec := range tree.Records() {
		if rec.Xref() == "" {
			continue
		}
		got, ok := tree.Registry().Lookup(rec.Xref())
		if !ok {
			t.Errorf("xref %s not registered", rec.Xref())
			continue
		}
		if got != rec {
			t.Errorf("registry entry for %s is not the declared record", rec.Xref())
		}
	}
	if got := tree.Registry().Xrefs(); strings.Join(got, ",") != "@I1@,@I2@,@I3@,@I4@,@F1@" {
		t.Errorf("xrefs = %v", got)
	}
}

func TestChildrenLevelsAndOrder(t *testing.T) {
	tree := mustParse(t, familyFixture)

	for _, rec := range tree.Records() {
		rec.Walk(func(l *Line) bool {
			for _, c := range l.Children() {
				if c.Level() != l.Level()+1 {
					t.Errorf("%s child %s at level %d, want %d", l.Tag(), c.Tag(), c.Level(), l.Level()+1)
				}
				if c.Parent() != l {
					t.Errorf("%s child %s has wrong parent", l.Tag(), c.Tag())
				}
			}
			return true
		})
	}

	fam, _ := tree.Family("@F1@")
	var tags []string
	for _, c := range fam.Line.Children() {
		tags = append(tags, c.Tag())
	}
	if got := strings.Join(tags, " "); got != "HUSB WIFE CHIL CHIL MARR" {
		t.Errorf("family children = %q", got)
	}
}

func TestBuildMalformed(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		reason  string
	}{
		{
			name:    "level skip",
			entries: []Entry{{Level: 0, Tag: "INDI"}, {Level: 2, Tag: "DATE"}},
			reason:  "level jumps from 0 to 2",
		},
		{
			name:    "orphan line",
			entries: []Entry{{Level: 1, Tag: "NAME"}},
			reason:  "no enclosing record",
		},
		{
			name:    "duplicate xref",
			entries: []Entry{{Level: 0, Xref: "@I1@", Tag: "INDI"}, {Level: 0, Xref: "@I1@", Tag: "INDI"}},
			reason:  "duplicate xref @I1@",
		},
		{
			name:    "negative level",
			entries: []Entry{{Level: -1, Tag: "INDI"}},
			reason:  "negative level",
		},
		{
			name:    "missing tag",
			entries: []Entry{{Level: 0}},
			reason:  "missing tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.entries, WithLogger(discardLogger()))
			if err == nil {
				t.Fatal("expected error")
			}
			var me *errors.MalformedError
			if !errors.As(err, &me) {
				t.Fatalf("error %T is not a MalformedError: %v", err, err)
			}
			if me.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", me.Reason, tt.reason)
			}
			if !errors.Is(err, errors.ErrMalformed) {
				t.Error("error does not match ErrMalformed")
			}
		})
	}
}

func TestBuildLenient(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	entries := []Entry{
		{Level: 1, Tag: "NOTE", Value: "stray"},
		{Level: 0, Xref: "@I1@", Tag: "INDI"},
		{Level: 2, Tag: "DATE", Value: "1900"},
		{Level: 0, Xref: "@I1@", Tag: "INDI"},
		{Level: 1, Tag: "SEX", Value: "F"},
	}
	tree, err := Build(entries, WithLenient(true), WithLogger(logger))
	if err != nil {
		t.Fatalf("lenient build failed: %v", err)
	}

	// the first @I1@ and the DATE repaired into it are shadowed
	if got := len(tree.Records()); got != 2 {
		t.Fatalf("records = %d, want 2", got)
	}
	if got := len(tree.Individuals()); got != 1 {
		t.Fatalf("individuals = %d, want 1", got)
	}

	ind, ok := tree.Individual("@I1@")
	if !ok {
		t.Fatal("@I1@ not found")
	}
	if ind.Record != tree.Records()[1] || ind != tree.Individuals()[0] {
		t.Error("duplicate xref should resolve to the last declaration")
	}
	if sex, _ := ind.Sex(); sex != "F" {
		t.Errorf("sex = %q, want F", sex)
	}
	if _, ok := ind.FirstChildWithTag("DATE"); ok {
		t.Error("lines of the shadowed declaration leaked into the winner")
	}
	if got := tree.Registry().Len(); got != 1 {
		t.Errorf("registry = %d xrefs, want 1", got)
	}

	if n := strings.Count(logs.String(), "build_repair"); n != 3 {
		t.Errorf("logged %d repairs, want 3", n)
	}
}

func TestBuilderSticky(t *testing.T) {
	b := NewBuilder(WithLogger(discardLogger()))
	if err := b.Add(Entry{Level: 3, Tag: "X"}); err == nil {
		t.Fatal("expected error for orphan line")
	}
	if err := b.Add(Entry{Level: 0, Tag: "INDI"}); err == nil {
		t.Error("builder should stay failed after an error")
	}
	if _, err := b.Finish(); err == nil {
		t.Error("Finish should report the earlier error")
	}
}

func TestBuilderFinishTwice(t *testing.T) {
	b := NewBuilder()
	if err := b.Add(Entry{Level: 0, Tag: "HEAD"}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Finish(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Finish(); err == nil {
		t.Error("second Finish should fail")
	}
	if err := b.Add(Entry{Level: 0, Tag: "TRLR"}); err == nil {
		t.Error("Add after Finish should fail")
	}
}

func TestWriteToRoundTrip(t *testing.T) {
	tree := mustParse(t, familyFixture)

	var buf bytes.Buffer
	n, err := tree.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo returned %d, wrote %d", n, buf.Len())
	}
	if buf.String() != familyFixture {
		t.Errorf("round trip mismatch:\n%s", buf.String())
	}
}

func TestBuildLenientSkippedLevelAttachesToDeepest(t *testing.T) {
	entries := []Entry{
		{Level: 0, Xref: "@I1@", Tag: "INDI"},
		{Level: 1, Tag: "BIRT"},
		{Level: 3, Tag: "DATE", Value: "1900"},
	}
	tree, err := Build(entries, WithLenient(true), WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("lenient build failed: %v", err)
	}
	birt := tree.Records()[0].Children()[0]
	if len(birt.Children()) != 1 || birt.Children()[0].Tag() != "DATE" {
		t.Error("skipped-level line should attach to the deepest open line")
	}
}

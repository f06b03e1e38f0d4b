package gedxml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/FocuswithJustin/pedigree/core/errors"
	"github.com/FocuswithJustin/pedigree/core/gedcom"
)

const source = `0 HEAD
1 CHAR UTF-8
0 @I1@ INDI
1 NAME Ada /Byron/
1 BIRT
2 DATE 10 DEC 1815
2 PLAC London & <Middlesex>
1 FAMC @F1@
0 @F1@ FAM
1 CHIL @I1@
0 TRLR
`

func mustTree(t *testing.T) *gedcom.Tree {
	t.Helper()
	tree, err := gedcom.Parse(strings.NewReader(source))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return tree
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(mustTree(t), &buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<gedcom>`,
		`xref="@I1@"`,
		`tag="INDI"`,
		`value="Ada /Byron/"`,
		`</gedcom>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<Middlesex>") {
		t.Error("attribute values must be escaped")
	}
}

func TestRoundTrip(t *testing.T) {
	tree := mustTree(t)

	var buf bytes.Buffer
	if err := Encode(tree, &buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	back, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var want, got bytes.Buffer
	if _, err := tree.WriteTo(&want); err != nil {
		t.Fatal(err)
	}
	if _, err := back.WriteTo(&got); err != nil {
		t.Fatal(err)
	}
	if got.String() != want.String() {
		t.Errorf("round trip mismatch:\ngot:\n%s\nwant:\n%s", got.String(), want.String())
	}

	ind, ok := back.Individual("@I1@")
	if !ok {
		t.Fatal("@I1@ missing after round trip")
	}
	if pf := ind.ParentFamilies(); len(pf) != 1 || pf[0].Xref() != "@F1@" {
		t.Errorf("ParentFamilies = %v", pf)
	}
}

func TestDecode(t *testing.T) {
	input := `<?xml version="1.0"?>
<gedcom>
  <line tag="HEAD"/>
  <line level="0" xref="@I1@" tag="INDI">
    <line tag="NAME" value="Ada">
      <line tag="GIVN" value="Ada"/>
    </line>
    <line tag="SEX" value="F"/>
  </line>
</gedcom>`

	entries, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := []gedcom.Entry{
		{Level: 0, Tag: "HEAD"},
		{Level: 0, Xref: "@I1@", Tag: "INDI"},
		{Level: 1, Tag: "NAME", Value: "Ada"},
		{Level: 2, Tag: "GIVN", Value: "Ada"},
		{Level: 1, Tag: "SEX", Value: "F"},
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %+v, want %+v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"wrong root", `<tree><line tag="HEAD"/></tree>`},
		{"missing tag", `<gedcom><line level="0"/></gedcom>`},
		{"level mismatch", `<gedcom><line tag="INDI"><line level="3" tag="NAME"/></line></gedcom>`},
		{"bad level", `<gedcom><line level="x" tag="INDI"/></gedcom>`},
		{"not xml", `<gedcom><line`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			var pe *errors.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a ParseError: %v", err, err)
			}
			if pe.Format != "XML" {
				t.Errorf("Format = %q, want XML", pe.Format)
			}
		})
	}
}

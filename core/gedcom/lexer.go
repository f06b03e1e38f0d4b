package gedcom

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/pedigree/core/errors"
)

// Entry is one flat input tuple before the hierarchy is rebuilt.
type Entry struct {
	Level int
	Xref  string
	Tag   string
	Value string
}

// lineGrammar is the participle grammar for a single line.
// Examples: "0 @I1@ INDI", "1 NAME John /Smith/", "2 DATE 1 JAN 1900"
//
//nolint:govet // participle grammar tags are not standard struct tags
type lineGrammar struct {
	Level int    `@Level`
	Xref  string `@Xref?`
	Tag   string `@Tag`
	Value string `( Delim @Text? )?`
}

// lineLexer switches to the Value state after the tag. A single delimiter
// then moves it to Rest, where the remainder of the line is one token so
// leading blanks, pointers and trailing spaces are kept verbatim.
var lineLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Level", Pattern: `[0-9]+`},
		{Name: "Xref", Pattern: `@[^@\s]+@`},
		{Name: "Tag", Pattern: `[A-Za-z_][A-Za-z0-9_]*`, Action: lexer.Push("Value")},
	},
	"Value": {
		{Name: "Delim", Pattern: `[ \t]`, Action: lexer.Push("Rest")},
	},
	"Rest": {
		{Name: "Text", Pattern: `[^\r\n]+`},
	},
})

// continuation tags keep their leading and trailing blanks.
func continuation(tag string) bool {
	return tag == "CONC" || tag == "CONT"
}

// lineParser is the participle parser for single lines.
var lineParser = participle.MustBuild[lineGrammar](
	participle.Lexer(lineLexer),
	participle.Elide("Whitespace"),
)

// ParseLine tokenizes one line into an Entry.
func ParseLine(s string) (Entry, error) {
	parsed, err := lineParser.ParseString("", s)
	if err != nil {
		return Entry{}, err
	}
	value := parsed.Value
	if !continuation(parsed.Tag) {
		value = strings.TrimRight(value, " \t")
	}
	return Entry{
		Level: parsed.Level,
		Xref:  parsed.Xref,
		Tag:   parsed.Tag,
		Value: value,
	}, nil
}

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decoder reads entries from a line-oriented stream.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
	err     error
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{scanner: s}
}

// Next returns the next entry. It returns io.EOF at end of input.
func (d *Decoder) Next() (Entry, error) {
	if d.err != nil {
		return Entry{}, d.err
	}
	for d.scanner.Scan() {
		d.line++
		raw := d.scanner.Bytes()
		if d.line == 1 {
			raw = bytes.TrimPrefix(raw, utf8BOM)
		}
		text := strings.TrimRight(string(raw), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		e, err := ParseLine(text)
		if err != nil {
			pe := errors.NewParse("GEDCOM", d.line, err.Error())
			pe.Err = err
			d.err = pe
			return Entry{}, d.err
		}
		return e, nil
	}
	if err := d.scanner.Err(); err != nil {
		d.err = errors.NewIO("read", "", err)
		return Entry{}, d.err
	}
	d.err = io.EOF
	return Entry{}, io.EOF
}

// Line returns the 1-based number of the last line read.
func (d *Decoder) Line() int { return d.line }

// DecodeAll reads every entry from r.
func DecodeAll(r io.Reader) ([]Entry, error) {
	d := NewDecoder(r)
	var entries []Entry
	for {
		e, err := d.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
}

// Parse decodes r and builds the tree in one call.
func Parse(r io.Reader, opts ...Option) (*Tree, error) {
	b := NewBuilder(opts...)
	d := NewDecoder(r)
	for {
		e, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := b.Add(e); err != nil {
			return nil, errors.Wrapf(err, "line %d", d.Line())
		}
	}
	return b.Finish()
}

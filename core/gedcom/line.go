package gedcom

import (
	"strconv"
	"strings"
)

// Line is one entry of the hierarchy: level [xref] tag [value].
// Children are owned and kept in input order; parent is a back-reference.
type Line struct {
	level    int
	xref     string
	tag      string
	value    string
	children []*Line
	parent   *Line
	record   *Record
}

func newLine(e Entry) *Line {
	return &Line{
		level: e.Level,
		xref:  e.Xref,
		tag:   e.Tag,
		value: e.Value,
	}
}

// Level returns the nesting level (0 for records).
func (l *Line) Level() int { return l.level }

// Xref returns the cross-reference identifier declared by this line, if any.
func (l *Line) Xref() string { return l.xref }

// Tag returns the line tag.
func (l *Line) Tag() string { return l.tag }

// Value returns the line value.
func (l *Line) Value() string { return l.value }

// Children returns the direct sub-lines in input order.
func (l *Line) Children() []*Line { return l.children }

// Parent returns the enclosing line, or nil for a root.
func (l *Line) Parent() *Line { return l.parent }

// IsRoot reports whether the line has no parent.
func (l *Line) IsRoot() bool { return l.parent == nil }

// Record returns the level-0 record this line belongs to.
func (l *Line) Record() *Record {
	top := l
	for top.parent != nil {
		top = top.parent
	}
	return top.record
}

// ChildrenWithTag returns direct children whose tag matches, in input order.
func (l *Line) ChildrenWithTag(tag string) []*Line {
	var lines []*Line
	for _, c := range l.children {
		if c.tag == tag {
			lines = append(lines, c)
		}
	}
	return lines
}

// FirstChildWithTag returns the first direct child with the tag.
func (l *Line) FirstChildWithTag(tag string) (*Line, bool) {
	for _, c := range l.children {
		if c.tag == tag {
			return c, true
		}
	}
	return nil, false
}

// Text returns the value joined with its CONT (newline) and CONC
// (no separator) continuation lines.
func (l *Line) Text() string {
	var b strings.Builder
	b.WriteString(l.value)
	for _, c := range l.children {
		switch c.tag {
		case "CONT":
			b.WriteByte('\n')
			b.WriteString(c.value)
		case "CONC":
			b.WriteString(c.value)
		}
	}
	return b.String()
}

// String formats the line as its original flat representation.
func (l *Line) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(l.level))
	if l.xref != "" {
		b.WriteByte(' ')
		b.WriteString(l.xref)
	}
	b.WriteByte(' ')
	b.WriteString(l.tag)
	if l.value != "" {
		b.WriteByte(' ')
		b.WriteString(l.value)
	}
	return b.String()
}

// Gedcom returns the line and all of its descendants, one per text line.
func (l *Line) Gedcom() string {
	var b strings.Builder
	l.writeTo(&b)
	return strings.TrimSuffix(b.String(), "\n")
}

func (l *Line) writeTo(b *strings.Builder) {
	b.WriteString(l.String())
	b.WriteByte('\n')
	for _, c := range l.children {
		c.writeTo(b)
	}
}

// Walk visits the line and its descendants depth-first in input order.
// Returning false from fn skips the visited line's subtree.
func (l *Line) Walk(fn func(*Line) bool) {
	stack := []*Line{l}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
}

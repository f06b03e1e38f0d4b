// Package gedxml converts a line tree to and from an XML interchange form:
//
//	<gedcom>
//	  <line level="0" xref="@I1@" tag="INDI">
//	    <line level="1" tag="NAME" value="Ada /Byron/"/>
//	  </line>
//	</gedcom>
//
// Nesting carries the hierarchy; the level attribute is written for readers
// and checked on decode.
//
// The xmlquery library parses through encoding/xml, which never fetches
// external entities.
package gedxml

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/pedigree/core/errors"
	"github.com/FocuswithJustin/pedigree/core/gedcom"
)

const (
	rootElement = "gedcom"
	lineElement = "line"
	format      = "XML"
)

var (
	rootExpr = xpath.MustCompile("/" + rootElement)
	lineExpr = xpath.MustCompile(lineElement)
)

// Encode writes every record of tree as nested line elements.
func Encode(tree *gedcom.Tree, w io.Writer) error {
	root := &xmlquery.Node{Type: xmlquery.ElementNode, Data: rootElement}
	for _, rec := range tree.Records() {
		xmlquery.AddChild(root, element(rec.Line))
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n"); err != nil {
		return errors.NewIO("write", "", err)
	}
	if _, err := bw.WriteString(root.OutputXML(true)); err != nil {
		return errors.NewIO("write", "", err)
	}
	if err := bw.WriteByte('\n'); err != nil {
		return errors.NewIO("write", "", err)
	}
	if err := bw.Flush(); err != nil {
		return errors.NewIO("write", "", err)
	}
	return nil
}

// element converts l and its descendants without recursion.
func element(l *gedcom.Line) *xmlquery.Node {
	type pending struct {
		line   *gedcom.Line
		parent *xmlquery.Node
	}
	top := newElement(l)
	stack := make([]pending, 0, len(l.Children()))
	for i := len(l.Children()) - 1; i >= 0; i-- {
		stack = append(stack, pending{l.Children()[i], top})
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := newElement(p.line)
		xmlquery.AddChild(p.parent, n)
		children := p.line.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, pending{children[i], n})
		}
	}
	return top
}

func newElement(l *gedcom.Line) *xmlquery.Node {
	n := &xmlquery.Node{Type: xmlquery.ElementNode, Data: lineElement}
	xmlquery.AddAttr(n, "level", strconv.Itoa(l.Level()))
	if l.Xref() != "" {
		xmlquery.AddAttr(n, "xref", l.Xref())
	}
	xmlquery.AddAttr(n, "tag", l.Tag())
	if l.Value() != "" {
		xmlquery.AddAttr(n, "value", l.Value())
	}
	return n
}

// Decode reads the interchange form back into flat entries in document
// order, ready for gedcom.Build.
func Decode(r io.Reader) ([]gedcom.Entry, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		pe := errors.NewParse(format, 0, err.Error())
		pe.Err = err
		return nil, pe
	}
	root := xmlquery.QuerySelector(doc, rootExpr)
	if root == nil {
		return nil, errors.NewParse(format, 0, "missing <"+rootElement+"> root element")
	}

	type pending struct {
		node  *xmlquery.Node
		level int
	}
	var (
		entries []gedcom.Entry
		stack   []pending
	)
	push := func(parent *xmlquery.Node, level int) {
		children := xmlquery.QuerySelectorAll(parent, lineExpr)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, pending{children[i], level})
		}
	}
	push(root, 0)

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		e, err := entry(p.node, p.level, len(entries))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		push(p.node, p.level+1)
	}
	return entries, nil
}

func entry(n *xmlquery.Node, level, index int) (gedcom.Entry, error) {
	tag := n.SelectAttr("tag")
	if tag == "" {
		return gedcom.Entry{}, errors.NewParse(format, 0, fmt.Sprintf("element %d has no tag", index))
	}
	if s := n.SelectAttr("level"); s != "" {
		declared, err := strconv.Atoi(s)
		if err != nil || declared != level {
			return gedcom.Entry{}, errors.NewParse(format, 0,
				fmt.Sprintf("element %d (%s) declares level %q at depth %d", index, tag, s, level))
		}
	}
	return gedcom.Entry{
		Level: level,
		Xref:  n.SelectAttr("xref"),
		Tag:   tag,
		Value: n.SelectAttr("value"),
	}, nil
}

// Parse decodes r and builds the tree in one call.
func Parse(r io.Reader, opts ...gedcom.Option) (*gedcom.Tree, error) {
	entries, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return gedcom.Build(entries, opts...)
}

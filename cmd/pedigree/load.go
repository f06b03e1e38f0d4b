package main

import (
	"fmt"
	"os"

	"github.com/FocuswithJustin/pedigree/core/cas"
	"github.com/FocuswithJustin/pedigree/core/errors"
	"github.com/FocuswithJustin/pedigree/core/gedcom"
	"github.com/FocuswithJustin/pedigree/core/gedxml"
	"github.com/FocuswithJustin/pedigree/internal/archive"
	"github.com/FocuswithJustin/pedigree/internal/logging"
	"github.com/FocuswithJustin/pedigree/internal/validation"
)

// loaded is a built tree plus what is known about its source file.
type loaded struct {
	Path        string
	Format      string
	Compression archive.Compression
	Hash        cas.HashResult
	Size        int64
	Tree        *gedcom.Tree
}

// load validates path, fingerprints the raw bytes and builds the tree from
// the (possibly compressed or bundled) content.
func (g *Globals) load(path string) (*loaded, error) {
	if err := validation.ValidateInputFile(path); err != nil {
		return nil, fmt.Errorf("invalid input path: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	hash, size, err := cas.SumReader(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	r, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	opts := []gedcom.Option{
		gedcom.WithLenient(g.Lenient),
		gedcom.WithLogger(logging.GetLogger()),
	}
	format := archive.Format(r.Name)
	var tree *gedcom.Tree
	if format == "xml" {
		tree, err = gedxml.Parse(r, opts...)
	} else {
		tree, err = gedcom.Parse(r, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	logging.TreeLoaded(path, len(tree.Records()), len(tree.Individuals()), len(tree.Families()),
		"format", format,
		"compression", r.Compression.String(),
		"dangling", len(tree.Dangling()))

	return &loaded{
		Path:        path,
		Format:      format,
		Compression: r.Compression,
		Hash:        hash,
		Size:        size,
		Tree:        tree,
	}, nil
}

func (l *loaded) individual(xref string) (*gedcom.Individual, error) {
	x, err := validation.NormalizeXref(xref)
	if err != nil {
		return nil, err
	}
	ind, ok := l.Tree.Individual(x)
	if !ok {
		return nil, errors.NewNotFound("individual", x)
	}
	return ind, nil
}

func countLines(tree *gedcom.Tree) int {
	n := 0
	for _, rec := range tree.Records() {
		rec.Walk(func(*gedcom.Line) bool {
			n++
			return true
		})
	}
	return n
}

// displayName renders "@I1@ Given Surname", or just the xref when unnamed.
func displayName(ind *gedcom.Individual) string {
	names := ind.Names()
	if len(names) == 0 || names[0].String() == "" {
		return ind.Xref()
	}
	return ind.Xref() + " " + names[0].String()
}

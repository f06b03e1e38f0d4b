package gedcom

import (
	"fmt"
	"log/slog"

	"github.com/FocuswithJustin/pedigree/core/errors"
)

// Option configures a Builder.
type Option func(*config)

type config struct {
	lenient bool
	logger  *slog.Logger
	events  EventSource
}

// WithLenient switches from rejecting malformed input to best-effort repair:
// level skips attach to the deepest open line, orphaned sub-lines become
// roots, and duplicate xrefs are resolved last-write-wins, dropping the
// earlier record from the tree. Every repair is logged.
func WithLenient(lenient bool) Option {
	return func(c *config) { c.lenient = lenient }
}

// WithLogger sets the logger used for repairs and build summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithEventSource replaces the default LineEvents collaborator.
func WithEventSource(src EventSource) Option {
	return func(c *config) { c.events = src }
}

// Builder rebuilds the line hierarchy from a flat entry stream.
// Phase 1 (Add) builds the tree and registry; phase 2 (Finish) resolves
// every record exactly once, after which the graph is immutable.
type Builder struct {
	cfg      config
	stack    []*Line
	records  []*Record
	registry *Registry
	index    int
	err      error
	done     bool
}

// NewBuilder returns an empty builder.
func NewBuilder(opts ...Option) *Builder {
	cfg := config{events: LineEvents{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.events == nil {
		cfg.events = LineEvents{}
	}
	return &Builder{cfg: cfg, registry: newRegistry()}
}

// Add attaches the next entry. After an error the builder is unusable.
func (b *Builder) Add(e Entry) error {
	if b.err != nil {
		return b.err
	}
	if b.done {
		return fmt.Errorf("builder already finished")
	}
	idx := b.index
	b.index++

	if e.Level < 0 {
		return b.fail(errors.NewMalformed(idx, e.Level, e.Tag, "negative level"))
	}
	if e.Tag == "" {
		return b.fail(errors.NewMalformed(idx, e.Level, e.Tag, "missing tag"))
	}

	for len(b.stack) > 0 && b.stack[len(b.stack)-1].level >= e.Level {
		b.stack = b.stack[:len(b.stack)-1]
	}

	var parent *Line
	if len(b.stack) == 0 {
		if e.Level != 0 {
			if !b.cfg.lenient {
				return b.fail(errors.NewMalformed(idx, e.Level, e.Tag, "no enclosing record"))
			}
			b.cfg.logger.Warn("build_repair", "index", idx, "tag", e.Tag, "level", e.Level,
				"repair", "promoted orphan line to root")
		}
	} else {
		parent = b.stack[len(b.stack)-1]
		if parent.level != e.Level-1 {
			if !b.cfg.lenient {
				return b.fail(errors.NewMalformed(idx, e.Level, e.Tag,
					fmt.Sprintf("level jumps from %d to %d", parent.level, e.Level)))
			}
			b.cfg.logger.Warn("build_repair", "index", idx, "tag", e.Tag, "level", e.Level,
				"repair", "attached to deepest open line", "parent_level", parent.level)
		}
	}

	if e.Xref != "" {
		if _, dup := b.registry.LookupLine(e.Xref); dup {
			if !b.cfg.lenient {
				return b.fail(errors.NewMalformed(idx, e.Level, e.Tag,
					fmt.Sprintf("duplicate xref %s", e.Xref)))
			}
			b.cfg.logger.Warn("build_repair", "index", idx, "xref", e.Xref,
				"repair", "duplicate xref, last declaration wins")
		}
	}

	l := newLine(e)
	if parent == nil {
		b.records = append(b.records, newRecord(l, b.registry, b.cfg.events))
	} else {
		l.parent = parent
		parent.children = append(parent.children, l)
	}
	b.stack = append(b.stack, l)

	if e.Xref != "" {
		b.registry.declare(l)
	}
	return nil
}

func (b *Builder) fail(err error) error {
	b.err = err
	return err
}

// Finish runs the resolution phase and returns the frozen tree.
func (b *Builder) Finish() (*Tree, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.done {
		return nil, fmt.Errorf("builder already finished")
	}
	b.done = true
	b.stack = nil

	t := &Tree{registry: b.registry}
	for _, rec := range b.records {
		if rec.shadowed() {
			b.cfg.logger.Debug("shadowed_record", "xref", rec.xref, "tag", rec.tag)
			continue
		}
		t.records = append(t.records, rec)
		rec.resolve()
		switch rec.kind {
		case KindIndividual:
			t.individuals = append(t.individuals, rec.individual)
		case KindFamily:
			t.families = append(t.families, rec.family)
		}
		for _, d := range rec.Dangling() {
			b.cfg.logger.Debug("dangling_reference", "owner", d.Owner, "tag", d.Tag, "xref", d.Xref, "reason", d.Reason)
		}
	}

	b.cfg.logger.Debug("tree_built",
		"records", len(t.records),
		"individuals", len(t.individuals),
		"families", len(t.families),
		"xrefs", b.registry.Len())
	return t, nil
}

// Build runs both phases over a complete entry slice.
func Build(entries []Entry, opts ...Option) (*Tree, error) {
	b := NewBuilder(opts...)
	for _, e := range entries {
		if err := b.Add(e); err != nil {
			return nil, err
		}
	}
	return b.Finish()
}

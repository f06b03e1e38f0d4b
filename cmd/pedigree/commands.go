package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/FocuswithJustin/pedigree/core/errors"
	"github.com/FocuswithJustin/pedigree/core/gedxml"
	"github.com/FocuswithJustin/pedigree/core/kinship"
	"github.com/FocuswithJustin/pedigree/core/sqlite"
	"github.com/FocuswithJustin/pedigree/internal/api"
	"github.com/FocuswithJustin/pedigree/internal/archive"
	"github.com/FocuswithJustin/pedigree/internal/export"
	"github.com/FocuswithJustin/pedigree/internal/logging"
	"github.com/FocuswithJustin/pedigree/internal/validation"
)

// InfoCmd summarizes a file.
type InfoCmd struct {
	File string `arg:"" help:"Line file (.ged, .xml, optionally .xz/.gz or a tar bundle)" type:"existingfile"`
	JSON bool   `help:"Output as JSON"`
}

// FileInfo is the JSON form of `pedigree info`.
type FileInfo struct {
	Path        string `json:"path"`
	Format      string `json:"format"`
	Compression string `json:"compression"`
	Size        int64  `json:"size"`
	SHA256      string `json:"sha256"`
	BLAKE3      string `json:"blake3"`
	Records     int    `json:"records"`
	Lines       int    `json:"lines"`
	Individuals int    `json:"individuals"`
	Families    int    `json:"families"`
	Dangling    int    `json:"dangling"`
}

func (c *InfoCmd) Run(g *Globals, out io.Writer) error {
	l, err := g.load(c.File)
	if err != nil {
		return err
	}
	info := FileInfo{
		Path:        l.Path,
		Format:      l.Format,
		Compression: l.Compression.String(),
		Size:        l.Size,
		SHA256:      l.Hash.SHA256,
		BLAKE3:      l.Hash.BLAKE3,
		Records:     len(l.Tree.Records()),
		Lines:       countLines(l.Tree),
		Individuals: len(l.Tree.Individuals()),
		Families:    len(l.Tree.Families()),
		Dangling:    len(l.Tree.Dangling()),
	}
	if c.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintf(out, "File:        %s\n", info.Path)
	fmt.Fprintf(out, "Format:      %s (compression: %s)\n", info.Format, info.Compression)
	fmt.Fprintf(out, "Size:        %d bytes\n", info.Size)
	fmt.Fprintf(out, "SHA-256:     %s\n", info.SHA256)
	fmt.Fprintf(out, "BLAKE3:      %s\n", info.BLAKE3)
	fmt.Fprintf(out, "Records:     %d (%d lines)\n", info.Records, info.Lines)
	fmt.Fprintf(out, "Individuals: %d\n", info.Individuals)
	fmt.Fprintf(out, "Families:    %d\n", info.Families)
	fmt.Fprintf(out, "Dangling:    %d\n", info.Dangling)
	return nil
}

// CheckCmd lists dangling references.
type CheckCmd struct {
	File string `arg:"" help:"Line file to check" type:"existingfile"`
}

func (c *CheckCmd) Run(g *Globals, out io.Writer) error {
	l, err := g.load(c.File)
	if err != nil {
		return err
	}
	dangling := l.Tree.Dangling()
	for _, d := range dangling {
		logging.DanglingReference(d.Owner, d.Tag, d.Xref, "reason", d.Reason)
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", d.Owner, d.Tag, d.Xref, d.Reason)
	}
	if len(dangling) > 0 {
		return fmt.Errorf("%s: %d dangling reference(s)", c.File, len(dangling))
	}
	fmt.Fprintf(out, "%s: OK (%d records)\n", c.File, len(l.Tree.Records()))
	return nil
}

// ShowCmd prints one record.
type ShowCmd struct {
	File string `arg:"" help:"Line file" type:"existingfile"`
	Xref string `arg:"" help:"Record xref (@I1@ or I1)"`
}

func (c *ShowCmd) Run(g *Globals, out io.Writer) error {
	l, err := g.load(c.File)
	if err != nil {
		return err
	}
	x, err := validation.NormalizeXref(c.Xref)
	if err != nil {
		return err
	}
	rec, ok := l.Tree.Record(x)
	if !ok {
		return errors.NewNotFound("record", x)
	}

	fmt.Fprintf(out, "# %s %s\n", rec.Type(), rec.Xref())
	if ind, ok := rec.Individual(); ok {
		for _, p := range ind.Parents() {
			fmt.Fprintf(out, "# parent  %s\n", displayName(p))
		}
		for _, s := range ind.Siblings() {
			fmt.Fprintf(out, "# sibling %s\n", displayName(s))
		}
		for _, ch := range ind.Children() {
			fmt.Fprintf(out, "# child   %s\n", displayName(ch))
		}
	}
	for _, d := range rec.Dangling() {
		fmt.Fprintf(out, "# dangling %s %s (%s)\n", d.Tag, d.Xref, d.Reason)
	}
	fmt.Fprintln(out, rec.Gedcom())
	return nil
}

// AncestorsCmd lists ancestor families by generation.
type AncestorsCmd struct {
	File string `arg:"" help:"Line file" type:"existingfile"`
	Xref string `arg:"" help:"Individual xref"`
}

func (c *AncestorsCmd) Run(g *Globals, out io.Writer) error {
	l, err := g.load(c.File)
	if err != nil {
		return err
	}
	ind, err := l.individual(c.Xref)
	if err != nil {
		return err
	}
	fams := kinship.AncestorFamilies(ind)
	if len(fams) == 0 {
		fmt.Fprintf(out, "%s has no recorded ancestors\n", displayName(ind))
		return nil
	}
	for _, fd := range fams {
		var parents []string
		for _, p := range fd.Family.Parents() {
			parents = append(parents, displayName(p))
		}
		fmt.Fprintf(out, "%d\t%s\t%s\n", fd.Distance, fd.Family.Xref(), strings.Join(parents, " + "))
	}
	return nil
}

// RelateCmd explains the relationship between two individuals.
type RelateCmd struct {
	File    string `arg:"" help:"Line file" type:"existingfile"`
	A       string `arg:"" help:"First individual xref"`
	B       string `arg:"" help:"Second individual xref"`
	Compact bool   `help:"Replace the climb through a shared parent with a sibling step"`
}

func (c *RelateCmd) Run(g *Globals, out io.Writer) error {
	l, err := g.load(c.File)
	if err != nil {
		return err
	}
	a, err := l.individual(c.A)
	if err != nil {
		return err
	}
	b, err := l.individual(c.B)
	if err != nil {
		return err
	}

	path, ok := kinship.PathToRelative(a, b, c.Compact)
	if !ok {
		fmt.Fprintf(out, "%s and %s are not related\n", displayName(a), displayName(b))
		return nil
	}
	fmt.Fprintln(out, "Path:")
	for _, st := range path {
		fmt.Fprintf(out, "  %-8s %s\n", st.Direction, displayName(st.Individual))
	}

	if common := kinship.CommonAncestors(a, b); len(common) > 0 {
		fmt.Fprintln(out, "Common ancestors:")
		for _, ca := range common {
			fmt.Fprintf(out, "  %s\n", displayName(ca))
		}
	}
	if d, ok := kinship.DistanceToAncestor(a, b); ok {
		fmt.Fprintf(out, "Distance: %s is %d generation(s) above %s\n", b.Xref(), d, a.Xref())
	} else if d, ok := kinship.DistanceToAncestor(b, a); ok {
		fmt.Fprintf(out, "Distance: %s is %d generation(s) above %s\n", a.Xref(), d, b.Xref())
	}
	return nil
}

// EmitCmd re-emits the tree.
type EmitCmd struct {
	File   string `arg:"" help:"Line file" type:"existingfile"`
	Format string `help:"Output format" enum:"ged,xml" default:"ged"`
	Out    string `short:"o" help:"Output path (.xz/.gz compress); stdout when empty" type:"path"`
}

func (c *EmitCmd) Run(g *Globals, out io.Writer) error {
	l, err := g.load(c.File)
	if err != nil {
		return err
	}
	if c.Out == "" {
		return c.emit(l, out)
	}

	if err := validation.ValidatePath(c.Out); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	w, err := archive.Create(c.Out)
	if err != nil {
		return err
	}
	if err := c.emit(l, w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (c *EmitCmd) emit(l *loaded, w io.Writer) error {
	var err error
	if c.Format == "xml" {
		err = gedxml.Encode(l.Tree, w)
	} else {
		_, err = l.Tree.WriteTo(w)
	}
	if err != nil {
		return fmt.Errorf("failed to emit %s: %w", c.Format, err)
	}
	return nil
}

// ExportCmd writes the tree into SQLite.
type ExportCmd struct {
	File string `arg:"" help:"Line file" type:"existingfile"`
	DB   string `name:"db" required:"" help:"SQLite database path (created if missing)" type:"path"`
}

func (c *ExportCmd) Run(ctx context.Context, g *Globals, out io.Writer) error {
	if err := validation.ValidatePath(c.DB); err != nil {
		return fmt.Errorf("invalid database path: %w", err)
	}
	l, err := g.load(c.File)
	if err != nil {
		return err
	}
	db, err := sqlite.OpenDatabase(ctx, c.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	s, err := export.Export(ctx, db, l.Tree, export.Source{Path: l.Path, Hash: l.Hash})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Export %s -> %s\n", s.ID, c.DB)
	fmt.Fprintf(out, "  records %d, lines %d, individuals %d, families %d, members %d, dangling %d (%s)\n",
		s.Records, s.Lines, s.Individuals, s.Families, s.Members, s.Dangling, s.Duration.Round(time.Millisecond))
	return nil
}

// ServeCmd starts the query server.
type ServeCmd struct {
	File      string        `arg:"" help:"Line file" type:"existingfile"`
	Port      int           `help:"HTTP server port" default:"8080"`
	RateLimit int           `name:"rate-limit" help:"Requests per minute per IP (0 = disabled)" default:"0"`
	Burst     int           `help:"Rate limit burst size" default:"10"`
	Origins   []string      `help:"Allowed CORS origins (empty = all)"`
	CacheTTL  time.Duration `name:"cache-ttl" help:"Lifetime of memoized query results" default:"10m"`
}

func (c *ServeCmd) Run(ctx context.Context, g *Globals) error {
	l, err := g.load(c.File)
	if err != nil {
		return err
	}
	cfg := api.DefaultConfig()
	cfg.Port = c.Port
	cfg.RateLimitRequests = c.RateLimit
	cfg.RateLimitBurst = c.Burst
	cfg.AllowedOrigins = c.Origins
	cfg.CacheTTL = c.CacheTTL
	cfg.Version = version
	return api.NewServer(l.Tree, l.Path, l.Hash, cfg).ListenAndServe(ctx)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(out io.Writer) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(out, "pedigree version %s (sqlite: %s, %s)\n", version, info.DriverType, info.Package)
	return nil
}

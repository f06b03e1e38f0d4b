// Command pedigree loads GEDCOM-style line files and answers kinship
// questions about them: checks, relationship paths, SQLite export and a
// read-only query server.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/pedigree/internal/logging"
)

const version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	Lenient   bool   `help:"Repair level skips, orphan lines and duplicate xrefs instead of failing"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" env:"PEDIGREE_LOG_LEVEL" enum:"debug,info,warn,error"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" default:"text" env:"PEDIGREE_LOG_FORMAT" enum:"text,json"`
}

// AfterApply configures logging once flags are parsed.
func (g *Globals) AfterApply() error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(g.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

// CLI defines the command-line interface for pedigree.
type CLI struct {
	Globals

	Info      InfoCmd      `cmd:"" help:"Summarize a file: counts, hashes and dangling references"`
	Check     CheckCmd     `cmd:"" help:"List dangling references; exits non-zero when any exist"`
	Show      ShowCmd      `cmd:"" help:"Print one record as lines"`
	Ancestors AncestorsCmd `cmd:"" help:"List ancestor families by generation"`
	Relate    RelateCmd    `cmd:"" help:"Show how two individuals are related"`
	Emit      EmitCmd      `cmd:"" help:"Re-emit the tree as lines or XML"`
	Export    ExportCmd    `cmd:"" help:"Export the tree into a SQLite database"`
	Serve     ServeCmd     `cmd:"" help:"Start the read-only kinship query server"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// newParser builds the kong parser with stdout and ctx bound for commands.
func newParser(cli *CLI, stdout io.Writer, ctx context.Context, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("pedigree"),
		kong.Description("Pedigree - GEDCOM line trees and kinship queries"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.BindTo(stdout, (*io.Writer)(nil)),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&cli.Globals),
	}, opts...)
	return kong.New(cli, opts...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	parser, err := newParser(&cli, os.Stdout, ctx)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	kctx.FatalIfErrorf(kctx.Run())
}

// Package commands implements the gifrefresh command line.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"golang.org/x/term"
)

// CLI is the command line grammar.
type CLI struct {
	Globals Globals `embed:""`

	Inspect  InspectCmd  `cmd:"" help:"Print the frames and timing of an animated GIF."`
	Simulate SimulateCmd `cmd:"" help:"Run a headless pull-to-refresh cycle with a GIF."`
	Init     InitCmd     `cmd:"" help:"Write a default gifrefresh.toml."`
	Version  VersionCmd  `cmd:"" help:"Print version information."`

	version string
	logger  *slog.Logger
}

// Globals are flags shared by every command.
type Globals struct {
	Project string           `help:"Directory containing gifrefresh.toml (default: nearest project root)." name:"project" short:"C" type:"path"`
	Color   string           `help:"Color output." enum:"auto,always,never" default:"auto"`
	Verbose int              `help:"Verbose stderr logs." short:"v" type:"counter"`
	ShowVer kong.VersionFlag `help:"Show version." name:"version"`
}

// Run parses args and runs the selected command. Output goes to stdout,
// logs and usage errors to stderr.
func Run(args []string, stdout, stderr io.Writer, version string) error {
	cli := CLI{version: version}
	parser, err := kong.New(&cli,
		kong.Name("gifrefresh"),
		kong.Description("Inspect animated GIFs and simulate GIF pull-to-refresh cycles."),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": version},
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cli.logger = newLogger(stderr, cli.Globals.Verbose)
	return ctx.Run(&cli)
}

// newLogger returns a text logger at info level, or debug with -v.
func newLogger(w io.Writer, verbose int) *slog.Logger {
	level := slog.LevelInfo
	if verbose > 0 {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadProject loads gifrefresh.toml from --project or the nearest project
// root, falling back to defaults outside a project.
func (g Globals) loadProject(logger *slog.Logger) (ProjectConfig, error) {
	dir := g.Project
	if dir == "" {
		root, err := FindProjectRoot(".")
		if err != nil {
			logger.Debug("using default configuration", "reason", err)
			return DefaultConfig(), nil
		}
		dir = root
	}
	config, err := LoadConfig(dir)
	if err != nil {
		return config, err
	}
	logger.Debug("loaded configuration", "dir", dir)
	return config, nil
}

func (g Globals) useColor(w io.Writer) bool {
	switch g.Color {
	case "never":
		return false
	case "always":
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	termEnv := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	if termEnv == "dumb" || termEnv == "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func bold(s string, color bool) string {
	if !color {
		return s
	}
	return "\x1b[1m" + s + "\x1b[0m"
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *kong.Context, cli *CLI) error {
	_, err := fmt.Fprintf(ctx.Stdout, "gifrefresh version %s\n", cli.version)
	return err
}

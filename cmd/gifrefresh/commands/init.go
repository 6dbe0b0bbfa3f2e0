package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
)

// InitCmd implements 'gifrefresh init'.
type InitCmd struct {
	Force bool   `help:"Overwrite an existing gifrefresh.toml."`
	Dir   string `arg:"" optional:"" default:"." help:"Directory to write gifrefresh.toml into." type:"path"`
}

func (c *InitCmd) Run(ctx *kong.Context, cli *CLI) error {
	path := filepath.Join(c.Dir, ConfigFile)
	_, err := os.Stat(path)
	switch {
	case err == nil && !c.Force:
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	}

	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Dir, err)
	}
	if err := SaveConfig(c.Dir, DefaultConfig()); err != nil {
		return err
	}
	cli.logger.Debug("wrote configuration", "path", path)
	_, err = fmt.Fprintf(ctx.Stdout, "✓ Created %s\n", path)
	return err
}

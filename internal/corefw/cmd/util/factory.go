package util

import (
	"io"

	"github.com/fatih/color"
	"github.com/moby/term"

	"github.com/kiosk404/coreframework/internal/coreframework/config"
	"github.com/kiosk404/coreframework/internal/coreframework/host"
	"github.com/kiosk404/coreframework/internal/coreframework/output"
	"github.com/kiosk404/coreframework/internal/pkg/options"
)

// Factory provides the pieces every corefw command builds on. Commands only
// talk to the factory, so tests can swap in their own options.
type Factory interface {
	// Options are the parsed root options.
	Options() *options.Options
	// Resources loads the framework and language files with the command line
	// overrides applied.
	Resources() (*config.Config, error)
	// Oracle indexes the manifests in the plugins dir.
	Oracle() (*host.DirectoryOracle, error)
	// ConsoleSink writes report lines to out, with colors when out is a
	// terminal and colors are not disabled.
	ConsoleSink(out io.Writer) output.Sink
}

type defaultFactory struct {
	opts *options.Options
}

// NewDefaultFactory returns a Factory reading from opts.
func NewDefaultFactory(opts *options.Options) Factory {
	return &defaultFactory{opts: opts}
}

func (d *defaultFactory) Options() *options.Options {
	return d.opts
}

func (d *defaultFactory) Resources() (*config.Config, error) {
	return d.opts.Framework.Load()
}

func (d *defaultFactory) Oracle() (*host.DirectoryOracle, error) {
	return host.NewDirectoryOracle(d.opts.Plugins.Dir)
}

func (d *defaultFactory) ConsoleSink(out io.Writer) output.Sink {
	return output.NewConsoleSink(out, ColorEnabled(out, d.opts.Log.NoColor))
}

// ColorEnabled reports whether ANSI colors should be written to out.
func ColorEnabled(out io.Writer, noColor bool) bool {
	if noColor {
		color.NoColor = true
		return false
	}
	_, isTerminal := term.GetFdInfo(out)
	return isTerminal
}

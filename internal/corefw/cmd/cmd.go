// Package cmd is the corefw command line: a simulated plugin host around the
// startup diagnostics framework.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiosk404/coreframework/internal/coreframework"
	cmdlint "github.com/kiosk404/coreframework/internal/corefw/cmd/lint"
	cmdplugins "github.com/kiosk404/coreframework/internal/corefw/cmd/plugins"
	cmdrun "github.com/kiosk404/coreframework/internal/corefw/cmd/run"
	cmdutil "github.com/kiosk404/coreframework/internal/corefw/cmd/util"
	"github.com/kiosk404/coreframework/internal/pkg/options"
	"github.com/kiosk404/coreframework/pkg/cli/genericclioptions"
	"github.com/kiosk404/coreframework/pkg/logger"
)

// NewDefaultCorefwCommand creates the `corefw` command with default arguments.
func NewDefaultCorefwCommand() *cobra.Command {
	return NewCorefwCommand(os.Stdin, os.Stdout, os.Stderr)
}

// NewCorefwCommand creates the `corefw` command and its nested children.
func NewCorefwCommand(in io.Reader, out, err io.Writer) *cobra.Command {
	opts := options.NewOptions()
	v := viper.New()

	// Parent command to which all subcommands are added.
	cmds := &cobra.Command{
		Use:   "corefw",
		Short: "corefw simulates a plugin host start and prints the startup report",
		Long: Banner() + "\n" + heredoc.Doc(`
			corefw drives the startup diagnostics framework the way a plugin host does.

			Plugins described by manifests in the plugins dir register their hooks, the
			host signals that it finished loading, and one uninterrupted report shows
			which plugins activated and which hooks are missing. The lint command checks
			language templates against the configured line width before they reach a
			production console.`),
		Version:       fmt.Sprintf("%s (%s)", coreframework.Version, coreframework.Codename),
		Run:           runHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := loadOptions(v, opts); err != nil {
				return err
			}
			return initLogging(opts.Log)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			logger.FlushLog()
			return nil
		},
	}
	cmds.SetIn(in)
	cmds.SetOut(out)
	cmds.SetErr(err)

	opts.AddFlags(cmds.PersistentFlags())
	_ = v.BindPFlags(cmds.PersistentFlags())
	bindEnv(v)

	ioStreams := genericclioptions.IOStreams{In: in, Out: out, ErrOut: err}
	f := cmdutil.NewDefaultFactory(opts)

	cmds.AddGroup(
		&cobra.Group{ID: "basic", Title: "Basic Commands:"},
		&cobra.Group{ID: "diagnostic", Title: "Diagnostic Commands:"},
	)
	addToGroup(cmds, "basic", cmdrun.NewCmdRun(f, ioStreams))
	addToGroup(cmds, "diagnostic",
		cmdlint.NewCmdLint(f, ioStreams),
		cmdplugins.NewCmdPlugins(f, ioStreams),
	)

	return cmds
}

func addToGroup(parent *cobra.Command, group string, children ...*cobra.Command) {
	for _, c := range children {
		c.GroupID = group
		parent.AddCommand(c)
	}
}

func runHelp(cmd *cobra.Command, args []string) {
	_ = cmd.Help()
}

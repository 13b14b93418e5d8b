package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kiosk404/coreframework/internal/coreframework/host"
	"github.com/kiosk404/coreframework/internal/corefw/cmd/util"
	"github.com/kiosk404/coreframework/pkg/cli/genericclioptions"
	"github.com/kiosk404/coreframework/pkg/utils/json"
)

var pluginsExample = heredoc.Doc(`
		# List the manifests in ./plugins
		corefw plugins

		# Machine readable listing of another directory
		corefw plugins --plugins.dir=/srv/host/plugins -o json`)

// Options lists installed plugin manifests.
type Options struct {
	// Output is "table" or "json".
	Output string

	Factory util.Factory
	genericclioptions.IOStreams
}

// listing is the JSON shape of the plugins command.
type listing struct {
	Dir       string          `json:"dir"`
	Manifests []host.Manifest `json:"manifests"`
	Errors    []string        `json:"errors,omitempty"`
}

// NewCmdPlugins returns the plugins command.
func NewCmdPlugins(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &Options{Output: "table", Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "plugins",
		DisableFlagsInUseLine: true,
		Aliases:               []string{"pl"},
		Short:                 "List the plugin manifests the host would load",
		Example:               pluginsExample,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Validate(cmd))
			util.CheckErr(o.Run(cmd.Context(), args))
		},
	}

	cmd.Flags().StringVarP(&o.Output, "output", "o", o.Output, "Output format: table or json")

	return cmd
}

// Validate checks the output format.
func (o *Options) Validate(cmd *cobra.Command) error {
	if o.Output != "table" && o.Output != "json" {
		return util.UsageErrorf(cmd.CommandPath(), "unsupported output format %q", o.Output)
	}
	return nil
}

// Run prints the manifests.
func (o *Options) Run(_ context.Context, _ []string) error {
	oracle, err := o.Factory.Oracle()
	if err != nil {
		return err
	}
	defer oracle.Close()

	manifests := oracle.Manifests()
	errs := oracle.Errors()

	if o.Output == "json" {
		l := listing{Dir: oracle.Dir(), Manifests: manifests}
		for _, e := range errs {
			l.Errors = append(l.Errors, e.Error())
		}
		data, err := json.MarshalIndent(l, "", "  ")
		if err != nil {
			return fmt.Errorf("encode plugins: %w", err)
		}
		fmt.Fprintln(o.Out, string(data))
		return nil
	}

	enabled := color.New(color.FgGreen).SprintFunc()
	disabled := color.New(color.FgHiBlack).SprintFunc()

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("NAME", "VERSION", "CODENAME", "STATUS", "REGISTERS", "HOOKS")
	for _, m := range manifests {
		status := enabled("enabled")
		if !m.IsEnabled() {
			status = disabled("disabled")
		}
		table.AddRow(m.Name, m.Version, m.Codename, status, m.Register, formatHooks(m.Hooks))
	}
	fmt.Fprintln(o.Out, table)

	for _, e := range errs {
		fmt.Fprintf(o.ErrOut, "warning: %v\n", e)
	}
	return nil
}

func formatHooks(hooks []host.HookManifest) string {
	if len(hooks) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(hooks))
	for _, h := range hooks {
		s := h.Plugin
		if h.Required {
			s += "*"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

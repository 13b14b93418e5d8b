package lint

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/cobra"

	"github.com/kiosk404/coreframework/internal/coreframework"
	"github.com/kiosk404/coreframework/internal/coreframework/text"
	"github.com/kiosk404/coreframework/internal/corefw/cmd/util"
	"github.com/kiosk404/coreframework/pkg/cli/genericclioptions"
)

const detailWidth = 48

var lintExample = heredoc.Doc(`
		# Check the embedded templates
		corefw lint

		# Check a custom language file against a narrower console
		corefw lint --framework.lang=lang/en.yml --framework.line-length=40`)

// ErrFatalTemplates is returned when at least one template cannot be laid out.
var ErrFatalTemplates = errors.New("templates would disable coreframework")

// sample values substituted into every template.
var samplePairs = []string{
	"plugin", "ExamplePlugin",
	"version", "1.0.0",
	"codename", "EXAMPLE",
	"plugins", "ExamplePlugin - OtherPlugin",
}

// Options checks every language template.
type Options struct {
	// All also lists the templates that render fine.
	All bool

	Factory util.Factory
	genericclioptions.IOStreams
}

// Finding is the outcome for one template.
type Finding struct {
	Key    string
	Width  int
	Err    error
	Output string
}

// NewCmdLint returns the lint command.
func NewCmdLint(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &Options{Factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "lint",
		DisableFlagsInUseLine: true,
		Short:                 "Render every language template and report lines that cannot be laid out",
		Long: heredoc.Doc(`
			Render each template of the language file with sample values, using the
			configured line length and minimum padding. A template whose scaled
			separator cannot fit would disable the framework at startup; lint lists
			those templates and exits with an error.`),
		Example: lintExample,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Run(cmd.Context(), args))
		},
	}

	cmd.Flags().BoolVar(&o.All, "all", o.All, "Also list templates that render fine")

	return cmd
}

// Run renders the templates and prints the table.
func (o *Options) Run(_ context.Context, _ []string) error {
	res, err := o.Factory.Resources()
	if err != nil {
		return err
	}
	engine := coreframework.NewEngine(res)

	keys := res.Language.Keys()
	sort.Strings(keys)
	findings := Check(engine, keys, func(k string) string { return res.Language.GetString(k, "") })

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()

	table := uitable.New()
	table.Wrap = true
	table.AddRow("TEMPLATE", "STATUS", "WIDTH", "DETAIL")

	fatal := 0
	for _, f := range findings {
		if f.Err != nil {
			fatal++
			table.AddRow(f.Key, bad("FATAL"), f.Width, wordwrap.WrapString(f.Err.Error(), detailWidth))
			continue
		}
		if o.All {
			table.AddRow(f.Key, ok("OK"), f.Width, text.StripMarkup(f.Output))
		}
	}

	settings := engine.Settings()
	fmt.Fprintf(o.Out, "line_length=%d min_padding=%d templates=%d\n",
		settings.LineLength, settings.MinPadding, len(findings))
	if fatal == 0 && !o.All {
		fmt.Fprintln(o.Out, ok("all templates render"))
		return nil
	}
	fmt.Fprintln(o.Out, table)

	if fatal > 0 {
		return fmt.Errorf("%d %w", fatal, ErrFatalTemplates)
	}
	return nil
}

// Check renders the template of every key.
func Check(engine *text.Engine, keys []string, template func(string) string) []Finding {
	findings := make([]Finding, 0, len(keys))
	for _, k := range keys {
		line := text.Substitute(template(k), samplePairs...)
		out, err := engine.Process(line)
		f := Finding{Key: k, Err: err, Output: out}
		var perr *text.PaddingError
		if errors.As(err, &perr) {
			f.Width = perr.ContentLength
		} else {
			f.Width = text.VisualLength(out)
		}
		findings = append(findings, f)
	}
	return findings
}

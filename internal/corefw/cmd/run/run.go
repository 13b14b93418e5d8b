package run

import (
	"context"
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kiosk404/coreframework/internal/coreframework"
	"github.com/kiosk404/coreframework/internal/coreframework/host"
	"github.com/kiosk404/coreframework/internal/corefw/cmd/util"
	"github.com/kiosk404/coreframework/pkg/cli/genericclioptions"
	"github.com/kiosk404/coreframework/pkg/logger"
)

var runExample = heredoc.Doc(`
		# Simulate a host start with the manifests in ./plugins
		corefw run

		# Only the fallback timer may trigger the report
		corefw run --plugins.no-ready --framework.fallback-delay=2s

		# Expect two core plugins and print lines as soon as they are prepared
		corefw run --framework.core-plugins=Alpha,Beta --framework.output-mode=immediate`)

// Options runs one simulated startup window.
type Options struct {
	// Timeout bounds the wait for the report.
	Timeout time.Duration

	Factory util.Factory
	genericclioptions.IOStreams
}

// NewCmdRun returns the run command.
func NewCmdRun(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewRunOptions(f, ioStreams)

	cmd := &cobra.Command{
		Use:                   "run",
		DisableFlagsInUseLine: true,
		Short:                 "Simulate a plugin host start and print the startup report",
		Long: heredoc.Doc(`
			Load the plugin manifests from the plugins dir, let every self-registering
			plugin register with the framework concurrently, then signal that the host
			finished loading. The startup report is printed exactly once, either when
			every core plugin registered, when the host is ready, or when the fallback
			delay expires. The shutdown message is printed on exit.`),
		Example: runExample,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Validate())
			util.CheckErr(o.Run(cmd.Context(), args))
		},
	}

	cmd.Flags().DurationVar(&o.Timeout, "timeout", o.Timeout, "Give up when no report was printed after this long")

	return cmd
}

// NewRunOptions returns options with a 30s timeout.
func NewRunOptions(f util.Factory, ioStreams genericclioptions.IOStreams) *Options {
	return &Options{
		Timeout:   30 * time.Second,
		Factory:   f,
		IOStreams: ioStreams,
	}
}

// Validate checks the command options.
func (o *Options) Validate() error {
	if o.Timeout <= 0 {
		return fmt.Errorf("--timeout must be positive, got %s", o.Timeout)
	}
	return nil
}

// Run performs one startup window.
func (o *Options) Run(ctx context.Context, _ []string) error {
	opts := o.Factory.Options()

	res, err := o.Factory.Resources()
	if err != nil {
		return err
	}
	oracle, err := o.Factory.Oracle()
	if err != nil {
		return err
	}
	defer oracle.Close()
	if opts.Plugins.Watch {
		if err := oracle.Watch(); err != nil {
			return err
		}
		oracle.OnReload(func() {
			logger.Info("[Host] plugins dir changed, %d manifests indexed", len(oracle.Manifests()))
		})
	}

	var registering []host.Manifest
	for _, m := range oracle.Manifests() {
		if m.Register && m.IsEnabled() && opts.Plugins.Allows(m.Name) {
			registering = append(registering, m)
		}
	}
	if len(res.Framework.GetStringList("detection.core_plugins")) == 0 {
		names := make([]string, 0, len(registering))
		for _, m := range registering {
			names = append(names, m.Name)
		}
		res.Framework.Set("detection.core_plugins", names)
		logger.Debug("[Host] no core plugins configured, expecting %v", names)
	}

	fw, err := (&coreframework.Config{
		Resources: res,
		Oracle:    oracle,
		Sink:      o.Factory.ConsoleSink(o.Out),
		Metrics:   prometheus.NewRegistry(),
	}).Complete().New()
	if err != nil {
		return err
	}

	ready := &host.ReadySignal{}
	ready.OnReady(fw.OnServerLoad)

	if err := fw.Enable(); err != nil {
		return fmt.Errorf("enable coreframework: %w", err)
	}
	defer fw.Disable()

	var g errgroup.Group
	for _, m := range registering {
		g.Go(func() error {
			if _, err := fw.API().RegisterPlugin(m.Name, m.Version, m.Codename, m.Requirements()...); err != nil {
				return fmt.Errorf("register %s: %w", m.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if !opts.Plugins.NoReady {
		readyTimer := time.AfterFunc(opts.Plugins.ReadyAfter, ready.Fire)
		defer readyTimer.Stop()
	}

	timeout := time.NewTimer(o.Timeout)
	defer timeout.Stop()

	select {
	case <-fw.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout.C:
		return fmt.Errorf("no startup report within %s", o.Timeout)
	}

	if disabled, why := fw.Disabled(); disabled && why != nil {
		return fmt.Errorf("coreframework disabled: %w", why)
	}
	return nil
}

// Package display coordinates the one-time startup report. Lines are
// buffered while plugins start and flushed exactly once, on whichever of the
// ready signal, the fallback timer or early completion arrives first.
package display

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kiosk404/coreframework/internal/coreframework/bootstrap"
	"github.com/kiosk404/coreframework/internal/coreframework/hook"
	"github.com/kiosk404/coreframework/internal/coreframework/output"
	"github.com/kiosk404/coreframework/internal/coreframework/registry"
	"github.com/kiosk404/coreframework/pkg/logger"
)

const module = "display"

// DefaultFallbackDelay is used when no delay is configured.
const DefaultFallbackDelay = 5 * time.Second

// FatalHandler receives errors that must stop the framework.
type FatalHandler func(err error)

// Config holds the orchestrator's collaborators.
type Config struct {
	Registry  *registry.Registry
	Bootstrap *bootstrap.Bootstrap
	Report    output.Report
	Oracle    hook.Oracle
	Processor hook.Processor
	Timer     Timer
	Metrics   *Metrics

	FallbackDelay time.Duration
	// ExpectedPlugins is the registration count that triggers early completion.
	ExpectedPlugins int
	OnFatal         FatalHandler
}

// Orchestrator owns the startup window state machine.
type Orchestrator struct {
	cfg Config

	state atomic.Int32
	armed atomic.Bool

	// pipeline serializes header preparation with the display pipeline so
	// their lines never interleave in the report.
	pipeline sync.Mutex

	done     chan struct{}
	doneOnce sync.Once
}

// New creates an orchestrator in the Idle state.
func New(cfg Config) *Orchestrator {
	if cfg.Processor == nil {
		cfg.Processor = hook.PresenceProcessor
	}
	if cfg.Timer == nil {
		cfg.Timer = NewAfterFuncTimer()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}
	if cfg.FallbackDelay <= 0 {
		cfg.FallbackDelay = DefaultFallbackDelay
	}
	if cfg.OnFatal == nil {
		cfg.OnFatal = func(err error) {
			logger.ErrorX(module, "[Display] %v", err)
		}
	}
	return &Orchestrator{cfg: cfg, done: make(chan struct{})}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Done is closed once the display pipeline has finished, successfully or
// not, or once Shutdown closed the window before any display.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.done
}

// Enable buffers the header and arms the fallback timer. Calls after the
// first, or after the report was shown, do nothing.
func (o *Orchestrator) Enable() error {
	started, err := o.prepareHeader()
	if err != nil || !started {
		return err
	}
	o.arm()
	return nil
}

func (o *Orchestrator) prepareHeader() (bool, error) {
	o.pipeline.Lock()
	defer o.pipeline.Unlock()

	if o.State() != Idle {
		return false, nil
	}
	staged := output.NewCache(nil)
	if err := o.cfg.Bootstrap.PrepareHeader(staged); err != nil {
		return false, err
	}
	o.commit(staged)
	return o.state.CompareAndSwap(int32(Idle), int32(Preparing)), nil
}

func (o *Orchestrator) arm() {
	if !o.armed.CompareAndSwap(false, true) {
		return
	}
	logger.DebugX(module, "[Display] fallback display armed for %s", o.cfg.FallbackDelay)
	o.cfg.Timer.ScheduleOnce(o.cfg.FallbackDelay, func() {
		o.Trigger(SourceTimer)
	})
}

// OnReady is the ready-signal listener.
func (o *Orchestrator) OnReady() {
	o.Trigger(SourceReady)
}

// CheckEarlyCompletion displays the report once the registry holds at least
// the expected number of plugins.
func (o *Orchestrator) CheckEarlyCompletion() bool {
	if o.State() == Displayed {
		return false
	}
	if o.cfg.Registry.Len() < o.cfg.ExpectedPlugins {
		return false
	}
	return o.Trigger(SourceEarlyCompletion)
}

// Trigger runs the display pipeline if no other trigger has. It reports
// whether this call ran it.
func (o *Orchestrator) Trigger(source Source) bool {
	o.cfg.Metrics.Triggers.WithLabelValues(string(source)).Inc()
	if !o.claim() {
		o.cfg.Metrics.Absorbed.WithLabelValues(string(source)).Inc()
		logger.DebugX(module, "[Display] %s trigger absorbed, report already shown", source)
		return false
	}
	logger.DebugX(module, "[Display] displaying startup report on %s trigger", source)
	o.run()
	return true
}

// claim moves any non-terminal state to Displayed. Only one caller wins.
func (o *Orchestrator) claim() bool {
	for {
		cur := o.state.Load()
		if State(cur) == Displayed {
			return false
		}
		if o.state.CompareAndSwap(cur, int32(Displayed)) {
			return true
		}
	}
}

// Shutdown closes the startup window. Triggers arriving afterwards are
// absorbed, and fn runs under the pipeline lock so it can never print inside
// a flush that is already under way.
func (o *Orchestrator) Shutdown(fn func()) {
	claimed := o.claim()
	o.cfg.Timer.CancelAll()

	o.pipeline.Lock()
	if fn != nil {
		fn()
	}
	o.pipeline.Unlock()

	if claimed {
		logger.DebugX(module, "[Display] window closed before the report was shown")
		o.doneOnce.Do(func() { close(o.done) })
	}
}

func (o *Orchestrator) run() {
	defer o.doneOnce.Do(func() { close(o.done) })
	if err := o.display(); err != nil {
		o.cfg.OnFatal(err)
	}
}

func (o *Orchestrator) display() error {
	o.pipeline.Lock()
	defer o.pipeline.Unlock()

	o.cfg.Timer.CancelAll()

	start := time.Now()
	staged := output.NewCache(nil)
	if err := o.prepare(staged); err != nil {
		o.cfg.Report.Clear()
		o.cfg.Metrics.observe(start, false)
		return err
	}
	o.commit(staged)
	o.cfg.Report.Flush()
	o.cfg.Metrics.observe(start, true)
	return nil
}

// commit hands fully rendered lines to the report. Lines are staged first so
// a fatal layout error never leaves part of a block on an immediate report.
func (o *Orchestrator) commit(staged *output.Cache) {
	for _, line := range staged.Lines() {
		o.cfg.Report.AddLine(line)
	}
}

func (o *Orchestrator) prepare(r output.Report) error {
	boot := o.cfg.Bootstrap
	plugins := o.cfg.Registry.List()
	if len(plugins) == 0 {
		return boot.PrepareNoPlugins(r)
	}

	var successful, failed []string
	for _, p := range plugins {
		res := o.cfg.Processor.ProcessHooks(p.Name, p.Hooks, o.cfg.Oracle)
		if res == nil {
			res = hook.EvaluateAll(p.Hooks, o.cfg.Oracle)
		}
		if err := boot.PreparePluginHooks(r, p, res); err != nil {
			return err
		}

		ok := res.AllRequiredSuccessful()
		if err := o.cfg.Registry.SetHookStatus(p.Name, ok); err != nil {
			logger.WarnX(module, "[Display] record hook status for %s: %v", p.Name, err)
		}
		if err := o.cfg.Registry.MarkInitialized(p.Name); err != nil {
			logger.WarnX(module, "[Display] mark %s initialized: %v", p.Name, err)
		}
		if ok {
			successful = append(successful, p.Name)
		} else {
			failed = append(failed, p.Name)
		}
	}
	return boot.PrepareActivationSummary(r, successful, failed)
}

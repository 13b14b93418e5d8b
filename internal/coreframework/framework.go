// Package coreframework wires the startup diagnostics together: plugins
// register through the API, and the framework shows one uninterrupted
// report once the host is ready.
package coreframework

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/kiosk404/coreframework/internal/coreframework/bootstrap"
	"github.com/kiosk404/coreframework/internal/coreframework/config"
	"github.com/kiosk404/coreframework/internal/coreframework/display"
	"github.com/kiosk404/coreframework/internal/coreframework/hook"
	"github.com/kiosk404/coreframework/internal/coreframework/output"
	"github.com/kiosk404/coreframework/internal/coreframework/registry"
	"github.com/kiosk404/coreframework/internal/coreframework/text"
	"github.com/kiosk404/coreframework/pkg/logger"
)

const module = "coreframework"

// ErrDisabled is returned by API calls after the framework shut down.
var ErrDisabled = errors.New("coreframework is disabled")

// Config holds everything needed to build a Framework.
// Follows the Config -> Complete() -> New() pattern.
type Config struct {
	// Resources are the loaded framework and language files.
	Resources *config.Config

	// Oracle answers plugin presence questions. Required.
	Oracle hook.Oracle

	// Sink prints rendered lines. Defaults to the log sink.
	Sink output.Sink

	// Timer schedules the fallback display. Defaults to time.AfterFunc.
	Timer display.Timer

	// Processor evaluates hooks per plugin. Defaults to presence checks.
	Processor hook.Processor

	// Metrics is where orchestrator collectors are registered. Nil keeps
	// them unregistered.
	Metrics prometheus.Registerer
}

// CompletedConfig is the validated and completed framework configuration.
type CompletedConfig struct {
	*Config
}

// Complete fills in defaults for unset collaborators.
func (c *Config) Complete() CompletedConfig {
	if c.Resources == nil {
		c.Resources = config.Defaults()
	}
	if c.Sink == nil {
		c.Sink = output.LogSink{}
	}
	if c.Timer == nil {
		c.Timer = display.NewAfterFuncTimer()
	}
	if c.Processor == nil {
		c.Processor = hook.PresenceProcessor
	}
	return CompletedConfig{c}
}

// New creates a Framework from the completed configuration.
func (c CompletedConfig) New() (*Framework, error) {
	if c.Oracle == nil {
		return nil, fmt.Errorf("coreframework: presence oracle is required")
	}
	settings := c.Resources.Framework
	lang := c.Resources.Language
	engine := NewEngine(c.Resources)

	mode := output.Mode(settings.GetString("output.mode", string(output.ModeCached)))
	report := output.NewReport(mode, c.Sink)

	f := &Framework{
		windowID:  uuid.NewString(),
		resources: c.Resources,
		engine:    engine,
		registry:  registry.New(),
		sink:      c.Sink,
		events:    newEventBus(),
		stopped:   make(chan struct{}),
	}
	f.boot = bootstrap.New(engine, settings, lang, c.Oracle)
	f.orchestrator = display.New(display.Config{
		Registry:        f.registry,
		Bootstrap:       f.boot,
		Report:          report,
		Oracle:          c.Oracle,
		Processor:       c.Processor,
		Timer:           c.Timer,
		Metrics:         display.NewMetrics(c.Metrics),
		FallbackDelay:   settings.GetDuration("startup.fallback_delay", display.DefaultFallbackDelay),
		ExpectedPlugins: len(settings.GetStringList("detection.core_plugins")),
		OnFatal:         f.fatal,
	})
	f.api = &API{fw: f}
	go f.awaitDisplay()

	f.log().Infof("[CoreFramework] loaded, output mode %s, ready for plugin registration", mode)
	return f, nil
}

// NewEngine builds the text engine described by res.
func NewEngine(res *config.Config) *text.Engine {
	return text.NewEngine(text.Settings{
		LineLength:    res.Framework.GetInt("formatting.line_length", text.DefaultLineLength),
		MinPadding:    res.Framework.GetInt("formatting.min_padding", text.DefaultMinPadding),
		PrefixEnabled: res.Framework.GetBool("prefix.enabled", true),
		Prefix:        res.Language.GetString("prefix", text.DefaultPrefix),
	})
}

// Framework is one startup window's worth of diagnostics.
type Framework struct {
	windowID  string
	resources *config.Config
	engine    *text.Engine
	registry  *registry.Registry
	boot      *bootstrap.Bootstrap
	sink      output.Sink
	events    *eventBus

	orchestrator *display.Orchestrator
	api          *API

	disabled    atomic.Bool
	disableOnce sync.Once
	disableErr  error
	stopped     chan struct{}
}

func (f *Framework) log() *logrus.Entry {
	return logger.WithFields(logger.Fields{"module": module, "window": f.windowID})
}

// Enable buffers the startup header and arms the fallback display. A fatal
// layout error disables the framework and is returned.
func (f *Framework) Enable() error {
	if f.disabled.Load() {
		return ErrDisabled
	}
	if err := f.orchestrator.Enable(); err != nil {
		f.fatal(err)
		return err
	}
	f.log().Debugf("[CoreFramework] enabled, fallback display armed")
	f.events.fire(EventEnabled, nil)
	return nil
}

func (f *Framework) awaitDisplay() {
	select {
	case <-f.orchestrator.Done():
	case <-f.stopped:
		return
	}
	if f.disabled.Load() {
		return
	}
	f.log().Infof("[CoreFramework] startup display completed")
	f.events.fire(EventDisplayed, nil)
}

// OnServerLoad is the host's "fully loaded" signal.
func (f *Framework) OnServerLoad() {
	if f.disabled.Load() {
		return
	}
	f.orchestrator.OnReady()
}

// Disable shows the shutdown message and stops the fallback timer. Only the
// first call has an effect.
func (f *Framework) Disable() {
	f.disable(nil)
}

func (f *Framework) disable(reason error) {
	f.disableOnce.Do(func() {
		f.disableErr = reason
		f.disabled.Store(true)
		close(f.stopped)

		msg, err := f.boot.ShutdownMessage()
		if err != nil {
			f.log().Errorf("[CoreFramework] render shutdown message: %v", err)
			msg = bootstrap.DefaultShutdownMessage
		}
		f.orchestrator.Shutdown(func() { f.sink.Emit(msg) })

		if reason != nil {
			f.log().Errorf("[CoreFramework] disabled after fatal error: %v", reason)
		} else {
			f.log().Infof("[CoreFramework] disabled")
		}
		f.events.fire(EventDisabled, reason)
	})
}

// fatal stops the framework. There is no partial report and no retry.
func (f *Framework) fatal(err error) {
	var perr *text.PaddingError
	if errors.As(err, &perr) {
		f.log().Errorf("[CoreFramework] line content too long for line_length %d: content %d, min padding %d, line %q",
			perr.TargetWidth, perr.ContentLength, perr.MinPadding, perr.Line)
	}
	f.disable(err)
}

// Subscribe registers h for event.
func (f *Framework) Subscribe(event Event, h EventHandler) {
	f.events.subscribe(event, h)
}

// API returns the plugin-facing API.
func (f *Framework) API() *API {
	return f.api
}

// Registry returns the plugin registry.
func (f *Framework) Registry() *registry.Registry {
	return f.registry
}

// Resources returns the loaded framework and language files.
func (f *Framework) Resources() *config.Config {
	return f.resources
}

// Engine returns the text engine built from configuration.
func (f *Framework) Engine() *text.Engine {
	return f.engine
}

// State returns the display state.
func (f *Framework) State() display.State {
	return f.orchestrator.State()
}

// Done is closed once the display pipeline has finished.
func (f *Framework) Done() <-chan struct{} {
	return f.orchestrator.Done()
}

// Disabled reports whether the framework shut down, and why.
func (f *Framework) Disabled() (bool, error) {
	if !f.disabled.Load() {
		return false, nil
	}
	return true, f.disableErr
}

// WindowID identifies this startup window in logs.
func (f *Framework) WindowID() string {
	return f.windowID
}

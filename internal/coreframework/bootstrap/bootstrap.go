// Package bootstrap prepares the lines of the startup report from the
// language templates. It only appends to a report; flushing belongs to the
// display orchestrator.
package bootstrap

import (
	"strconv"
	"strings"

	"github.com/kiosk404/coreframework/internal/coreframework/config"
	"github.com/kiosk404/coreframework/internal/coreframework/hook"
	"github.com/kiosk404/coreframework/internal/coreframework/output"
	"github.com/kiosk404/coreframework/internal/coreframework/registry"
	"github.com/kiosk404/coreframework/internal/coreframework/text"
)

const (
	minHeaderLines     = 1
	maxHeaderLines     = 8
	defaultHeaderLines = 3

	pluginListSeparator = " - "

	// DefaultShutdownMessage is used when the language file has none.
	DefaultShutdownMessage = "CoreFramework disabled."
	// DefaultNoPluginsMessage is used when the language file has none.
	DefaultNoPluginsMessage = "No plugins registered with CoreFramework yet."
	// DefaultCoreAPIVersion is reported when coreapi.version is unset.
	DefaultCoreAPIVersion = "unknown"
)

// Bootstrap renders report sections through the text engine.
type Bootstrap struct {
	engine   *text.Engine
	settings config.Provider
	lang     config.Provider
	oracle   hook.Oracle
}

// New creates a Bootstrap.
func New(engine *text.Engine, settings, lang config.Provider, oracle hook.Oracle) *Bootstrap {
	return &Bootstrap{engine: engine, settings: settings, lang: lang, oracle: oracle}
}

// HeaderLines returns header.lines clamped to [1, 8].
func (b *Bootstrap) HeaderLines() int {
	n := b.settings.GetInt("header.lines", defaultHeaderLines)
	if n < minHeaderLines {
		return minHeaderLines
	}
	if n > maxHeaderLines {
		return maxHeaderLines
	}
	return n
}

// PrepareHeader appends the startup header: banner lines, initialization
// notice, API info, detected core plugins and a closing separator. With the
// header disabled only the initialization notice, API info and detected
// plugins are prepared.
func (b *Bootstrap) PrepareHeader(r output.Report) error {
	if !b.settings.GetBool("header.enabled", true) {
		if err := b.add(r, "startup.initialization_start"); err != nil {
			return err
		}
		if err := b.PrepareAPIInfo(r); err != nil {
			return err
		}
		return b.PrepareDetectedPlugins(r)
	}

	for i := 1; i <= b.HeaderLines(); i++ {
		tpl := b.lang.GetString("startup.header_line"+strconv.Itoa(i), "")
		if tpl == "" {
			continue
		}
		if err := b.addTemplate(r, tpl); err != nil {
			return err
		}
	}
	if err := b.add(r, "startup.initialization_start"); err != nil {
		return err
	}
	if err := b.PrepareAPIInfo(r); err != nil {
		return err
	}
	if err := b.PrepareDetectedPlugins(r); err != nil {
		return err
	}
	return b.add(r, "startup.separator")
}

// PrepareAPIInfo appends the API detection lines.
func (b *Bootstrap) PrepareAPIInfo(r output.Report) error {
	if err := b.add(r, "startup.detecting_api"); err != nil {
		return err
	}
	version := b.settings.GetString("coreapi.version", DefaultCoreAPIVersion)
	return b.add(r, "startup.api_found", "version", version)
}

// PrepareDetectedPlugins appends one line per configured core plugin that
// the oracle reports present.
func (b *Bootstrap) PrepareDetectedPlugins(r output.Report) error {
	if err := b.add(r, "startup.detecting_plugins"); err != nil {
		return err
	}
	for _, name := range b.settings.GetStringList("detection.core_plugins") {
		if b.oracle == nil || !b.oracle.IsPresent(name) {
			continue
		}
		version, _ := b.oracle.VersionOf(name)
		if err := b.add(r, "startup.plugin_detected", "plugin", name, "version", version); err != nil {
			return err
		}
	}
	return nil
}

// PrepareNoPlugins appends the informational line for an empty registry and
// the closing separator.
func (b *Bootstrap) PrepareNoPlugins(r output.Report) error {
	tpl := b.lang.GetString("startup.no_plugins", DefaultNoPluginsMessage)
	if err := b.addTemplate(r, tpl); err != nil {
		return err
	}
	return b.add(r, "startup.separator")
}

// PreparePluginHooks appends one plugin's hook block. Required and optional
// groups are only present when the plugin declared hooks of that kind. res
// carries the evaluations; lines follow declaration order within a group.
func (b *Bootstrap) PreparePluginHooks(r output.Report, p registry.RegisteredPlugin, res *hook.Result) error {
	if err := b.add(r, "startup.separator"); err != nil {
		return err
	}
	if err := b.add(r, "plugin_hooks.hooks_header"); err != nil {
		return err
	}
	if err := b.add(r, "plugin_hooks.header",
		"plugin", p.Name, "version", p.Version, "codename", p.Codename); err != nil {
		return err
	}

	available := res.Successes()
	required, optional := hook.Split(p.Hooks)
	if len(required) > 0 {
		if err := b.add(r, "plugin_hooks.required_header"); err != nil {
			return err
		}
		if err := b.prepareHookLines(r, required, available); err != nil {
			return err
		}
	}
	if len(optional) > 0 {
		if err := b.add(r, "plugin_hooks.optional_header"); err != nil {
			return err
		}
		if err := b.prepareHookLines(r, optional, available); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bootstrap) prepareHookLines(r output.Report, reqs []hook.Requirement, available map[string]bool) error {
	for _, req := range reqs {
		key := "plugin_hooks.hook_failed"
		if available[req.PluginName] {
			key = "plugin_hooks.hook_success"
		}
		if err := b.add(r, key, "plugin", req.PluginName, "version", req.MinVersion); err != nil {
			return err
		}
	}
	return nil
}

// PrepareActivationSummary appends the summary naming successful and failed
// plugins. Empty groups are omitted.
func (b *Bootstrap) PrepareActivationSummary(r output.Report, successful, failed []string) error {
	if err := b.add(r, "startup.separator"); err != nil {
		return err
	}
	if err := b.add(r, "startup.separator"); err != nil {
		return err
	}
	if err := b.add(r, "activation.header"); err != nil {
		return err
	}
	if len(successful) > 0 {
		if err := b.add(r, "activation.success"); err != nil {
			return err
		}
		if err := b.add(r, "activation.plugin_list",
			"plugins", strings.Join(successful, pluginListSeparator)); err != nil {
			return err
		}
	}
	if len(failed) > 0 {
		if err := b.add(r, "activation.failed"); err != nil {
			return err
		}
		if err := b.add(r, "activation.failed_plugin_list",
			"plugins", strings.Join(failed, pluginListSeparator)); err != nil {
			return err
		}
	}
	return b.add(r, "startup.separator")
}

// ShutdownMessage renders the message shown when the framework is disabled.
func (b *Bootstrap) ShutdownMessage() (string, error) {
	return b.engine.Render(b.lang.GetString("shutdown.message", DefaultShutdownMessage))
}

func (b *Bootstrap) add(r output.Report, key string, pairs ...string) error {
	return b.addTemplate(r, b.lang.GetString(key, ""), pairs...)
}

func (b *Bootstrap) addTemplate(r output.Report, tpl string, pairs ...string) error {
	line, err := b.engine.Render(tpl, pairs...)
	if err != nil {
		return err
	}
	r.AddLine(line)
	return nil
}

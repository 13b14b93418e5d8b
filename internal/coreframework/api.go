package coreframework

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/kiosk404/coreframework/internal/coreframework/hook"
	"github.com/kiosk404/coreframework/internal/coreframework/registry"
)

// Version and Codename identify this build of the framework. Overridden at
// link time.
var (
	Version  = "2.0.0"
	Codename = "HORIZON"
)

// API is the registration surface given to dependent plugins. It holds an
// explicit reference to its framework; there is no global lookup.
type API struct {
	fw *Framework
}

// RegisterPlugin records a plugin and its hooks, then checks whether every
// expected plugin has registered. Registering a name again replaces the
// earlier record.
func (a *API) RegisterPlugin(name, version, codename string, hooks ...hook.Requirement) (registry.RegisteredPlugin, error) {
	if a.fw.disabled.Load() {
		return registry.RegisteredPlugin{}, ErrDisabled
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return registry.RegisteredPlugin{}, fmt.Errorf("register plugin: empty name")
	}
	for _, h := range hooks {
		if strings.TrimSpace(h.PluginName) == "" {
			return registry.RegisteredPlugin{}, fmt.Errorf("register plugin %s: hook with empty plugin name", name)
		}
	}

	stored := a.fw.registry.Register(name, version, codename, hooks)
	a.fw.log().Debugf("[CoreFramework] registered %s %s with %d hooks", name, version, len(hooks))
	a.fw.events.fire(EventPluginRegistered, stored)

	a.fw.orchestrator.CheckEarlyCompletion()
	return stored, nil
}

// IsRegistered reports whether name has registered.
func (a *API) IsRegistered(name string) bool {
	return a.fw.registry.Contains(name)
}

// Plugin returns the stored record for name.
func (a *API) Plugin(name string) (registry.RegisteredPlugin, error) {
	return a.fw.registry.Get(name)
}

// CoreAPIVersion is the configured coreapi.version.
func (a *API) CoreAPIVersion() string {
	return a.fw.resources.Framework.GetString("coreapi.version", "unknown")
}

// FrameworkVersion is the version of this framework build.
func (a *API) FrameworkVersion() string {
	return Version
}

// IsAPIVersionCompatible reports whether the configured core API satisfies
// required: same major version and not older. Versions that are not semantic
// versions (including "unknown") are accepted.
func (a *API) IsAPIVersionCompatible(required string) bool {
	return apiCompatible(a.CoreAPIVersion(), required)
}

func apiCompatible(current, required string) bool {
	cur, req := canonical(current), canonical(required)
	if !semver.IsValid(cur) || !semver.IsValid(req) {
		return true
	}
	if semver.Major(cur) != semver.Major(req) {
		return false
	}
	return semver.Compare(cur, req) >= 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

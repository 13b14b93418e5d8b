package options

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
)

// PluginsOptions configures the simulated plugin host: where manifests live
// and when the host reports itself fully loaded.
type PluginsOptions struct {
	// Dir holds one manifest per installed plugin.
	Dir string `json:"dir" mapstructure:"dir"`
	// Allow lists plugins that may self-register. Empty allows all.
	Allow []string `json:"allow" mapstructure:"allow"`
	// Deny lists plugins that never self-register. Deny wins over Allow.
	Deny []string `json:"deny" mapstructure:"deny"`
	// Watch keeps the presence index in sync with Dir.
	Watch bool `json:"watch" mapstructure:"watch"`
	// ReadyAfter delays the host's ready signal.
	ReadyAfter time.Duration `json:"ready-after" mapstructure:"ready-after"`
	// NoReady suppresses the ready signal so only the fallback timer can
	// trigger the display.
	NoReady bool `json:"no-ready" mapstructure:"no-ready"`
}

// NewPluginsOptions returns a new instance of PluginsOptions.
func NewPluginsOptions() *PluginsOptions {
	return &PluginsOptions{
		Dir:        "plugins",
		Allow:      []string{},
		Deny:       []string{},
		ReadyAfter: 500 * time.Millisecond,
	}
}

// Validate checks PluginsOptions fields.
func (o *PluginsOptions) Validate() []error {
	var errs []error

	if o.Dir == "" {
		errs = append(errs, fmt.Errorf("plugins.dir must not be empty"))
	}
	if o.ReadyAfter < 0 {
		errs = append(errs, fmt.Errorf("plugins.ready-after must not be negative, got %s", o.ReadyAfter))
	}

	denied := make(map[string]bool, len(o.Deny))
	for _, name := range o.Deny {
		denied[name] = true
	}
	for _, name := range o.Allow {
		if denied[name] {
			errs = append(errs, fmt.Errorf("plugin %q is both allowed and denied", name))
		}
	}

	return errs
}

// Complete resolves Dir to an absolute path.
func (o *PluginsOptions) Complete() error {
	abs, err := filepath.Abs(o.Dir)
	if err != nil {
		return fmt.Errorf("resolve plugins dir %q: %w", o.Dir, err)
	}
	o.Dir = abs
	return nil
}

// Allows reports whether name may self-register.
func (o *PluginsOptions) Allows(name string) bool {
	for _, d := range o.Deny {
		if d == name {
			return false
		}
	}
	if len(o.Allow) == 0 {
		return true
	}
	for _, a := range o.Allow {
		if a == name {
			return true
		}
	}
	return false
}

// AddFlags adds flags for the plugins options.
func (o *PluginsOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Dir, "plugins.dir", o.Dir, "Directory of plugin manifests (yml, yaml, json, toml).")
	fs.StringSliceVar(&o.Allow, "plugins.allow", o.Allow, "Plugins allowed to self-register. Empty allows all.")
	fs.StringSliceVar(&o.Deny, "plugins.deny", o.Deny, "Plugins that never self-register.")
	fs.BoolVar(&o.Watch, "plugins.watch", o.Watch, "Reload the presence index when manifests change.")
	fs.DurationVar(&o.ReadyAfter, "plugins.ready-after", o.ReadyAfter, "Delay before the host reports it is fully loaded.")
	fs.BoolVar(&o.NoReady, "plugins.no-ready", o.NoReady, "Never report the host as loaded; only the fallback timer displays.")
}

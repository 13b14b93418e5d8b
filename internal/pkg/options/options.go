// Package options holds the command line options of the corefw host.
package options

import (
	"github.com/spf13/pflag"
)

// Options aggregates every option group. The mapstructure keys match the
// flag prefixes so a bound viper instance can unmarshal straight into it.
type Options struct {
	Framework *FrameworkOptions `json:"framework" mapstructure:"framework"`
	Plugins   *PluginsOptions   `json:"plugins" mapstructure:"plugins"`
	Log       *LogOptions       `json:"log" mapstructure:"log"`
}

// NewOptions returns options with every group at its defaults.
func NewOptions() *Options {
	return &Options{
		Framework: NewFrameworkOptions(),
		Plugins:   NewPluginsOptions(),
		Log:       NewLogOptions(),
	}
}

// AddFlags adds the flags of every group.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Framework.AddFlags(fs)
	o.Plugins.AddFlags(fs)
	o.Log.AddFlags(fs)
}

// Validate collects the errors of every group.
func (o *Options) Validate() []error {
	var errs []error
	errs = append(errs, o.Framework.Validate()...)
	errs = append(errs, o.Plugins.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return errs
}

// Complete fills in derived values after flags are parsed.
func (o *Options) Complete() error {
	return o.Plugins.Complete()
}

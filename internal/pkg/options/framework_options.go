package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kiosk404/coreframework/internal/coreframework/config"
	"github.com/kiosk404/coreframework/internal/coreframework/output"
)

// FrameworkOptions points at the configuration files and overrides single
// settings from the command line. Zero values leave the file setting alone.
type FrameworkOptions struct {
	Config         string        `json:"config" mapstructure:"config"`
	Lang           string        `json:"lang" mapstructure:"lang"`
	LineLength     int           `json:"line-length" mapstructure:"line-length"`
	MinPadding     int           `json:"min-padding" mapstructure:"min-padding"`
	FallbackDelay  time.Duration `json:"fallback-delay" mapstructure:"fallback-delay"`
	OutputMode     string        `json:"output-mode" mapstructure:"output-mode"`
	CorePlugins    []string      `json:"core-plugins" mapstructure:"core-plugins"`
	CoreAPIVersion string        `json:"coreapi-version" mapstructure:"coreapi-version"`
}

// NewFrameworkOptions returns options that override nothing.
func NewFrameworkOptions() *FrameworkOptions {
	return &FrameworkOptions{
		MinPadding:  -1,
		CorePlugins: []string{},
	}
}

// Validate checks FrameworkOptions fields.
func (o *FrameworkOptions) Validate() []error {
	var errs []error
	if o.LineLength < 0 {
		errs = append(errs, fmt.Errorf("framework.line-length must not be negative, got %d", o.LineLength))
	}
	if o.MinPadding < -1 {
		errs = append(errs, fmt.Errorf("framework.min-padding must not be negative, got %d", o.MinPadding))
	}
	if o.FallbackDelay < 0 {
		errs = append(errs, fmt.Errorf("framework.fallback-delay must not be negative, got %s", o.FallbackDelay))
	}
	switch output.Mode(o.OutputMode) {
	case "", output.ModeCached, output.ModeImmediate:
	default:
		errs = append(errs, fmt.Errorf("invalid output mode %q, must be '%s' or '%s'",
			o.OutputMode, output.ModeCached, output.ModeImmediate))
	}
	return errs
}

// Load reads the configured files and applies the overrides.
func (o *FrameworkOptions) Load() (*config.Config, error) {
	cfg, err := config.Load(o.Config, o.Lang)
	if err != nil {
		return nil, err
	}
	o.Apply(cfg)
	return cfg, nil
}

// Apply writes every set override into cfg.
func (o *FrameworkOptions) Apply(cfg *config.Config) {
	fw := cfg.Framework
	if o.LineLength > 0 {
		fw.Set("formatting.line_length", o.LineLength)
	}
	if o.MinPadding >= 0 {
		fw.Set("formatting.min_padding", o.MinPadding)
	}
	if o.FallbackDelay > 0 {
		fw.Set("startup.fallback_delay", o.FallbackDelay)
	}
	if o.OutputMode != "" {
		fw.Set("output.mode", o.OutputMode)
	}
	if len(o.CorePlugins) > 0 {
		fw.Set("detection.core_plugins", o.CorePlugins)
	}
	if o.CoreAPIVersion != "" {
		fw.Set("coreapi.version", o.CoreAPIVersion)
	}
}

// AddFlags adds flags for the framework options.
func (o *FrameworkOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Config, "framework.config", o.Config, "Framework settings file. Embedded defaults when empty.")
	fs.StringVar(&o.Lang, "framework.lang", o.Lang, "Language file with the report templates. Embedded defaults when empty.")
	fs.IntVar(&o.LineLength, "framework.line-length", o.LineLength, "Override formatting.line_length.")
	fs.IntVar(&o.MinPadding, "framework.min-padding", o.MinPadding, "Override formatting.min_padding (-1 keeps the file value).")
	fs.DurationVar(&o.FallbackDelay, "framework.fallback-delay", o.FallbackDelay, "Override startup.fallback_delay.")
	fs.StringVar(&o.OutputMode, "framework.output-mode", o.OutputMode, "Override output.mode: 'cached' or 'immediate'.")
	fs.StringSliceVar(&o.CorePlugins, "framework.core-plugins", o.CorePlugins, "Override detection.core_plugins.")
	fs.StringVar(&o.CoreAPIVersion, "framework.coreapi-version", o.CoreAPIVersion, "Override coreapi.version.")
}

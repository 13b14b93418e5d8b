package options

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// LogOptions configures the process logger and console colors.
type LogOptions struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	NoColor bool   `json:"no-color" mapstructure:"no-color"`
}

// NewLogOptions logs at info level to stderr.
func NewLogOptions() *LogOptions {
	return &LogOptions{Level: "info"}
}

// Validate checks LogOptions fields.
func (o *LogOptions) Validate() []error {
	if _, err := logrus.ParseLevel(o.Level); err != nil {
		return []error{fmt.Errorf("invalid log level %q: %w", o.Level, err)}
	}
	return nil
}

// AddFlags adds flags for the log options.
func (o *LogOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Log level: debug, info, warn, error.")
	fs.StringVar(&o.File, "log.file", o.File, "Write logs to this file instead of stderr.")
	fs.BoolVar(&o.NoColor, "log.no-color", o.NoColor, "Disable ANSI colors in console output.")
}

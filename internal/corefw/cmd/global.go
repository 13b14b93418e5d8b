package cmd

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/kiosk404/coreframework/internal/corefw/cmd/util"
	"github.com/kiosk404/coreframework/internal/pkg/options"
	"github.com/kiosk404/coreframework/pkg/logger"
)

const envPrefix = "COREFW"

// bindEnv lets COREFW_FRAMEWORK_LINE_LENGTH and friends stand in for flags.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// loadOptions refreshes opts from flags and environment, then validates and
// completes them.
func loadOptions(v *viper.Viper, opts *options.Options) error {
	if err := v.Unmarshal(opts); err != nil {
		return err
	}
	if err := util.Aggregate(opts.Validate()); err != nil {
		return err
	}
	return opts.Complete()
}

func initLogging(opts *options.LogOptions) error {
	if err := logger.SetLevel(opts.Level); err != nil {
		return err
	}
	return logger.InitLog(opts.File)
}

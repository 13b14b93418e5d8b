package cmd

import (
	"fmt"

	"github.com/kiosk404/coreframework/internal/coreframework"
)

const bannerText = `
   ____               _____                                            _
  / ___|___  _ __ ___|  ___| __ __ _ _ __ ___   _____      _____  _ __| | __
 | |   / _ \| '__/ _ \ |_ | '__/ _' | '_ ' _ \ / _ \ \ /\ / / _ \| '__| |/ /
 | |__| (_) | | |  __/  _|| | | (_| | | | | | |  __/\ V  V / (_) | |  |   <
  \____\___/|_|  \___|_|  |_|  \__,_|_| |_| |_|\___| \_/\_/ \___/|_|  |_|\_\

        Startup diagnostics for cooperating plugins
`

// Banner returns the CLI banner string.
func Banner() string {
	return fmt.Sprintf("%s\n  Version: %s (%s)\n", bannerText, coreframework.Version, coreframework.Codename)
}

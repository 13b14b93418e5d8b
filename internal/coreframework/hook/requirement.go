// Package hook describes plugin-to-plugin dependencies ("hooks") and
// evaluates them against the set of plugins present on the host.
package hook

// AnyVersion is the MinVersion sentinel for an unconstrained requirement.
const AnyVersion = "any"

// Requirement declares that a plugin hooks into another plugin. It is an
// immutable value created at registration time.
//
// MinVersion is recorded and shown in reports but is not compared against the
// detected version: availability is decided by presence alone.
type Requirement struct {
	PluginName string `json:"plugin_name"`
	MinVersion string `json:"min_version"`
	Required   bool   `json:"required"`
}

// Required builds a required hook. An empty minVersion means AnyVersion.
func Required(pluginName, minVersion string) Requirement {
	return newRequirement(pluginName, minVersion, true)
}

// Optional builds an optional hook. An empty minVersion means AnyVersion.
func Optional(pluginName, minVersion string) Requirement {
	return newRequirement(pluginName, minVersion, false)
}

func newRequirement(pluginName, minVersion string, required bool) Requirement {
	if minVersion == "" {
		minVersion = AnyVersion
	}
	return Requirement{PluginName: pluginName, MinVersion: minVersion, Required: required}
}

// Split partitions reqs into required and optional, preserving order.
func Split(reqs []Requirement) (required, optional []Requirement) {
	for _, r := range reqs {
		if r.Required {
			required = append(required, r)
		} else {
			optional = append(optional, r)
		}
	}
	return required, optional
}

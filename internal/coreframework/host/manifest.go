// Package host models the plugin host around the framework: the plugins
// installed in a directory, and the "fully loaded" signal.
package host

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bytedance/gg/gptr"
	"github.com/spf13/viper"

	"github.com/kiosk404/coreframework/internal/coreframework/hook"
)

// manifestExts are the file types read as plugin manifests.
var manifestExts = map[string]bool{".yml": true, ".yaml": true, ".json": true, ".toml": true}

// HookManifest declares one hook in a plugin manifest.
type HookManifest struct {
	Plugin     string `json:"plugin" mapstructure:"plugin"`
	MinVersion string `json:"min_version,omitempty" mapstructure:"min_version"`
	Required   bool   `json:"required" mapstructure:"required"`
}

// Manifest describes one installed plugin.
type Manifest struct {
	Name     string `json:"name" mapstructure:"name"`
	Version  string `json:"version" mapstructure:"version"`
	Codename string `json:"codename,omitempty" mapstructure:"codename"`
	// Enabled defaults to true. A disabled plugin is installed but not
	// present.
	Enabled *bool `json:"enabled,omitempty" mapstructure:"enabled"`
	// Register marks plugins that register themselves with the framework.
	Register bool           `json:"register" mapstructure:"register"`
	Hooks    []HookManifest `json:"hooks,omitempty" mapstructure:"hooks"`

	Path string `json:"path" mapstructure:"-"`
}

// IsEnabled reports whether the plugin loads.
func (m Manifest) IsEnabled() bool {
	return gptr.IndirectOr(m.Enabled, true)
}

// Requirements converts the declared hooks.
func (m Manifest) Requirements() []hook.Requirement {
	reqs := make([]hook.Requirement, 0, len(m.Hooks))
	for _, h := range m.Hooks {
		if h.Required {
			reqs = append(reqs, hook.Required(h.Plugin, h.MinVersion))
		} else {
			reqs = append(reqs, hook.Optional(h.Plugin, h.MinVersion))
		}
	}
	return reqs
}

// Validate checks required fields.
func (m Manifest) Validate() []error {
	var errs []error
	if strings.TrimSpace(m.Name) == "" {
		errs = append(errs, fmt.Errorf("%s: name is required", m.Path))
	}
	for i, h := range m.Hooks {
		if strings.TrimSpace(h.Plugin) == "" {
			errs = append(errs, fmt.Errorf("%s: hooks[%d] has no plugin name", m.Path, i))
		}
	}
	return errs
}

// LoadManifest reads one manifest file.
func LoadManifest(path string) (Manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := v.Unmarshal(&m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	m.Path = path
	if m.Enabled == nil {
		m.Enabled = gptr.Of(true)
	}
	return m, nil
}

// LoadManifests reads every manifest in dir, sorted by file name. Files that
// fail to parse or validate are returned as errors alongside the good ones.
func LoadManifests(dir string) ([]Manifest, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("read plugins dir %s: %w", dir, err)}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var (
		manifests []Manifest
		errs      []error
	)
	for _, entry := range entries {
		if entry.IsDir() || !isManifest(entry.Name()) {
			continue
		}
		m, err := LoadManifest(filepath.Join(dir, entry.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if verrs := m.Validate(); len(verrs) > 0 {
			errs = append(errs, verrs...)
			continue
		}
		manifests = append(manifests, m)
	}
	return manifests, errs
}

func isManifest(name string) bool {
	return manifestExts[strings.ToLower(filepath.Ext(name))]
}

// Package config loads the framework and language files and exposes them
// as read-only value providers.
package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/kiosk404/coreframework/pkg/logger"
)

//go:embed defaults/*.yml
var defaultFiles embed.FS

const (
	frameworkDefaults = "defaults/framework.yml"
	languageDefaults  = "defaults/global.yml"
)

// ErrMissingResource is returned when a configured file does not exist.
var ErrMissingResource = errors.New("missing configuration resource")

// Provider is a read-only view of loaded configuration. Values never change
// after Load returns.
type Provider interface {
	GetBool(key string, def bool) bool
	GetInt(key string, def int) int
	GetString(key string, def string) string
	GetStringList(key string) []string
}

// Values is a viper-backed Provider.
type Values struct {
	v *viper.Viper
}

var _ Provider = (*Values)(nil)

// GetBool returns the boolean at key, or def when unset.
func (c *Values) GetBool(key string, def bool) bool {
	if !c.v.IsSet(key) {
		return def
	}
	return c.v.GetBool(key)
}

// GetInt returns the integer at key, or def when unset.
func (c *Values) GetInt(key string, def int) int {
	if !c.v.IsSet(key) {
		return def
	}
	return c.v.GetInt(key)
}

// GetString returns the string at key, or def when unset.
func (c *Values) GetString(key string, def string) string {
	if !c.v.IsSet(key) {
		return def
	}
	return c.v.GetString(key)
}

// GetStringList returns the list at key, or nil when unset.
func (c *Values) GetStringList(key string) []string {
	if !c.v.IsSet(key) {
		return nil
	}
	return c.v.GetStringSlice(key)
}

// GetDuration returns the duration at key, or def when unset or invalid.
func (c *Values) GetDuration(key string, def time.Duration) time.Duration {
	if !c.v.IsSet(key) {
		return def
	}
	d := c.v.GetDuration(key)
	if d <= 0 {
		return def
	}
	return d
}

// Keys lists every key known to the provider, sorted by viper.
func (c *Values) Keys() []string {
	return c.v.AllKeys()
}

// Set overrides key. Only used before the values are handed to the framework.
func (c *Values) Set(key string, value any) {
	c.v.Set(key, value)
}

// Config bundles the framework settings and the language templates.
type Config struct {
	Framework *Values
	Language  *Values
}

// Load reads the framework and language files on top of the embedded
// defaults. An empty path means defaults only; a path that does not exist
// fails with ErrMissingResource.
func Load(frameworkPath, languagePath string) (*Config, error) {
	fw, err := load("framework", frameworkDefaults, frameworkPath)
	if err != nil {
		return nil, err
	}
	lang, err := load("language", languageDefaults, languagePath)
	if err != nil {
		return nil, err
	}
	return &Config{Framework: fw, Language: lang}, nil
}

// Defaults returns the embedded configuration without reading any file.
func Defaults() *Config {
	cfg, err := Load("", "")
	if err != nil {
		// embedded files are part of the binary
		panic(err)
	}
	return cfg
}

func load(name, defaultsFile, path string) (*Values, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	raw, err := defaultFiles.ReadFile(defaultsFile)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s defaults: %w", name, err)
	}
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("parse embedded %s defaults: %w", name, err)
	}

	if path == "" {
		return &Values{v: v}, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s file %s", ErrMissingResource, name, path)
		}
		return nil, fmt.Errorf("stat %s file %s: %w", name, path, err)
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return nil, fmt.Errorf("load %s file %s: %w", name, path, err)
	}
	logger.Info("[Config] loaded %s file %s", name, path)
	return &Values{v: v}, nil
}

// New wraps an existing map, mainly for tests and embedding hosts.
func New(values map[string]any) *Values {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return &Values{v: v}
}

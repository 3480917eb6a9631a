// Package config provides configuration management for the wtripctl CLI
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"
)

// EnvConfigPath overrides the default config file location
const EnvConfigPath = "WTRIPCTL_CONFIG"

// Config holds the CLI configuration
type Config struct {
	// CurrentContext is the name of the active context
	CurrentContext string `mapstructure:"current-context" json:"current-context" yaml:"current-context"`
	// Contexts holds the available backend contexts
	Contexts map[string]*Context `mapstructure:"contexts" json:"contexts" yaml:"contexts"`

	path string
}

// Context points the CLI at one trips backend
type Context struct {
	// Name is the context identifier
	Name string `mapstructure:"name" json:"name" yaml:"name"`
	// Server is the backend base URL including its API path
	Server string `mapstructure:"server" json:"server" yaml:"server"`
	// Token is sent as a bearer token when set
	Token string `mapstructure:"token" json:"token,omitempty" yaml:"token,omitempty"`
	// InsecureSkipVerify disables TLS verification
	InsecureSkipVerify bool `mapstructure:"insecure-skip-verify" json:"insecure-skip-verify,omitempty" yaml:"insecure-skip-verify,omitempty"`
}

// defaultConfigPath returns the default config file path
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wtripctl/config.yaml"
	}
	return filepath.Join(home, ".wtripctl", "config.yaml")
}

// Load reads the configuration at path. An empty path falls back to
// $WTRIPCTL_CONFIG and then to ~/.wtripctl/config.yaml. A missing file
// yields an empty configuration that Save will create.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = defaultConfigPath()
	}

	cfg := &Config{
		Contexts: make(map[string]*Context),
		path:     path,
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx == nil {
			delete(cfg.Contexts, name)
			continue
		}
		ctx.Name = name
	}
	return cfg, nil
}

// Path returns the file the configuration is loaded from and saved to
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration to its file, creating the directory
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	contexts := make(map[string]interface{}, len(c.Contexts))
	for name, ctx := range c.Contexts {
		contexts[name] = map[string]interface{}{
			"name":                 name,
			"server":               ctx.Server,
			"token":                ctx.Token,
			"insecure-skip-verify": ctx.InsecureSkipVerify,
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("current-context", c.CurrentContext)
	v.Set("contexts", contexts)
	if err := v.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return os.Chmod(c.path, 0o600)
}

// Names returns the context names in sorted order
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetCurrentContext returns the active context
func (c *Config) GetCurrentContext() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, fmt.Errorf("no current context set")
	}

	ctx, ok := c.Contexts[c.CurrentContext]
	if !ok {
		return nil, fmt.Errorf("current context %q not found", c.CurrentContext)
	}

	return ctx, nil
}

// AddContext adds or updates a context. The first context added becomes
// the current one.
func (c *Config) AddContext(name string, context *Context) {
	if c.Contexts == nil {
		c.Contexts = make(map[string]*Context)
	}
	context.Name = name
	c.Contexts[name] = context
	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
}

// SetCurrentContext sets the active context
func (c *Config) SetCurrentContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return nil
}

// RemoveContext removes a context. Removing the current context clears it.
func (c *Config) RemoveContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)

	if c.CurrentContext == name {
		c.CurrentContext = ""
	}

	return nil
}

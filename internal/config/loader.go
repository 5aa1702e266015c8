package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file is looked up when --config is not given
const DefaultPath = "~/.config/wtc.yml"

// currentUser is swapped out in tests
var currentUser = user.Current

// LoadConfig loads configuration from a YAML file. A missing file is only an
// error when required is set; otherwise an empty Config is returned.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := &Config{}

	resolved, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(resolved); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	if err := loadYAML(resolved, cfg); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// loadYAML loads a YAML file into a struct
func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ApplyDefaults fills zero-value fields with defaults
func (c *Config) ApplyDefaults() {
	if c.Lookback == "" {
		c.Lookback = DefaultLookback
	}
	if c.Limit == 0 {
		c.Limit = DefaultLimit
	}
	if c.Filter == "" {
		c.Filter = DefaultFilter
	}
	if c.WatchInterval == 0 {
		c.WatchInterval = DefaultWatchInterval
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.User == "" {
		if u, err := currentUser(); err == nil {
			c.User = u.Username
		}
	}
	for i, inst := range c.Instances {
		c.Instances[i] = strings.TrimRight(strings.TrimSpace(inst), "/")
	}
}

// ResolveCredentials returns the login to use for an instance. An entry in
// the credentials map wins over the global user and password.
func (c *Config) ResolveCredentials(instance string) (username, password string) {
	username, password = c.User, c.Password

	entry, ok := c.Credentials[instance]
	if !ok {
		want := strings.TrimRight(instance, "/")
		for name, e := range c.Credentials {
			if strings.TrimRight(name, "/") == want {
				entry, ok = e, true
				break
			}
		}
	}
	if !ok {
		return username, password
	}

	if entry.Username != "" {
		username = entry.Username
	}
	if entry.Password != "" {
		password = entry.Password
	} else if entry.PasswordEnv != "" {
		if v := os.Getenv(entry.PasswordEnv); v != "" {
			password = v
		}
	}
	return username, password
}

// NeedsPassword reports whether at least one instance has no password from
// either the global setting or its credentials entry.
func (c *Config) NeedsPassword() bool {
	for _, inst := range c.Instances {
		if _, pw := c.ResolveCredentials(inst); pw == "" {
			return true
		}
	}
	return false
}

// ValidateConfig validates the configuration
func ValidateConfig(cfg *Config) error {
	if len(cfg.Instances) == 0 {
		return fmt.Errorf("no instances configured")
	}

	seen := make(map[string]struct{}, len(cfg.Instances))
	for _, inst := range cfg.Instances {
		u, err := url.Parse(inst)
		if err != nil {
			return fmt.Errorf("instance %q: %w", inst, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("instance %q: scheme must be http or https", inst)
		}
		if u.Host == "" {
			return fmt.Errorf("instance %q: host is required", inst)
		}
		if _, dup := seen[inst]; dup {
			return fmt.Errorf("instance %q: configured twice", inst)
		}
		seen[inst] = struct{}{}
	}

	for name := range cfg.Credentials {
		if _, ok := seen[strings.TrimRight(name, "/")]; !ok {
			return fmt.Errorf("credentials for %q: not a configured instance", name)
		}
	}

	if strings.TrimSpace(cfg.Lookback) == "" {
		return fmt.Errorf("lookback must not be empty")
	}
	if cfg.Limit < 1 {
		return fmt.Errorf("limit must be > 0, got %d", cfg.Limit)
	}
	if _, err := regexp.Compile(cfg.Filter); err != nil {
		return fmt.Errorf("filter: invalid regex: %w", err)
	}
	if cfg.WatchInterval < 1 {
		return fmt.Errorf("watch_interval must be >= 1 second, got %d", cfg.WatchInterval)
	}
	if cfg.Timeout < 1 {
		return fmt.Errorf("timeout must be >= 1 second, got %d", cfg.Timeout)
	}
	if cfg.TLS.CAFile != "" {
		if _, err := os.Stat(cfg.TLS.CAFile); err != nil {
			return fmt.Errorf("tls.ca_file: %w", err)
		}
	}

	return nil
}

package config

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func validConfig() *Config {
	cfg := &Config{Instances: []string{"https://icinga-a.example.com"}}
	cfg.ApplyDefaults()
	return cfg
}

func TestLoadConfigParsesYAML(t *testing.T) {
	path := writeFile(t, "wtc.yml", `
instances:
  - https://icinga-a.example.com/
  - https://icinga-b.example.com
lookback: "-2 hours"
limit: 25
filter: "^ops"
user: monitor
watch: true
watch_interval: 60
timeout: 5
tolerate_source_errors: true
tls:
  insecure_skip_verify: true
credentials:
  https://icinga-b.example.com:
    username: other
    password_env: WTC_B_PASSWORD
`)

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	cfg.ApplyDefaults()

	assert.Equal(t, []string{"https://icinga-a.example.com", "https://icinga-b.example.com"}, cfg.Instances)
	assert.Equal(t, "-2 hours", cfg.Lookback)
	assert.Equal(t, 25, cfg.Limit)
	assert.Equal(t, "^ops", cfg.Filter)
	assert.True(t, cfg.Watch)
	assert.Equal(t, Seconds(60), cfg.WatchInterval)
	assert.Equal(t, Seconds(5), cfg.Timeout)
	assert.True(t, cfg.TolerateSourceErrors)
	assert.True(t, cfg.TLS.InsecureSkipVerify)
	assert.Equal(t, "other", cfg.Credentials["https://icinga-b.example.com"].Username)
	require.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfigMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yml")

	cfg, err := LoadConfig(missing, false)
	require.NoError(t, err)
	assert.Empty(t, cfg.Instances)

	_, err = LoadConfig(missing, true)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := writeFile(t, "wtc.yml", "instances: [unterminated")
	_, err := LoadConfig(path, true)
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	original := currentUser
	defer func() { currentUser = original }()
	currentUser = func() (*user.User, error) { return &user.User{Username: "operator"}, nil }

	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultLookback, cfg.Lookback)
	assert.Equal(t, DefaultLimit, cfg.Limit)
	assert.Equal(t, DefaultFilter, cfg.Filter)
	assert.Equal(t, DefaultWatchInterval, cfg.WatchInterval)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, "operator", cfg.User)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no instances", mutate: func(c *Config) { c.Instances = nil }, wantErr: "no instances"},
		{name: "bad scheme", mutate: func(c *Config) { c.Instances = []string{"ftp://x"} }, wantErr: "scheme"},
		{name: "no host", mutate: func(c *Config) { c.Instances = []string{"https://"} }, wantErr: "host is required"},
		{name: "duplicate", mutate: func(c *Config) {
			c.Instances = []string{"https://a.example.com", "https://a.example.com"}
		}, wantErr: "configured twice"},
		{name: "unknown credentials", mutate: func(c *Config) {
			c.Credentials = map[string]CredentialEntry{"https://other.example.com": {Username: "x"}}
		}, wantErr: "not a configured instance"},
		{name: "zero limit", mutate: func(c *Config) { c.Limit = 0 }, wantErr: "limit"},
		{name: "bad regex", mutate: func(c *Config) { c.Filter = "([" }, wantErr: "invalid regex"},
		{name: "bad interval", mutate: func(c *Config) { c.WatchInterval = 0 }, wantErr: "watch_interval"},
		{name: "bad timeout", mutate: func(c *Config) { c.Timeout = -1 }, wantErr: "timeout"},
		{name: "empty lookback", mutate: func(c *Config) { c.Lookback = "  " }, wantErr: "lookback"},
		{name: "missing ca file", mutate: func(c *Config) { c.TLS.CAFile = "/nonexistent/ca.pem" }, wantErr: "ca_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveCredentials(t *testing.T) {
	t.Setenv("WTC_TEST_PASSWORD", "from-env")

	cfg := &Config{
		Instances: []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"},
		User:      "global",
		Password:  "global-pw",
		Credentials: map[string]CredentialEntry{
			"https://b.example.com/": {Username: "b-user", Password: "b-pw"},
			"https://c.example.com":  {PasswordEnv: "WTC_TEST_PASSWORD"},
		},
	}

	u, p := cfg.ResolveCredentials("https://a.example.com")
	assert.Equal(t, "global", u)
	assert.Equal(t, "global-pw", p)

	u, p = cfg.ResolveCredentials("https://c.example.com")
	assert.Equal(t, "global", u)
	assert.Equal(t, "from-env", p)

	// b's key has a trailing slash
	u, p = cfg.ResolveCredentials("https://b.example.com")
	assert.Equal(t, "b-user", u)
	assert.Equal(t, "b-pw", p)
}

func TestNeedsPassword(t *testing.T) {
	cfg := &Config{Instances: []string{"https://a.example.com"}}
	assert.True(t, cfg.NeedsPassword())

	cfg.Credentials = map[string]CredentialEntry{"https://a.example.com": {Password: "x"}}
	assert.False(t, cfg.NeedsPassword())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/.config/wtc.yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/wtc.yml"), got)

	got, err = ExpandHome("/etc/wtc.yml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/wtc.yml", got)
}

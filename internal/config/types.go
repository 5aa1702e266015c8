package config

import "time"

// Config represents the complete wtc configuration
type Config struct {
	Instances            []string                   `yaml:"instances"`
	Lookback             string                     `yaml:"lookback"`
	Limit                int                        `yaml:"limit"`
	Filter               string                     `yaml:"filter"`
	User                 string                     `yaml:"user"`
	Password             string                     `yaml:"password,omitempty"`
	ShowURLs             bool                       `yaml:"show_urls"`
	Watch                bool                       `yaml:"watch"`
	WatchInterval        Seconds                    `yaml:"watch_interval"`
	OneTime              bool                       `yaml:"onetime"`
	Timeout              Seconds                    `yaml:"timeout"`
	LogLevel             string                     `yaml:"log_level"`
	TolerateSourceErrors bool                       `yaml:"tolerate_source_errors"`
	TLS                  TLSConfig                  `yaml:"tls,omitempty"`
	Credentials          map[string]CredentialEntry `yaml:"credentials,omitempty"`
}

// TLSConfig contains TLS settings for talking to the Icinga instances
type TLSConfig struct {
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	CAFile             string `yaml:"ca_file,omitempty"`
}

// CredentialEntry overrides the global login for one instance
type CredentialEntry struct {
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty"`
}

// Seconds is a duration written as a plain number of seconds in YAML and on
// the command line.
type Seconds int

// Duration converts to a time.Duration
func (s Seconds) Duration() time.Duration {
	return time.Duration(s) * time.Second
}

const (
	DefaultLookback      = "-1 days"
	DefaultLimit         = 10
	DefaultFilter        = ".*"
	DefaultWatchInterval = Seconds(120)
	DefaultTimeout       = Seconds(30)
	DefaultLogLevel      = "warn"
)

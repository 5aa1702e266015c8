package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wtc-cli/wtc/internal/config"
)

// passwordEnv supplies the password when neither a flag nor the config file does
const passwordEnv = "WTC_PASSWORD"

// options holds the raw flag values. Only flags the user actually set are
// copied over the config file.
type options struct {
	configPath string
	flags      config.Config
}

func (o *options) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", config.DefaultPath, "path to the YAML config file")
	f.StringArrayVarP(&o.flags.Instances, "instance", "i", nil, "one or more icinga instances to monitor")
	f.StringVarP(&o.flags.Lookback, "lookback", "l", config.DefaultLookback, "how long to look back for notifications")
	f.IntVar(&o.flags.Limit, "limit", config.DefaultLimit, "number of the last entries to display")
	f.StringVar(&o.flags.Filter, "filter", config.DefaultFilter, "regex filter for notification contact name")
	f.StringVarP(&o.flags.User, "user", "u", "", "login user for icinga (default: current user)")
	f.StringVarP(&o.flags.Password, "password", "p", "", "login password for icinga (default: $"+passwordEnv+" or prompt)")
	f.BoolVar(&o.flags.ShowURLs, "show-urls", false, "show URLs instead of opening them in the default browser (useful for remote shells)")
	f.BoolVarP(&o.flags.Watch, "watch", "w", false, "run in an infinite loop, refreshing automatically")
	f.IntVar((*int)(&o.flags.WatchInterval), "watch-interval", int(config.DefaultWatchInterval), "interval for updates in watch mode in seconds")
	f.BoolVarP(&o.flags.OneTime, "onetime", "o", false, "only output once and exit afterwards")
	f.IntVarP((*int)(&o.flags.Timeout), "timeout", "T", int(config.DefaultTimeout), "timeout in seconds for http requests to the icinga instances")
	f.StringVar(&o.flags.LogLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	f.BoolVar(&o.flags.TolerateSourceErrors, "tolerate-source-errors", false, "skip failing instances instead of aborting the refresh")
	f.BoolVar(&o.flags.TLS.InsecureSkipVerify, "insecure-skip-verify", false, "do not verify TLS certificates of the icinga instances")
	f.StringVar(&o.flags.TLS.CAFile, "ca-file", "", "PEM bundle of additional trusted CAs")
}

// overlay copies every flag for which changed reports true onto cfg
func (o *options) overlay(cfg *config.Config, changed func(name string) bool) {
	f := &o.flags
	if changed("instance") {
		cfg.Instances = append([]string(nil), f.Instances...)
	}
	if changed("lookback") {
		cfg.Lookback = f.Lookback
	}
	if changed("limit") {
		cfg.Limit = f.Limit
	}
	if changed("filter") {
		cfg.Filter = f.Filter
	}
	if changed("user") {
		cfg.User = f.User
	}
	if changed("password") {
		cfg.Password = f.Password
	}
	if changed("show-urls") {
		cfg.ShowURLs = f.ShowURLs
	}
	if changed("watch") {
		cfg.Watch = f.Watch
	}
	if changed("watch-interval") {
		cfg.WatchInterval = f.WatchInterval
	}
	if changed("onetime") {
		cfg.OneTime = f.OneTime
	}
	if changed("timeout") {
		cfg.Timeout = f.Timeout
	}
	if changed("log-level") {
		cfg.LogLevel = f.LogLevel
	}
	if changed("tolerate-source-errors") {
		cfg.TolerateSourceErrors = f.TolerateSourceErrors
	}
	if changed("insecure-skip-verify") {
		cfg.TLS.InsecureSkipVerify = f.TLS.InsecureSkipVerify
	}
	if changed("ca-file") {
		cfg.TLS.CAFile = f.TLS.CAFile
	}
}

// load reads the config file, applies set flags and defaults, and validates
// the result. The default config file may be absent; an explicit one may not.
func (o *options) load(changed func(name string) bool) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath, changed("config"))
	if err != nil {
		return nil, err
	}
	o.overlay(cfg, changed)
	cfg.ApplyDefaults()

	if cfg.Password == "" {
		cfg.Password = os.Getenv(passwordEnv)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// promptPassword asks for the global password without echo
func promptPassword(user string, in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password given and stdin is not a terminal; use --password or $%s", passwordEnv)
	}
	fmt.Fprintf(out, "enter password for %s: ", user)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(string(pw), "\r\n"), nil
}

// Package config assembles the server configuration from defaults,
// TINYHTTPD_* environment variables and command-line flags, in that
// order of precedence (flags win).
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"dqx0.com/go/tinyhttpd/httpx"
	"dqx0.com/go/tinyhttpd/internal/filestore"
	"dqx0.com/go/tinyhttpd/internal/obs"
)

const envPrefix = "TINYHTTPD_"

type Config struct {
	Addr      string
	Directory string
	Store     string
	LogLevel  string
	LogFormat string
	// MetricsInterval, when non-zero, logs a metrics snapshot periodically.
	MetricsInterval time.Duration
	// Probe, when set, makes the process GET this path from Addr and exit.
	Probe string
}

func Default() Config {
	return Config{
		Addr:      httpx.DefaultAddr,
		Directory: ".",
		Store:     string(filestore.KindOS),
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// ApplyEnv overrides fields from TINYHTTPD_ADDR, TINYHTTPD_DIRECTORY,
// TINYHTTPD_STORE, TINYHTTPD_LOG_LEVEL, TINYHTTPD_LOG_FORMAT and
// TINYHTTPD_METRICS_INTERVAL. Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(name string, dst *string) {
		if v := getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}
	set("ADDR", &c.Addr)
	set("DIRECTORY", &c.Directory)
	set("STORE", &c.Store)
	set("LOG_LEVEL", &c.LogLevel)
	set("LOG_FORMAT", &c.LogFormat)
	if v := getenv(envPrefix + "METRICS_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %sMETRICS_INTERVAL: %w", envPrefix, err)
		}
		c.MetricsInterval = d
	}
	return nil
}

// ParseFlags overrides fields from args. Go's flag package accepts both
// -directory and --directory.
func (c *Config) ParseFlags(args []string, output io.Writer) error {
	fs := flag.NewFlagSet("tinyhttpd", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address")
	fs.StringVar(&c.Directory, "directory", c.Directory, "base directory for /files/")
	fs.StringVar(&c.Store, "store", c.Store, "file store backend: "+kindList())
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "console, json or std")
	fs.DurationVar(&c.MetricsInterval, "metrics-interval", c.MetricsInterval, "log a metrics snapshot this often (0 disables)")
	fs.StringVar(&c.Probe, "probe", c.Probe, "GET this path from -addr, print the response and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("config: unexpected arguments %q", fs.Args())
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("config: empty listen address"))
	}
	if c.Directory == "" {
		errs = append(errs, errors.New("config: empty directory"))
	}
	if !validKind(c.Store) {
		errs = append(errs, fmt.Errorf("config: unknown store %q (want %s)", c.Store, kindList()))
	}
	if _, err := obs.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	switch c.LogFormat {
	case "console", "json", "std":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log format %q", c.LogFormat))
	}
	if c.MetricsInterval < 0 {
		errs = append(errs, errors.New("config: negative metrics interval"))
	}
	return errors.Join(errs...)
}

// Load is Default, then ApplyEnv, then ParseFlags, then Validate.
func Load(args []string, getenv func(string) string, output io.Writer) (Config, error) {
	c := Default()
	if err := c.ApplyEnv(getenv); err != nil {
		return c, err
	}
	if err := c.ParseFlags(args, output); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func validKind(s string) bool {
	for _, k := range filestore.Kinds() {
		if string(k) == s {
			return true
		}
	}
	return false
}

func kindList() string {
	var names []string
	for _, k := range filestore.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

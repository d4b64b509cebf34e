// Package config resolves command-line flags, PAGEGET_* environment
// variables and an optional YAML file into a validated [Config].
package config

import (
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/adamwoolhether/pageget"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version is reported in the default User-Agent.
var Version = "dev"

// EnvPrefix namespaces environment overrides, e.g. PAGEGET_PAGES.
const EnvPrefix = "PAGEGET"

// ErrInvalid is wrapped by every error that stops a run before any job
// starts.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved configuration of one run. Keys match the flag
// names in both the environment (upper-cased, dashes as underscores)
// and the config file.
type Config struct {
	URL       string        `mapstructure:"url" validate:"required"`
	Pages     int           `mapstructure:"pages" validate:"min=1"`
	Output    string        `mapstructure:"output"`
	PadURL    bool          `mapstructure:"pad-url"`
	Ext       string        `mapstructure:"ext" validate:"required,alphanum,max=16"`
	Workers   int           `mapstructure:"workers" validate:"min=1,max=1024"`
	FailFast  bool          `mapstructure:"fail-fast"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"min=0s"`
	MaxSize   int64         `mapstructure:"max-size" validate:"min=0"`
	UserAgent string        `mapstructure:"user-agent"`
	Referer   string        `mapstructure:"referer" validate:"omitempty,url"`
	Progress  string        `mapstructure:"progress" validate:"oneof=bar log none"`
	Report    string        `mapstructure:"report"`
	LogLevel  string        `mapstructure:"log-level" validate:"oneof=debug info warn error"`
	LogFormat string        `mapstructure:"log-format" validate:"oneof=text json"`

	// Base is URL after normalization, set by Load.
	Base *url.URL `mapstructure:"-"`
}

// Default returns the configuration used for anything not set.
func Default() Config {
	return Config{
		Ext:       "webp",
		Workers:   runtime.GOMAXPROCS(0),
		Timeout:   30 * time.Second,
		UserAgent: "pageget/" + Version,
		Progress:  "bar",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// RegisterFlags defines every configuration flag on fs, plus --config.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()

	fs.StringP("url", "u", "", "base URL of the gallery (scheme and trailing slash optional)")
	fs.IntP("pages", "p", 0, "number of pages to fetch, starting at 1")
	fs.StringP("output", "o", "", "output directory or bucket URL (default: current directory)")
	fs.Bool("pad-url", false, "request zero-padded names (007.webp) instead of 7.webp")
	fs.StringP("ext", "e", def.Ext, "file extension of every page")
	fs.IntP("workers", "w", def.Workers, "maximum number of pages in flight")
	fs.Bool("fail-fast", false, "stop at the first failed page")
	fs.Duration("timeout", def.Timeout, "per-request timeout (0 disables)")
	fs.Int64("max-size", 0, "maximum page size in bytes (0 disables)")
	fs.String("user-agent", def.UserAgent, "User-Agent header")
	fs.String("referer", "", "Referer header sent with every request")
	fs.String("progress", def.Progress, "progress output: bar, log or none")
	fs.String("report", "", "write a YAML run report to this path")
	fs.String("log-level", def.LogLevel, "log level: debug, info, warn or error")
	fs.String("log-format", def.LogFormat, "log format: text or json")
	fs.String("config", "", "YAML config file using the flag names as keys")
}

// Load resolves fs, the environment and the --config file, in that order
// of precedence, and validates the result.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("binding flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: reading config file %s: %w", ErrInvalid, path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks c field by field and normalizes URL into Base.
func (c *Config) Validate() error {
	if err := Validate(c); err != nil {
		return err
	}

	base, err := pageget.NormalizeBase(c.URL)
	if err != nil {
		return FieldErrors{{Field: "url", Err: err.Error()}}
	}
	c.Base = base

	return nil
}

// Policy maps FailFast onto the runner policy.
func (c Config) Policy() pageget.Policy {
	if c.FailFast {
		return pageget.FailFast
	}
	return pageget.CollectAll
}

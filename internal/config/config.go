// Package config assembles server settings from defaults, an optional YAML
// file, the environment (including a .env file) and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/assetpro/internal/codes"
	"github.com/erazemk/assetpro/internal/db"
	"github.com/erazemk/assetpro/internal/logging"
	"github.com/erazemk/assetpro/internal/notify"
)

// DefaultAdminPassword is the bootstrap password used when none is configured.
const DefaultAdminPassword = "admin123"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ASSETPRO_"

// Config holds all server settings.
type Config struct {
	DBPath        string            `yaml:"db"`
	Addr          string            `yaml:"addr"`
	LogPath       string            `yaml:"log"`
	LogLevel      string            `yaml:"log_level"`
	LogFormat     string            `yaml:"log_format"`
	BusyTimeout   time.Duration     `yaml:"busy_timeout"`
	BaseURL       string            `yaml:"base_url"`
	CodePrefix    string            `yaml:"code_prefix"`
	CodeWidth     int               `yaml:"code_width"`
	AdminPassword string            `yaml:"admin_password"`
	SMTP          notify.SMTPConfig `yaml:"smtp"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:        "assetpro.sqlite3",
		Addr:          ":8080",
		LogLevel:      "info",
		LogFormat:     logging.FormatText,
		BusyTimeout:   db.DefaultBusyTimeout,
		CodePrefix:    codes.DefaultPrefix,
		CodeWidth:     codes.DefaultWidth,
		AdminPassword: DefaultAdminPassword,
		SMTP:          notify.SMTPConfig{Port: 587},
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped when
// path is empty) and the environment. Variables from envFile are used only
// when the process environment does not set them; a missing envFile is not
// an error.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
		if m != nil {
			dotenv = m
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("DB", &c.DBPath)
	str("ADDR", &c.Addr)
	str("LOG", &c.LogPath)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("BASE_URL", &c.BaseURL)
	str("CODE_PREFIX", &c.CodePrefix)
	str("ADMIN_PASSWORD", &c.AdminPassword)
	str("SMTP_HOST", &c.SMTP.Host)
	str("SMTP_USERNAME", &c.SMTP.Username)
	str("SMTP_PASSWORD", &c.SMTP.Password)
	str("SMTP_FROM", &c.SMTP.From)

	if v, ok := lookup(EnvPrefix + "BUSY_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sBUSY_TIMEOUT: %w", EnvPrefix, err)
		}
		c.BusyTimeout = d
	}
	if v, ok := lookup(EnvPrefix + "CODE_WIDTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sCODE_WIDTH: %w", EnvPrefix, err)
		}
		c.CodeWidth = n
	}
	if v, ok := lookup(EnvPrefix + "SMTP_PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSMTP_PORT: %w", EnvPrefix, err)
		}
		c.SMTP.Port = n
	}
	if v, ok := lookup(EnvPrefix + "SMTP_TO"); ok {
		c.SMTP.To = splitList(v)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// RegisterFlags defines the overriding command-line flags, each in a short and a long
// form.
func RegisterFlags(flags *flag.FlagSet) {
	for _, f := range flagNames {
		flags.String(f.long, "", "")
		flags.String(f.short, "", "")
	}
}

var flagNames = []struct{ short, long string }{
	{"d", "db"},
	{"a", "addr"},
	{"l", "log"},
	{"v", "log-level"},
	{"f", "log-format"},
	{"b", "base-url"},
	{"p", "prefix"},
	{"w", "width"},
	{"t", "busy-timeout"},
}

// ApplyFlags copies the flags that were set on the command line into c.
func (c *Config) ApplyFlags(flags *flag.FlagSet) error {
	var err error
	flags.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case "d", "db":
			c.DBPath = v
		case "a", "addr":
			c.Addr = v
		case "l", "log":
			c.LogPath = v
		case "v", "log-level":
			c.LogLevel = v
		case "f", "log-format":
			c.LogFormat = v
		case "b", "base-url":
			c.BaseURL = v
		case "p", "prefix":
			c.CodePrefix = v
		case "w", "width":
			c.CodeWidth, err = strconv.Atoi(v)
		case "t", "busy-timeout":
			c.BusyTimeout, err = time.ParseDuration(v)
		}
		if err != nil {
			err = fmt.Errorf("flag -%s: %w", f.Name, err)
		}
	})
	return err
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.DBPath == "":
		return errors.New("database path is required")
	case c.Addr == "":
		return errors.New("listen address is required")
	case c.CodePrefix == "":
		return errors.New("code prefix is required")
	case c.CodeWidth < 1 || c.CodeWidth > 18:
		return fmt.Errorf("code width %d out of range 1..18", c.CodeWidth)
	case c.BusyTimeout <= 0:
		return errors.New("busy timeout must be positive")
	case c.AdminPassword == "":
		return errors.New("admin password must not be empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return logging.CheckFormat(c.LogFormat)
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Options {
	return logging.Options{Path: c.LogPath, Level: c.LogLevel, Format: c.LogFormat}
}

// CodeScheme returns the configured asset code scheme.
func (c *Config) CodeScheme() codes.Scheme {
	return codes.Scheme{Prefix: c.CodePrefix, Width: c.CodeWidth}
}

// Package config resolves CLI defaults from flags, environment and an
// optional YAML file.
//
// Precedence, highest first: explicitly set flags, REACTORCALC_* environment
// variables, the config file named by --config, built-in defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/reactorcalc/internal/units"
)

// EnvPrefix is the prefix of configuration environment variables, e.g.
// REACTORCALC_UNITS=cgs.
const EnvPrefix = "REACTORCALC"

// Keys of the configuration settings. Flags bound with Bind use the same
// names.
const (
	KeyConfig    = "config"
	KeyUnits     = "units"
	KeyFormat    = "format"
	KeyPrecision = "precision"
	KeyWorkers   = "workers"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds the resolved settings.
type Config struct {
	// Units is the default unit system for requests that do not name one.
	Units string `mapstructure:"units"`

	// Format is the output format: text or json.
	Format string `mapstructure:"format"`

	// Precision is the number of significant digits in text output.
	Precision int `mapstructure:"precision"`

	// Workers bounds concurrent evaluation in run and test.
	Workers int `mapstructure:"workers"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Units:     string(units.SI),
		Format:    FormatText,
		Precision: 6,
		Workers:   4,
	}
}

// New returns a viper instance with defaults and environment lookup
// configured.
func New() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault(KeyUnits, d.Units)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyPrecision, d.Precision)
	v.SetDefault(KeyWorkers, d.Workers)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Bind binds every flag of fs whose name is a configuration key.
func Bind(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range []string{KeyConfig, KeyUnits, KeyFormat, KeyPrecision, KeyWorkers} {
		f := fs.Lookup(key)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the config file, if one is named, and returns the validated
// settings.
func Load(v *viper.Viper) (*Config, error) {
	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every setting is usable and normalizes the unit
// system name.
func (c *Config) Validate() error {
	sys, err := units.ParseSystem(c.Units)
	if err != nil {
		return fmt.Errorf("units: %w", err)
	}
	c.Units = string(sys)

	c.Format = strings.ToLower(c.Format)
	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("format must be %q or %q, got %q", FormatText, FormatJSON, c.Format)
	}
	if c.Precision < 1 || c.Precision > 17 {
		return fmt.Errorf("precision must be between 1 and 17, got %d", c.Precision)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	return nil
}

// System returns the default unit system.
func (c *Config) System() units.System {
	return units.System(c.Units)
}

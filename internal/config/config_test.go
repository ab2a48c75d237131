package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reactorcalc/internal/units"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	d := Defaults()
	assert.Equal(t, &d, cfg)
	assert.Equal(t, units.SI, cfg.System())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("REACTORCALC_UNITS", "cgs")
	t.Setenv("REACTORCALC_WORKERS", "8")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "CGS", cfg.Units)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reactorcalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("units: imperial\nprecision: 4\nformat: JSON\n"), 0o644))

	v := New()
	v.Set(KeyConfig, path)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "Imperial", cfg.Units)
	assert.Equal(t, 4, cfg.Precision)
	assert.Equal(t, FormatJSON, cfg.Format)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	v := New()
	v.Set(KeyConfig, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestBind_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("REACTORCALC_UNITS", "cgs")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(KeyUnits, "SI", "")
	fs.Int(KeyPrecision, 6, "")
	fs.Bool("verbose", false, "")

	v := New()
	require.NoError(t, Bind(v, fs))
	require.NoError(t, fs.Parse([]string{"--units", "imperial"}))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "Imperial", cfg.Units)
	assert.Equal(t, 6, cfg.Precision)
}

func TestBind_UnsetFlagDefersToEnvironment(t *testing.T) {
	t.Setenv("REACTORCALC_UNITS", "cgs")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(KeyUnits, "SI", "")

	v := New()
	require.NoError(t, Bind(v, fs))
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "CGS", cfg.Units)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown units", func(c *Config) { c.Units = "planck" }, "units"},
		{"unknown format", func(c *Config) { c.Format = "xml" }, "format"},
		{"zero precision", func(c *Config) { c.Precision = 0 }, "precision"},
		{"excess precision", func(c *Config) { c.Precision = 18 }, "precision"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

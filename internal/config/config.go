// Package config loads pipeline configuration from a YAML file, environment
// variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/finstack-labs/secpanel/internal/warehouse"
)

// Default directory layout relative to the working directory.
const (
	DefaultRawDir    = "data/raw"
	DefaultSilverDir = "data/silver"
	DefaultGoldDir   = "data/gold"
	DefaultStateFile = "secpanel.db"
)

// Config holds the full pipeline configuration.
type Config struct {
	// RawDir holds the downloaded quarterly ZIP archives, named <yq>.zip.
	RawDir string `koanf:"raw_dir"`

	// SilverDir holds per-stage intermediate tables.
	SilverDir string `koanf:"silver_dir"`

	// GoldDir holds per-archive and master panels.
	GoldDir string `koanf:"gold_dir"`

	// StatePath is the SQLite run and artifact ledger.
	StatePath string `koanf:"state_path"`

	// TagMapPath optionally overrides the built-in tag maps with a YAML file.
	TagMapPath string `koanf:"tag_map"`

	// AnnualOnly restricts the income statement and cash flow stages to
	// annual periods.
	AnnualOnly bool `koanf:"annual_only"`

	Verbose bool `koanf:"verbose"`

	// Target is the warehouse destination for the publish command.
	Target *warehouse.Target `koanf:"target"`
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
)

// findConfigFile finds the config file to use.
// Priority: explicit path > secpanel.yaml > secpanel.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("secpanel.yaml"); err == nil {
		return "secpanel.yaml"
	}
	if _, err := os.Stat("secpanel.yml"); err == nil {
		return "secpanel.yml"
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Reset resets the koanf instance. Used for testing.
func Reset() {
	k = koanf.New(".")
	configFileUsed = ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"raw_dir":     DefaultRawDir,
		"silver_dir":  DefaultSilverDir,
		"gold_dir":    DefaultGoldDir,
		"state_path":  DefaultStateFile,
		"annual_only": false,
		"verbose":     false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (SECPANEL_ prefix)
	// Transform: SECPANEL_SILVER_DIR -> silver_dir
	if err := k.Load(env.Provider("SECPANEL_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "SECPANEL_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")

			// The CLI uses --state for brevity; the config key is state_path.
			if key == "state" {
				return "state_path", posflag.FlagVal(flags, f)
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve relative paths against the config file's directory so the
	// tool behaves the same regardless of where it is invoked from.
	baseDir := "."
	if configFileUsed != "" {
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			baseDir = filepath.Dir(abs)
		}
	}
	cfg.RawDir = resolvePathRelativeTo(cfg.RawDir, baseDir)
	cfg.SilverDir = resolvePathRelativeTo(cfg.SilverDir, baseDir)
	cfg.GoldDir = resolvePathRelativeTo(cfg.GoldDir, baseDir)
	cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, baseDir)
	cfg.TagMapPath = resolvePathRelativeTo(cfg.TagMapPath, baseDir)

	if cfg.Target != nil {
		expandTargetEnvVars(cfg.Target)
	}

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// expandEnvVars expands ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	return os.Expand(s, func(name string) string {
		if val := os.Getenv(name); val != "" {
			return val
		}
		return "${" + name + "}"
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *warehouse.Target) {
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	t.Username = expandEnvVars(t.Username)
	t.Password = expandEnvVars(t.Password)
}

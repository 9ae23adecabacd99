package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultRawDir, cfg.RawDir)
	assert.Equal(t, DefaultSilverDir, cfg.SilverDir)
	assert.Equal(t, DefaultGoldDir, cfg.GoldDir)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.False(t, cfg.AnnualOnly)
	assert.False(t, cfg.Verbose)
	assert.Nil(t, cfg.Target)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfigFile(t *testing.T) {
	Reset()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "secpanel.yaml")
	content := `
raw_dir: archives
gold_dir: /srv/gold
annual_only: true
target:
  driver: postgres
  host: db.internal
  database: panels
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)

	// Relative paths resolve against the config file's directory.
	assert.Equal(t, filepath.Join(dir, "archives"), cfg.RawDir)
	assert.Equal(t, "/srv/gold", cfg.GoldDir)
	assert.Equal(t, filepath.Join(dir, DefaultSilverDir), cfg.SilverDir)
	assert.True(t, cfg.AnnualOnly)

	require.NotNil(t, cfg.Target)
	assert.Equal(t, "postgres", cfg.Target.Driver)
	assert.Equal(t, "db.internal", cfg.Target.Host)
	assert.Equal(t, "panels", cfg.Target.Database)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	Reset()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "secpanel.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("state_path: from_file.db\n"), 0o644))

	t.Setenv("SECPANEL_STATE_PATH", "/var/lib/secpanel/state.db")

	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/secpanel/state.db", cfg.StatePath)
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	Reset()
	t.Chdir(t.TempDir())
	t.Setenv("SECPANEL_ANNUAL_ONLY", "true")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("annual-only", false, "")
	flags.String("state", "", "")
	require.NoError(t, flags.Parse([]string{"--annual-only=false", "--state=cli.db"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.False(t, cfg.AnnualOnly)
	assert.Equal(t, "cli.db", cfg.StatePath)
}

func TestLoadUnchangedFlagsIgnored(t *testing.T) {
	Reset()
	t.Chdir(t.TempDir())
	t.Setenv("SECPANEL_VERBOSE", "true")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	// The flag default must not mask the env var.
	assert.True(t, cfg.Verbose)
}

func TestTargetEnvVarExpansion(t *testing.T) {
	Reset()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "secpanel.yaml")
	content := `
target:
  driver: postgres
  database: panels
  password: ${PANEL_DB_PASSWORD}
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	t.Setenv("PANEL_DB_PASSWORD", "hunter2")

	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg.Target)
	assert.Equal(t, "hunter2", cfg.Target.Password)
}

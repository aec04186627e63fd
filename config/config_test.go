package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/buntdb"
)

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))

	v := viper.New()
	SetDefaults(v)
	require.NoError(t, ReadFile(v, ""))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "data", "planr", "planr.db"), cfg.Database)
	assert.Equal(t, buntdb.SyncPolicy(buntdb.EverySecond), cfg.Sync)
	assert.Equal(t, "Productivity Planner Tasks", cfg.Calendar.Name)
	assert.Equal(t, time.Sunday, cfg.Calendar.WeekStart)
	assert.False(t, cfg.CalDAV.Configured())
}

func TestLoadFileAndEnv(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	dir := filepath.Join(tmpDir, "planr")
	require.NoError(t, os.MkdirAll(dir, 0755))
	yaml := `
database: /tmp/planner.db
sync: always
calendar:
  week_start: monday
caldav:
  endpoint: https://dav.example.com
  username: alex
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("PLANR_CALDAV_PASSWORD", "hunter2")
	t.Setenv("PLANR_DATABASE", "/srv/planr.db")

	v := viper.New()
	SetDefaults(v)
	require.NoError(t, ReadFile(v, ""))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/srv/planr.db", cfg.Database)
	assert.Equal(t, buntdb.SyncPolicy(buntdb.Always), cfg.Sync)
	assert.Equal(t, time.Monday, cfg.Calendar.WeekStart)
	assert.True(t, cfg.CalDAV.Configured())
	assert.Equal(t, "alex", cfg.CalDAV.Username)
	assert.Equal(t, "hunter2", cfg.CalDAV.Password)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	assert.Error(t, ReadFile(v, filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{KeySync, "sometimes"},
		{KeyCalendarWeekStart, "funday"},
		{KeyDatabase, ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "planr.db"), expandHome("~/planr.db"))
	assert.Equal(t, "/abs/planr.db", expandHome("/abs/planr.db"))
}

// Package config loads planr settings from a YAML file, PLANR_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tidwall/buntdb"

	"github.com/mrusme/planr/calendar"
	"github.com/mrusme/planr/store"
)

const (
	appName   = "planr"
	EnvPrefix = "PLANR"
)

// Keys understood by Load.
const (
	KeyDatabase          = "database"
	KeySync              = "sync"
	KeyCalendarName      = "calendar.name"
	KeyCalendarWeekStart = "calendar.week_start"
	KeyCalDAVEndpoint    = "caldav.endpoint"
	KeyCalDAVUsername    = "caldav.username"
	KeyCalDAVPassword    = "caldav.password"
	KeyCalDAVCalendar    = "caldav.calendar"
)

type Config struct {
	Database string
	Sync     buntdb.SyncPolicy
	Calendar Calendar
	CalDAV   CalDAV
}

type Calendar struct {
	Name      string
	WeekStart time.Weekday
}

type CalDAV struct {
	Endpoint string
	Username string
	Password string
	// Calendar is the collection path to publish into. Empty means the
	// first calendar found in the user's home set.
	Calendar string
}

func (c CalDAV) Configured() bool {
	return c.Endpoint != ""
}

// Dir returns $XDG_CONFIG_HOME/planr, falling back to ~/.config/planr.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultDatabase returns $XDG_DATA_HOME/planr/planr.db, falling back to
// ~/.local/share/planr/planr.db.
func DefaultDatabase() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, appName+".db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return appName + ".db"
	}
	return filepath.Join(home, ".local", "share", appName, appName+".db")
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabase, DefaultDatabase())
	v.SetDefault(KeySync, "everysecond")
	v.SetDefault(KeyCalendarName, calendar.DefaultName)
	v.SetDefault(KeyCalendarWeekStart, "sunday")
	v.SetDefault(KeyCalDAVEndpoint, "")
	v.SetDefault(KeyCalDAVUsername, "")
	v.SetDefault(KeyCalDAVPassword, "")
	v.SetDefault(KeyCalDAVCalendar, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadFile reads cfgFile, or config.yaml from Dir when cfgFile is empty. A
// missing default file is not an error.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		return v.ReadInConfig()
	}

	dir, err := Dir()
	if err != nil {
		return nil
	}
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load builds a Config from v, validating enumerated values.
func Load(v *viper.Viper) (*Config, error) {
	sync, err := store.ParseSyncPolicy(v.GetString(KeySync))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", KeySync, err)
	}
	weekStart, err := calendar.ParseWeekday(v.GetString(KeyCalendarWeekStart))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", KeyCalendarWeekStart, err)
	}

	cfg := &Config{
		Database: expandHome(v.GetString(KeyDatabase)),
		Sync:     sync,
		Calendar: Calendar{
			Name:      v.GetString(KeyCalendarName),
			WeekStart: weekStart,
		},
		CalDAV: CalDAV{
			Endpoint: v.GetString(KeyCalDAVEndpoint),
			Username: v.GetString(KeyCalDAVUsername),
			Password: v.GetString(KeyCalDAVPassword),
			Calendar: v.GetString(KeyCalDAVCalendar),
		},
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("config %s: must not be empty", KeyDatabase)
	}
	return cfg, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

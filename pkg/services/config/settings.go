package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/de-tools/entra-atlas/pkg/services/scan"
	"github.com/de-tools/entra-atlas/pkg/store/kv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "ENTRA_ATLAS"
	appDirName = ".entra-atlas"
)

type GraphSettings struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int32         `mapstructure:"max_retries"`
}

type AuthSettings struct {
	// RefreshSkew is how long before expiry the session refreshes its token.
	RefreshSkew time.Duration `mapstructure:"refresh_skew"`
}

// ScheduleSettings controls background rescans in the web server. A zero
// Interval disables them.
type ScheduleSettings struct {
	Interval      time.Duration `mapstructure:"interval"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

type Settings struct {
	Profile     string           `mapstructure:"profile"`
	TenantsFile string           `mapstructure:"tenants_file"`
	Store       kv.Settings      `mapstructure:"store"`
	Graph       GraphSettings    `mapstructure:"graph"`
	Auth        AuthSettings     `mapstructure:"auth"`
	Scan        scan.Settings    `mapstructure:"scan"`
	Schedule    ScheduleSettings `mapstructure:"schedule"`
}

// AppDir is $HOME/.entra-atlas.
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return appDirName
	}
	return filepath.Join(home, appDirName)
}

func DefaultConfigPath() string {
	return filepath.Join(AppDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	dir := AppDir()
	scanDefaults := scan.DefaultSettings()

	v.SetDefault("profile", "default")
	v.SetDefault("tenants_file", filepath.Join(dir, "tenants.ini"))
	v.SetDefault("store.driver", kv.DriverBolt)
	v.SetDefault("store.path", filepath.Join(dir, "entra-atlas.db"))
	v.SetDefault("graph.base_url", "https://graph.microsoft.com")
	v.SetDefault("graph.timeout", 30*time.Second)
	v.SetDefault("graph.max_retries", 0)
	v.SetDefault("auth.refresh_skew", 5*time.Minute)
	v.SetDefault("scan.inactive_days", scanDefaults.InactiveDays)
	v.SetDefault("scan.max_global_admins", scanDefaults.MaxGlobalAdmins)
	v.SetDefault("scan.min_secure_score_percent", scanDefaults.MinSecureScorePercent)
	v.SetDefault("scan.credential_expiry_days", scanDefaults.CredentialExpiryDays)
	v.SetDefault("scan.fix_delay", scanDefaults.FixDelay)
	v.SetDefault("scan.history_limit", scanDefaults.HistoryLimit)
	v.SetDefault("scan.concurrency", 0)
	v.SetDefault("scan.keep_raw_data", false)
	v.SetDefault("schedule.interval", 0)
	v.SetDefault("schedule.retry_interval", 5*time.Minute)
}

// Load reads settings from the YAML file at path, overlaid with ENTRA_ATLAS_*
// environment variables. A missing file is not an error.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	settings.Scan = settings.Scan.WithDefaults()
	return &settings, nil
}

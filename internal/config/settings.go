package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides (CLOUDPHOTO_LOG_LEVEL, ...).
const EnvPrefix = "CLOUDPHOTO"

// Setting keys.
const (
	SettingLogLevel      = "log_level"
	SettingConfig        = "config"
	SettingWebsiteDomain = "website_domain"
)

// Default setting values.
const (
	DefaultLogLevel      = "warn"
	DefaultWebsiteDomain = "website.yandexcloud.net"
)

// Settings are the runtime options of one invocation.
type Settings struct {
	// LogLevel is the zap level of the CLI logger.
	LogLevel string

	// ConfigPath is the credentials file location.
	ConfigPath string

	// WebsiteDomain is the static website domain used by mksite.
	WebsiteDomain string
}

// NewViper returns a viper instance with defaults and environment overrides
// applied. Flags are bound by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default value of every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(SettingLogLevel, DefaultLogLevel)
	v.SetDefault(SettingWebsiteDomain, DefaultWebsiteDomain)
	if path, err := DefaultPath(); err == nil {
		v.SetDefault(SettingConfig, path)
	}
}

// ResolveSettings reads the effective settings from v.
func ResolveSettings(v *viper.Viper) *Settings {
	return &Settings{
		LogLevel:      v.GetString(SettingLogLevel),
		ConfigPath:    v.GetString(SettingConfig),
		WebsiteDomain: v.GetString(SettingWebsiteDomain),
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "kurologin/internal/shared/config"
)

type Config struct {
	Server  sharedConfig.ServerConfig  `mapstructure:"server"`
	Logger  sharedConfig.LoggerConfig  `mapstructure:"logger"`
	Captcha sharedConfig.CaptchaConfig `mapstructure:"captcha"`
	Gateway sharedConfig.GatewayConfig `mapstructure:"gateway"`
	Session sharedConfig.SessionConfig `mapstructure:"session"`
}

// Aliases so downstream packages can reference config sections through
// this package without importing shared/config directly.
type (
	ServerConfig  = sharedConfig.ServerConfig
	LoggerConfig  = sharedConfig.LoggerConfig
	CaptchaConfig = sharedConfig.CaptchaConfig
	GatewayConfig = sharedConfig.GatewayConfig
	SessionConfig = sharedConfig.SessionConfig
)

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// A missing config file is not an error: the broker runs fine on defaults
// plus KURO_* environment variables.
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("KURO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults (the original service listened on 127.0.0.1:5000)
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.allowed_origins", []string{})
	viper.SetDefault("server.static_dir", "./web/static")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Captcha defaults; the captcha id is the Android client's published
	// site key and can be overridden via KURO_CAPTCHA_CAPTCHA_ID
	viper.SetDefault("captcha.captcha_id", "3f7e2d848ce0cb7e7d019d621e556ce2")
	viper.SetDefault("captcha.base_url", "https://gcaptcha4.geetest.com")
	viper.SetDefault("captcha.timeout_seconds", 10)

	// Gateway defaults
	viper.SetDefault("gateway.base_url", "https://api.kurobbs.com")
	viper.SetDefault("gateway.timeout_seconds", 10)

	// Session defaults: TTL matches typical SMS code validity
	viper.SetDefault("session.ttl_minutes", 5)
	viper.SetDefault("session.sweep_interval_seconds", 60)
}

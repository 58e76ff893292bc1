package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	return load(viper.New(), configPath)
}

func load(v *viper.Viper, configPath string) (*Config, error) {
	config := GetDefaults()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/scandidate/")
	v.AddConfigPath("$HOME/.scandidate/")

	// Environment variable overrides, e.g. SCANDIDATE_ANALYSIS_API_KEY
	v.SetEnvPrefix("SCANDIDATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error - we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// bindEnv registers keys that have no config-file value so AutomaticEnv
// can still see them during Unmarshal.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"server.port",
		"store.backend",
		"store.redis_url",
		"store.sqlite_path",
		"analysis.api_key",
		"analysis.model",
		"analysis.base_url",
		"analysis.use_mock_data",
		"identity.database_url",
		"identity.token_secret",
		"logging.level",
		"logging.format",
	} {
		_ = v.BindEnv(key)
	}
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Retention.Window <= 0 {
		return fmt.Errorf("invalid retention window: %s", config.Retention.Window)
	}

	if config.Retention.TickInterval <= 0 || config.Retention.TickInterval > config.Retention.Window {
		return fmt.Errorf("invalid retention tick interval: %s", config.Retention.TickInterval)
	}

	switch config.Store.Backend {
	case "memory", "redis", "sqlite":
	default:
		return fmt.Errorf("invalid store backend: %s (must be memory, redis, or sqlite)", config.Store.Backend)
	}

	if config.Privacy.MaxInputBytes < 0 {
		return fmt.Errorf("invalid privacy max_input_bytes: %d", config.Privacy.MaxInputBytes)
	}

	if config.Identity.BcryptCost < 4 || config.Identity.BcryptCost > 31 {
		return fmt.Errorf("invalid identity bcrypt_cost: %d (must be between 4 and 31)", config.Identity.BcryptCost)
	}

	if config.Logging.Level != "debug" && config.Logging.Level != "info" && config.Logging.Level != "warn" && config.Logging.Level != "error" {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}

	return nil
}

// Watcher reloads configuration when the config file changes
type Watcher struct {
	v *viper.Viper
}

// NewWatcher loads the configuration and returns it together with a watcher
// bound to the same file.
func NewWatcher(configPath string) (*Config, *Watcher, error) {
	v := viper.New()
	cfg, err := load(v, configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, &Watcher{v: v}, nil
}

// Watch starts watching the configuration file for changes. Invalid
// reloads are reported through onError and otherwise ignored.
func (w *Watcher) Watch(callback func(*Config), onError func(error)) {
	if w.v.ConfigFileUsed() == "" {
		return
	}

	w.v.OnConfigChange(func(e fsnotify.Event) {
		newConfig := GetDefaults()
		if err := w.v.Unmarshal(newConfig); err != nil {
			onError(fmt.Errorf("failed to unmarshal config from %s: %w", e.Name, err))
			return
		}

		if err := validateConfig(newConfig); err != nil {
			onError(fmt.Errorf("invalid configuration in %s: %w", e.Name, err))
			return
		}

		callback(newConfig)
	})
	w.v.WatchConfig()
}

package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Privacy   PrivacyConfig   `yaml:"privacy" mapstructure:"privacy"`
	Retention RetentionConfig `yaml:"retention" mapstructure:"retention"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Analysis  AnalysisConfig  `yaml:"analysis" mapstructure:"analysis"`
	Identity  IdentityConfig  `yaml:"identity" mapstructure:"identity"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	WebSocket WebSocketConfig `yaml:"websocket" mapstructure:"websocket"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port          int           `yaml:"port" mapstructure:"port"`
	ReadTimeout   time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxUploadSize int64         `yaml:"max_upload_size" mapstructure:"max_upload_size"`
	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For header is
	// believed. Empty means the peer address is always the client.
	TrustedProxies []string `yaml:"trusted_proxies" mapstructure:"trusted_proxies"`
}

// PrivacyConfig contains sensitive-data detection configuration
type PrivacyConfig struct {
	Detectors     []string `yaml:"detectors" mapstructure:"detectors"`
	MaxInputBytes int      `yaml:"max_input_bytes" mapstructure:"max_input_bytes"`
}

// RetentionConfig contains auto-delete configuration
type RetentionConfig struct {
	Window           time.Duration `yaml:"window" mapstructure:"window"`
	TickInterval     time.Duration `yaml:"tick_interval" mapstructure:"tick_interval"`
	AutoDelete       bool          `yaml:"auto_delete" mapstructure:"auto_delete"`
	EvictionInterval time.Duration `yaml:"eviction_interval" mapstructure:"eviction_interval"`
}

// StoreConfig selects and configures the durable key-value backend
type StoreConfig struct {
	Backend    string `yaml:"backend" mapstructure:"backend"` // memory, redis or sqlite
	KeyPrefix  string `yaml:"key_prefix" mapstructure:"key_prefix"`
	RedisURL   string `yaml:"redis_url" mapstructure:"redis_url"`
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// AnalysisConfig contains analysis provider configuration
type AnalysisConfig struct {
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	Model       string        `yaml:"model" mapstructure:"model"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UseMockData bool          `yaml:"use_mock_data" mapstructure:"use_mock_data"`
	RedactInput bool          `yaml:"redact_input" mapstructure:"redact_input"`
	RateLimit   struct {
		Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
		RequestsPerMin int  `yaml:"requests_per_min" mapstructure:"requests_per_min"`
		Burst          int  `yaml:"burst" mapstructure:"burst"`
	} `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// IdentityConfig contains account store configuration
type IdentityConfig struct {
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	BcryptCost      int           `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`
	TokenSecret     string        `yaml:"token_secret" mapstructure:"token_secret"`
	TokenTTL        time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	Enabled        bool     `yaml:"enabled" mapstructure:"enabled"`
	Path           string   `yaml:"path" mapstructure:"path"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	Events         struct {
		BroadcastCountdown   bool `yaml:"broadcast_countdown" mapstructure:"broadcast_countdown"`
		BroadcastPurge       bool `yaml:"broadcast_purge" mapstructure:"broadcast_purge"`
		BroadcastDetections  bool `yaml:"broadcast_detections" mapstructure:"broadcast_detections"`
		BroadcastConnections bool `yaml:"broadcast_connections" mapstructure:"broadcast_connections"`
	} `yaml:"events" mapstructure:"events"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:          8080,
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  60 * time.Second,
			IdleTimeout:   60 * time.Second,
			MaxUploadSize: 10 << 20,
		},
		Privacy: PrivacyConfig{
			Detectors:     []string{"all"},
			MaxInputBytes: 1 << 20,
		},
		Retention: RetentionConfig{
			Window:           24 * time.Hour,
			TickInterval:     time.Second,
			AutoDelete:       true,
			EvictionInterval: 10 * time.Minute,
		},
		Store: StoreConfig{
			Backend:    "memory",
			KeyPrefix:  "scandidate",
			RedisURL:   "redis://localhost:6379/0",
			SQLitePath: "data/scandidate.db",
		},
		Analysis: AnalysisConfig{
			Model:       "gpt-4o",
			Timeout:     60 * time.Second,
			RedactInput: true,
		},
		Identity: IdentityConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			BcryptCost:      12,
			TokenTTL:        24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		WebSocket: WebSocketConfig{
			Enabled:        true,
			Path:           "/ws",
			AllowedOrigins: []string{"*"},
		},
	}

	cfg.Analysis.RateLimit.Enabled = true
	cfg.Analysis.RateLimit.RequestsPerMin = 20
	cfg.Analysis.RateLimit.Burst = 5

	cfg.Logging.File.Path = "logs/scandidate.log"

	cfg.WebSocket.Events.BroadcastCountdown = true
	cfg.WebSocket.Events.BroadcastPurge = true
	cfg.WebSocket.Events.BroadcastDetections = true
	cfg.WebSocket.Events.BroadcastConnections = false

	return cfg
}

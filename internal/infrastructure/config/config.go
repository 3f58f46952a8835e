package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Vitrine.
// All configuration is loaded from YAML and can be overridden by environment
// variables (VITRINE_SECTION_KEY pattern, see applyEnvOverrides).
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	NATS      NATSConfig      `yaml:"nats"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Logging   LoggingConfig   `yaml:"logging"`
	Auth      AuthConfig      `yaml:"auth"`
}

// ServiceConfig contains service identity settings.
type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
}

// DatabaseConfig contains SQLite database settings.
// The database is the one mandatory dependency: Vitrine does not start
// without it.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// RedisConfig contains cache store connection settings.
//
// URL is the combined connection-string form ("redis://[user[:pass]@]host[:port]").
// When URL is empty the discrete Host/Port/Username/Password fields are used.
// When both are empty the cache starts unconfigured and all cache operations
// no-op.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// DefaultTTL is the default time-to-live for cached values, in seconds.
	// Zero means no expiry.
	DefaultTTL int `yaml:"default_ttl"`
}

// NATSConfig contains job queue connection settings.
// Follows the same URL-or-discrete-fields pattern as RedisConfig.
type NATSConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// SubjectPrefix is prepended to all job subjects (e.g. "vitrine.jobs").
	SubjectPrefix string `yaml:"subject_prefix"`
}

// MQTTConfig contains event broker connection settings.
type MQTTConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`
	TLS      bool   `yaml:"tls"`
	QoS      int    `yaml:"qos"`
}

// InfluxDBConfig contains time-series sink connection settings.
// The sink records dependency state transitions; it is itself an optional
// dependency handled through the same guarded-handle machinery.
type InfluxDBConfig struct {
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// AuthConfig contains authentication settings for the admin API surface.
// When JWTSecret is empty, authentication is disabled (dev mode).
type AuthConfig struct {
	JWTSecret      string `yaml:"jwt_secret"`
	AdminUser      string `yaml:"admin_user"`
	AdminPassword  string `yaml:"admin_password"`
	AccessTokenTTL int    `yaml:"access_token_ttl"` // minutes
}

// Load reads, parses, and validates the configuration file at path.
//
// Values are resolved in precedence order:
//  1. Environment variable overrides (VITRINE_*)
//  2. YAML file values
//  3. Built-in defaults suitable for local development
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load, but a missing config file is not an
// error: the built-in defaults plus environment overrides are used instead.
// This lets the showcase run with nothing but environment variables set.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := defaultConfig()
		applyEnvOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validating config: %w", err)
		}
		return cfg, nil
	}
	return Load(path)
}

// defaultConfig returns a Config with local-development defaults.
//
// Note: the optional dependencies (Redis, NATS, MQTT, InfluxDB) deliberately
// default to empty connection settings. An unset dependency starts in the
// unconfigured state rather than attempting a connection to a guessed
// address; local development opts in per dependency.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "vitrine",
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:        "./data/vitrine.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Redis: RedisConfig{
			Port:       6379,
			DefaultTTL: 300,
		},
		NATS: NATSConfig{
			Port:          4222,
			SubjectPrefix: "vitrine.jobs",
		},
		MQTT: MQTTConfig{
			Port:     1883,
			ClientID: "vitrine-core",
			QoS:      1,
		},
		InfluxDB: InfluxDBConfig{
			Org:           "vitrine",
			Bucket:        "vitrine",
			BatchSize:     100,
			FlushInterval: 10,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Auth: AuthConfig{
			AdminUser:      "admin",
			AccessTokenTTL: 15,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables follow the pattern
// VITRINE_SECTION_KEY.
//
// Each optional dependency accepts a single combined connection-string
// variable (VITRINE_REDIS_URL, VITRINE_NATS_URL, VITRINE_MQTT_URL,
// VITRINE_INFLUXDB_URL) plus discrete host/port/credential fallbacks.
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("VITRINE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Redis
	if v := os.Getenv("VITRINE_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("VITRINE_REDIS_HOST"); v != "" {
		cfg.Redis.Host = v
	}
	if v := os.Getenv("VITRINE_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Redis.Port = port
		}
	}
	if v := os.Getenv("VITRINE_REDIS_USERNAME"); v != "" {
		cfg.Redis.Username = v
	}
	if v := os.Getenv("VITRINE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	// NATS
	if v := os.Getenv("VITRINE_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("VITRINE_NATS_HOST"); v != "" {
		cfg.NATS.Host = v
	}
	if v := os.Getenv("VITRINE_NATS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.NATS.Port = port
		}
	}
	if v := os.Getenv("VITRINE_NATS_USERNAME"); v != "" {
		cfg.NATS.Username = v
	}
	if v := os.Getenv("VITRINE_NATS_PASSWORD"); v != "" {
		cfg.NATS.Password = v
	}

	// MQTT
	if v := os.Getenv("VITRINE_MQTT_URL"); v != "" {
		cfg.MQTT.URL = v
	}
	if v := os.Getenv("VITRINE_MQTT_HOST"); v != "" {
		cfg.MQTT.Host = v
	}
	if v := os.Getenv("VITRINE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Port = port
		}
	}
	if v := os.Getenv("VITRINE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("VITRINE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}

	// InfluxDB
	if v := os.Getenv("VITRINE_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("VITRINE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// API
	if v := os.Getenv("VITRINE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("VITRINE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Logging
	if v := os.Getenv("VITRINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VITRINE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Auth (always override the secret in production)
	if v := os.Getenv("VITRINE_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("VITRINE_ADMIN_PASSWORD"); v != "" {
		cfg.Auth.AdminPassword = v
	}
}

// minJWTSecretLength is the minimum accepted JWT secret length in bytes.
const minJWTSecretLength = 32

// Validate checks the configuration for errors.
//
// Optional dependency sections are deliberately not validated for
// completeness: an empty Redis/NATS/MQTT/InfluxDB section means the
// dependency is unconfigured, which is a supported operating mode.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Service.Name == "" {
		errs = append(errs, "service.name is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, fmt.Sprintf("api.port must be 1-65535, got %d", c.API.Port))
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, fmt.Sprintf("mqtt.qos must be 0-2, got %d", c.MQTT.QoS))
	}

	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Sprintf("auth.jwt_secret must be at least %d characters", minJWTSecretLength))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

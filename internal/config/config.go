// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Printer  PrinterConfig  `mapstructure:"printer"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Security SecurityConfig `mapstructure:"security"`
	App      AppConfig      `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	DBName       string        `mapstructure:"dbname"`
	SSLMode      string        `mapstructure:"sslmode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
	AutoMigrate  bool          `mapstructure:"auto_migrate"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// PrinterConfig holds transport defaults and job limits
type PrinterConfig struct {
	OperationTimeout time.Duration    `mapstructure:"operation_timeout"`
	MaxJobCommands   int              `mapstructure:"max_job_commands"`
	PaperWidth       int              `mapstructure:"paper_width"`
	TCP              TCPPortConfig    `mapstructure:"tcp"`
	Serial           SerialPortConfig `mapstructure:"serial"`
	USB              USBPortConfig    `mapstructure:"usb"`
}

// TCPPortConfig represents TCP transport defaults
type TCPPortConfig struct {
	Port           int           `mapstructure:"port"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	KeepAlive      bool          `mapstructure:"keep_alive"`
}

// SerialPortConfig represents serial port defaults
type SerialPortConfig struct {
	BaudRate int           `mapstructure:"baud_rate"`
	DataBits int           `mapstructure:"data_bits"`
	StopBits int           `mapstructure:"stop_bits"`
	Parity   string        `mapstructure:"parity"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// USBPortConfig represents USB transport defaults
type USBPortConfig struct {
	Endpoint int           `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MQTTConfig configures the broker bridge
type MQTTConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BrokerURL   string        `mapstructure:"broker_url"`
	ClientID    string        `mapstructure:"client_id"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	TopicPrefix string        `mapstructure:"topic_prefix"`
	QoS         byte          `mapstructure:"qos"`
	KeepAlive   uint16        `mapstructure:"keep_alive"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

var (
	validEnvironments = []string{"development", "staging", "production", "test"}
	validLevels       = []string{"debug", "info", "warn", "error", "fatal"}
)

// Load reads configuration from path (or the standard search paths when
// empty) and the environment. A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/epos-bridge")
	}

	v.SetEnvPrefix("EPOS_BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8090")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "epos_bridge")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", "5m")
	v.SetDefault("database.auto_migrate", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Printer defaults
	v.SetDefault("printer.operation_timeout", "30s")
	v.SetDefault("printer.max_job_commands", 2000)
	v.SetDefault("printer.paper_width", 576)
	v.SetDefault("printer.tcp.port", 9100)
	v.SetDefault("printer.tcp.connect_timeout", "10s")
	v.SetDefault("printer.tcp.read_timeout", "5s")
	v.SetDefault("printer.tcp.write_timeout", "30s")
	v.SetDefault("printer.tcp.keep_alive", true)
	v.SetDefault("printer.serial.baud_rate", 9600)
	v.SetDefault("printer.serial.data_bits", 8)
	v.SetDefault("printer.serial.stop_bits", 1)
	v.SetDefault("printer.serial.parity", "none")
	v.SetDefault("printer.serial.timeout", "5s")
	v.SetDefault("printer.usb.endpoint", 1)
	v.SetDefault("printer.usb.timeout", "5s")

	// MQTT defaults
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker_url", "mqtt://localhost:1883")
	v.SetDefault("mqtt.client_id", "epos-bridge")
	v.SetDefault("mqtt.topic_prefix", "epos")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.keep_alive", 30)
	v.SetDefault("mqtt.timeout", "10s")

	// Security defaults
	v.SetDefault("security.allowed_origins", []string{"*"})

	// App defaults
	v.SetDefault("app.name", "epos-bridge")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if !contains(validEnvironments, config.App.Environment) {
		return fmt.Errorf("app.environment must be one of: %v", validEnvironments)
	}
	if !contains(validLevels, config.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}
	if config.Printer.OperationTimeout <= 0 {
		return fmt.Errorf("printer.operation_timeout must be positive")
	}
	if config.Printer.MaxJobCommands <= 0 {
		return fmt.Errorf("printer.max_job_commands must be positive")
	}
	if config.MQTT.Enabled {
		if config.MQTT.BrokerURL == "" {
			return fmt.Errorf("mqtt.broker_url is required when mqtt is enabled")
		}
		if config.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// DSN returns the lib/pq connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.App.Environment == "development"
}

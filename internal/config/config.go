package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the POS service
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Printer    PrinterConfig    `yaml:"printer"`
	Restaurant RestaurantConfig `yaml:"restaurant"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// AuthConfig holds the key used to verify bearer tokens
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// PrinterConfig holds receipt printing settings
type PrinterConfig struct {
	Device     string        `yaml:"device"`
	PassDelay  time.Duration `yaml:"pass_delay"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	Width      int           `yaml:"width"`
}

// RestaurantConfig holds the floor settings
type RestaurantConfig struct {
	Name   string `yaml:"name"`
	Tables int    `yaml:"tables"`
}

// Default returns the configuration used before the file and environment are applied
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			SSLMode:  "disable",
			MaxConns: 25,
		},
		RabbitMQ: RabbitMQConfig{
			Host: "localhost",
			Port: 5672,
		},
		Server: ServerConfig{
			Port:           3000,
			RequestTimeout: 30 * time.Second,
		},
		Printer: PrinterConfig{
			Device:     "receipts.txt",
			PassDelay:  5 * time.Second,
			RetryDelay: 3 * time.Second,
			Width:      32,
		},
		Restaurant: RestaurantConfig{
			Name:   "TAPLOKAL",
			Tables: 25,
		},
	}
}

// Load reads configuration from a YAML file, then applies .env and POS_* overrides
func Load(filename string) (*Config, error) {
	config := Default()

	if err := config.readFile(filename); err != nil {
		return nil, err
	}

	// a missing .env is fine, the process environment still applies
	_ = godotenv.Load()

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) readFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	var currentSection string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Check for section headers
		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			currentSection = strings.TrimSuffix(line, ":")
			continue
		}

		if strings.Contains(line, ":") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

			if err := c.setValue(currentSection, key, value); err != nil {
				return fmt.Errorf("failed to set config value %s.%s: %w", currentSection, key, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// envOverrides maps environment variables onto section keys
var envOverrides = []struct {
	env     string
	section string
	key     string
}{
	{"POS_DB_HOST", "database", "host"},
	{"POS_DB_PORT", "database", "port"},
	{"POS_DB_USER", "database", "user"},
	{"POS_DB_PASSWORD", "database", "password"},
	{"POS_DB_NAME", "database", "database"},
	{"POS_RABBITMQ_HOST", "rabbitmq", "host"},
	{"POS_RABBITMQ_PORT", "rabbitmq", "port"},
	{"POS_RABBITMQ_USER", "rabbitmq", "user"},
	{"POS_RABBITMQ_PASSWORD", "rabbitmq", "password"},
	{"POS_HTTP_PORT", "server", "port"},
	{"POS_JWT_SECRET", "auth", "jwt_secret"},
	{"POS_PRINTER_DEVICE", "printer", "device"},
	{"POS_TABLES", "restaurant", "tables"},
}

func (c *Config) applyEnv() error {
	for _, o := range envOverrides {
		value, ok := os.LookupEnv(o.env)
		if !ok || value == "" {
			continue
		}
		if err := c.setValue(o.section, o.key, value); err != nil {
			return fmt.Errorf("invalid %s: %w", o.env, err)
		}
	}
	return nil
}

// setValue sets a configuration value based on section and key
func (c *Config) setValue(section, key, value string) error {
	switch section {
	case "database":
		return c.setDatabaseValue(key, value)
	case "rabbitmq":
		return c.setRabbitMQValue(key, value)
	case "server":
		return c.setServerValue(key, value)
	case "auth":
		return c.setAuthValue(key, value)
	case "printer":
		return c.setPrinterValue(key, value)
	case "restaurant":
		return c.setRestaurantValue(key, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func (c *Config) setDatabaseValue(key, value string) error {
	var err error
	switch key {
	case "host":
		c.Database.Host = value
	case "port":
		c.Database.Port, err = parsePort(value)
	case "user":
		c.Database.User = value
	case "password":
		c.Database.Password = value
	case "database":
		c.Database.Database = value
	case "sslmode":
		c.Database.SSLMode = value
	case "max_conns":
		c.Database.MaxConns, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("unknown database key: %s", key)
	}
	return err
}

func (c *Config) setRabbitMQValue(key, value string) error {
	var err error
	switch key {
	case "host":
		c.RabbitMQ.Host = value
	case "port":
		c.RabbitMQ.Port, err = parsePort(value)
	case "user":
		c.RabbitMQ.User = value
	case "password":
		c.RabbitMQ.Password = value
	default:
		return fmt.Errorf("unknown rabbitmq key: %s", key)
	}
	return err
}

func (c *Config) setServerValue(key, value string) error {
	var err error
	switch key {
	case "port":
		c.Server.Port, err = parsePort(value)
	case "request_timeout":
		c.Server.RequestTimeout, err = time.ParseDuration(value)
	default:
		return fmt.Errorf("unknown server key: %s", key)
	}
	return err
}

func (c *Config) setAuthValue(key, value string) error {
	switch key {
	case "jwt_secret":
		c.Auth.JWTSecret = value
	default:
		return fmt.Errorf("unknown auth key: %s", key)
	}
	return nil
}

func (c *Config) setPrinterValue(key, value string) error {
	var err error
	switch key {
	case "device":
		c.Printer.Device = value
	case "pass_delay":
		c.Printer.PassDelay, err = time.ParseDuration(value)
	case "retry_delay":
		c.Printer.RetryDelay, err = time.ParseDuration(value)
	case "width":
		c.Printer.Width, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("unknown printer key: %s", key)
	}
	return err
}

func (c *Config) setRestaurantValue(key, value string) error {
	var err error
	switch key {
	case "name":
		c.Restaurant.Name = value
	case "tables":
		c.Restaurant.Tables, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("unknown restaurant key: %s", key)
	}
	return err
}

func parsePort(value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid port value: %w", err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}

// Validate checks values that have no sensible default
func (c *Config) Validate() error {
	if c.Restaurant.Tables < 0 {
		return fmt.Errorf("restaurant.tables must not be negative")
	}
	if c.Printer.Width < 24 {
		return fmt.Errorf("printer.width must be at least 24 columns")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database, c.Database.SSLMode)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}

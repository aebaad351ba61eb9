package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

type Store string

const (
	StoreMemory Store = "memory"
	StoreMySQL  Store = "mysql"
	StoreSQLite Store = "sqlite"
)

type Config struct {
	Store    Store        `yaml:"store"`
	LogLevel string       `yaml:"log_level"`
	MySQL    MySQLConfig  `yaml:"mysql"`
	SQLite   SQLiteConfig `yaml:"sqlite"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type SQLiteConfig struct {
	// Empty means a private in-memory database
	Path string `yaml:"path"`
}

// DSN formats the settings for go-sql-driver/mysql
func (c MySQLConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.DBName = c.Database
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	cfg.Net = "tcp"
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads the configuration file, applies environment overrides and fills in defaults.
// An empty path skips the file.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreMySQL, StoreSQLite:
		return nil
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("USERSVC_STORE"); v != "" {
		c.Store = Store(v)
	}
	if v := os.Getenv("USERSVC_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("USERSVC_MYSQL_HOST"); v != "" {
		c.MySQL.Host = v
	}
	if v := os.Getenv("USERSVC_MYSQL_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid USERSVC_MYSQL_PORT %q: %w", v, err)
		}
		c.MySQL.Port = port
	}
	if v := os.Getenv("USERSVC_SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Store == "" {
		c.Store = StoreMemory
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MySQL.Host == "" {
		c.MySQL.Host = "localhost"
	}
	if c.MySQL.Port == 0 {
		c.MySQL.Port = 3306
	}
	if c.MySQL.User == "" {
		c.MySQL.User = "root"
	}
	if c.MySQL.Database == "" {
		c.MySQL.Database = "mysql"
	}
}

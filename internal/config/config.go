// Package config handles the optional YAML configuration file with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"gitlab.com/dirk.krummacker/contact-book/internal/logger"
)

// DefaultFile is the contacts file used when nothing else is configured.
const DefaultFile = "contacts.txt"

// Config holds all contact book configuration.
type Config struct {
	File        string         `yaml:"file"`
	MaxAttempts int            `yaml:"max_attempts"` // 0 retries forever
	Log         logger.Options `yaml:"log"`
	Service     Service        `yaml:"service"`
	Database    Database       `yaml:"database"`
}

// Service holds the settings of the REST service.
type Service struct {
	Port       string `yaml:"port"`
	GinLogging bool   `yaml:"gin_logging"`
}

// Database holds the connection parameters of the MySQL mirror.
type Database struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Name     string `yaml:"name"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		File:        DefaultFile,
		MaxAttempts: 3,
		Service: Service{
			Port:       "8080",
			GinLogging: true,
		},
		Database: Database{
			Host: "localhost:3306",
			Name: "test",
		},
	}
}

// Load returns the configuration: the defaults, overridden by the YAML file at path (if path is
// not empty and the file exists), overridden by the environment as read through getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readFile merges the YAML file at path into the config. Unknown keys are rejected.
func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path) // nosemgrep
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		// Empty and comment-only files decode to EOF.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CONTACTS_FILE, CONTACTS_MAX_ATTEMPTS, CONTACTS_LOG_LEVEL,
// CONTACTS_LOG_FORMAT, CONTACTS_LOG_FILE, PORT, GIN_LOGGING, DBUSER, DBPWD, DBHOST, DBNAME.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("CONTACTS_FILE"); v != "" {
		c.File = v
	}
	if v := getenv("CONTACTS_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid CONTACTS_MAX_ATTEMPTS %q: %w", v, err)
		}
		c.MaxAttempts = n
	}
	if v := getenv("CONTACTS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("CONTACTS_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := getenv("CONTACTS_LOG_FILE"); v != "" {
		c.Log.Logfile = v
	}
	if v := getenv("PORT"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("config: could not parse PORT %q: %w", v, err)
		}
		c.Service.Port = v
	}
	if v := getenv("GIN_LOGGING"); v != "" {
		c.Service.GinLogging = !strings.EqualFold(v, "off")
	}
	if v := getenv("DBUSER"); v != "" {
		c.Database.User = v
	}
	if v := getenv("DBPWD"); v != "" {
		c.Database.Password = v
	}
	if v := getenv("DBHOST"); v != "" {
		c.Database.Host = v
	}
	if v := getenv("DBNAME"); v != "" {
		c.Database.Name = v
	}
	return nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.File == "" {
		return errors.New("config: file cannot be empty")
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("config: max_attempts must be non-negative, got %d", c.MaxAttempts)
	}
	if c.Service.Port == "" {
		return errors.New("config: service.port cannot be empty")
	}
	return nil
}

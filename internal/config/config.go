package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "loom.yaml"

	// DefaultPort is the default preview server port.
	DefaultPort = 3000

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"
)

// Config represents the optional loom.yaml configuration.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Preview PreviewConfig `yaml:"preview"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// PreviewConfig contains preview server settings.
type PreviewConfig struct {
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port,omitempty"`
	Debug   bool   `yaml:"debug,omitempty"`
	Metrics bool   `yaml:"metrics,omitempty"`
}

// Resolved contains resolved configuration values with defaults applied.
type Resolved struct {
	AppName string
	Host    string
	Port    int
	Debug   bool
	Metrics bool
}

// Addr returns the host:port listen address.
func (r *Resolved) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// LoadOptional reads loom.yaml from dir if present. A missing file is not
// an error; it yields the zero config.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	return &cfg, nil
}

// Resolve loads loom.yaml (if present) and applies defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	host := strings.TrimSpace(cfg.Preview.Host)
	if host == "" {
		host = DefaultHost
	}

	port := cfg.Preview.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("preview.port %d out of range", port)
	}

	name := strings.TrimSpace(cfg.App.Name)
	if name == "" {
		name = filepath.Base(dir)
	}

	return &Resolved{
		AppName: name,
		Host:    host,
		Port:    port,
		Debug:   cfg.Preview.Debug,
		Metrics: cfg.Preview.Metrics,
	}, nil
}

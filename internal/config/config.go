// Package config loads and holds the JHP engine's runtime configuration:
// bind address, document root, extensions directory, and pool size. A YAML
// file is loaded over defaults, then environment overrides apply on top.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"jhp/internal/logging"
)

// EngineConfig is the engine's full runtime configuration.
type EngineConfig struct {
	Host          string `yaml:"host"`
	Port          uint16 `yaml:"port"`
	DocumentRoot  string `yaml:"document_root"`
	IndexFile     string `yaml:"index_file"`
	ExtensionsDir string `yaml:"extensions_dir"`
	Executors     int    `yaml:"executors"`
	MailboxDepth  int    `yaml:"mailbox_depth"`
	MetricsAddr   string `yaml:"metrics_addr"`
}

// DefaultConfig returns the engine's default configuration.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		Host:          "127.0.0.1",
		Port:          3000,
		DocumentRoot:  "jhp-tests",
		IndexFile:     "index.jhp",
		ExtensionsDir: "ext",
		Executors:     4,
		MailboxDepth:  1024,
		MetricsAddr:   "",
	}
}

// Addr returns the "host:port" HTTP bind address, bracketing an IPv6 host.
func (c *EngineConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

// IndexPath returns the full path to the document root's index document.
func (c *EngineConfig) IndexPath() string {
	return filepath.Join(c.DocumentRoot, c.IndexFile)
}

// Load reads a YAML config file over the defaults, then applies
// environment overrides. A missing file is not an error: defaults (plus
// env overrides) are returned.
func Load(path string) (*EngineConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	logging.Get(logging.CategoryBoot).Debugf("loading config from %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Get(logging.CategoryBoot).Infof("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies JHP_* environment variable overrides.
func (c *EngineConfig) applyEnvOverrides() {
	if v := os.Getenv("JHP_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("JHP_PORT"); v != "" {
		if port, err := strconv.ParseUint(v, 10, 16); err == nil {
			c.Port = uint16(port)
		}
	}
	if v := os.Getenv("JHP_DOCROOT"); v != "" {
		c.DocumentRoot = v
	}
	if v := os.Getenv("JHP_EXT_DIR"); v != "" {
		c.ExtensionsDir = v
	}
	if v := os.Getenv("JHP_METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
}

// Validate returns an error if the configuration cannot be used to boot the engine.
func (c *EngineConfig) Validate() error {
	if c.Executors <= 0 {
		return fmt.Errorf("executors must be > 0, got %d", c.Executors)
	}
	if c.MailboxDepth <= 0 {
		return fmt.Errorf("mailbox_depth must be > 0, got %d", c.MailboxDepth)
	}
	if c.DocumentRoot == "" {
		return fmt.Errorf("document_root must not be empty")
	}
	return nil
}

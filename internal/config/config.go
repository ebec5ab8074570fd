// Package config loads and saves the YAML-backed settings cmd/mpdc reads,
// the same way the teacher's config package did for its own targets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the mpdc CLI's on-disk configuration.
type Config struct {
	// Servers this CLI knows how to reach.
	Servers []Server `yaml:"servers"`

	// PreferredServer is the name of the server used when -host/-port are
	// not given on the command line.
	PreferredServer string `yaml:"preferred_server,omitempty"`

	Idle IdleConfig `yaml:"idle"`
}

// Server is one named MPD endpoint.
type Server struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
	Port int    `yaml:"port,omitempty"`
}

// IdleConfig holds defaults for the CLI's idle-watch mode.
type IdleConfig struct {
	Subsystems []string `yaml:"subsystems,omitempty"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Servers:         []Server{},
		PreferredServer: "",
		Idle:            IdleConfig{},
	}
}

// LoadConfig loads configuration from path, returning DefaultConfig if the
// file does not exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// AddServer adds a server to the configuration, making it preferred if it
// is the first one.
func (c *Config) AddServer(server Server) {
	c.Servers = append(c.Servers, server)
	if len(c.Servers) == 1 {
		c.PreferredServer = server.Name
	}
}

// GetPreferredServer returns the preferred server, or the first configured
// server if none is marked preferred, or nil if none are configured.
func (c *Config) GetPreferredServer() *Server {
	if c.PreferredServer != "" {
		if s := c.GetServer(c.PreferredServer); s != nil {
			return s
		}
	}
	if len(c.Servers) > 0 {
		return &c.Servers[0]
	}
	return nil
}

// GetServer returns a server by name, or nil if it is not configured.
func (c *Config) GetServer(name string) *Server {
	for i := range c.Servers {
		if c.Servers[i].Name == name {
			return &c.Servers[i]
		}
	}
	return nil
}

// SetPreferredServer marks name as the preferred server.
func (c *Config) SetPreferredServer(name string) error {
	if c.GetServer(name) == nil {
		return fmt.Errorf("server not found: %s", name)
	}
	c.PreferredServer = name
	return nil
}

// RemoveServer removes a server by name.
func (c *Config) RemoveServer(name string) error {
	for i := range c.Servers {
		if c.Servers[i].Name == name {
			c.Servers = append(c.Servers[:i], c.Servers[i+1:]...)
			if c.PreferredServer == name {
				c.PreferredServer = ""
			}
			return nil
		}
	}
	return fmt.Errorf("server not found: %s", name)
}

// Package config loads and persists the application configuration from
// a TOML file, watches it for live edits, and reads the daemon's own
// YAML config when a path to it is known.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// DefaultTestURL is probed through each node to measure latency.
const DefaultTestURL = "https://www.gstatic.com/generate_204"

// Config is the application configuration.
type Config struct {
	APIURL          string `toml:"api_url"`
	Secret          string `toml:"secret"`
	Preset          string `toml:"preset"`
	Theme           string `toml:"theme"`
	TestURL         string `toml:"test_url"`
	TestTimeoutMs   int    `toml:"test_timeout_ms"`
	ProbeCeiling    int    `toml:"probe_ceiling"`
	LogLevel        string `toml:"log_level"`
	ClashConfigPath string `toml:"clash_config_path"`

	Favorites []string    `toml:"favorites"`
	Rules     RulesConfig `toml:"rules"`
	Groups    []NodeGroup `toml:"groups"`
}

// RulesConfig holds the locally maintained rule lists shown alongside
// the daemon's rules.
type RulesConfig struct {
	Whitelist []string `toml:"whitelist"`
	Blacklist []string `toml:"blacklist"`
}

// NodeGroup is a user-defined grouping of nodes, independent of the
// daemon's own groups.
type NodeGroup struct {
	Name  string   `toml:"name"`
	Nodes []string `toml:"nodes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:        "http://127.0.0.1:9090",
		Preset:        "default",
		Theme:         "catppuccin",
		TestURL:       DefaultTestURL,
		TestTimeoutMs: 5000,
		ProbeCeiling:  16,
		LogLevel:      "info",
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "clashtui", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "clashtui", "config.toml")
}

// Load reads the config file, filling defaults for missing values.
// A missing file is not an error: the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.APIURL == "" {
		c.APIURL = d.APIURL
	}
	if c.TestURL == "" {
		c.TestURL = d.TestURL
	}
	if c.TestTimeoutMs <= 0 {
		c.TestTimeoutMs = d.TestTimeoutMs
	}
	if c.ProbeCeiling <= 0 {
		c.ProbeCeiling = d.ProbeCeiling
	}
	if c.Preset == "" {
		c.Preset = d.Preset
	}
	if c.Theme == "" {
		c.Theme = d.Theme
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	// Environment overrides, useful in scripts and tests.
	if url := os.Getenv("CLASHTUI_API_URL"); url != "" {
		c.APIURL = url
	}
	if secret := os.Getenv("CLASHTUI_SECRET"); secret != "" {
		c.Secret = secret
	}
}

// Save writes the config to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// Clone returns a deep copy, safe to hand to another goroutine while
// the original keeps being mutated.
func (c *Config) Clone() *Config {
	out := *c
	out.Favorites = append([]string(nil), c.Favorites...)
	out.Rules.Whitelist = append([]string(nil), c.Rules.Whitelist...)
	out.Rules.Blacklist = append([]string(nil), c.Rules.Blacklist...)
	if c.Groups != nil {
		out.Groups = make([]NodeGroup, len(c.Groups))
		for i, g := range c.Groups {
			out.Groups[i] = NodeGroup{Name: g.Name, Nodes: append([]string(nil), g.Nodes...)}
		}
	}
	return &out
}

// IsFavorite reports whether a node is starred.
func (c *Config) IsFavorite(node string) bool {
	for _, f := range c.Favorites {
		if f == node {
			return true
		}
	}
	return false
}

// ToggleFavorite stars or unstars a node and reports the new state.
func (c *Config) ToggleFavorite(node string) bool {
	for i, f := range c.Favorites {
		if f == node {
			c.Favorites = append(c.Favorites[:i], c.Favorites[i+1:]...)
			return false
		}
	}
	c.Favorites = append(c.Favorites, node)
	sort.Strings(c.Favorites)
	return true
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClashFile is the subset of the daemon's own YAML configuration the
// Groups page displays: the declared proxy groups and providers, which
// the API may omit for groups with no live members.
type ClashFile struct {
	Port               int                      `yaml:"port"`
	SocksPort          int                      `yaml:"socks-port"`
	MixedPort          int                      `yaml:"mixed-port"`
	Mode               string                   `yaml:"mode"`
	ExternalController string                   `yaml:"external-controller"`
	ProxyGroups        []ClashProxyGroup        `yaml:"proxy-groups"`
	ProxyProviders     map[string]ClashProvider `yaml:"proxy-providers"`
}

// ClashProxyGroup is one declared group.
type ClashProxyGroup struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Proxies  []string `yaml:"proxies"`
	Use      []string `yaml:"use"`
	URL      string   `yaml:"url"`
	Interval int      `yaml:"interval"`
}

// ClashProvider is one declared proxy provider.
type ClashProvider struct {
	Type     string `yaml:"type"`
	URL      string `yaml:"url"`
	Path     string `yaml:"path"`
	Interval int    `yaml:"interval"`
}

// LoadClashFile parses the daemon config at path.
func LoadClashFile(path string) (*ClashFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cf ClashFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing daemon config: %w", err)
	}
	return &cf, nil
}

// GroupNames returns the declared group names in file order.
func (c *ClashFile) GroupNames() []string {
	names := make([]string, 0, len(c.ProxyGroups))
	for _, g := range c.ProxyGroups {
		names = append(names, g.Name)
	}
	return names
}

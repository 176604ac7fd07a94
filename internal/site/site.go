// Package site holds the public site's static configuration and page
// templates.
package site

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var siteYAML []byte

type Links struct {
	Author   string `yaml:"author"`
	Twitter  string `yaml:"twitter"`
	LinkedIn string `yaml:"linkedin"`
	Feed     string `yaml:"feed"`
}

type Config struct {
	Name         string `yaml:"name"`
	URL          string `yaml:"url"`
	Description  string `yaml:"description"`
	AnalyticsURL string `yaml:"analytics_url"`
	Links        Links  `yaml:"links"`
}

// Load parses the embedded site.yaml. A non-empty urlOverride replaces the
// canonical URL; the feed link always follows the final URL.
func Load(urlOverride string) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(siteYAML, &c); err != nil {
		return nil, fmt.Errorf("parse site.yaml: %w", err)
	}
	if u := strings.TrimSpace(urlOverride); u != "" {
		c.URL = u
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Links.Feed == "" {
		c.Links.Feed = c.URL + "/rss.xml"
	}
	return &c, nil
}

package config

import (
	_ "embed"
	"fmt"
	"menuengine/internal/model"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Catalog is the versioned static data behind menu synthesis: one base
// template per cuisine plus the review keyword vocabulary.
type Catalog struct {
	Version    string                    `yaml:"version"`
	Templates  map[string]TemplateConfig `yaml:"templates"`
	Vocabulary VocabularyConfig          `yaml:"vocabulary"`
}

// TemplateConfig is a base menu for one cuisine
type TemplateConfig struct {
	Categories []TemplateCategory `yaml:"categories"`
}

type TemplateCategory struct {
	Name  string         `yaml:"name"`
	Items []TemplateItem `yaml:"items"`
}

type TemplateItem struct {
	Name        string  `yaml:"name"`
	Price       float64 `yaml:"price"`
	Description string  `yaml:"description"`
}

// VocabularyConfig holds review keywords; entries may be in any language
type VocabularyConfig struct {
	Foods      []string `yaml:"foods"`
	Sentiments []string `yaml:"sentiments"`
}

// LoadCatalog parses the catalogue at path, or the embedded one when path is
// empty. Unlike the optional service config file, an explicit path that does
// not exist is an error.
func LoadCatalog(path string) (*Catalog, error) {
	data := embeddedCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		data = b
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalogue YAML
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate requires a usable template for every cuisine
func (c *Catalog) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("catalog: version is required")
	}
	for _, cuisine := range model.AllCuisines {
		tmpl, ok := c.Templates[string(cuisine)]
		if !ok {
			return fmt.Errorf("catalog: missing template for %s", cuisine)
		}
		if len(tmpl.Categories) == 0 {
			return fmt.Errorf("catalog: template %s has no categories", cuisine)
		}
		for _, cat := range tmpl.Categories {
			if len(cat.Items) == 0 {
				return fmt.Errorf("catalog: %s/%s has no items", cuisine, cat.Name)
			}
			for _, item := range cat.Items {
				if item.Price <= 0 {
					return fmt.Errorf("catalog: %s/%s/%s has non-positive price", cuisine, cat.Name, item.Name)
				}
			}
		}
	}
	return nil
}

// Template returns the template configured for a cuisine
func (c *Catalog) Template(cuisine model.Cuisine) (TemplateConfig, bool) {
	if c == nil {
		return TemplateConfig{}, false
	}
	t, ok := c.Templates[string(cuisine)]
	return t, ok
}

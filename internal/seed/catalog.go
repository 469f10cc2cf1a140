// Package seed loads the reference catalogs used to populate a fresh store.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fleet/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the full set of reference data available for assignment.
type Catalog struct {
	Drivers  []*domain.Driver  `yaml:"drivers"`
	Vehicles []*domain.Vehicle `yaml:"vehicles"`
	Routes   []*domain.Route   `yaml:"routes"`
}

// Load reads a catalog from a YAML file. An empty path returns the
// built-in catalog.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load catalog %q: %w", path, err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, r := range c.Routes {
		if r == nil || r.Name == "" {
			return nil, fmt.Errorf("parse catalog: route %d has no name", i)
		}
	}
	return &c, nil
}

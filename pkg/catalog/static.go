// Package catalog provides the drama ranking returned with query_ranking answers.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/aretw0/dramaflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed dramas.yaml
var defaultDramas []byte

// Static serves a fixed list of items. It implements ports.Catalog.
type Static struct {
	items []domain.CatalogItem
}

type catalogFile struct {
	Dramas []domain.CatalogItem `yaml:"dramas"`
}

// Default returns the built-in daily ranking.
func Default() (*Static, error) {
	return Parse(defaultDramas)
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Static, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(file.Dramas), nil
}

// New wraps items as a catalog.
func New(items []domain.CatalogItem) *Static {
	return &Static{items: items}
}

// ListItems returns a copy of the catalog so callers can't reorder it.
func (s *Static) ListItems(ctx context.Context) ([]domain.CatalogItem, error) {
	out := make([]domain.CatalogItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

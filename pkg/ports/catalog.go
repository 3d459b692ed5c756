package ports

import (
	"context"

	"github.com/aretw0/dramaflow/pkg/domain"
)

// Catalog lists the promotable items shown with ranking answers.
type Catalog interface {
	ListItems(ctx context.Context) ([]domain.CatalogItem, error)
}

package repository

import (
	"context"
	"database/sql"

	"f3-catalog/backend/internal/org/domain"
)

// CatalogSource loads global rows (no owning org) for the catalog provider.
type CatalogSource struct {
	db *sql.DB
}

func NewCatalogSource(sqlDB *sql.DB) *CatalogSource {
	return &CatalogSource{db: sqlDB}
}

func (s *CatalogSource) LoadGlobalCatalog(ctx context.Context) (domain.GlobalCatalog, error) {
	const global = `WHERE org_id IS NULL AND is_active`
	ets, err := loadEventTypes(ctx, s.db, global)
	if err != nil {
		return domain.GlobalCatalog{}, err
	}
	tags, err := loadEventTags(ctx, s.db, global)
	if err != nil {
		return domain.GlobalCatalog{}, err
	}
	positions, err := loadPositions(ctx, s.db, global)
	if err != nil {
		return domain.GlobalCatalog{}, err
	}
	return domain.NewGlobalCatalog(ets, tags, positions), nil
}

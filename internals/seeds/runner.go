package seeds

import (
	"context"

	"notesku_backend/internals/gateway"
	catalogSeed "notesku_backend/internals/seeds/catalog"
)

const DefaultCatalogFile = "internals/seeds/catalog/data_catalog.json"

func RunAllSeeds(ctx context.Context, catalog gateway.Catalog, path string) (catalogSeed.Result, error) {
	if path == "" {
		path = DefaultCatalogFile
	}
	//* Catalog
	return catalogSeed.SeedCatalogFromJSON(ctx, catalog, path)
}

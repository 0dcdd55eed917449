package details

import (
	"github.com/gofiber/fiber/v2"

	catalogController "notesku_backend/internals/features/catalog/controller"
	"notesku_backend/internals/features/catalog/editor"
	"notesku_backend/internals/features/catalog/navigator"
	catalogRoute "notesku_backend/internals/features/catalog/route"
	"notesku_backend/internals/features/catalog/search"
	"notesku_backend/internals/features/catalog/stats"
	"notesku_backend/internals/features/catalog/upload"
	"notesku_backend/internals/gateway"
	"notesku_backend/internals/metrics"
)

type CatalogDeps struct {
	Catalog   gateway.Catalog
	Storage   gateway.Storage
	Navigator *navigator.Navigator
	Metrics   *metrics.Metrics
	Bucket    string
	AdminCode string
}

func CatalogRoutes(api fiber.Router, d CatalogDeps) {
	ed := editor.New(d.Catalog, d.Navigator, d.AdminCode)
	ed.Metrics = d.Metrics

	pipeline := upload.New(d.Catalog, d.Storage, d.Bucket)
	pipeline.Metrics = d.Metrics

	catalogRoute.CatalogRoutes(api,
		catalogController.NewCatalogController(d.Navigator, ed, search.New(d.Catalog), stats.New(d.Catalog)),
		catalogController.NewDocumentController(d.Catalog, pipeline),
	)
}

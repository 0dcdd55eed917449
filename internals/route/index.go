// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"notesku_backend/internals/configs"
	"notesku_backend/internals/features/catalog/navigator"
	authService "notesku_backend/internals/features/users/auth/service"
	"notesku_backend/internals/features/users/session"
	"notesku_backend/internals/gateway"
	"notesku_backend/internals/logger"
	"notesku_backend/internals/metrics"
	routeDetails "notesku_backend/internals/route/details"
	"notesku_backend/internals/storage"
)

var startTime time.Time

type Deps struct {
	Config    configs.App
	DB        *gorm.DB
	Metrics   *metrics.Metrics
	Catalog   gateway.Catalog
	Storage   gateway.Storage
	Navigator *navigator.Navigator
	Auth      *authService.Service
	Registry  *session.Registry
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()
	log := logger.Component("routes")

	// ===================== BASE =====================
	BaseRoutes(app, d.DB, d.Metrics)

	// file lokal disajikan langsung (STORAGE_DRIVER=local)
	if d.Config.StorageDriver == "local" && d.Config.StorageLocalDir != "" {
		log.Info().Str("dir", d.Config.StorageLocalDir).Msg("serving local storage")
		app.Static(storage.LocalRoute, d.Config.StorageLocalDir)
	}

	// ===================== API (per client) =====================
	api := app.Group("/api", d.Registry.Middleware())

	log.Info().Msg("setting up AuthRoutes")
	routeDetails.AuthRoutes(api, d.Auth, d.Registry)

	log.Info().Msg("setting up CatalogRoutes")
	routeDetails.CatalogRoutes(api, routeDetails.CatalogDeps{
		Catalog:   d.Catalog,
		Storage:   d.Storage,
		Navigator: d.Navigator,
		Metrics:   d.Metrics,
		Bucket:    d.Config.StorageBucket,
		AdminCode: d.Config.AdminCode,
	})
}

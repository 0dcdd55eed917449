package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"notesku_backend/internals/metrics"
)

type Options struct {
	RequestTimeout time.Duration
	CorsOrigins    []string
	Metrics        *metrics.Metrics
}

// SetupMiddlewares memasang middleware global dengan urutan:
// request ctx → recover → metrics → cors → limiter → compress → etag.
func SetupMiddlewares(app *fiber.App, opt Options) {
	app.Use(RequestContext(opt.RequestTimeout))
	app.Use(RecoveryMiddleware())
	if opt.Metrics != nil {
		app.Use(opt.Metrics.Middleware())
	}
	app.Use(CorsMiddleware(opt.CorsOrigins))
	app.Use(GlobalRateLimiter())
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching
}

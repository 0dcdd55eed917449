package route

import (
	"github.com/gofiber/fiber/v2"

	"notesku_backend/internals/features/catalog/controller"
)

// CatalogRoutes: router sudah melewati middleware session (cookie notes_client).
func CatalogRoutes(api fiber.Router, catalogCtrl *controller.CatalogController, docCtrl *controller.DocumentController) {
	cat := api.Group("/catalog")
	cat.Get("/browse", catalogCtrl.Browse)          // 📂 masuk ke level berikutnya
	cat.Get("/view", catalogCtrl.CurrentView)       // 👀 view terakhir client
	cat.Get("/options/:level", catalogCtrl.Options) // 🔽 dropdown
	cat.Post("/:level", catalogCtrl.CreateNode)     // ➕ admin code

	docs := api.Group("/documents")
	docs.Get("/search", catalogCtrl.SearchDocuments)
	docs.Post("/", docCtrl.Upload)
	docs.Get("/:id/download", docCtrl.Download)

	api.Get("/stats", catalogCtrl.Overview)
}

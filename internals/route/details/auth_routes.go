package details

import (
	"github.com/gofiber/fiber/v2"

	authController "notesku_backend/internals/features/users/auth/controller"
	authRoute "notesku_backend/internals/features/users/auth/route"
	authService "notesku_backend/internals/features/users/auth/service"
	"notesku_backend/internals/features/users/session"
)

func AuthRoutes(api fiber.Router, svc *authService.Service, reg *session.Registry) {
	authRoute.AuthRoutes(api, authController.NewAuthController(svc, reg))
}

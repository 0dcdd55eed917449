package route

import (
	"github.com/gofiber/fiber/v2"

	"notesku_backend/internals/features/users/auth/controller"
	"notesku_backend/internals/middlewares"
)

func AuthRoutes(api fiber.Router, authCtrl *controller.AuthController) {
	auth := api.Group("/auth")
	auth.Post("/signup", middlewares.RegisterRateLimiter(), authCtrl.SignUp)
	auth.Post("/signin", middlewares.LoginRateLimiter(), authCtrl.SignIn)
	auth.Post("/signout", authCtrl.SignOut)
	auth.Get("/session", authCtrl.Session)
	auth.Get("/confirm", authCtrl.Confirm)
}

package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"notesku_backend/internals/features/users/auth/dto"
	authService "notesku_backend/internals/features/users/auth/service"
	"notesku_backend/internals/features/users/session"
	"notesku_backend/internals/gateway"
	helper "notesku_backend/internals/helpers"
)

type AuthController struct {
	Service  *authService.Service
	Registry *session.Registry
}

func NewAuthController(svc *authService.Service, reg *session.Registry) *AuthController {
	return &AuthController{Service: svc, Registry: reg}
}

func guardOf(c *fiber.Ctx) *session.Guard {
	if cl := session.FromCtx(c); cl != nil {
		return cl.Guard
	}
	return nil
}

func sessionResponse(g *session.Guard) dto.SessionResponse {
	return dto.SessionResponse{User: g.CurrentUser(), Affordances: g.Affordances()}
}

// POST /api/auth/signup
func (ctrl *AuthController) SignUp(c *fiber.Ctx) error {
	g := guardOf(c)
	if g == nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "client session missing")
	}
	var body dto.SignUpRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.ValidateStruct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	id, err := g.SignUp(c.UserContext(), body.Email, body.Password, body.Confirm)
	if err != nil {
		return helper.JsonFailure(c, err, nil)
	}
	return helper.JsonCreated(c, "✅ Account created. Please check your email to confirm it.", id)
}

// POST /api/auth/signin
func (ctrl *AuthController) SignIn(c *fiber.Ctx) error {
	g := guardOf(c)
	if g == nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "client session missing")
	}
	var body dto.SignInRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := helper.ValidateStruct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	if ctrl.Registry == nil {
		if _, err := g.SignIn(c.UserContext(), body.Email, body.Password); err != nil {
			return helper.JsonFailure(c, err, sessionResponse(g))
		}
		return helper.JsonOK(c, "✅ Signed in", sessionResponse(g))
	}

	// sign in selalu di client_id baru; id lama (bisa jadi ditanam pihak lain) dibuang
	next := ctrl.Registry.Spawn()
	if _, err := next.Guard.SignIn(c.UserContext(), body.Email, body.Password); err != nil {
		ctrl.Registry.Discard(next)
		return helper.JsonFailure(c, err, sessionResponse(g))
	}
	ctrl.Registry.Swap(c, session.FromCtx(c), next)
	return helper.JsonOK(c, "✅ Signed in", sessionResponse(next.Guard))
}

// POST /api/auth/signout
func (ctrl *AuthController) SignOut(c *fiber.Ctx) error {
	g := guardOf(c)
	if g == nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "client session missing")
	}
	if _, err := g.SignOut(c.UserContext()); err != nil {
		return helper.JsonFailure(c, err, sessionResponse(g))
	}
	return helper.JsonOK(c, "Signed out", sessionResponse(g))
}

// GET /api/auth/session
func (ctrl *AuthController) Session(c *fiber.Ctx) error {
	g := guardOf(c)
	if g == nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "client session missing")
	}
	return helper.JsonOK(c, "ok", sessionResponse(g))
}

// GET /api/auth/confirm?token=
func (ctrl *AuthController) Confirm(c *fiber.Ctx) error {
	id, err := ctrl.Service.Confirm(c.UserContext(), c.Query("token"))
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidToken) {
			return helper.JsonError(c, fiber.StatusBadRequest, "Confirmation link is invalid or has expired.")
		}
		return helper.JsonFailure(c, helper.Gateway("failed to confirm email", err), nil)
	}
	return helper.JsonOK(c, "✅ Email confirmed. You can sign in now.", id)
}

package handler

import (
	"github.com/gofiber/fiber/v2"

	"linkvault/internal/http/middleware"
	"linkvault/internal/model"
	"linkvault/internal/service"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  *model.Identity `json:"user"`
}

// Register creates an account and returns a session token for it.
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		token, ident, err := svc.Register(c.UserContext(), req.Name, req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, "register", err)
		}
		return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: ident})
	}
}

// Login exchanges credentials for a session token.
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		token, ident, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, "login", err)
		}
		return c.JSON(authResponse{Token: token, User: ident})
	}
}

// Me returns the identity resolved by the auth middleware.
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": middleware.IdentityFromCtx(c)})
	}
}

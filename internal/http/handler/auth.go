package handler

import (
	"github.com/gofiber/fiber/v2"

	"docuvault/internal/http/middleware"
	"docuvault/internal/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resendCodeRequest struct {
	Email string `json:"email"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// Register creates an account and returns the user plus a session token.
func Register(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := auth.Register(c.UserContext(), req.Email, req.Password, req.Name)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// Login checks credentials and returns the user plus a session token.
func Login(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := auth.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(res)
	}
}

// VerifyEmail redeems an emailed verification code.
func VerifyEmail(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req verifyCodeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		user, err := auth.VerifyCode(c.UserContext(), req.Email, req.Code)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(user)
	}
}

// ResendCode generates and emails a fresh verification code.
func ResendCode(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req resendCodeRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		if err := auth.ResendCode(c.UserContext(), req.Email); err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "sent"})
	}
}

// Profile returns the authenticated caller's account.
func Profile(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := middleware.CallerIdentity(c)
		if ident == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}

		user, err := auth.Profile(c.UserContext(), ident.ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(user)
	}
}

// UpdateUserRole changes another user's role. Admin only; routing applies the
// role guard.
func UpdateUserRole(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")

		var req updateRoleRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		user, err := auth.UpdateRole(c.UserContext(), userID, req.Role)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(user)
	}
}

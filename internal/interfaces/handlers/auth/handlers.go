package auth

import (
	"errors"

	authsvc "captable-backend/internal/application/auth"
	"captable-backend/internal/middleware"
	"captable-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Service *authsvc.Service
}

// Register POST /api/v1/auth/register — create a user account.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req authsvc.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	user, err := h.Service.Register(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailTaken):
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		case errors.Is(err, authsvc.ErrEmailPasswordRequired),
			errors.Is(err, authsvc.ErrInvalidEmail),
			errors.Is(err, authsvc.ErrWeakPassword),
			errors.Is(err, authsvc.ErrInvalidFullname):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "User registered successfully", user, nil)
}

// Login POST /api/v1/auth/login — verify credentials, return bearer token.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}
	result, err := h.Service.Login(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailPasswordRequired):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Login successful", result, nil)
}

// Me GET /api/v1/auth/me — return the authenticated user's profile.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetAuthUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	profile, err := h.Service.GetProfile(c.Context(), user.UserID)
	if err != nil {
		if errors.Is(err, authsvc.ErrUserNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Profile fetched successfully", profile, nil)
}

// ChangePasswordRequest body for PATCH /api/v1/auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword PATCH /api/v1/auth/password.
func (h *Handlers) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetAuthUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.ChangePassword(c.Context(), user.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, authsvc.ErrWeakPassword):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, authsvc.ErrIncorrectPassword):
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		case errors.Is(err, authsvc.ErrUserNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Password updated successfully", nil, nil)
}

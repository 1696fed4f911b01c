package middleware

import (
	"strings"

	"captable-backend/internal/domain"
	"captable-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const authLocal = "auth"

// AuthUser is the identity attached to Locals by RequireAuth.
type AuthUser struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// RequireAuth validates the bearer token and attaches the caller identity to
// Locals. Returns 401 with the standard error format on failure.
func RequireAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return response.Unauthorized(c, "Missing bearer token")
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return response.Unauthorized(c, "Invalid or expired token")
		}
		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}
		email, _ := claims["email"].(string)
		role, _ := claims["role"].(string)

		c.Locals(authLocal, AuthUser{UserID: userID, Email: email, Role: role})
		return c.Next()
	}
}

// RequireAdmin restricts the route to admin users. Mount after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetAuthUser(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if user.Role != domain.RoleAdmin {
			return response.Error(c, "Admin access required", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}

// GetAuthUser returns the authenticated user from Locals.
func GetAuthUser(c *fiber.Ctx) (AuthUser, bool) {
	user, ok := c.Locals(authLocal).(AuthUser)
	return user, ok
}

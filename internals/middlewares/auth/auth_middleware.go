// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"desaku_backend/internals/configs"
)

// AuthMiddleware memverifikasi bearer token admin yang diterbitkan
// /auth/login. Token kadaluarsa atau rusak → 401.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return err
		}

		secretKey := configs.JWTSecret
		if secretKey == "" {
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
		}

		claims := jwt.MapClaims{}
		if _, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Unexpected signing method")
			}
			return []byte(secretKey), nil
		}); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token tidak valid")
		}

		if exp, ok := claims["exp"].(float64); !ok || time.Now().Unix() >= int64(exp) {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token kadaluarsa")
		}

		if sub, ok := claims["sub"].(string); ok {
			c.Locals("admin_username", sub)
		}
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) (string, error) {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if h == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token tidak ditemukan")
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Format Authorization salah")
	}
	return strings.TrimSpace(parts[1]), nil
}

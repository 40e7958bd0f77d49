// middlewares/cors.go

package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"desaku_backend/internals/configs"
)

// CorsMiddleware membuat middleware CORS.
// Origin di-ambil dari ENV CORS_ORIGINS (comma separated), default localhost dev.
func CorsMiddleware() fiber.Handler {
	origins := configs.GetEnv("CORS_ORIGINS",
		"http://localhost:5173, http://127.0.0.1:5500")
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	})
}

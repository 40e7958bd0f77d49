// file: internals/route/index.go
package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	authController "desaku_backend/internals/features/auth/controller"
	resourceRoute "desaku_backend/internals/features/resources/route"
	helperOSS "desaku_backend/internals/helpers/oss"
	middlewares "desaku_backend/internals/middlewares"
	authMiddleware "desaku_backend/internals/middlewares/auth"
)

func SetupRoutes(app *fiber.App, db *mongo.Database) {
	// ===================== AUTH =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	authCtl := authController.NewAuthController()
	app.Post("/auth/login", middlewares.LoginRateLimiter(), authCtl.Login)

	// ===================== MEDIA STORE =====================
	media, err := newMediaStore()
	if err != nil {
		log.Printf("⚠️ OSS tidak terkonfigurasi, upload media nonaktif: %v", err)
	}

	// ===================== RESOURCES =====================
	log.Println("[INFO] Setting up ResourceRoutes...")
	resourceRoute.ResourceRoutes(app, db, media, authMiddleware.AuthMiddleware())
}

func newMediaStore() (helperOSS.MediaStore, error) {
	store, err := helperOSS.NewOSSMediaStoreFromEnv("uploads")
	if err != nil {
		return helperOSS.DisabledMediaStore{}, err
	}
	return store, nil
}

// internals/features/resources/route/resource_route.go
package route

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"desaku_backend/internals/features/resources/controller"
	"desaku_backend/internals/features/resources/schema"
	"desaku_backend/internals/features/resources/store"
	helperOSS "desaku_backend/internals/helpers/oss"
)

// ResourceRoutes memasang surface HTTP kelima jenis di atas MongoDB.
func ResourceRoutes(app fiber.Router, db *mongo.Database, media helperOSS.MediaStore, adminGuard fiber.Handler) {
	for _, sch := range schema.All() {
		st := store.New(db, sch.Collection)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := st.EnsureIndexes(ctx); err != nil {
			log.Printf("⚠️ Gagal memasang index %s: %v", sch.Collection, err)
		}
		cancel()

		Register(app, sch, st, media, adminGuard)
	}
}

// Register memasang satu jenis:
//
//	GET    /{kind}/get      list, terbaru dulu (publik)
//	GET    /{kind}/:id      point lookup (publik)
//	POST   /{kind}/add      (admin)
//	PUT    /{kind}/update   (admin)
//	DELETE /{kind}/delete   (admin, id via query atau body)
//	POST   /{kind}/delete   (admin, alias untuk client tanpa DELETE)
//
// Verb lain pada path di atas dijawab 405 dengan amplop yang sama.
func Register(app fiber.Router, sch schema.Schema, st store.Recorder, media helperOSS.MediaStore, adminGuard fiber.Handler) {
	ctl := controller.New(sch, st, media)
	g := app.Group("/" + sch.Kind)

	g.Get("/get", ctl.List)
	g.All("/get", methodNotAllowed)

	g.Post("/add", adminGuard, ctl.Create)
	g.All("/add", methodNotAllowed)

	g.Put("/update", adminGuard, ctl.Update)
	g.All("/update", methodNotAllowed)

	g.Delete("/delete", adminGuard, ctl.Delete)
	g.Post("/delete", adminGuard, ctl.Delete)
	g.All("/delete", methodNotAllowed)

	// terdaftar terakhir supaya /get dkk tidak tertangkap :id
	g.Get("/:id", ctl.GetByID)
}

func methodNotAllowed(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusMethodNotAllowed,
		"Metode tidak diizinkan untuk path ini")
}

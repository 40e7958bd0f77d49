package databases

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"desaku_backend/internals/configs"
)

var (
	Client *mongo.Client
	DB     *mongo.Database
)

// ConnectDB membuka koneksi MongoDB dari ENV (MONGO_URI, MONGO_DB) dan ping.
func ConnectDB() {
	uri := configs.GetEnv("MONGO_URI", "mongodb://localhost:27017")
	dbName := configs.GetEnv("MONGO_DB", "desaku")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(20).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		log.Fatalf("❌ Gagal koneksi MongoDB: %v", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("❌ MongoDB tidak merespon ping: %v", err)
	}

	Client = client
	DB = client.Database(dbName)
	log.Printf("✅ Terhubung ke MongoDB database %q", dbName)
}

// CloseDB dipanggil saat graceful shutdown.
func CloseDB(ctx context.Context) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		log.Printf("⚠️ Gagal menutup koneksi MongoDB: %v", err)
	}
}

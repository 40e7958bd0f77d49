package configs

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	AdminUsername = GetEnv("ADMIN_USERNAME")
	AdminPasswordHash = GetEnv("ADMIN_PASSWORD_HASH")

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	} else {
		log.Println("✅ JWT_SECRET berhasil dimuat.")
	}

	if AdminUsername == "" || AdminPasswordHash == "" {
		log.Println("❌ ADMIN_USERNAME / ADMIN_PASSWORD_HASH belum diset!")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// IsProduction menentukan apakah detail error internal boleh ikut di response.
func IsProduction() bool {
	return GetEnv("APP_ENV", "development") == "production"
}

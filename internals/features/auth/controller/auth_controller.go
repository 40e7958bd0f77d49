// internals/features/auth/controller/auth_controller.go
package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"desaku_backend/internals/configs"
	helper "desaku_backend/internals/helpers"
)

var validate = validator.New()

// TokenTTL umur token admin. Session ad hoc di sisi client BUKAN batas
// keamanan; semua request mutasi harus membawa token ini.
const TokenTTL = 24 * time.Hour

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type AuthController struct{}

func NewAuthController() *AuthController { return &AuthController{} }

// Login memverifikasi kredensial admin dari ENV (hash bcrypt) dan
// menerbitkan JWT HS256 yang kadaluarsa.
// POST /auth/login
func (ctl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	if configs.AdminUsername == "" || configs.AdminPasswordHash == "" {
		return helper.Error(c, fiber.StatusInternalServerError, "Kredensial admin belum dikonfigurasi")
	}

	if req.Username != configs.AdminUsername ||
		bcrypt.CompareHashAndPassword([]byte(configs.AdminPasswordHash), []byte(req.Password)) != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Username atau password salah")
	}

	now := time.Now()
	expiresAt := now.Add(TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  req.Username,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	})

	signed, err := token.SignedString([]byte(configs.JWTSecret))
	if err != nil {
		return helper.ErrorWithDetail(c, fiber.StatusInternalServerError, "Gagal menerbitkan token", err)
	}

	return helper.Success(c, "Login berhasil", fiber.Map{
		"token":      signed,
		"expires_at": expiresAt,
	})
}

package helper

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
)

/*
MediaStore adalah facade upload/hapus yang seragam untuk controller.

Kontrak:
  - UploadImage re-encode ke WebP, kembalikan publicURL + objectKey.
    objectKey WAJIB disimpan di record supaya delete tidak perlu
    menderivasi ulang dari URL.
  - Delete best-effort: caller mencatat kegagalan dan lanjut.
*/

type MediaStore interface {
	UploadImage(ctx context.Context, folder string, fh *multipart.FileHeader) (publicURL, objectKey string, err error)
	UploadFile(ctx context.Context, folder string, fh *multipart.FileHeader) (publicURL, objectKey string, err error)
	Delete(ctx context.Context, objectKey string) error
}

// --------------------------------------------------
// Implementasi berbasis Aliyun OSS
// --------------------------------------------------

type OSSMediaStore struct {
	svc *OSSService
}

// Buat instance dari ENV. prefix opsional (contoh: "uploads/")
func NewOSSMediaStoreFromEnv(prefix string) (*OSSMediaStore, error) {
	s, err := NewOSSServiceFromEnv(prefix)
	if err != nil {
		return nil, err
	}
	return &OSSMediaStore{svc: s}, nil
}

func (m *OSSMediaStore) UploadImage(ctx context.Context, folder string, fh *multipart.FileHeader) (string, string, error) {
	if fh == nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "File tidak ditemukan")
	}
	url, key, err := m.svc.UploadAsWebP(ctx, fh, folder)
	if err != nil {
		if errors.Is(err, ErrUnsupportedMIME) {
			return "", "", fiber.NewError(fiber.StatusUnsupportedMediaType, "Format gambar tidak didukung (pakai jpg/png/webp)")
		}
		if errors.Is(err, ErrFileTooLarge) {
			return "", "", fiber.NewError(fiber.StatusRequestEntityTooLarge, "Ukuran file maksimal 5MB")
		}
		return "", "", fiber.NewError(fiber.StatusBadGateway, "Gagal upload ke OSS")
	}
	return url, key, nil
}

func (m *OSSMediaStore) UploadFile(ctx context.Context, folder string, fh *multipart.FileHeader) (string, string, error) {
	if fh == nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "File tidak ditemukan")
	}
	url, key, err := m.svc.UploadRaw(ctx, fh, folder)
	if err != nil {
		if errors.Is(err, ErrUnsupportedMIME) {
			return "", "", fiber.NewError(fiber.StatusUnsupportedMediaType, "Format dokumen tidak didukung (pakai pdf)")
		}
		if errors.Is(err, ErrFileTooLarge) {
			return "", "", fiber.NewError(fiber.StatusRequestEntityTooLarge, "Ukuran file maksimal 5MB")
		}
		return "", "", fiber.NewError(fiber.StatusBadGateway, "Gagal upload ke OSS")
	}
	return url, key, nil
}

func (m *OSSMediaStore) Delete(ctx context.Context, objectKey string) error {
	if strings.TrimSpace(objectKey) == "" {
		return nil
	}
	return m.svc.DeleteObject(ctx, objectKey)
}

// --------------------------------------------------
// Helper kecil untuk controller
// --------------------------------------------------

// IsMultipart menilai request multipart/form-data
func IsMultipart(c *fiber.Ctx) bool {
	ct := strings.ToLower(strings.TrimSpace(c.Get(fiber.HeaderContentType)))
	return strings.HasPrefix(ct, "multipart/form-data")
}

// GetFormFile mencari file dari beberapa kemungkinan nama field.
// Jika tidak ada file, kembalikan (nil, nil) supaya controller bisa fallback.
func GetFormFile(c *fiber.Ctx, fieldNames ...string) (*multipart.FileHeader, error) {
	if !IsMultipart(c) {
		return nil, nil
	}
	for _, fn := range fieldNames {
		if fh, err := c.FormFile(fn); err == nil && fh != nil {
			return fh, nil
		}
	}
	return nil, nil
}

// --------------------------------------------------
// Fallback saat OSS belum dikonfigurasi: operasi baca tetap jalan,
// upload ditolak dengan jelas.
// --------------------------------------------------

type DisabledMediaStore struct{}

func (DisabledMediaStore) UploadImage(ctx context.Context, folder string, fh *multipart.FileHeader) (string, string, error) {
	return "", "", fiber.NewError(fiber.StatusBadGateway, "Media store belum dikonfigurasi")
}

func (DisabledMediaStore) UploadFile(ctx context.Context, folder string, fh *multipart.FileHeader) (string, string, error) {
	return "", "", fiber.NewError(fiber.StatusBadGateway, "Media store belum dikonfigurasi")
}

func (DisabledMediaStore) Delete(ctx context.Context, objectKey string) error {
	return fiber.NewError(fiber.StatusBadGateway, "Media store belum dikonfigurasi")
}

// --------------------------------------------------
// Mock untuk unit test
// --------------------------------------------------

type MockMediaStore struct {
	UploadImageFn func(ctx context.Context, folder string, fh *multipart.FileHeader) (string, string, error)
	UploadFileFn  func(ctx context.Context, folder string, fh *multipart.FileHeader) (string, string, error)
	DeleteFn      func(ctx context.Context, objectKey string) error

	Uploads []string // folder tiap upload sukses/dicoba
	Deletes []string // objectKey tiap delete yang dicoba
}

func (m *MockMediaStore) UploadImage(ctx context.Context, folder string, fh *multipart.FileHeader) (string, string, error) {
	m.Uploads = append(m.Uploads, folder)
	if m.UploadImageFn == nil {
		key := folder + "/" + fh.Filename
		return "https://media.test/" + key, key, nil
	}
	return m.UploadImageFn(ctx, folder, fh)
}

func (m *MockMediaStore) UploadFile(ctx context.Context, folder string, fh *multipart.FileHeader) (string, string, error) {
	m.Uploads = append(m.Uploads, folder)
	if m.UploadFileFn == nil {
		key := folder + "/" + fh.Filename
		return "https://media.test/" + key, key, nil
	}
	return m.UploadFileFn(ctx, folder, fh)
}

func (m *MockMediaStore) Delete(ctx context.Context, objectKey string) error {
	m.Deletes = append(m.Deletes, objectKey)
	if m.DeleteFn == nil {
		return nil
	}
	return m.DeleteFn(ctx, objectKey)
}

package helper

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

func getEnv(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func envInt(key string, def int) int {
	if v := getEnv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float32) float32 {
	if v := getEnv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 {
			return float32(f)
		}
	}
	return def
}

// batas ukuran upload, guard di sisi server (client juga membatasi 5MB)
var maxUploadSize = int64(5 * 1024 * 1024)

// MIME yang diterima untuk foto; disniff dari isi file, bukan header client.
var allowedImageMIME = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// MIME untuk dokumen kegiatan.
var allowedDocMIME = map[string]struct{}{
	"application/pdf": {},
}

var (
	ErrFileTooLarge    = fmt.Errorf("ukuran file melebihi %d byte", maxUploadSize)
	ErrUnsupportedMIME = fmt.Errorf("format file tidak didukung")
)

/* =======================================================================
   Konfigurasi WebP (ENV-Driven) — transform fixed per deployment,
   bukan pilihan per-call
======================================================================= */

type WebPOptions struct {
	Quality float32
	MaxW    int
	MaxH    int
}

func defaultWebPOptionsFromEnv() WebPOptions {
	return WebPOptions{
		Quality: envFloat("OSS_WEBP_QUALITY", 80),
		MaxW:    envInt("OSS_WEBP_MAX_W", 1600),
		MaxH:    envInt("OSS_WEBP_MAX_H", 1600),
	}
}

func decodeImage(all []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(all))
	if err != nil {
		return nil, ErrUnsupportedMIME
	}
	return img, nil
}

func downscaleIfNeeded(src image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 && maxH <= 0 {
		return src
	}
	b := src.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return src
	}
	return imaging.Fit(src, maxW, maxH, imaging.Lanczos)
}

func encodeToWebP(img image.Image, opt WebPOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: opt.Quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// ConvertToWebP: baca → decode → resize (opsional) → encode webp
func ConvertToWebP(file multipart.File) ([]byte, error) {
	all, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("file kosong")
	}
	if err := sniffMIME(all, allowedImageMIME); err != nil {
		return nil, err
	}

	opts := defaultWebPOptionsFromEnv()
	img, err := decodeImage(all)
	if err != nil {
		return nil, err
	}
	img = downscaleIfNeeded(img, opts.MaxW, opts.MaxH)
	return encodeToWebP(img, opts)
}

// sniffMIME memeriksa isi file terhadap allowlist. Header Content-Type dari
// client tidak dipercaya.
func sniffMIME(data []byte, allow map[string]struct{}) error {
	ct := http.DetectContentType(data)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	if _, ok := allow[strings.TrimSpace(ct)]; !ok {
		return ErrUnsupportedMIME
	}
	return nil
}

/* =======================================================================
   OSS Service
======================================================================= */

type OSSService struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	Prefix     string // optional: "uploads/"
}

func NewOSSServiceFromEnv(prefix string) (*OSSService, error) {
	endpoint := getEnv("ALI_OSS_ENDPOINT")
	ak := getEnv("ALI_OSS_ACCESS_KEY")
	sk := getEnv("ALI_OSS_SECRET_KEY")
	bucketName := getEnv("ALI_OSS_BUCKET")
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	client, err := oss.New(endpoint, ak, sk)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	return &OSSService{
		Client:     client,
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		Prefix:     strings.Trim(prefix, "/"),
	}, nil
}

/* =======================================================================
   Upload helpers
======================================================================= */

// UploadAsWebP: recompress ke webp sesuai opsi ENV, lalu upload .webp
func (s *OSSService) UploadAsWebP(ctx context.Context, fh *multipart.FileHeader, keyPrefix string) (string, string, error) {
	if fh == nil {
		return "", "", fmt.Errorf("nil file header")
	}
	if fh.Size > maxUploadSize {
		return "", "", ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	webpData, err := ConvertToWebP(src)
	if err != nil {
		return "", "", err
	}

	base := strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
	key := s.buildObjectKey(keyPrefix, base+".webp")

	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType("image/webp"),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	if err := s.Bucket.PutObject(key, bytes.NewReader(webpData), opts...); err != nil {
		return "", "", err
	}
	return s.PublicURL(key), key, nil
}

// UploadRaw: upload apa adanya (tanpa recompress), untuk dokumen pdf.
func (s *OSSService) UploadRaw(ctx context.Context, fh *multipart.FileHeader, keyPrefix string) (string, string, error) {
	if fh == nil {
		return "", "", fmt.Errorf("nil file header")
	}
	if fh.Size > maxUploadSize {
		return "", "", ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	all, err := io.ReadAll(src)
	if err != nil {
		return "", "", err
	}
	if err := sniffMIME(all, allowedDocMIME); err != nil {
		return "", "", err
	}

	key := s.buildObjectKey(keyPrefix, fh.Filename)
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType("application/pdf"),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	if err := s.Bucket.PutObject(key, bytes.NewReader(all), opts...); err != nil {
		return "", "", err
	}
	return s.PublicURL(key), key, nil
}

/* =======================================================================
   Delete
======================================================================= */

func (s *OSSService) DeleteObject(ctx context.Context, key string) error {
	return s.Bucket.DeleteObject(key, oss.WithContext(ctx))
}

/* =======================================================================
   Public URL & Key utils
======================================================================= */

func (s *OSSService) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if base := getEnv("ALI_OSS_PUBLIC_BASE"); base != "" {
		return strings.TrimRight(base, "/") + "/" + key
	}
	end := s.Endpoint
	end = strings.TrimPrefix(end, "https://")
	end = strings.TrimPrefix(end, "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

// ExtractKeyFromPublicURL adalah satu-satunya tempat derivasi key dari URL.
// Hanya dipakai untuk record lama yang belum menyimpan object key.
func ExtractKeyFromPublicURL(publicURL string) (string, error) {
	if publicURL == "" {
		return "", fmt.Errorf("empty url")
	}
	if base := getEnv("ALI_OSS_PUBLIC_BASE"); base != "" {
		base = strings.TrimRight(base, "/") + "/"
		if strings.HasPrefix(publicURL, base) {
			return strings.TrimPrefix(publicURL, base), nil
		}
	}
	u := publicURL
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	if i := strings.Index(u, "/"); i >= 0 && i+1 < len(u) {
		return u[i+1:], nil
	}
	return "", fmt.Errorf("cannot extract key from url: %s", publicURL)
}

/* =======================================================================
   Misc utils
======================================================================= */

func (s *OSSService) buildObjectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filename, ext)
	if base == "" {
		base = "file"
	}
	ts := time.Now().Format("20060102_150405")
	rand8 := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	parts := make([]string, 0, 3)
	if s.Prefix != "" {
		parts = append(parts, s.Prefix)
	}
	if f := strings.Trim(folder, "/"); f != "" {
		parts = append(parts, f)
	}
	parts = append(parts, fmt.Sprintf("%s_%s_%s%s", slugify(base), ts, rand8, ext))
	return strings.Join(parts, "/")
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r := strings.NewReplacer(" ", "-", "_", "-", "—", "-", "–", "-")
	s = r.Replace(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return "file"
	}
	return s
}

func init() {
	if v := getEnv("OSS_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxUploadSize = n
		} else {
			log.Printf("[OSS] OSS_MAX_UPLOAD_BYTES tidak valid: %q", v)
		}
	}
}

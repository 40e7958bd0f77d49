// internals/features/resources/controller/resource_controller.go
package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"desaku_backend/internals/features/resources/dto"
	"desaku_backend/internals/features/resources/model"
	"desaku_backend/internals/features/resources/schema"
	"desaku_backend/internals/features/resources/store"
	helper "desaku_backend/internals/helpers"
	helperOSS "desaku_backend/internals/helpers/oss"
)

var validate = validator.New()

// ResourceController adalah engine CRUD generik. Satu instance per jenis,
// diparameterkan lewat schema, bukan lima controller salinan.
type ResourceController struct {
	Schema schema.Schema
	Store  store.Recorder
	Media  helperOSS.MediaStore
}

func New(s schema.Schema, st store.Recorder, media helperOSS.MediaStore) *ResourceController {
	return &ResourceController{Schema: s, Store: st, Media: media}
}

/* =========================================================
   Helpers
========================================================= */

// parseObjectID menolak identifier yang formatnya salah SEBELUM menyentuh
// store.
func parseObjectID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, fiber.NewError(fiber.StatusBadRequest, "ID tidak valid")
	}
	return id, nil
}

// deleteMediaBestEffort menghapus satu referensi media. Kegagalan dicatat
// dan TIDAK menggagalkan operasi record yang melingkupinya.
func (ctl *ResourceController) deleteMediaBestEffort(c *fiber.Ctx, ref model.MediaRef) {
	key := ref.Key
	if key == "" && ref.URL != "" {
		// record lama yang belum menyimpan object key
		derived, err := helperOSS.ExtractKeyFromPublicURL(ref.URL)
		if err != nil {
			log.Printf("[MEDIA] %s: gagal derive key dari %q: %v", ctl.Schema.Kind, ref.URL, err)
			return
		}
		key = derived
	}
	if key == "" {
		return
	}
	if err := ctl.Media.Delete(c.UserContext(), key); err != nil {
		log.Printf("[MEDIA] %s: gagal hapus object %q: %v", ctl.Schema.Kind, key, err)
	}
}

// parseAndValidate membaca field bag multipart dan menjalankan dua lapis
// validasi: format URL (validator.v10) lalu aturan per-jenis (schema).
// Saat gagal, response sudah ditulis; caller cukup `return err`.
func (ctl *ResourceController) parseAndValidate(c *fiber.Ctx) (dto.ResourceRequest, bool, error) {
	var req dto.ResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return req, false, helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()

	if err := validate.Struct(req); err != nil {
		return req, false, helper.ValidationError(c, err)
	}
	if errs := schema.Validate(ctl.Schema, req.ToInput(), time.Now()); len(errs) > 0 {
		return req, false, helper.ErrorWithDetails(c, fiber.StatusBadRequest, "Validasi gagal", errs)
	}
	return req, true, nil
}

/* =========================================================
   LIST
   GET /{kind}/get
========================================================= */

func (ctl *ResourceController) List(c *fiber.Ctx) error {
	items, err := ctl.Store.Find(c.UserContext())
	if err != nil {
		return helper.ErrorWithDetail(c, fiber.StatusInternalServerError,
			"Gagal mengambil data "+ctl.Schema.Label, err)
	}
	if items == nil {
		items = []model.Resource{}
	}
	return helper.Success(c, "OK", items)
}

/* =========================================================
   GET BY ID
   GET /{kind}/:id
========================================================= */

func (ctl *ResourceController) GetByID(c *fiber.Ctx) error {
	id, err := parseObjectID(c.Params("id"))
	if err != nil {
		return err
	}

	m, err := ctl.Store.FindByID(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return helper.Error(c, fiber.StatusNotFound, ctl.Schema.Label+" tidak ditemukan")
	}
	if err != nil {
		return helper.ErrorWithDetail(c, fiber.StatusInternalServerError,
			"Gagal mengambil data "+ctl.Schema.Label, err)
	}
	return helper.Success(c, "OK", m)
}

/* =========================================================
   CREATE
   POST /{kind}/add  (multipart)
========================================================= */

func (ctl *ResourceController) Create(c *fiber.Ctx) error {
	req, ok, err := ctl.parseAndValidate(c)
	if !ok {
		return err
	}

	var m model.Resource
	req.Apply(&m, ctl.Schema)

	// foto opsional: upload dulu; kalau upload gagal, record TIDAK dibuat.
	foto, err := helperOSS.GetFormFile(c, "foto", "image")
	if err != nil {
		return err
	}
	if foto != nil {
		url, key, err := ctl.Media.UploadImage(c.UserContext(), ctl.Schema.MediaFolder, foto)
		if err != nil {
			return err
		}
		m.PhotoURL = url
		m.PhotoKey = key
	}

	if ctl.Schema.HasGallery {
		refs, err := ctl.uploadGallery(c)
		if err != nil {
			return err
		}
		m.Gallery = refs
	}

	if ctl.Schema.HasDocument {
		dok, err := helperOSS.GetFormFile(c, "dokumen", "file")
		if err != nil {
			return err
		}
		if dok != nil {
			url, key, err := ctl.Media.UploadFile(c.UserContext(), ctl.Schema.MediaFolder, dok)
			if err != nil {
				return err
			}
			m.DocumentURL = url
			m.DocumentKey = key
		}
	}

	created, err := ctl.Store.Create(c.UserContext(), m)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			return helper.Error(c, fiber.StatusInternalServerError,
				ctl.Schema.Label+" dengan nama ini sudah ada")
		}
		return helper.ErrorWithDetail(c, fiber.StatusInternalServerError,
			"Gagal menyimpan "+ctl.Schema.Label, err)
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated,
		ctl.Schema.Label+" berhasil ditambahkan", created)
}

func (ctl *ResourceController) uploadGallery(c *fiber.Ctx) ([]model.MediaRef, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	files := form.File["galeri"]
	if len(files) == 0 {
		return nil, nil
	}

	refs := make([]model.MediaRef, 0, len(files))
	for _, fh := range files {
		url, key, err := ctl.Media.UploadImage(c.UserContext(), ctl.Schema.MediaFolder, fh)
		if err != nil {
			// fail closed; upload yang terlanjur sukses jadi orphan (resiko diterima)
			return nil, err
		}
		refs = append(refs, model.MediaRef{URL: url, Key: key})
	}
	return refs, nil
}

/* =========================================================
   UPDATE
   PUT /{kind}/update  (multipart: id + full field bag +
   foto baru opsional + flag remove_foto)
========================================================= */

func (ctl *ResourceController) Update(c *fiber.Ctx) error {
	id, err := parseObjectID(c.FormValue("id"))
	if err != nil {
		return err
	}

	existing, err := ctl.Store.FindByID(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return helper.Error(c, fiber.StatusNotFound, ctl.Schema.Label+" tidak ditemukan")
	}
	if err != nil {
		return helper.ErrorWithDetail(c, fiber.StatusInternalServerError,
			"Gagal mengambil data "+ctl.Schema.Label, err)
	}

	req, ok, err := ctl.parseAndValidate(c)
	if !ok {
		return err
	}

	m := existing
	req.Apply(&m, ctl.Schema)

	removeFoto := isTruthy(c.FormValue("remove_foto", c.FormValue("removeFoto")))
	newFoto, err := helperOSS.GetFormFile(c, "foto", "image")
	if err != nil {
		return err
	}

	oldRef := model.MediaRef{URL: existing.PhotoURL, Key: existing.PhotoKey}
	switch {
	case removeFoto && newFoto == nil:
		if oldRef.URL != "" || oldRef.Key != "" {
			ctl.deleteMediaBestEffort(c, oldRef)
		}
		m.PhotoURL = ""
		m.PhotoKey = ""

	case newFoto != nil:
		// upload dulu, baru hapus yang lama: upload gagal tidak boleh
		// meninggalkan record tanpa foto
		url, key, err := ctl.Media.UploadImage(c.UserContext(), ctl.Schema.MediaFolder, newFoto)
		if err != nil {
			return err
		}
		m.PhotoURL = url
		m.PhotoKey = key
		if oldRef.URL != "" || oldRef.Key != "" {
			ctl.deleteMediaBestEffort(c, oldRef)
		}

	default:
		// foto tidak disentuh
		m.PhotoURL = existing.PhotoURL
		m.PhotoKey = existing.PhotoKey
	}

	// dokumen baru (kegiatan): ganti dengan pola upload-dulu yang sama
	if ctl.Schema.HasDocument {
		newDok, err := helperOSS.GetFormFile(c, "dokumen", "file")
		if err != nil {
			return err
		}
		if newDok != nil {
			url, key, err := ctl.Media.UploadFile(c.UserContext(), ctl.Schema.MediaFolder, newDok)
			if err != nil {
				return err
			}
			if existing.DocumentURL != "" || existing.DocumentKey != "" {
				ctl.deleteMediaBestEffort(c, model.MediaRef{URL: existing.DocumentURL, Key: existing.DocumentKey})
			}
			m.DocumentURL = url
			m.DocumentKey = key
		}
	}

	// galeri: file baru ditambahkan ke galeri yang ada
	if ctl.Schema.HasGallery {
		refs, err := ctl.uploadGallery(c)
		if err != nil {
			return err
		}
		m.Gallery = append(existing.Gallery, refs...)
	}

	updated, err := ctl.Store.FindByIDAndUpdate(c.UserContext(), id, m)
	if errors.Is(err, store.ErrNotFound) {
		return helper.Error(c, fiber.StatusNotFound, ctl.Schema.Label+" tidak ditemukan")
	}
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			return helper.Error(c, fiber.StatusInternalServerError,
				ctl.Schema.Label+" dengan nama ini sudah ada")
		}
		return helper.ErrorWithDetail(c, fiber.StatusInternalServerError,
			"Gagal memperbarui "+ctl.Schema.Label, err)
	}

	return helper.Success(c, ctl.Schema.Label+" berhasil diperbarui", updated)
}

/* =========================================================
   DELETE
   DELETE|POST /{kind}/delete  (id via query string ATAU body)
========================================================= */

func (ctl *ResourceController) Delete(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("id"))
	if raw == "" {
		var body dto.DeleteRequest
		if err := c.BodyParser(&body); err == nil {
			raw = strings.TrimSpace(body.ID)
		}
	}
	if raw == "" {
		return helper.Error(c, fiber.StatusBadRequest, "ID wajib diisi")
	}

	id, err := parseObjectID(raw)
	if err != nil {
		return err
	}

	existing, err := ctl.Store.FindByID(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return helper.Error(c, fiber.StatusNotFound, ctl.Schema.Label+" tidak ditemukan")
	}
	if err != nil {
		return helper.ErrorWithDetail(c, fiber.StatusInternalServerError,
			"Gagal mengambil data "+ctl.Schema.Label, err)
	}

	// sweep best-effort seluruh media (foto, galeri, dokumen); record tetap
	// dihapus walau semua delete media gagal
	for _, ref := range existing.MediaRefs() {
		ctl.deleteMediaBestEffort(c, ref)
	}

	deleted, err := ctl.Store.FindByIDAndDelete(c.UserContext(), id)
	if errors.Is(err, store.ErrNotFound) {
		return helper.Error(c, fiber.StatusNotFound, ctl.Schema.Label+" tidak ditemukan")
	}
	if err != nil {
		return helper.ErrorWithDetail(c, fiber.StatusInternalServerError,
			"Gagal menghapus "+ctl.Schema.Label, err)
	}

	return helper.Success(c, ctl.Schema.Label+" berhasil dihapus", deleted)
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "ya", "yes":
		return true
	}
	return false
}

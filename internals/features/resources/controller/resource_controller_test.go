package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"desaku_backend/internals/features/resources/model"
	"desaku_backend/internals/features/resources/route"
	"desaku_backend/internals/features/resources/schema"
	"desaku_backend/internals/features/resources/store"
	helper "desaku_backend/internals/helpers"
	helperOSS "desaku_backend/internals/helpers/oss"
)

/* =========================================================
   Fake in-memory Recorder
========================================================= */

type fakeStore struct {
	items map[primitive.ObjectID]model.Resource
	seq   int
	calls int // semua pemanggilan store, untuk assert "zero calls"

	createErr error
	findErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[primitive.ObjectID]model.Resource{}}
}

func (f *fakeStore) Find(ctx context.Context) ([]model.Resource, error) {
	f.calls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := make([]model.Resource, 0, len(f.items))
	for _, m := range f.items {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) FindByID(ctx context.Context, id primitive.ObjectID) (model.Resource, error) {
	f.calls++
	m, ok := f.items[id]
	if !ok {
		return model.Resource{}, store.ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) Create(ctx context.Context, m model.Resource) (model.Resource, error) {
	f.calls++
	if f.createErr != nil {
		return model.Resource{}, f.createErr
	}
	f.seq++
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Unix(int64(1700000000+f.seq), 0)
	m.UpdatedAt = m.CreatedAt
	f.items[m.ID] = m
	return m, nil
}

func (f *fakeStore) FindByIDAndUpdate(ctx context.Context, id primitive.ObjectID, m model.Resource) (model.Resource, error) {
	f.calls++
	old, ok := f.items[id]
	if !ok {
		return model.Resource{}, store.ErrNotFound
	}
	m.ID = old.ID
	m.CreatedAt = old.CreatedAt
	m.UpdatedAt = time.Now()
	f.items[id] = m
	return m, nil
}

func (f *fakeStore) FindByIDAndDelete(ctx context.Context, id primitive.ObjectID) (model.Resource, error) {
	f.calls++
	m, ok := f.items[id]
	if !ok {
		return model.Resource{}, store.ErrNotFound
	}
	delete(f.items, id)
	return m, nil
}

/* =========================================================
   Helpers
========================================================= */

func passGuard(c *fiber.Ctx) error { return c.Next() }

func newApp(sch schema.Schema, st store.Recorder, media helperOSS.MediaStore) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler})
	route.Register(app, sch, st, media, passGuard)
	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func doReq(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v (body=%s)", err, body)
	}
	return resp, env
}

type filePart struct {
	field, name string
	content     []byte
}

func multipartReq(t *testing.T, method, target string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write(f.content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func potensiFields(name string) map[string]string {
	return map[string]string{
		"nama":      name,
		"kategori":  "UMKM",
		"deskripsi": "Usaha keripik singkong",
		"tahun":     "2020",
		"lokasi":    "Dusun Krajan",
	}
}

func createPotensi(t *testing.T, app *fiber.App, st *fakeStore, name string, files ...filePart) model.Resource {
	t.Helper()
	req := multipartReq(t, http.MethodPost, "/potensi/add", potensiFields(name), files...)
	resp, env := doReq(t, app, req)
	if resp.StatusCode != http.StatusCreated || !env.Success {
		t.Fatalf("create %q gagal: status=%d message=%s", name, resp.StatusCode, env.Message)
	}
	var m model.Resource
	if err := json.Unmarshal(env.Data, &m); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return m
}

/* =========================================================
   CREATE
========================================================= */

func TestCreate_TrimsFieldsAndEmptyPhoto(t *testing.T) {
	st := newFakeStore()
	media := &helperOSS.MockMediaStore{}
	app := newApp(schema.Potensi, st, media)

	fields := potensiFields("  Keripik Bu Sri  ")
	fields["deskripsi"] = "  Usaha keripik singkong  "
	req := multipartReq(t, http.MethodPost, "/potensi/add", fields)
	resp, env := doReq(t, app, req)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (message=%s)", resp.StatusCode, env.Message)
	}
	var m model.Resource
	if err := json.Unmarshal(env.Data, &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Name != "Keripik Bu Sri" {
		t.Errorf("nama tidak di-trim: %q", m.Name)
	}
	if m.Description != "Usaha keripik singkong" {
		t.Errorf("deskripsi tidak di-trim: %q", m.Description)
	}
	if m.PhotoURL != "" {
		t.Errorf("tanpa foto, foto_url harus kosong, got %q", m.PhotoURL)
	}
	if len(media.Uploads) != 0 {
		t.Errorf("tidak boleh ada upload, got %d", len(media.Uploads))
	}
}

func TestCreate_WithPhoto(t *testing.T) {
	st := newFakeStore()
	media := &helperOSS.MockMediaStore{}
	app := newApp(schema.Potensi, st, media)

	m := createPotensi(t, app, st, "Keripik", filePart{"foto", "foto.jpg", []byte("img")})
	if m.PhotoURL == "" {
		t.Error("foto_url harus terisi setelah upload")
	}
	if len(media.Uploads) != 1 || media.Uploads[0] != schema.Potensi.MediaFolder {
		t.Errorf("upload harus sekali ke folder %q, got %v", schema.Potensi.MediaFolder, media.Uploads)
	}
}

func TestCreate_InvalidCategory_NoStoreWriteNoUpload(t *testing.T) {
	st := newFakeStore()
	media := &helperOSS.MockMediaStore{}
	app := newApp(schema.Potensi, st, media)

	fields := potensiFields("Keripik")
	fields["kategori"] = "Tambang"
	req := multipartReq(t, http.MethodPost, "/potensi/add", fields,
		filePart{"foto", "foto.jpg", []byte("img")})
	resp, env := doReq(t, app, req)

	if resp.StatusCode != http.StatusBadRequest || env.Success {
		t.Fatalf("kategori di luar enum harus 400, got %d", resp.StatusCode)
	}
	if st.calls != 0 {
		t.Errorf("store tidak boleh disentuh, calls=%d", st.calls)
	}
	if len(media.Uploads) != 0 {
		t.Errorf("media tidak boleh disentuh, uploads=%d", len(media.Uploads))
	}
}

func TestCreate_UploadFails_NoRecordInserted(t *testing.T) {
	st := newFakeStore()
	media := &helperOSS.MockMediaStore{
		UploadImageFn: func(ctx context.Context, folder string, fh *multipart.FileHeader) (string, string, error) {
			return "", "", fiber.NewError(fiber.StatusBadGateway, "Gagal upload ke OSS")
		},
	}
	app := newApp(schema.Potensi, st, media)

	req := multipartReq(t, http.MethodPost, "/potensi/add", potensiFields("Keripik"),
		filePart{"foto", "foto.jpg", []byte("img")})
	resp, env := doReq(t, app, req)

	if resp.StatusCode != http.StatusBadGateway || env.Success {
		t.Fatalf("upload gagal harus gagal total, got %d", resp.StatusCode)
	}
	if len(st.items) != 0 {
		t.Error("record tidak boleh dibuat saat upload gagal")
	}
}

func TestCreate_DuplicateName_FriendlyMessage(t *testing.T) {
	st := newFakeStore()
	st.createErr = store.ErrDuplicateName
	app := newApp(schema.Potensi, st, &helperOSS.MockMediaStore{})

	req := multipartReq(t, http.MethodPost, "/potensi/add", potensiFields("Keripik"))
	resp, env := doReq(t, app, req)

	if resp.StatusCode != http.StatusInternalServerError || env.Success {
		t.Fatalf("duplikat harus 500, got %d", resp.StatusCode)
	}
	if !strings.Contains(env.Message, "sudah ada") {
		t.Errorf("pesan duplikat tidak ramah: %q", env.Message)
	}
}

/* =========================================================
   LIST & GET BY ID
========================================================= */

func TestList_NewestFirst(t *testing.T) {
	st := newFakeStore()
	app := newApp(schema.Potensi, st, &helperOSS.MockMediaStore{})

	createPotensi(t, app, st, "R1")
	createPotensi(t, app, st, "R2")
	createPotensi(t, app, st, "R3")

	_, env := doReq(t, app, httptest.NewRequest(http.MethodGet, "/potensi/get", nil))
	var items []model.Resource
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := []string{}
	for _, m := range items {
		got = append(got, m.Name)
	}
	want := []string{"R3", "R2", "R1"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("urutan list = %v, want %v", got, want)
	}
}

func TestList_EmptyIsSuccessWithEmptyArray(t *testing.T) {
	app := newApp(schema.Potensi, newFakeStore(), &helperOSS.MockMediaStore{})

	resp, env := doReq(t, app, httptest.NewRequest(http.MethodGet, "/potensi/get", nil))
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("list kosong harus sukses, got %d", resp.StatusCode)
	}
	if string(env.Data) != "[]" {
		t.Errorf("data harus [] bukan null, got %s", env.Data)
	}
}

func TestGetByID(t *testing.T) {
	st := newFakeStore()
	app := newApp(schema.Potensi, st, &helperOSS.MockMediaStore{})
	created := createPotensi(t, app, st, "Keripik")

	resp, env := doReq(t, app,
		httptest.NewRequest(http.MethodGet, "/potensi/"+created.ID.Hex(), nil))
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("lookup gagal: %d %s", resp.StatusCode, env.Message)
	}

	resp, _ = doReq(t, app,
		httptest.NewRequest(http.MethodGet, "/potensi/"+primitive.NewObjectID().Hex(), nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("id tak ada harus 404, got %d", resp.StatusCode)
	}
}

func TestInvalidIdentifier_NeverReachesStore(t *testing.T) {
	st := newFakeStore()
	app := newApp(schema.Potensi, st, &helperOSS.MockMediaStore{})

	resp, _ := doReq(t, app, httptest.NewRequest(http.MethodGet, "/potensi/bukan-hex", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("id rusak harus 400, got %d", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodDelete, "/potensi/delete?id=bukan-hex", nil)
	resp, _ = doReq(t, app, req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("delete id rusak harus 400, got %d", resp.StatusCode)
	}

	if st.calls != 0 {
		t.Errorf("store tidak boleh disentuh, calls=%d", st.calls)
	}
}

/* =========================================================
   UPDATE
========================================================= */

func TestUpdate_NoNewPhoto_PreservesPhotoURL(t *testing.T) {
	st := newFakeStore()
	media := &helperOSS.MockMediaStore{}
	app := newApp(schema.Potensi, st, media)
	created := createPotensi(t, app, st, "Keripik", filePart{"foto", "foto.jpg", []byte("img")})

	fields := potensiFields("Keripik Baru")
	fields["id"] = created.ID.Hex()
	req := multipartReq(t, http.MethodPut, "/potensi/update", fields)
	resp, env := doReq(t, app, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update gagal: %d %s", resp.StatusCode, env.Message)
	}
	var m model.Resource
	_ = json.Unmarshal(env.Data, &m)
	if m.PhotoURL != created.PhotoURL {
		t.Errorf("foto_url harus persis dipertahankan: got %q want %q", m.PhotoURL, created.PhotoURL)
	}
	if len(media.Deletes) != 0 {
		t.Errorf("tidak boleh ada delete media, got %v", media.Deletes)
	}
}

func TestUpdate_RemovePhoto(t *testing.T) {
	st := newFakeStore()
	media := &helperOSS.MockMediaStore{}
	app := newApp(schema.Potensi, st, media)
	created := createPotensi(t, app, st, "Keripik", filePart{"foto", "foto.jpg", []byte("img")})

	fields := potensiFields("Keripik")
	fields["id"] = created.ID.Hex()
	fields["remove_foto"] = "true"
	req := multipartReq(t, http.MethodPut, "/potensi/update", fields)
	_, env := doReq(t, app, req)

	var m model.Resource
	_ = json.Unmarshal(env.Data, &m)
	if m.PhotoURL != "" {
		t.Errorf("foto_url harus kosong setelah remove, got %q", m.PhotoURL)
	}
	if len(media.Deletes) != 1 {
		t.Fatalf("harus tepat satu percobaan delete, got %v", media.Deletes)
	}
}

func TestUpdate_NewPhoto_OneUploadOneDeleteAttempt(t *testing.T) {
	st := newFakeStore()
	media := &helperOSS.MockMediaStore{}
	app := newApp(schema.Potensi, st, media)
	created := createPotensi(t, app, st, "Keripik", filePart{"foto", "old.jpg", []byte("old")})
	oldKey := st.items[created.ID].PhotoKey
	if oldKey == "" {
		t.Fatal("key foto lama harus tersimpan")
	}

	// provider gagal menghapus object lama: operasi tetap sukses
	media.DeleteFn = func(ctx context.Context, key string) error {
		return errors.New("provider down")
	}
	uploadsBefore := len(media.Uploads)

	fields := potensiFields("Keripik")
	fields["id"] = created.ID.Hex()
	req := multipartReq(t, http.MethodPut, "/potensi/update", fields,
		filePart{"foto", "new.jpg", []byte("new")})
	resp, env := doReq(t, app, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update gagal: %d %s", resp.StatusCode, env.Message)
	}
	if got := len(media.Uploads) - uploadsBefore; got != 1 {
		t.Errorf("harus tepat satu upload, got %d", got)
	}
	if len(media.Deletes) != 1 || media.Deletes[0] != oldKey {
		t.Errorf("harus tepat satu percobaan delete key lama %q, got %v", oldKey, media.Deletes)
	}
	var m model.Resource
	_ = json.Unmarshal(env.Data, &m)
	if m.PhotoURL == "" || m.PhotoURL == created.PhotoURL {
		t.Errorf("foto_url harus URL upload baru, got %q", m.PhotoURL)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	st := newFakeStore()
	app := newApp(schema.Potensi, st, &helperOSS.MockMediaStore{})

	fields := potensiFields("Keripik")
	fields["id"] = primitive.NewObjectID().Hex()
	req := multipartReq(t, http.MethodPut, "/potensi/update", fields)
	resp, _ := doReq(t, app, req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("update id tak ada harus 404, got %d", resp.StatusCode)
	}
}

/* =========================================================
   DELETE
========================================================= */

func TestDelete_ThenDeleteAgain(t *testing.T) {
	st := newFakeStore()
	app := newApp(schema.Potensi, st, &helperOSS.MockMediaStore{})
	created := createPotensi(t, app, st, "Keripik")

	req := httptest.NewRequest(http.MethodDelete, "/potensi/delete?id="+created.ID.Hex(), nil)
	resp, env := doReq(t, app, req)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("delete pertama harus sukses: %d %s", resp.StatusCode, env.Message)
	}
	var m model.Resource
	_ = json.Unmarshal(env.Data, &m)
	if m.Name != "Keripik" {
		t.Errorf("delete harus mengembalikan kondisi terakhir record, got %q", m.Name)
	}

	req = httptest.NewRequest(http.MethodDelete, "/potensi/delete?id="+created.ID.Hex(), nil)
	resp, _ = doReq(t, app, req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete kedua harus 404, got %d", resp.StatusCode)
	}
}

func TestDelete_IDFromJSONBody(t *testing.T) {
	st := newFakeStore()
	app := newApp(schema.Potensi, st, &helperOSS.MockMediaStore{})
	created := createPotensi(t, app, st, "Keripik")

	body, _ := json.Marshal(map[string]string{"id": created.ID.Hex()})
	req := httptest.NewRequest(http.MethodPost, "/potensi/delete", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, env := doReq(t, app, req)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Errorf("delete via body harus sukses: %d %s", resp.StatusCode, env.Message)
	}
}

func TestDelete_MissingID(t *testing.T) {
	app := newApp(schema.Potensi, newFakeStore(), &helperOSS.MockMediaStore{})
	resp, _ := doReq(t, app, httptest.NewRequest(http.MethodDelete, "/potensi/delete", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("tanpa id harus 400, got %d", resp.StatusCode)
	}
}

func TestDelete_GallerySweepContinuesPastFailures(t *testing.T) {
	st := newFakeStore()
	media := &helperOSS.MockMediaStore{
		DeleteFn: func(ctx context.Context, key string) error {
			return errors.New("provider selalu gagal")
		},
	}
	app := newApp(schema.Kegiatan, st, media)

	fields := map[string]string{
		"nama":      "Kerja Bakti",
		"kategori":  "Gotong Royong",
		"deskripsi": "Bersih-bersih balai desa",
		"tahun":     "2025",
	}
	req := multipartReq(t, http.MethodPost, "/kegiatan/add", fields,
		filePart{"foto", "utama.jpg", []byte("a")},
		filePart{"galeri", "g1.jpg", []byte("b")},
		filePart{"galeri", "g2.jpg", []byte("c")},
		filePart{"dokumen", "laporan.pdf", []byte("%PDF")},
	)
	resp, env := doReq(t, app, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create kegiatan gagal: %d %s", resp.StatusCode, env.Message)
	}
	var created model.Resource
	_ = json.Unmarshal(env.Data, &created)
	if len(created.Gallery) != 2 {
		t.Fatalf("galeri harus 2 entri, got %d", len(created.Gallery))
	}

	req = httptest.NewRequest(http.MethodDelete, "/kegiatan/delete?id="+created.ID.Hex(), nil)
	resp, env = doReq(t, app, req)

	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("record harus tetap terhapus walau media gagal: %d %s", resp.StatusCode, env.Message)
	}
	// foto utama + 2 galeri + 1 dokumen
	if len(media.Deletes) != 4 {
		t.Errorf("harus 4 percobaan delete media, got %d (%v)", len(media.Deletes), media.Deletes)
	}
	if len(st.items) != 0 {
		t.Error("record harus terhapus dari store")
	}
}

/* =========================================================
   405
========================================================= */

func TestMethodNotAllowedEnvelope(t *testing.T) {
	app := newApp(schema.Potensi, newFakeStore(), &helperOSS.MockMediaStore{})

	cases := []struct{ method, path string }{
		{http.MethodGet, "/potensi/add"},
		{http.MethodPost, "/potensi/get"},
		{http.MethodGet, "/potensi/update"},
		{http.MethodPut, "/potensi/delete"},
	}
	for _, tc := range cases {
		resp, env := doReq(t, app, httptest.NewRequest(tc.method, tc.path, nil))
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("%s %s = %d, want 405", tc.method, tc.path, resp.StatusCode)
		}
		if env.Success {
			t.Errorf("%s %s: amplop harus success=false", tc.method, tc.path)
		}
	}
}

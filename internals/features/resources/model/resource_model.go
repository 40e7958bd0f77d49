// internals/features/resources/model/resource_model.go
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaRef menyimpan URL publik berdampingan dengan object key provider,
// sehingga delete tidak perlu menderivasi key dari bentuk URL.
type MediaRef struct {
	URL string `bson:"url" json:"url"`
	Key string `bson:"key" json:"-"`
}

// Resource adalah dokumen bersama kelima jenis (berita, potensi, prasarana,
// lembaga, kegiatan). Field yang tidak relevan untuk sebuah jenis dibiarkan
// zero-value dan di-omit saat serialisasi.
//
// PhotoURL kosong berarti "tidak ada foto"; tidak pernah null.
type Resource struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"nama" json:"nama"`
	Category    string             `bson:"kategori" json:"kategori"`
	Description string             `bson:"deskripsi" json:"deskripsi"`

	PhotoURL string `bson:"foto_url" json:"foto_url"`
	PhotoKey string `bson:"foto_key" json:"-"`

	Year     int               `bson:"tahun,omitempty" json:"tahun,omitempty"`
	Location string            `bson:"lokasi,omitempty" json:"lokasi,omitempty"`
	Links    map[string]string `bson:"tautan,omitempty" json:"tautan,omitempty"`

	Gallery     []MediaRef `bson:"galeri,omitempty" json:"galeri,omitempty"`
	DocumentURL string     `bson:"dokumen_url,omitempty" json:"dokumen_url,omitempty"`
	DocumentKey string     `bson:"dokumen_key,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MediaRefs mengumpulkan semua referensi media milik dokumen ini:
// foto utama, isi galeri, dan dokumen. Dipakai untuk sweep delete.
func (r Resource) MediaRefs() []MediaRef {
	var refs []MediaRef
	if r.PhotoURL != "" || r.PhotoKey != "" {
		refs = append(refs, MediaRef{URL: r.PhotoURL, Key: r.PhotoKey})
	}
	refs = append(refs, r.Gallery...)
	if r.DocumentURL != "" || r.DocumentKey != "" {
		refs = append(refs, MediaRef{URL: r.DocumentURL, Key: r.DocumentKey})
	}
	return refs
}

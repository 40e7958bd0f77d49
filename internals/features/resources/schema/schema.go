// internals/features/resources/schema/schema.go
package schema

import "time"

// YearRule menentukan aturan field tahun per jenis sumber daya.
type YearRule int

const (
	YearNone     YearRule = iota // tidak punya field tahun
	YearPast                     // 1900..tahun berjalan
	YearPlanning                 // 1900..tahun berjalan+5 (boleh rencana)
)

// MinYear adalah batas bawah semua field tahun.
const MinYear = 1900

// Schema adalah tabel kapabilitas satu jenis sumber daya. Lima jenis
// dipetakan ke satu engine CRUD generik lewat tabel ini, bukan lima
// controller salinan.
type Schema struct {
	Kind            string // slug path, contoh "potensi"
	Label           string // nama tampil untuk pesan
	Collection      string // koleksi MongoDB
	MediaFolder     string // folder di media store, contoh "potensi-desa"
	Categories      []string
	Year            YearRule
	RequireLocation bool
	Links           []string // field tautan opsional yang dikenal jenis ini
	HasGallery      bool
	HasDocument     bool
}

// Link field names yang dipakai lintas jenis.
const (
	LinkMaps      = "maps"
	LinkBelanja   = "belanja"
	LinkInstagram = "instagram"
)

var (
	Berita = Schema{
		Kind:        "berita",
		Label:       "Berita",
		Collection:  "berita",
		MediaFolder: "berita-desa",
		Categories: []string{
			"Pengumuman", "Pembangunan", "Pemerintahan",
			"Kesehatan", "Pendidikan", "Lainnya",
		},
		Year: YearNone,
	}

	Potensi = Schema{
		Kind:        "potensi",
		Label:       "Potensi",
		Collection:  "potensi",
		MediaFolder: "potensi-desa",
		Categories: []string{
			"UMKM", "Wisata", "Pertanian", "Peternakan",
			"Kerajinan", "Situs", "Budaya", "Lainnya",
		},
		Year:            YearPast,
		RequireLocation: true,
		Links:           []string{LinkMaps, LinkBelanja, LinkInstagram},
	}

	Prasarana = Schema{
		Kind:        "prasarana",
		Label:       "Prasarana",
		Collection:  "prasarana",
		MediaFolder: "prasarana-desa",
		Categories: []string{
			"Pendidikan", "Kesehatan", "Ibadah", "Olahraga",
			"Transportasi", "Pemerintahan", "Lainnya",
		},
		Year:            YearPast,
		RequireLocation: true,
		Links:           []string{LinkMaps},
	}

	Lembaga = Schema{
		Kind:        "lembaga",
		Label:       "Lembaga",
		Collection:  "lembaga",
		MediaFolder: "lembaga-desa",
		Categories: []string{
			"Pemerintahan", "Keamanan", "Pendidikan", "Kesehatan",
			"Keagamaan", "Sosial", "Lainnya",
		},
		Year:  YearPast,
		Links: []string{LinkInstagram},
	}

	Kegiatan = Schema{
		Kind:        "kegiatan",
		Label:       "Kegiatan",
		Collection:  "kegiatan",
		MediaFolder: "kegiatan-desa",
		Categories: []string{
			"Gotong Royong", "Keagamaan", "Olahraga",
			"Budaya", "Pemerintahan", "Lainnya",
		},
		Year:        YearPlanning,
		Links:       []string{LinkMaps},
		HasGallery:  true,
		HasDocument: true,
	}
)

// All mengembalikan kelima schema, urutan stabil.
func All() []Schema {
	return []Schema{Berita, Potensi, Prasarana, Lembaga, Kegiatan}
}

// ByKind mencari schema berdasarkan slug path.
func ByKind(kind string) (Schema, bool) {
	for _, s := range All() {
		if s.Kind == kind {
			return s, true
		}
	}
	return Schema{}, false
}

// ValidCategory memeriksa keanggotaan kategori pada enumerasi jenis ini.
func (s Schema) ValidCategory(cat string) bool {
	for _, c := range s.Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// HasLink memeriksa apakah field tautan dikenal jenis ini.
func (s Schema) HasLink(name string) bool {
	for _, l := range s.Links {
		if l == name {
			return true
		}
	}
	return false
}

// MaxYear menghitung batas atas tahun relatif ke waktu sekarang.
func (s Schema) MaxYear(now time.Time) int {
	switch s.Year {
	case YearPlanning:
		return now.Year() + 5
	default:
		return now.Year()
	}
}

// internals/features/resources/schema/validate.go
package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Input adalah field-bag hasil parsing form, sebelum masuk ke store.
type Input struct {
	Name        string
	Category    string
	Description string
	Year        string // nilai mentah dari form
	Location    string
}

// FieldError adalah satu pelanggaran validasi, siap ditampilkan langsung.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate memeriksa Input terhadap Schema. Murni: tanpa I/O, tanpa panic.
// Urutan pemeriksaan: field wajib → keanggotaan kategori → rentang angka.
func Validate(s Schema, in Input, now time.Time) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	description := strings.TrimSpace(in.Description)
	yearRaw := strings.TrimSpace(in.Year)
	location := strings.TrimSpace(in.Location)

	// (a) field wajib, non-empty setelah trim
	if name == "" {
		errs = append(errs, FieldError{"nama", "nama wajib diisi"})
	}
	if category == "" {
		errs = append(errs, FieldError{"kategori", "kategori wajib diisi"})
	}
	if description == "" {
		errs = append(errs, FieldError{"deskripsi", "deskripsi wajib diisi"})
	}
	if s.Year != YearNone && yearRaw == "" {
		errs = append(errs, FieldError{"tahun", "tahun wajib diisi"})
	}
	if s.RequireLocation && location == "" {
		errs = append(errs, FieldError{"lokasi", "lokasi wajib diisi"})
	}

	// (b) keanggotaan kategori
	if category != "" && !s.ValidCategory(category) {
		errs = append(errs, FieldError{
			"kategori",
			fmt.Sprintf("kategori %q tidak dikenal untuk %s", category, s.Label),
		})
	}

	// (c) rentang angka
	if s.Year != YearNone && yearRaw != "" {
		year, err := strconv.Atoi(yearRaw)
		switch {
		case err != nil:
			errs = append(errs, FieldError{"tahun", "tahun harus berupa angka"})
		case year < MinYear:
			errs = append(errs, FieldError{"tahun", fmt.Sprintf("tahun minimal %d", MinYear)})
		case year > s.MaxYear(now):
			errs = append(errs, FieldError{"tahun", fmt.Sprintf("tahun maksimal %d", s.MaxYear(now))})
		}
	}

	return errs
}

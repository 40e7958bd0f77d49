// internals/features/resources/dto/resource_dto.go
package dto

import (
	"strconv"
	"strings"

	"desaku_backend/internals/features/resources/model"
	"desaku_backend/internals/features/resources/schema"
)

// ResourceRequest adalah field-bag Create/Update. Update wajib mengirim
// ulang seluruh field (full replace, bukan partial merge).
type ResourceRequest struct {
	Name        string `form:"nama" json:"nama"`
	Category    string `form:"kategori" json:"kategori"`
	Description string `form:"deskripsi" json:"deskripsi"`
	Year        string `form:"tahun" json:"tahun"`
	Location    string `form:"lokasi" json:"lokasi"`

	MapsURL      string `form:"tautan_maps" json:"tautan_maps" validate:"omitempty,url"`
	BelanjaURL   string `form:"tautan_belanja" json:"tautan_belanja" validate:"omitempty,url"`
	InstagramURL string `form:"tautan_instagram" json:"tautan_instagram" validate:"omitempty,url"`
}

// Normalize men-trim seluruh field string.
func (r *ResourceRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	r.Description = strings.TrimSpace(r.Description)
	r.Year = strings.TrimSpace(r.Year)
	r.Location = strings.TrimSpace(r.Location)
	r.MapsURL = strings.TrimSpace(r.MapsURL)
	r.BelanjaURL = strings.TrimSpace(r.BelanjaURL)
	r.InstagramURL = strings.TrimSpace(r.InstagramURL)
}

// ToInput membentuk Input untuk validator murni.
func (r ResourceRequest) ToInput() schema.Input {
	return schema.Input{
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		Year:        r.Year,
		Location:    r.Location,
	}
}

// Apply menulis seluruh field mutable request ke model sesuai schema.
// Field yang tidak dikenal jenis ini (tahun, lokasi, tautan) di-nol-kan,
// bukan dibiarkan, supaya full-replace konsisten.
func (r ResourceRequest) Apply(m *model.Resource, s schema.Schema) {
	m.Name = r.Name
	m.Category = r.Category
	m.Description = r.Description

	if s.Year != schema.YearNone {
		m.Year, _ = strconv.Atoi(r.Year) // validator sudah menjamin parse
	} else {
		m.Year = 0
	}

	if s.RequireLocation || r.Location != "" {
		m.Location = r.Location
	} else {
		m.Location = ""
	}

	links := map[string]string{}
	set := func(name, val string) {
		if s.HasLink(name) && val != "" {
			links[name] = val
		}
	}
	set(schema.LinkMaps, r.MapsURL)
	set(schema.LinkBelanja, r.BelanjaURL)
	set(schema.LinkInstagram, r.InstagramURL)
	if len(links) == 0 {
		links = nil
	}
	m.Links = links
}

// DeleteRequest menerima id dari body JSON; query string dicek lebih dulu
// oleh controller.
type DeleteRequest struct {
	ID string `json:"id" form:"id"`
}

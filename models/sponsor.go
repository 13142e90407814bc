package models

import (
	"github.com/pocketbase/pocketbase/core"
)

type Sponsor struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required,max=150"`
	LogoURL   string `json:"logo_url" validate:"omitempty,url"`
	Website   string `json:"website" validate:"omitempty,url"`
	Tier      string `json:"tier" validate:"max=50"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
	Active    bool   `json:"active"`
	Version   string `json:"-"`
}

func (s Sponsor) Validate() error {
	return validateStruct(s)
}

func SponsorFromRecord(r *core.Record) Sponsor {
	return Sponsor{
		ID:        r.Id,
		Name:      r.GetString("name"),
		LogoURL:   r.GetString("logo_url"),
		Website:   r.GetString("website"),
		Tier:      r.GetString("tier"),
		SortOrder: r.GetInt("sort_order"),
		Active:    r.GetBool("active"),
		Version:   version(r),
	}
}

func (s Sponsor) Fields() map[string]any {
	return map[string]any{
		"name":       s.Name,
		"logo_url":   s.LogoURL,
		"website":    s.Website,
		"tier":       s.Tier,
		"sort_order": s.SortOrder,
		"active":     s.Active,
	}
}

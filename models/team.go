package models

import (
	"github.com/pocketbase/pocketbase/core"
)

const (
	RoleDiretoria  = "diretoria"
	RoleVoluntario = "voluntario"
	RoleMentor     = "mentor"
)

var TeamRoles = []string{RoleDiretoria, RoleVoluntario, RoleMentor}

type TeamMember struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required,max=150"`
	Role      string `json:"role" validate:"required,oneof=diretoria voluntario mentor"`
	Position  string `json:"position" validate:"max=150"`
	Bio       string `json:"bio" validate:"max=2000"`
	PhotoURL  string `json:"photo_url" validate:"omitempty,url"`
	Instagram string `json:"instagram" validate:"max=100"`
	LinkedIn  string `json:"linkedin" validate:"omitempty,url"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
	Active    bool   `json:"active"`
	Version   string `json:"-"`
}

func (m TeamMember) Validate() error {
	return validateStruct(m)
}

func TeamMemberFromRecord(r *core.Record) TeamMember {
	return TeamMember{
		ID:        r.Id,
		Name:      r.GetString("name"),
		Role:      r.GetString("role"),
		Position:  r.GetString("position"),
		Bio:       r.GetString("bio"),
		PhotoURL:  r.GetString("photo_url"),
		Instagram: r.GetString("instagram"),
		LinkedIn:  r.GetString("linkedin"),
		SortOrder: r.GetInt("sort_order"),
		Active:    r.GetBool("active"),
		Version:   version(r),
	}
}

func (m TeamMember) Fields() map[string]any {
	return map[string]any{
		"name":       m.Name,
		"role":       m.Role,
		"position":   m.Position,
		"bio":        m.Bio,
		"photo_url":  m.PhotoURL,
		"instagram":  m.Instagram,
		"linkedin":   m.LinkedIn,
		"sort_order": m.SortOrder,
		"active":     m.Active,
	}
}

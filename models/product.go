package models

import (
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"max=100"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
	Active      bool            `json:"active"`
	SortOrder   int             `json:"sort_order" validate:"gte=0"`
	Version     string          `json:"-"`
}

func (p Product) Validate() error {
	if err := validateStruct(p); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return Invalid("price", "não pode ser negativo")
	}
	return nil
}

func ProductFromRecord(r *core.Record) Product {
	return Product{
		ID:          r.Id,
		Name:        r.GetString("name"),
		Description: r.GetString("description"),
		Price:       money(r, "price"),
		Category:    r.GetString("category"),
		ImageURL:    r.GetString("image_url"),
		Active:      r.GetBool("active"),
		SortOrder:   r.GetInt("sort_order"),
		Version:     version(r),
	}
}

func (p Product) Fields() map[string]any {
	return map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.InexactFloat64(),
		"category":    p.Category,
		"image_url":   p.ImageURL,
		"active":      p.Active,
		"sort_order":  p.SortOrder,
	}
}

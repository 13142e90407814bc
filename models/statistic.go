package models

import (
	"github.com/pocketbase/pocketbase/core"
)

const (
	StatDelegados          = "delegados"
	StatEventosRealizados  = "eventos_realizados"
	StatValoresArrecadados = "valores_arrecadados"
)

var StatisticKeys = []string{StatDelegados, StatEventosRealizados, StatValoresArrecadados}

type Statistic struct {
	ID          string  `json:"id"`
	Key         string  `json:"key" validate:"required,oneof=delegados eventos_realizados valores_arrecadados"`
	Value       float64 `json:"value" validate:"gte=0,lte=1000000000000000"`
	Label       string  `json:"label" validate:"max=100"`
	Description string  `json:"description" validate:"max=500"`
	Version     string  `json:"-"`
}

func (s Statistic) Validate() error {
	return validateStruct(s)
}

func StatisticFromRecord(r *core.Record) Statistic {
	return Statistic{
		ID:          r.Id,
		Key:         r.GetString("key"),
		Value:       r.GetFloat("value"),
		Label:       r.GetString("label"),
		Description: r.GetString("description"),
		Version:     version(r),
	}
}

func (s Statistic) Fields() map[string]any {
	return map[string]any{
		"key":         s.Key,
		"value":       s.Value,
		"label":       s.Label,
		"description": s.Description,
	}
}

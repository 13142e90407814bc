package models

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// PocketBase number fields have no null; zero means "not set".
func optionalMoney(r *core.Record, field string) *decimal.Decimal {
	v := r.GetFloat(field)
	if v == 0 {
		return nil
	}
	d := decimal.NewFromFloat(v)
	return &d
}

func money(r *core.Record, field string) decimal.Decimal {
	return decimal.NewFromFloat(r.GetFloat(field))
}

func moneyValue(d *decimal.Decimal) float64 {
	if d == nil {
		return 0
	}
	return d.InexactFloat64()
}

func optionalTime(r *core.Record, field string) *time.Time {
	dt := r.GetDateTime(field)
	if dt.IsZero() {
		return nil
	}
	t := dt.Time()
	return &t
}

func timeValue(t *time.Time) any {
	if t == nil {
		return ""
	}
	return *t
}

func version(r *core.Record) string {
	return r.GetDateTime("updated").String()
}

package policy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"magis-site/models"
)

func TestFormatStatistic(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    float64
		expected string
	}{
		{"delegados floors", models.StatDelegados, 4.9, "4"},
		{"delegados grouped", models.StatDelegados, 12345.99, "12.345"},
		{"eventos floors", models.StatEventosRealizados, 7.5, "7"},
		{"eventos zero", models.StatEventosRealizados, 0, "0"},
		{"currency drops cents", models.StatValoresArrecadados, 1234.56, "R$ 1.234"},
		{"currency large", models.StatValoresArrecadados, 1500000, "R$ 1.500.000"},
		{"currency small", models.StatValoresArrecadados, 999.99, "R$ 999"},
		{"currency zero", models.StatValoresArrecadados, 0, "R$ 0"},
		{"delegados past int64", models.StatDelegados, 1e19, "10.000.000.000.000.000.000"},
		{"currency past int64", models.StatValoresArrecadados, 1e19, "R$ 10.000.000.000.000.000.000"},
		{"unknown key raw", "visitas", 1234.5, "1234.5"},
		{"unknown key integer", "visitas", 1000, "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatStatistic(tt.key, tt.value))
		})
	}
}

func TestFormatStatistic_Idempotent(t *testing.T) {
	for _, key := range append(models.StatisticKeys, "other") {
		first := FormatStatistic(key, 98765.4321)
		second := FormatStatistic(key, 98765.4321)
		assert.Equal(t, first, second, key)
	}
}

func TestStatisticSet_MissingKeyIsZero(t *testing.T) {
	set := NewStatisticSet([]models.Statistic{
		{Key: models.StatDelegados, Value: 120},
	})

	assert.Equal(t, "120", set.Formatted(models.StatDelegados))
	assert.Equal(t, float64(0), set.Value(models.StatEventosRealizados))
	assert.Equal(t, "0", set.Formatted(models.StatEventosRealizados))
	assert.Equal(t, "R$ 0", set.Formatted(models.StatValoresArrecadados))
	assert.Equal(t, "Delegados", set.Label(models.StatDelegados, "Delegados"))
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"0", "R$ 0,00"},
		{"35", "R$ 35,00"},
		{"1234.5", "R$ 1.234,50"},
		{"19.999", "R$ 20,00"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPrice(decimal.RequireFromString(tt.amount)))
		})
	}
}

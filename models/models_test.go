package models

import (
	"errors"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magis-site/internal/schema"
	"magis-site/internal/status"
)

func validEvent() Event {
	return Event{
		Title:  "Simulação da ONU",
		Date:   time.Date(2025, time.March, 15, 13, 0, 0, 0, time.UTC),
		Status: EventUpcoming,
	}
}

func TestEvent_Validate(t *testing.T) {
	negative := decimal.NewFromInt(-10)
	lateDeadline := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		mutate    func(e *Event)
		wantField string
	}{
		{"valid", func(e *Event) {}, ""},
		{"missing title", func(e *Event) { e.Title = "" }, "title"},
		{"unknown status", func(e *Event) { e.Status = "draft" }, "status"},
		{"missing date", func(e *Event) { e.Date = time.Time{} }, "date"},
		{"negative price", func(e *Event) { e.Price = &negative }, "price"},
		{"deadline after date", func(e *Event) { e.RegistrationDeadline = &lateDeadline }, "registration_deadline"},
		{"bad image url", func(e *Event) { e.ImageURL = "not a url" }, "image_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(&e)

			err := e.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, status.ErrInvalidInput)

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Contains(t, fe.Fields, tt.wantField)
		})
	}
}

func TestPost_ValidatePublishedNeedsDate(t *testing.T) {
	p := Post{Title: "Notícia", Slug: "noticia", Published: true}
	assert.ErrorIs(t, p.Validate(), status.ErrInvalidInput)

	now := time.Now()
	p.PublishedAt = &now
	assert.NoError(t, p.Validate())
}

func TestAppointment_ValidateEmail(t *testing.T) {
	a := Appointment{Name: "Ana", Email: "ana@", Status: AppointmentPending}

	var fe *FieldError
	require.True(t, errors.As(a.Validate(), &fe))
	assert.Equal(t, "deve ser um e-mail válido", fe.Fields["email"])

	a.Email = "ana@escola.com.br"
	assert.NoError(t, a.Validate())
}

func TestProduct_ValidateNegativePrice(t *testing.T) {
	p := Product{Name: "Camiseta", Price: decimal.NewFromFloat(-0.5)}
	assert.ErrorIs(t, p.Validate(), status.ErrInvalidInput)
}

func TestEventFromRecord(t *testing.T) {
	r := core.NewRecord(schema.All()[0])
	r.Id = "ev1"
	r.Load(map[string]any{
		"title":    "Conferência",
		"date":     "2025-05-10 12:00:00.000Z",
		"status":   EventCompleted,
		"price":    35.5,
		"location": "Campinas",
	})

	e := EventFromRecord(r)
	assert.Equal(t, "ev1", e.ID)
	assert.Equal(t, "Conferência", e.Title)
	assert.Equal(t, EventCompleted, e.Status)
	assert.Equal(t, 2025, e.Date.Year())
	require.NotNil(t, e.Price)
	assert.True(t, e.Price.Equal(decimal.NewFromFloat(35.5)))
	assert.Nil(t, e.RegistrationDeadline)
}

func TestEvent_FieldsOmitEmptyOptionals(t *testing.T) {
	fields := validEvent().Fields()

	assert.Equal(t, 0.0, fields["price"])
	assert.Equal(t, "", fields["registration_deadline"])
	assert.Equal(t, "Simulação da ONU", fields["title"])
}

func TestTeamMember_ErrorsUseJSONNames(t *testing.T) {
	m := TeamMember{Name: "Rui", Role: RoleMentor, LinkedIn: "linkedin/rui", PhotoURL: "foto"}

	var fe *FieldError
	require.True(t, errors.As(m.Validate(), &fe))
	assert.Contains(t, fe.Fields, "linkedin")
	assert.Contains(t, fe.Fields, "photo_url")
}

func TestStatistic_ValidateValueBounds(t *testing.T) {
	tests := []struct {
		value float64
		valid bool
	}{
		{0, true},
		{1e15, true},
		{1e15 + 1, false},
		{1e19, false},
		{-1, false},
	}

	for _, tt := range tests {
		s := Statistic{Key: StatDelegados, Value: tt.value}
		err := s.Validate()
		if tt.valid {
			assert.NoError(t, err, "%v", tt.value)
			continue
		}
		var fe *FieldError
		require.True(t, errors.As(err, &fe), "%v", tt.value)
		assert.Contains(t, fe.Fields, "value")
	}
}

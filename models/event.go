package models

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

const (
	EventUpcoming  = "upcoming"
	EventOngoing   = "ongoing"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

var EventStatuses = []string{EventUpcoming, EventOngoing, EventCompleted, EventCancelled}

type Event struct {
	ID                   string           `json:"id"`
	Title                string           `json:"title" validate:"required,max=200"`
	Description          string           `json:"description"`
	Date                 time.Time        `json:"date" validate:"required"`
	Location             string           `json:"location" validate:"max=200"`
	Participants         string           `json:"participants" validate:"max=200"`
	Status               string           `json:"status" validate:"required,oneof=upcoming ongoing completed cancelled"`
	Category             string           `json:"category" validate:"max=100"`
	Price                *decimal.Decimal `json:"price,omitempty"`
	RegistrationDeadline *time.Time       `json:"registration_deadline,omitempty"`
	ImageURL             string           `json:"image_url" validate:"omitempty,url"`
	Created              time.Time        `json:"created"`
	Updated              time.Time        `json:"updated"`
	Version              string           `json:"-"`
}

func (e Event) Validate() error {
	if err := validateStruct(e); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return Invalid("date", "é obrigatório")
	}
	if e.Price != nil && e.Price.IsNegative() {
		return Invalid("price", "não pode ser negativo")
	}
	if e.RegistrationDeadline != nil && e.RegistrationDeadline.After(e.Date) {
		return Invalid("registration_deadline", "deve ser anterior à data do evento")
	}
	return nil
}

func (e Event) IsCancelled() bool {
	return e.Status == EventCancelled
}

func EventFromRecord(r *core.Record) Event {
	return Event{
		ID:                   r.Id,
		Title:                r.GetString("title"),
		Description:          r.GetString("description"),
		Date:                 r.GetDateTime("date").Time(),
		Location:             r.GetString("location"),
		Participants:         r.GetString("participants"),
		Status:               r.GetString("status"),
		Category:             r.GetString("category"),
		Price:                optionalMoney(r, "price"),
		RegistrationDeadline: optionalTime(r, "registration_deadline"),
		ImageURL:             r.GetString("image_url"),
		Created:              r.GetDateTime("created").Time(),
		Updated:              r.GetDateTime("updated").Time(),
		Version:              version(r),
	}
}

func (e Event) Fields() map[string]any {
	return map[string]any{
		"title":                 e.Title,
		"description":           e.Description,
		"date":                  e.Date,
		"location":              e.Location,
		"participants":          e.Participants,
		"status":                e.Status,
		"category":              e.Category,
		"price":                 moneyValue(e.Price),
		"registration_deadline": timeValue(e.RegistrationDeadline),
		"image_url":             e.ImageURL,
	}
}

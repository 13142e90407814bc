package models

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
)

const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
)

var AppointmentStatuses = []string{AppointmentPending, AppointmentConfirmed, AppointmentCancelled}

type Appointment struct {
	ID            string     `json:"id"`
	Name          string     `json:"name" validate:"required,max=150"`
	Email         string     `json:"email" validate:"required,email"`
	Phone         string     `json:"phone" validate:"max=30"`
	School        string     `json:"school" validate:"max=150"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`
	Message       string     `json:"message" validate:"max=2000"`
	Status        string     `json:"status" validate:"required,oneof=pending confirmed cancelled"`
	Created       time.Time  `json:"created"`
}

func (a Appointment) Validate() error {
	return validateStruct(a)
}

func AppointmentFromRecord(r *core.Record) Appointment {
	return Appointment{
		ID:            r.Id,
		Name:          r.GetString("name"),
		Email:         r.GetString("email"),
		Phone:         r.GetString("phone"),
		School:        r.GetString("school"),
		PreferredDate: optionalTime(r, "preferred_date"),
		Message:       r.GetString("message"),
		Status:        r.GetString("status"),
		Created:       r.GetDateTime("created").Time(),
	}
}

func (a Appointment) Fields() map[string]any {
	return map[string]any{
		"name":           a.Name,
		"email":          a.Email,
		"phone":          a.Phone,
		"school":         a.School,
		"preferred_date": timeValue(a.PreferredDate),
		"message":        a.Message,
		"status":         a.Status,
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"magis-site/internal/backend"
	"magis-site/internal/schema"
	"magis-site/models"
)

// AppointmentService handles the visit requests sent through the contact
// form.
type AppointmentService struct {
	tables backend.Tables
	mailer Mailer
}

func NewAppointmentService(tables backend.Tables, mailer Mailer) *AppointmentService {
	if mailer == nil {
		mailer = NopMailer{}
	}
	return &AppointmentService{tables: tables, mailer: mailer}
}

// Create stores a new pending request and mails the organization. A mail
// failure is logged; the request is already saved.
func (s *AppointmentService) Create(ctx context.Context, a models.Appointment) (models.Appointment, error) {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.Status = models.AppointmentPending
	if err := a.Validate(); err != nil {
		return a, err
	}

	r, err := s.tables.Insert(ctx, schema.Appointments, a.Fields())
	if err != nil {
		return a, fmt.Errorf("create appointment: %w", err)
	}
	created := models.AppointmentFromRecord(r)

	if err := s.mailer.AppointmentReceived(ctx, created); err != nil {
		slog.Error("Failed to mail appointment", "error", err, "appointment_id", created.ID)
	}
	return created, nil
}

func (s *AppointmentService) GetAll(ctx context.Context) ([]models.Appointment, error) {
	records, err := s.tables.List(ctx, schema.Appointments, backend.Query{OrderBy: []string{"created DESC"}})
	if err != nil {
		return nil, err
	}
	return mapRecords(records, models.AppointmentFromRecord), nil
}

func (s *AppointmentService) GetByID(ctx context.Context, id string) (models.Appointment, error) {
	r, err := s.tables.Get(ctx, schema.Appointments, id)
	if err != nil {
		return models.Appointment{}, err
	}
	return models.AppointmentFromRecord(r), nil
}

func (s *AppointmentService) UpdateStatus(ctx context.Context, id, newStatus string) (models.Appointment, error) {
	if !slices.Contains(models.AppointmentStatuses, newStatus) {
		return models.Appointment{}, models.Invalid("status", "deve ser um de: "+strings.Join(models.AppointmentStatuses, " "))
	}

	r, err := s.tables.Update(ctx, schema.Appointments, id, map[string]any{"status": newStatus}, "")
	if err != nil {
		return models.Appointment{}, fmt.Errorf("update appointment status: %w", err)
	}
	return models.AppointmentFromRecord(r), nil
}

func (s *AppointmentService) CountPending(ctx context.Context) (int, error) {
	records, err := s.tables.List(ctx, schema.Appointments, backend.Query{
		Eq: map[string]any{"status": models.AppointmentPending},
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	if err := s.tables.Delete(ctx, schema.Appointments, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

package services

import (
	"context"
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"magis-site/internal/backend"
	"magis-site/internal/policy"
	"magis-site/internal/schema"
	"magis-site/models"
)

type EventService struct {
	tables   backend.Tables
	notifier ContentNotifier
}

func NewEventService(tables backend.Tables, notifier ContentNotifier) *EventService {
	return &EventService{tables: tables, notifier: notifierOrNop(notifier)}
}

// GetAll lists every event, cancelled included, newest first.
func (s *EventService) GetAll(ctx context.Context) ([]models.Event, error) {
	records, err := s.tables.List(ctx, schema.Events, backend.Query{OrderBy: []string{"date DESC"}})
	if err != nil {
		return nil, err
	}
	return mapRecords(records, models.EventFromRecord), nil
}

// GetPublic returns the events the public site shows, in display order,
// with the first one featured.
func (s *EventService) GetPublic(ctx context.Context) ([]policy.PublicEvent, error) {
	records, err := s.tables.List(ctx, schema.Events, backend.Query{
		NotEq:   map[string]any{"status": models.EventCancelled},
		OrderBy: []string{"date ASC"},
	})
	if err != nil {
		return nil, err
	}
	return policy.SelectPublicEvents(mapRecords(records, models.EventFromRecord)), nil
}

func (s *EventService) GetByID(ctx context.Context, id string) (models.Event, error) {
	r, err := s.tables.Get(ctx, schema.Events, id)
	if err != nil {
		return models.Event{}, err
	}
	return models.EventFromRecord(r), nil
}

func (s *EventService) Create(ctx context.Context, e models.Event) (models.Event, error) {
	if err := e.Validate(); err != nil {
		return e, err
	}

	r, err := s.tables.Insert(ctx, schema.Events, e.Fields())
	if err != nil {
		return e, fmt.Errorf("create event: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Events, ID: r.Id, Action: ActionCreated})
	return models.EventFromRecord(r), nil
}

// Update saves e over the stored event. e.Version must be the version the
// editor loaded; a newer stored version yields status.ErrConflict.
func (s *EventService) Update(ctx context.Context, e models.Event) (models.Event, error) {
	if err := e.Validate(); err != nil {
		return e, err
	}

	r, err := s.tables.Update(ctx, schema.Events, e.ID, e.Fields(), e.Version)
	if err != nil {
		return e, fmt.Errorf("update event: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Events, ID: r.Id, Action: ActionUpdated})
	return models.EventFromRecord(r), nil
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.tables.Delete(ctx, schema.Events, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Events, ID: id, Action: ActionDeleted})
	return nil
}

func mapRecords[T any](records []*core.Record, fn func(*core.Record) T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, fn(r))
	}
	return out
}

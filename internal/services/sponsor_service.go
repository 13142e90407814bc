package services

import (
	"context"
	"fmt"

	"magis-site/internal/backend"
	"magis-site/internal/schema"
	"magis-site/models"
)

type SponsorService struct {
	tables   backend.Tables
	notifier ContentNotifier
}

func NewSponsorService(tables backend.Tables, notifier ContentNotifier) *SponsorService {
	return &SponsorService{tables: tables, notifier: notifierOrNop(notifier)}
}

func (s *SponsorService) GetAll(ctx context.Context) ([]models.Sponsor, error) {
	records, err := s.tables.List(ctx, schema.Sponsors, backend.Query{OrderBy: []string{"sort_order ASC", "name ASC"}})
	if err != nil {
		return nil, err
	}
	return mapRecords(records, models.SponsorFromRecord), nil
}

func (s *SponsorService) GetPublic(ctx context.Context) ([]models.Sponsor, error) {
	records, err := s.tables.List(ctx, schema.Sponsors, backend.Query{
		Eq:      map[string]any{"active": true},
		OrderBy: []string{"sort_order ASC", "name ASC"},
	})
	if err != nil {
		return nil, err
	}
	return mapRecords(records, models.SponsorFromRecord), nil
}

func (s *SponsorService) GetByID(ctx context.Context, id string) (models.Sponsor, error) {
	r, err := s.tables.Get(ctx, schema.Sponsors, id)
	if err != nil {
		return models.Sponsor{}, err
	}
	return models.SponsorFromRecord(r), nil
}

func (s *SponsorService) Create(ctx context.Context, sp models.Sponsor) (models.Sponsor, error) {
	if err := sp.Validate(); err != nil {
		return sp, err
	}

	r, err := s.tables.Insert(ctx, schema.Sponsors, sp.Fields())
	if err != nil {
		return sp, fmt.Errorf("create sponsor: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Sponsors, ID: r.Id, Action: ActionCreated})
	return models.SponsorFromRecord(r), nil
}

func (s *SponsorService) Update(ctx context.Context, sp models.Sponsor) (models.Sponsor, error) {
	if err := sp.Validate(); err != nil {
		return sp, err
	}

	r, err := s.tables.Update(ctx, schema.Sponsors, sp.ID, sp.Fields(), sp.Version)
	if err != nil {
		return sp, fmt.Errorf("update sponsor: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Sponsors, ID: r.Id, Action: ActionUpdated})
	return models.SponsorFromRecord(r), nil
}

func (s *SponsorService) Delete(ctx context.Context, id string) error {
	if err := s.tables.Delete(ctx, schema.Sponsors, id); err != nil {
		return fmt.Errorf("delete sponsor: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Sponsors, ID: id, Action: ActionDeleted})
	return nil
}

package services

import (
	"context"
	"fmt"
	"slices"

	"magis-site/internal/backend"
	"magis-site/internal/schema"
	"magis-site/models"
)

// TeamService manages the board, volunteers and mentors. They share one
// table and are told apart by role.
type TeamService struct {
	tables   backend.Tables
	notifier ContentNotifier
}

func NewTeamService(tables backend.Tables, notifier ContentNotifier) *TeamService {
	return &TeamService{tables: tables, notifier: notifierOrNop(notifier)}
}

func (s *TeamService) GetAll(ctx context.Context) ([]models.TeamMember, error) {
	records, err := s.tables.List(ctx, schema.TeamMembers, backend.Query{OrderBy: []string{"role ASC", "sort_order ASC", "name ASC"}})
	if err != nil {
		return nil, err
	}
	return mapRecords(records, models.TeamMemberFromRecord), nil
}

// GetByRole lists every member with role, inactive ones included.
func (s *TeamService) GetByRole(ctx context.Context, role string) ([]models.TeamMember, error) {
	if !slices.Contains(models.TeamRoles, role) {
		return nil, models.Invalid("role", "é desconhecido")
	}
	records, err := s.tables.List(ctx, schema.TeamMembers, backend.Query{
		Eq:      map[string]any{"role": role},
		OrderBy: []string{"sort_order ASC", "name ASC"},
	})
	if err != nil {
		return nil, err
	}
	return mapRecords(records, models.TeamMemberFromRecord), nil
}

func (s *TeamService) GetPublicByRole(ctx context.Context, role string) ([]models.TeamMember, error) {
	if !slices.Contains(models.TeamRoles, role) {
		return nil, models.Invalid("role", "é desconhecido")
	}
	records, err := s.tables.List(ctx, schema.TeamMembers, backend.Query{
		Eq:      map[string]any{"role": role, "active": true},
		OrderBy: []string{"sort_order ASC", "name ASC"},
	})
	if err != nil {
		return nil, err
	}
	return mapRecords(records, models.TeamMemberFromRecord), nil
}

func (s *TeamService) GetByID(ctx context.Context, id string) (models.TeamMember, error) {
	r, err := s.tables.Get(ctx, schema.TeamMembers, id)
	if err != nil {
		return models.TeamMember{}, err
	}
	return models.TeamMemberFromRecord(r), nil
}

func (s *TeamService) Create(ctx context.Context, m models.TeamMember) (models.TeamMember, error) {
	if err := m.Validate(); err != nil {
		return m, err
	}

	r, err := s.tables.Insert(ctx, schema.TeamMembers, m.Fields())
	if err != nil {
		return m, fmt.Errorf("create team member: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.TeamMembers, ID: r.Id, Action: ActionCreated})
	return models.TeamMemberFromRecord(r), nil
}

func (s *TeamService) Update(ctx context.Context, m models.TeamMember) (models.TeamMember, error) {
	if err := m.Validate(); err != nil {
		return m, err
	}

	r, err := s.tables.Update(ctx, schema.TeamMembers, m.ID, m.Fields(), m.Version)
	if err != nil {
		return m, fmt.Errorf("update team member: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.TeamMembers, ID: r.Id, Action: ActionUpdated})
	return models.TeamMemberFromRecord(r), nil
}

func (s *TeamService) Delete(ctx context.Context, id string) error {
	if err := s.tables.Delete(ctx, schema.TeamMembers, id); err != nil {
		return fmt.Errorf("delete team member: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.TeamMembers, ID: id, Action: ActionDeleted})
	return nil
}

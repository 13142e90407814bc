package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"magis-site/internal/backend"
	"magis-site/internal/policy"
	"magis-site/internal/schema"
	"magis-site/internal/status"
	"magis-site/models"
)

type StatisticService struct {
	tables   backend.Tables
	notifier ContentNotifier
}

func NewStatisticService(tables backend.Tables, notifier ContentNotifier) *StatisticService {
	return &StatisticService{tables: tables, notifier: notifierOrNop(notifier)}
}

func (s *StatisticService) GetAll(ctx context.Context) ([]models.Statistic, error) {
	records, err := s.tables.List(ctx, schema.Statistics, backend.Query{OrderBy: []string{"key ASC"}})
	if err != nil {
		return nil, err
	}
	return mapRecords(records, models.StatisticFromRecord), nil
}

func (s *StatisticService) GetSet(ctx context.Context) (policy.StatisticSet, error) {
	stats, err := s.GetAll(ctx)
	if err != nil {
		return policy.StatisticSet{}, err
	}
	return policy.NewStatisticSet(stats), nil
}

func (s *StatisticService) GetByID(ctx context.Context, id string) (models.Statistic, error) {
	r, err := s.tables.Get(ctx, schema.Statistics, id)
	if err != nil {
		return models.Statistic{}, err
	}
	return models.StatisticFromRecord(r), nil
}

// GetByKey returns the stored statistic, or a zero-valued one when the key
// was never saved.
func (s *StatisticService) GetByKey(ctx context.Context, key string) (models.Statistic, error) {
	r, err := s.tables.FindOne(ctx, schema.Statistics, backend.Query{Eq: map[string]any{"key": key}})
	if errors.Is(err, status.ErrNotFound) {
		return models.Statistic{Key: key}, nil
	}
	if err != nil {
		return models.Statistic{}, err
	}
	return models.StatisticFromRecord(r), nil
}

// Upsert saves st under its key, creating the record on first use. With
// an ID it updates that record and refuses a key held by another one.
func (s *StatisticService) Upsert(ctx context.Context, st models.Statistic) (models.Statistic, error) {
	if err := st.Validate(); err != nil {
		return st, err
	}
	if !slices.Contains(models.StatisticKeys, st.Key) {
		return st, models.Invalid("key", "é desconhecida")
	}

	current, err := s.GetByKey(ctx, st.Key)
	if err != nil {
		return st, fmt.Errorf("upsert statistic: %w", err)
	}
	// An edit targets its own record, even when the key changes.
	if st.ID != "" {
		if current.ID != "" && current.ID != st.ID {
			return st, models.Invalid("key", "já possui outro registro")
		}
		if current, err = s.GetByID(ctx, st.ID); err != nil {
			return st, fmt.Errorf("upsert statistic: %w", err)
		}
	}

	if current.ID == "" {
		r, err := s.tables.Insert(ctx, schema.Statistics, st.Fields())
		if err != nil {
			return st, fmt.Errorf("upsert statistic: %w", err)
		}
		s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Statistics, ID: r.Id, Action: ActionCreated})
		return models.StatisticFromRecord(r), nil
	}

	r, err := s.tables.Update(ctx, schema.Statistics, current.ID, st.Fields(), st.Version)
	if err != nil {
		return st, fmt.Errorf("upsert statistic: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Statistics, ID: r.Id, Action: ActionUpdated})
	return models.StatisticFromRecord(r), nil
}

// Delete removes the record; the key then reads as zero again.
func (s *StatisticService) Delete(ctx context.Context, id string) error {
	if err := s.tables.Delete(ctx, schema.Statistics, id); err != nil {
		return err
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Statistics, ID: id, Action: ActionDeleted})
	return nil
}

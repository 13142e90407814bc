package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"magis-site/internal/backend"
	"magis-site/internal/schema"
	"magis-site/internal/status"
	"magis-site/models"
	"magis-site/utils"
)

type PostService struct {
	tables   backend.Tables
	notifier ContentNotifier
	now      func() time.Time
}

func NewPostService(tables backend.Tables, notifier ContentNotifier) *PostService {
	return &PostService{tables: tables, notifier: notifierOrNop(notifier), now: time.Now}
}

func (s *PostService) GetAll(ctx context.Context) ([]models.Post, error) {
	records, err := s.tables.List(ctx, schema.Posts, backend.Query{OrderBy: []string{"created DESC"}})
	if err != nil {
		return nil, err
	}
	return mapRecords(records, models.PostFromRecord), nil
}

// GetPublic lists published posts, most recent first. limit <= 0 means all.
func (s *PostService) GetPublic(ctx context.Context, limit int) ([]models.Post, error) {
	records, err := s.tables.List(ctx, schema.Posts, backend.Query{
		Eq:      map[string]any{"published": true},
		OrderBy: []string{"published_at DESC"},
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	return mapRecords(records, models.PostFromRecord), nil
}

func (s *PostService) GetByID(ctx context.Context, id string) (models.Post, error) {
	r, err := s.tables.Get(ctx, schema.Posts, id)
	if err != nil {
		return models.Post{}, err
	}
	return models.PostFromRecord(r), nil
}

// GetBySlug finds a published post; drafts read as status.ErrNotFound.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (models.Post, error) {
	r, err := s.tables.FindOne(ctx, schema.Posts, backend.Query{
		Eq: map[string]any{"slug": slug, "published": true},
	})
	if err != nil {
		return models.Post{}, err
	}
	return models.PostFromRecord(r), nil
}

func (s *PostService) Create(ctx context.Context, p models.Post) (models.Post, error) {
	p = s.prepare(p)
	if err := p.Validate(); err != nil {
		return p, err
	}
	if err := s.checkSlug(ctx, p); err != nil {
		return p, err
	}

	r, err := s.tables.Insert(ctx, schema.Posts, p.Fields())
	if err != nil {
		return p, fmt.Errorf("create post: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Posts, ID: r.Id, Action: ActionCreated})
	return models.PostFromRecord(r), nil
}

func (s *PostService) Update(ctx context.Context, p models.Post) (models.Post, error) {
	p = s.prepare(p)
	if err := p.Validate(); err != nil {
		return p, err
	}
	if err := s.checkSlug(ctx, p); err != nil {
		return p, err
	}

	r, err := s.tables.Update(ctx, schema.Posts, p.ID, p.Fields(), p.Version)
	if err != nil {
		return p, fmt.Errorf("update post: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Posts, ID: r.Id, Action: ActionUpdated})
	return models.PostFromRecord(r), nil
}

func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.tables.Delete(ctx, schema.Posts, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Posts, ID: id, Action: ActionDeleted})
	return nil
}

// prepare fills the slug from the title and stamps the publication time of
// a post being published without one.
func (s *PostService) prepare(p models.Post) models.Post {
	if p.Slug == "" {
		p.Slug = utils.Slugify(p.Title)
	} else {
		p.Slug = utils.Slugify(p.Slug)
	}
	if p.Published && p.PublishedAt == nil {
		now := s.now().UTC()
		p.PublishedAt = &now
	}
	return p
}

func (s *PostService) checkSlug(ctx context.Context, p models.Post) error {
	existing, err := s.tables.FindOne(ctx, schema.Posts, backend.Query{Eq: map[string]any{"slug": p.Slug}})
	switch {
	case errors.Is(err, status.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check slug: %w", err)
	case existing.Id != p.ID:
		return models.Invalid("slug", "já está em uso por outra publicação")
	}
	return nil
}

package services

import (
	"context"
	"fmt"

	"magis-site/internal/backend"
	"magis-site/internal/schema"
	"magis-site/models"
)

type ProductService struct {
	tables   backend.Tables
	notifier ContentNotifier
}

func NewProductService(tables backend.Tables, notifier ContentNotifier) *ProductService {
	return &ProductService{tables: tables, notifier: notifierOrNop(notifier)}
}

func (s *ProductService) GetAll(ctx context.Context) ([]models.Product, error) {
	records, err := s.tables.List(ctx, schema.Products, backend.Query{OrderBy: []string{"sort_order ASC", "name ASC"}})
	if err != nil {
		return nil, err
	}
	return mapRecords(records, models.ProductFromRecord), nil
}

// GetPublic lists the products still on sale.
func (s *ProductService) GetPublic(ctx context.Context) ([]models.Product, error) {
	records, err := s.tables.List(ctx, schema.Products, backend.Query{
		Eq:      map[string]any{"active": true},
		OrderBy: []string{"sort_order ASC", "name ASC"},
	})
	if err != nil {
		return nil, err
	}
	return mapRecords(records, models.ProductFromRecord), nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (models.Product, error) {
	r, err := s.tables.Get(ctx, schema.Products, id)
	if err != nil {
		return models.Product{}, err
	}
	return models.ProductFromRecord(r), nil
}

func (s *ProductService) Create(ctx context.Context, p models.Product) (models.Product, error) {
	if err := p.Validate(); err != nil {
		return p, err
	}

	r, err := s.tables.Insert(ctx, schema.Products, p.Fields())
	if err != nil {
		return p, fmt.Errorf("create product: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Products, ID: r.Id, Action: ActionCreated})
	return models.ProductFromRecord(r), nil
}

func (s *ProductService) Update(ctx context.Context, p models.Product) (models.Product, error) {
	if err := p.Validate(); err != nil {
		return p, err
	}

	r, err := s.tables.Update(ctx, schema.Products, p.ID, p.Fields(), p.Version)
	if err != nil {
		return p, fmt.Errorf("update product: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Products, ID: r.Id, Action: ActionUpdated})
	return models.ProductFromRecord(r), nil
}

// Delete takes the product off sale; the record is kept.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.tables.SoftDelete(ctx, schema.Products, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Products, ID: id, Action: ActionDeleted})
	return nil
}

// Purge removes the product record for good.
func (s *ProductService) Purge(ctx context.Context, id string) error {
	if err := s.tables.Delete(ctx, schema.Products, id); err != nil {
		return fmt.Errorf("purge product: %w", err)
	}
	s.notifier.ContentChanged(ctx, ContentChange{Table: schema.Products, ID: id, Action: ActionDeleted})
	return nil
}

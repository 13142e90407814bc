// Package backend is the handle every domain module uses to reach the
// PocketBase tables, storage and auth.
package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"magis-site/internal/status"
)

// Query is a filtered, ordered table read. Eq and NotEq entries are ANDed.
type Query struct {
	Eq      map[string]any
	NotEq   map[string]any
	OrderBy []string // "date ASC", "sort_order ASC"
	Limit   int
}

// Tables is the table API of the backend. Every call is a single remote
// operation; failures are returned as-is and never retried.
type Tables interface {
	List(ctx context.Context, table string, q Query) ([]*core.Record, error)
	Get(ctx context.Context, table, id string) (*core.Record, error)
	FindOne(ctx context.Context, table string, q Query) (*core.Record, error)
	Insert(ctx context.Context, table string, data map[string]any) (*core.Record, error)
	// Update writes data over the record. When version is not empty it must
	// match the record's current "updated" value or status.ErrConflict is
	// returned.
	Update(ctx context.Context, table, id string, data map[string]any, version string) (*core.Record, error)
	Delete(ctx context.Context, table, id string) error
	// SoftDelete flags the record inactive instead of removing it.
	SoftDelete(ctx context.Context, table, id string) error
}

type Client struct {
	app core.App
}

func NewClient(app core.App) *Client {
	return &Client{app: app}
}

func (c *Client) App() core.App {
	return c.app
}

func (c *Client) List(ctx context.Context, table string, q Query) ([]*core.Record, error) {
	query := c.app.RecordQuery(table).WithContext(ctx)
	applyQuery(query, q)

	records := []*core.Record{}
	if err := query.All(&records); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return records, nil
}

func (c *Client) Get(ctx context.Context, table, id string) (*core.Record, error) {
	return c.FindOne(ctx, table, Query{Eq: map[string]any{"id": id}})
}

func (c *Client) FindOne(ctx context.Context, table string, q Query) (*core.Record, error) {
	query := c.app.RecordQuery(table).WithContext(ctx)
	q.Limit = 1
	applyQuery(query, q)

	record := &core.Record{}
	if err := query.One(record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", table, status.ErrNotFound)
		}
		return nil, fmt.Errorf("find %s: %w", table, err)
	}
	return record, nil
}

func (c *Client) Insert(ctx context.Context, table string, data map[string]any) (*core.Record, error) {
	collection, err := c.app.FindCachedCollectionByNameOrId(table)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}

	record := core.NewRecord(collection)
	record.Load(data)
	if err := c.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	return record, nil
}

func (c *Client) Update(ctx context.Context, table, id string, data map[string]any, version string) (*core.Record, error) {
	record, err := c.Get(ctx, table, id)
	if err != nil {
		return nil, err
	}
	if version != "" && record.GetDateTime("updated").String() != version {
		return nil, fmt.Errorf("%s %s: %w", table, id, status.ErrConflict)
	}

	record.Load(data)
	if err := c.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}
	return record, nil
}

func (c *Client) Delete(ctx context.Context, table, id string) error {
	record, err := c.Get(ctx, table, id)
	if err != nil {
		return err
	}
	if err := c.app.DeleteWithContext(ctx, record); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func (c *Client) SoftDelete(ctx context.Context, table, id string) error {
	_, err := c.Update(ctx, table, id, map[string]any{"active": false}, "")
	return err
}

func applyQuery(query *dbx.SelectQuery, q Query) {
	if len(q.Eq) > 0 {
		query.AndWhere(dbx.HashExp(q.Eq))
	}
	for field, value := range q.NotEq {
		query.AndWhere(dbx.Not(dbx.HashExp{field: value}))
	}
	if len(q.OrderBy) > 0 {
		query.OrderBy(q.OrderBy...)
	}
	if q.Limit > 0 {
		query.Limit(int64(q.Limit))
	}
}

// Package backendtest provides an in-memory backend.Tables for tests.
package backendtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"magis-site/internal/backend"
	"magis-site/internal/schema"
	"magis-site/internal/status"
)

type Tables struct {
	mu          sync.Mutex
	collections map[string]*core.Collection
	rows        map[string][]*core.Record
	seq         int
	clock       time.Time

	// Err, when set, is returned by every call.
	Err error
}

var _ backend.Tables = (*Tables)(nil)

func NewTables() *Tables {
	t := &Tables{
		collections: map[string]*core.Collection{},
		rows:        map[string][]*core.Record{},
		clock:       time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, c := range schema.All() {
		t.collections[c.Name] = c
	}
	return t
}

// Seed inserts data and fails the test run on error.
func (t *Tables) Seed(table string, data map[string]any) *core.Record {
	r, err := t.Insert(context.Background(), table, data)
	if err != nil {
		panic(err)
	}
	return r
}

func (t *Tables) Count(table string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows[table])
}

func (t *Tables) List(_ context.Context, table string, q backend.Query) ([]*core.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return nil, t.Err
	}

	out := []*core.Record{}
	for _, r := range t.rows[table] {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	sortRecords(out, q.OrderBy)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (t *Tables) Get(ctx context.Context, table, id string) (*core.Record, error) {
	return t.FindOne(ctx, table, backend.Query{Eq: map[string]any{"id": id}})
}

func (t *Tables) FindOne(ctx context.Context, table string, q backend.Query) (*core.Record, error) {
	records, err := t.List(ctx, table, q)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", table, status.ErrNotFound)
	}
	return records[0], nil
}

func (t *Tables) Insert(_ context.Context, table string, data map[string]any) (*core.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return nil, t.Err
	}

	collection, ok := t.collections[table]
	if !ok {
		return nil, fmt.Errorf("insert %s: unknown collection", table)
	}

	t.seq++
	r := core.NewRecord(collection)
	r.Id = fmt.Sprintf("rec%012d", t.seq)
	r.Load(data)
	// Autodate fields ignore Set; SetRaw stands in for what Save does.
	now := t.tick()
	r.SetRaw("created", now)
	r.SetRaw("updated", now)
	t.rows[table] = append(t.rows[table], r)
	return r, nil
}

func (t *Tables) Update(ctx context.Context, table, id string, data map[string]any, version string) (*core.Record, error) {
	r, err := t.Get(ctx, table, id)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if version != "" && r.GetDateTime("updated").String() != version {
		return nil, fmt.Errorf("%s %s: %w", table, id, status.ErrConflict)
	}
	r.Load(data)
	r.SetRaw("updated", t.tick())
	return r, nil
}

func (t *Tables) Delete(ctx context.Context, table, id string) error {
	if _, err := t.Get(ctx, table, id); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	rows := t.rows[table]
	for i, r := range rows {
		if r.Id == id {
			t.rows[table] = append(rows[:i], rows[i+1:]...)
			break
		}
	}
	return nil
}

func (t *Tables) SoftDelete(ctx context.Context, table, id string) error {
	_, err := t.Update(ctx, table, id, map[string]any{"active": false}, "")
	return err
}

// tick advances the fake clock so every write gets a distinct "updated".
func (t *Tables) tick() types.DateTime {
	t.clock = t.clock.Add(time.Second)
	dt, _ := types.ParseDateTime(t.clock)
	return dt
}

func matches(r *core.Record, q backend.Query) bool {
	for field, want := range q.Eq {
		if !equal(value(r, field), want) {
			return false
		}
	}
	for field, unwanted := range q.NotEq {
		if equal(value(r, field), unwanted) {
			return false
		}
	}
	return true
}

func value(r *core.Record, field string) any {
	if field == "id" {
		return r.Id
	}
	return r.Get(field)
}

func equal(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func sortRecords(records []*core.Record, orderBy []string) {
	if len(orderBy) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, clause := range orderBy {
			parts := strings.Fields(clause)
			field, desc := parts[0], len(parts) > 1 && strings.EqualFold(parts[1], "DESC")
			c := compare(records[i], records[j], field)
			if c == 0 {
				continue
			}
			if desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compare(a, b *core.Record, field string) int {
	switch av := a.Get(field).(type) {
	case float64:
		bv := b.GetFloat(field)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case types.DateTime:
		return av.Time().Compare(b.GetDateTime(field).Time())
	default:
		return strings.Compare(a.GetString(field), b.GetString(field))
	}
}

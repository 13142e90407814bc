package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magis-site/internal/backend/backendtest"
	"magis-site/internal/policy"
	"magis-site/internal/schema"
	"magis-site/internal/status"
	"magis-site/models"
)

func TestProductService_SoftDeleteHidesFromPublic(t *testing.T) {
	tables := backendtest.NewTables()
	service := NewProductService(tables, nil)
	ctx := context.Background()

	b, err := service.Create(ctx, models.Product{Name: "Caneca", Price: decimal.NewFromInt(30), Active: true, SortOrder: 2})
	require.NoError(t, err)
	_, err = service.Create(ctx, models.Product{Name: "Camiseta", Price: decimal.NewFromFloat(59.9), Active: true, SortOrder: 1})
	require.NoError(t, err)

	public, err := service.GetPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, "Camiseta", public[0].Name)

	require.NoError(t, service.Delete(ctx, b.ID))

	public, err = service.GetPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Camiseta", public[0].Name)

	all, err := service.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, service.Purge(ctx, b.ID))
	assert.Equal(t, 1, tables.Count(schema.Products))
}

func TestPostService_SlugAndPublication(t *testing.T) {
	tables := backendtest.NewTables()
	service := NewPostService(tables, nil)
	service.now = func() time.Time { return day(time.April, 2) }
	ctx := context.Background()

	p, err := service.Create(ctx, models.Post{Title: "Edição de Março!", Published: true})
	require.NoError(t, err)
	assert.Equal(t, "edicao-de-marco", p.Slug)
	require.NotNil(t, p.PublishedAt)
	assert.Equal(t, day(time.April, 2), p.PublishedAt.UTC())

	found, err := service.GetBySlug(ctx, "edicao-de-marco")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
}

func TestPostService_DraftsAreHidden(t *testing.T) {
	tables := backendtest.NewTables()
	service := NewPostService(tables, nil)
	ctx := context.Background()

	_, err := service.Create(ctx, models.Post{Title: "Rascunho"})
	require.NoError(t, err)

	_, err = service.GetBySlug(ctx, "rascunho")
	assert.ErrorIs(t, err, status.ErrNotFound)

	public, err := service.GetPublic(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, public)
}

func TestPostService_DuplicateSlug(t *testing.T) {
	tables := backendtest.NewTables()
	service := NewPostService(tables, nil)
	ctx := context.Background()

	first, err := service.Create(ctx, models.Post{Title: "Resultados"})
	require.NoError(t, err)

	_, err = service.Create(ctx, models.Post{Title: "Resultados"})
	var fe *models.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Fields, "slug")

	// saving a post keeps its own slug
	first.Excerpt = "Resumo"
	_, err = service.Update(ctx, first)
	assert.NoError(t, err)
}

func TestPostService_PublicOrderAndLimit(t *testing.T) {
	tables := backendtest.NewTables()
	service := NewPostService(tables, nil)
	ctx := context.Background()

	for i, title := range []string{"Um", "Dois", "Três"} {
		at := day(time.February, i+1)
		_, err := service.Create(ctx, models.Post{Title: title, Published: true, PublishedAt: &at})
		require.NoError(t, err)
	}

	posts, err := service.GetPublic(ctx, 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Três", posts[0].Title)
	assert.Equal(t, "Dois", posts[1].Title)
}

func TestStatisticService_MissingKeyReadsZero(t *testing.T) {
	service := NewStatisticService(backendtest.NewTables(), nil)

	st, err := service.GetByKey(context.Background(), models.StatDelegados)
	require.NoError(t, err)
	assert.Equal(t, models.StatDelegados, st.Key)
	assert.Zero(t, st.Value)
	assert.Empty(t, st.ID)

	set, err := service.GetSet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "R$ 0", set.Formatted(models.StatValoresArrecadados))
	assert.Equal(t, "0", set.Formatted(models.StatDelegados))
}

func TestStatisticService_Upsert(t *testing.T) {
	tables := backendtest.NewTables()
	notifier := &recordingNotifier{}
	service := NewStatisticService(tables, notifier)
	ctx := context.Background()

	created, err := service.Upsert(ctx, models.Statistic{Key: models.StatValoresArrecadados, Value: 1234.56})
	require.NoError(t, err)

	_, err = service.Upsert(ctx, models.Statistic{Key: models.StatValoresArrecadados, Value: 5000, Version: created.Version})
	require.NoError(t, err)
	assert.Equal(t, 1, tables.Count(schema.Statistics))

	set, err := service.GetSet(ctx)
	require.NoError(t, err)
	assert.Equal(t, "R$ 5.000", set.Formatted(models.StatValoresArrecadados))
	assert.Equal(t, []string{"statistics:created", "statistics:updated"}, notifier.actions())

	_, err = service.Upsert(ctx, models.Statistic{Key: models.StatValoresArrecadados, Value: 1, Version: created.Version})
	assert.ErrorIs(t, err, status.ErrConflict)
}

func TestStatisticService_UpsertEditChangesKeyInPlace(t *testing.T) {
	tables := backendtest.NewTables()
	service := NewStatisticService(tables, nil)
	ctx := context.Background()

	created, err := service.Upsert(ctx, models.Statistic{Key: models.StatDelegados, Value: 10})
	require.NoError(t, err)

	edited, err := service.Upsert(ctx, models.Statistic{
		ID: created.ID, Key: models.StatEventosRealizados, Value: 10, Version: created.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, edited.ID)
	assert.Equal(t, 1, tables.Count(schema.Statistics))

	old, err := service.GetByKey(ctx, models.StatDelegados)
	require.NoError(t, err)
	assert.Empty(t, old.ID)
}

func TestStatisticService_UpsertEditRefusesKeyOfAnotherRecord(t *testing.T) {
	tables := backendtest.NewTables()
	service := NewStatisticService(tables, nil)
	ctx := context.Background()

	delegados, err := service.Upsert(ctx, models.Statistic{Key: models.StatDelegados, Value: 10})
	require.NoError(t, err)
	_, err = service.Upsert(ctx, models.Statistic{Key: models.StatEventosRealizados, Value: 3})
	require.NoError(t, err)

	_, err = service.Upsert(ctx, models.Statistic{
		ID: delegados.ID, Key: models.StatEventosRealizados, Value: 10, Version: delegados.Version,
	})
	assert.ErrorIs(t, err, status.ErrInvalidInput)
	assert.NotErrorIs(t, err, status.ErrConflict)
	assert.Equal(t, 2, tables.Count(schema.Statistics))
}

func TestStatisticService_UpsertRejectsUnknownKey(t *testing.T) {
	service := NewStatisticService(backendtest.NewTables(), nil)

	_, err := service.Upsert(context.Background(), models.Statistic{Key: "visitantes", Value: 3})
	assert.ErrorIs(t, err, status.ErrInvalidInput)
}

func TestTeamService_PublicByRole(t *testing.T) {
	tables := backendtest.NewTables()
	service := NewTeamService(tables, nil)
	ctx := context.Background()

	tables.Seed(schema.TeamMembers, map[string]any{"name": "Bia", "role": models.RoleDiretoria, "active": true, "sort_order": 2})
	tables.Seed(schema.TeamMembers, map[string]any{"name": "Ana", "role": models.RoleDiretoria, "active": true, "sort_order": 1})
	tables.Seed(schema.TeamMembers, map[string]any{"name": "Caio", "role": models.RoleDiretoria, "active": false})
	tables.Seed(schema.TeamMembers, map[string]any{"name": "Duda", "role": models.RoleMentor, "active": true})

	public, err := service.GetPublicByRole(ctx, models.RoleDiretoria)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, "Ana", public[0].Name)
	assert.Equal(t, "Bia", public[1].Name)

	all, err := service.GetByRole(ctx, models.RoleDiretoria)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = service.GetByRole(ctx, "tesoureiro")
	assert.ErrorIs(t, err, status.ErrInvalidInput)
}

func TestSponsorService_GetPublic(t *testing.T) {
	tables := backendtest.NewTables()
	service := NewSponsorService(tables, nil)
	ctx := context.Background()

	_, err := service.Create(ctx, models.Sponsor{Name: "Livraria", Active: true})
	require.NoError(t, err)
	_, err = service.Create(ctx, models.Sponsor{Name: "Antigo", Active: false})
	require.NoError(t, err)

	public, err := service.GetPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Livraria", public[0].Name)
}

func TestStatisticSetCounters(t *testing.T) {
	service := NewStatisticService(backendtest.NewTables(), nil)
	ctx := context.Background()

	_, err := service.Upsert(ctx, models.Statistic{Key: models.StatDelegados, Value: 1520})
	require.NoError(t, err)

	set, err := service.GetSet(ctx)
	require.NoError(t, err)

	counters := set.Counters(time.Date(2025, time.November, 15, 12, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, "1.520", counters.Delegados)
	assert.Equal(t, 12, counters.Months)
	assert.Equal(t, policy.FormatInteger(12), counters.MesesDeAtuacao)
}

package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magis-site/internal/backend/backendtest"
	"magis-site/internal/schema"
	"magis-site/internal/services"
	"magis-site/models"
)

type countingToucher struct {
	calls atomic.Int32
}

func (c *countingToucher) Touch(context.Context) bool {
	c.calls.Add(1)
	return false
}

func newServices(tables *backendtest.Tables) Services {
	return Services{
		Events:       services.NewEventService(tables, nil),
		Statistics:   services.NewStatisticService(tables, nil),
		Products:     services.NewProductService(tables, nil),
		Posts:        services.NewPostService(tables, nil),
		Team:         services.NewTeamService(tables, nil),
		Sponsors:     services.NewSponsorService(tables, nil),
		Appointments: services.NewAppointmentService(tables, nil),
	}
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer("Academia MAGIS")
	require.NoError(t, err)
	return r
}

func newRequestEvent(method, target string, body io.Reader) (*core.RequestEvent, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Request = httptest.NewRequest(method, target, body)
	e.Response = rec
	return e, rec
}

func formEvent(target string, form url.Values) (*core.RequestEvent, *httptest.ResponseRecorder) {
	e, rec := newRequestEvent(http.MethodPost, target, strings.NewReader(form.Encode()))
	e.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e, rec
}

func setupPublicHandler(t *testing.T) (*PublicHandler, *backendtest.Tables, *countingToucher) {
	tables := backendtest.NewTables()
	toucher := &countingToucher{}
	h := NewPublicHandler(newRenderer(t), newServices(tables), toucher, time.UTC)
	h.now = func() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }
	return h, tables, toucher
}

func date(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 12, 0, 0, 0, time.UTC)
}

func TestNewRenderer_ParsesEveryPage(t *testing.T) {
	r := newRenderer(t)

	for _, page := range []string{
		"public/home.html", "public/about.html", "public/events.html", "public/products.html",
		"public/blog.html", "public/post.html", "public/team.html", "public/sponsors.html",
		"public/contact.html", "public/links.html", "public/not_found.html",
		"admin/login.html", "admin/dashboard.html", "admin/list.html", "admin/form.html", "admin/appointments.html",
	} {
		assert.Contains(t, r.pages, page)
	}
	assert.NotContains(t, r.pages, "admin/layout.html")
}

func TestPublicHandler_Home(t *testing.T) {
	h, tables, toucher := setupPublicHandler(t)

	tables.Seed(schema.Events, map[string]any{"title": "MAGIS MUN 2025", "status": models.EventUpcoming, "date": date(time.August, 20)})
	tables.Seed(schema.Events, map[string]any{"title": "Oficina de Oratória", "status": models.EventCompleted, "date": date(time.March, 2)})
	tables.Seed(schema.Events, map[string]any{"title": "Evento Cancelado", "status": models.EventCancelled, "date": date(time.July, 1)})
	tables.Seed(schema.Statistics, map[string]any{"key": models.StatDelegados, "value": 1520})
	tables.Seed(schema.Statistics, map[string]any{"key": models.StatValoresArrecadados, "value": 12345.67})
	tables.Seed(schema.Posts, map[string]any{"title": "Bastidores do MUN", "slug": "bastidores-do-mun", "published": true, "published_at": date(time.May, 1)})

	e, rec := newRequestEvent(http.MethodGet, "/", nil)
	require.NoError(t, h.Home(e))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "MAGIS MUN 2025")
	assert.Contains(t, body, "Oficina de Oratória")
	assert.NotContains(t, body, "Evento Cancelado")
	assert.Contains(t, body, "1.520")
	assert.Contains(t, body, "R$ 12.345")
	assert.Contains(t, body, "/blog/bastidores-do-mun")
	assert.Equal(t, int32(1), toucher.calls.Load())
}

func TestPublicHandler_HomeDegradesWhenBackendFails(t *testing.T) {
	h, tables, _ := setupPublicHandler(t)
	tables.Err = errors.New("backend unavailable")

	e, rec := newRequestEvent(http.MethodGet, "/", nil)
	require.NoError(t, h.Home(e))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "Nenhum evento programado")
	assert.Contains(t, body, "R$ 0")
}

func TestPublicHandler_EventsSingleEventHidesOthers(t *testing.T) {
	h, tables, _ := setupPublicHandler(t)
	tables.Seed(schema.Events, map[string]any{"title": "Único Evento", "status": models.EventUpcoming, "date": date(time.September, 5)})

	e, rec := newRequestEvent(http.MethodGet, "/eventos", nil)
	require.NoError(t, h.Events(e))

	body := rec.Body.String()
	assert.Contains(t, body, "Único Evento")
	assert.Contains(t, body, "card featured")
	assert.NotContains(t, body, "Outros eventos")
	assert.Contains(t, body, "Entre em contato")
}

func TestPublicHandler_Post(t *testing.T) {
	h, tables, _ := setupPublicHandler(t)
	tables.Seed(schema.Posts, map[string]any{
		"title": "Publicado", "slug": "publicado", "content": "Texto **forte**",
		"published": true, "published_at": date(time.April, 10),
	})
	tables.Seed(schema.Posts, map[string]any{"title": "Rascunho", "slug": "rascunho"})

	tests := []struct {
		slug     string
		expected int
		contains string
	}{
		{"publicado", http.StatusOK, "<strong>forte</strong>"},
		{"PUBLICADO", http.StatusOK, "Publicado"},
		{"rascunho", http.StatusNotFound, "Página não encontrada"},
		{"nao-existe", http.StatusNotFound, "Página não encontrada"},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			e, rec := newRequestEvent(http.MethodGet, "/blog/"+tt.slug, nil)
			e.Request.SetPathValue("slug", tt.slug)

			require.NoError(t, h.Post(e))
			assert.Equal(t, tt.expected, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestPublicHandler_TeamShowsOnlyActiveMembersOfRole(t *testing.T) {
	h, tables, _ := setupPublicHandler(t)
	tables.Seed(schema.TeamMembers, map[string]any{"name": "Ana Mentora", "role": models.RoleMentor, "active": true})
	tables.Seed(schema.TeamMembers, map[string]any{"name": "Bruno Inativo", "role": models.RoleMentor, "active": false})
	tables.Seed(schema.TeamMembers, map[string]any{"name": "Carla Diretora", "role": models.RoleDiretoria, "active": true})

	e, rec := newRequestEvent(http.MethodGet, "/mentores", nil)
	require.NoError(t, h.Team(models.RoleMentor, "Mentores", "")(e))

	body := rec.Body.String()
	assert.Contains(t, body, "Ana Mentora")
	assert.NotContains(t, body, "Bruno Inativo")
	assert.NotContains(t, body, "Carla Diretora")
}

func TestPublicHandler_LinksHasNoNavigation(t *testing.T) {
	h, tables, _ := setupPublicHandler(t)
	tables.Seed(schema.Events, map[string]any{"title": "MUN Jovem", "status": models.EventUpcoming, "date": date(time.October, 1)})

	e, rec := newRequestEvent(http.MethodGet, "/links", nil)
	require.NoError(t, h.Links(e))

	body := rec.Body.String()
	assert.Contains(t, body, "MUN Jovem")
	assert.Contains(t, body, "https://wa.me/")
	assert.NotContains(t, body, `<header class="site-header">`)
	assert.NotContains(t, body, "<nav>")

	e, rec = newRequestEvent(http.MethodGet, "/", nil)
	require.NoError(t, h.Home(e))
	assert.Contains(t, rec.Body.String(), `<header class="site-header">`)
}

func TestPublicHandler_ContactForm(t *testing.T) {
	h, _, _ := setupPublicHandler(t)

	e, rec := newRequestEvent(http.MethodGet, "/contato?enviado=1", nil)
	require.NoError(t, h.ContactForm(e))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Recebemos sua mensagem")
}

func TestPublicHandler_Contact(t *testing.T) {
	tests := []struct {
		name         string
		form         url.Values
		expectedCode int
		contains     string
		stored       int
	}{
		{
			name:         "valid request",
			form:         url.Values{"name": {"Maria"}, "email": {"Maria@Escola.com"}, "school": {"EE Central"}, "preferred_date": {"2025-08-01"}},
			expectedCode: http.StatusSeeOther,
			stored:       1,
		},
		{
			name:         "invalid email",
			form:         url.Values{"name": {"Maria"}, "email": {"maria@"}},
			expectedCode: http.StatusUnprocessableEntity,
			contains:     "deve ser um e-mail válido",
		},
		{
			name:         "invalid date",
			form:         url.Values{"name": {"Maria"}, "email": {"maria@escola.com"}, "preferred_date": {"01/08/2025"}},
			expectedCode: http.StatusUnprocessableEntity,
			contains:     "deve ser uma data válida",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, tables, _ := setupPublicHandler(t)

			e, rec := formEvent("/contato", tt.form)
			require.NoError(t, h.Contact(e))

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Equal(t, tt.stored, tables.Count(schema.Appointments))
			if tt.expectedCode == http.StatusSeeOther {
				assert.Equal(t, "/contato?enviado=1", rec.Header().Get("Location"))
				return
			}
			body := rec.Body.String()
			assert.Contains(t, body, tt.contains)
			assert.Contains(t, body, `value="Maria"`)
		})
	}
}

func TestPublicHandler_ContactBackendFailure(t *testing.T) {
	h, tables, _ := setupPublicHandler(t)
	tables.Err = errors.New("backend unavailable")

	e, rec := formEvent("/contato", url.Values{"name": {"Maria"}, "email": {"maria@escola.com"}})
	require.NoError(t, h.Contact(e))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Não foi possível enviar sua mensagem agora")
}

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
	"github.com/pocketbase/pocketbase/tools/router"

	"magis-site/internal/backend"
	"magis-site/internal/schema"
	"magis-site/internal/status"
	"magis-site/models"
	"magis-site/monitoring"
)

const (
	msgCheckFields = "Verifique os campos destacados."
	msgConflict    = "Este registro foi alterado em outra sessão. Recarregue a página para ver a versão atual."
	msgSaveFailed  = "Não foi possível salvar agora. Tente novamente em instantes."
	msgLoadFailed  = "Não foi possível carregar os dados agora."
)

// Uploader stores the images attached to admin forms.
type Uploader interface {
	Upload(file *filesystem.File) (string, error)
	PublicURL(key string) string
	KeyFromURL(url string) string
	Delete(key string) error
}

type AdminHandler struct {
	render    *Renderer
	svc       Services
	uploads   Uploader
	loc       *time.Location
	resources []adminResource
}

func NewAdminHandler(render *Renderer, svc Services, uploads Uploader, loc *time.Location) *AdminHandler {
	h := &AdminHandler{render: render, svc: svc, uploads: uploads, loc: loc}
	h.resources = []adminResource{
		h.eventResource(),
		h.productResource(),
		h.postResource(),
		h.teamResource(models.RoleDiretoria, "diretoria", "Diretoria", "membro da diretoria"),
		h.teamResource(models.RoleVoluntario, "voluntarios", "Voluntários", "voluntário"),
		h.teamResource(models.RoleMentor, "mentores", "Mentores", "mentor"),
		h.sponsorResource(),
		h.statisticResource(),
	}
	return h
}

// Register mounts the admin screens on g. The caller is expected to have
// bound the admin gate and CSRF protection on g.
func (h *AdminHandler) Register(g *router.RouterGroup[*core.RequestEvent]) {
	g.GET("", h.Dashboard)
	g.GET("/{$}", h.Dashboard)
	g.GET("/agendamentos", h.Appointments)
	g.POST("/agendamentos/{id}/status", h.AppointmentStatus)
	for _, r := range h.resources {
		r.register(g, h)
	}
}

type adminResource interface {
	register(g *router.RouterGroup[*core.RequestEvent], h *AdminHandler)
}

// resource describes one admin CRUD screen over a content type.
type resource[T any] struct {
	slug     string
	title    string
	singular string
	table    string
	columns  []string
	blank    T

	list     func(ctx context.Context) ([]T, error)
	get      func(ctx context.Context, id string) (T, error)
	create   func(ctx context.Context, item T) (T, error)
	update   func(ctx context.Context, item T) (T, error)
	delete   func(ctx context.Context, id string) error
	parse    func(f *formReader) T
	fields   func(item T) []FormField
	row      func(item T) []string
	identify func(item T) (id, version string)
	bind     func(item T, id, version string) T
}

type listRow struct {
	ID    string
	Cells []string
}

type listData struct {
	Slug     string
	Title    string
	Singular string
	Columns  []string
	Rows     []listRow
	Error    string
}

type formData struct {
	Slug     string
	Title    string
	Singular string
	Action   string
	ID       string
	Version  string
	Fields   []FormField
	Error    string
}

func (r *resource[T]) register(g *router.RouterGroup[*core.RequestEvent], h *AdminHandler) {
	base := "/" + r.slug
	g.GET(base, r.index(h))
	g.GET(base+"/novo", r.newForm(h))
	g.POST(base+"/novo", r.save(h))
	g.GET(base+"/{id}/editar", r.editForm(h))
	g.POST(base+"/{id}/editar", r.save(h))
	g.POST(base+"/{id}/excluir", r.remove(h))
}

func (r *resource[T]) index(h *AdminHandler) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data := listData{Slug: r.slug, Title: r.title, Singular: r.singular, Columns: r.columns}

		items, err := r.list(e.Request.Context())
		if err != nil {
			slog.Error("Failed to list records", "error", err, "table", r.table)
			data.Error = msgLoadFailed
			return h.render.Render(e, http.StatusServiceUnavailable, "admin/list.html", View{Title: r.title, Nav: r.slug, Data: data})
		}

		for _, item := range items {
			id, _ := r.identify(item)
			data.Rows = append(data.Rows, listRow{ID: id, Cells: r.row(item)})
		}
		return h.render.Render(e, http.StatusOK, "admin/list.html", View{Title: r.title, Nav: r.slug, Data: data})
	}
}

func (r *resource[T]) form(item T, errs map[string]string, msg string) formData {
	id, version := r.identify(item)
	action := "/admin/" + r.slug + "/novo"
	if id != "" {
		action = "/admin/" + r.slug + "/" + url.PathEscape(id) + "/editar"
	}

	fields := r.fields(item)
	for i := range fields {
		fields[i].Error = errs[fields[i].Name]
	}
	return formData{
		Slug:     r.slug,
		Title:    r.title,
		Singular: r.singular,
		Action:   action,
		ID:       id,
		Version:  version,
		Fields:   fields,
		Error:    msg,
	}
}

func (r *resource[T]) newForm(h *AdminHandler) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return h.render.Render(e, http.StatusOK, "admin/form.html", View{
			Title: "Novo " + r.singular,
			Nav:   r.slug,
			Data:  r.form(r.blank, nil, ""),
		})
	}
}

func (r *resource[T]) editForm(h *AdminHandler) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		item, err := r.get(e.Request.Context(), e.Request.PathValue("id"))
		if errors.Is(err, status.ErrNotFound) {
			return h.render.NotFound(e)
		}
		if err != nil {
			slog.Error("Failed to load record", "error", err, "table", r.table)
			return e.Error(http.StatusServiceUnavailable, msgLoadFailed, nil)
		}
		return h.render.Render(e, http.StatusOK, "admin/form.html", View{
			Title: "Editar " + r.singular,
			Nav:   r.slug,
			Data:  r.form(item, nil, ""),
		})
	}
}

// save handles both the create and the edit form. The hidden "version"
// field makes a stale edit fail with a conflict instead of overwriting.
func (r *resource[T]) save(h *AdminHandler) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctx := e.Request.Context()
		id := e.Request.PathValue("id")
		action := writeAction(id)

		if err := parseAdminForm(e.Request); err != nil {
			return e.BadRequestError("Formulário inválido.", err)
		}
		values := e.Request.PostForm

		var previous []FormField
		if id != "" {
			current, err := r.get(ctx, id)
			if errors.Is(err, status.ErrNotFound) {
				return h.render.NotFound(e)
			}
			if err == nil {
				previous = r.fields(current)
			}
		}

		uploaded, uploadErrs := h.applyUploads(e, r.fields(r.blank), values)

		f := newFormReader(values, h.loc)
		item := r.bind(r.parse(f), id, values.Get("version"))
		for k, v := range uploadErrs {
			f.errors[k] = v
		}

		var err error
		if len(f.errors) > 0 {
			err = f.err(nil)
		} else if id == "" {
			item, err = r.create(ctx, item)
		} else {
			item, err = r.update(ctx, item)
		}
		monitoring.TrackAdminWrite(r.table, action, err)

		if err != nil {
			h.discard(uploaded)
			if errors.Is(err, status.ErrNotFound) {
				return h.render.NotFound(e)
			}
			// Keep what the user typed, including the version they edited.
			item = r.bind(item, id, values.Get("version"))
			errs, msg := describeWriteError(err, r.table)
			return h.render.Render(e, http.StatusUnprocessableEntity, "admin/form.html", View{
				Title: r.singular,
				Nav:   r.slug,
				Data:  r.form(item, errs, msg),
			})
		}

		h.discardReplaced(previous, r.fields(item))
		return e.Redirect(http.StatusSeeOther, "/admin/"+r.slug)
	}
}

func (r *resource[T]) remove(h *AdminHandler) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		err := r.delete(e.Request.Context(), e.Request.PathValue("id"))
		monitoring.TrackAdminWrite(r.table, "delete", err)
		if errors.Is(err, status.ErrNotFound) {
			return h.render.NotFound(e)
		}
		if err != nil {
			slog.Error("Failed to delete record", "error", err, "table", r.table)
			return e.Error(http.StatusServiceUnavailable, msgSaveFailed, nil)
		}
		return e.Redirect(http.StatusSeeOther, "/admin/"+r.slug)
	}
}

func writeAction(id string) string {
	if id == "" {
		return "create"
	}
	return "update"
}

func describeWriteError(err error, table string) (map[string]string, string) {
	var fe *models.FieldError
	switch {
	case errors.As(err, &fe):
		return fe.Fields, msgCheckFields
	case errors.Is(err, status.ErrConflict):
		return nil, msgConflict
	default:
		slog.Error("Failed to save record", "error", err, "table", table)
		return nil, msgSaveFailed
	}
}

func parseAdminForm(r *http.Request) error {
	err := r.ParseMultipartForm(backend.MaxUploadSize)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// applyUploads stores the files sent for the image fields and points the
// field values at them. "<name>_remove" clears the image.
func (h *AdminHandler) applyUploads(e *core.RequestEvent, fields []FormField, values url.Values) ([]string, map[string]string) {
	var keys []string
	errs := map[string]string{}

	for _, field := range fields {
		if field.Type != "image" {
			continue
		}
		if values.Get(field.Name+"_remove") == "on" {
			values.Set(field.Name, "")
		}
		if e.Request.MultipartForm == nil || h.uploads == nil {
			continue
		}

		files, err := e.FindUploadedFiles(field.Name + "_file")
		if err != nil || len(files) == 0 {
			continue
		}
		file := files[0]
		if file.Size > backend.MaxUploadSize {
			errs[field.Name] = "a imagem deve ter no máximo 5 MB"
			continue
		}
		if !backend.IsImage(file) {
			errs[field.Name] = "deve ser uma imagem JPEG, PNG, WebP ou GIF"
			continue
		}

		key, err := h.uploads.Upload(file)
		if err != nil {
			slog.Error("Failed to upload image", "error", err, "field", field.Name)
			errs[field.Name] = "não foi possível enviar a imagem"
			continue
		}
		keys = append(keys, key)
		values.Set(field.Name, h.uploads.PublicURL(key))
	}
	return keys, errs
}

func (h *AdminHandler) discard(keys []string) {
	for _, key := range keys {
		if err := h.uploads.Delete(key); err != nil {
			slog.Warn("Failed to delete unused upload", "error", err, "key", key)
		}
	}
}

// discardReplaced removes stored images that a successful save no longer
// references.
func (h *AdminHandler) discardReplaced(before, after []FormField) {
	if h.uploads == nil {
		return
	}
	now := map[string]string{}
	for _, f := range after {
		now[f.Name] = f.Value
	}
	for _, f := range before {
		if f.Type != "image" || f.Value == "" || f.Value == now[f.Name] {
			continue
		}
		if key := h.uploads.KeyFromURL(f.Value); key != "" {
			h.discard([]string{key})
		}
	}
}

func (h *AdminHandler) eventResource() *resource[models.Event] {
	s := h.svc.Events
	return &resource[models.Event]{
		slug: "eventos", title: "Eventos", singular: "evento", table: schema.Events,
		columns: []string{"Título", "Data", "Situação", "Local"},
		blank:   models.Event{Status: models.EventUpcoming},
		list:    s.GetAll,
		get:     s.GetByID,
		create:  s.Create,
		update:  s.Update,
		delete:  s.Delete,
		parse:   parseEvent,
		fields:  func(e models.Event) []FormField { return eventFields(e, h.loc) },
		row:     eventRow,
		identify: func(e models.Event) (string, string) {
			return e.ID, e.Version
		},
		bind: func(e models.Event, id, version string) models.Event {
			e.ID, e.Version = id, version
			return e
		},
	}
}

func (h *AdminHandler) productResource() *resource[models.Product] {
	s := h.svc.Products
	return &resource[models.Product]{
		slug: "produtos", title: "Produtos", singular: "produto", table: schema.Products,
		columns: []string{"Nome", "Preço", "Categoria", "À venda"},
		blank:   models.Product{Active: true},
		list:    s.GetAll,
		get:     s.GetByID,
		create:  s.Create,
		update:  s.Update,
		delete:  s.Delete,
		parse:   parseProduct,
		fields:  productFields,
		row:     productRow,
		identify: func(p models.Product) (string, string) {
			return p.ID, p.Version
		},
		bind: func(p models.Product, id, version string) models.Product {
			p.ID, p.Version = id, version
			return p
		},
	}
}

func (h *AdminHandler) postResource() *resource[models.Post] {
	s := h.svc.Posts
	return &resource[models.Post]{
		slug: "publicacoes", title: "Publicações", singular: "publicação", table: schema.Posts,
		columns: []string{"Título", "Endereço", "Situação", "Publicado em"},
		list:    s.GetAll,
		get:     s.GetByID,
		create:  s.Create,
		update:  s.Update,
		delete:  s.Delete,
		parse:   parsePost,
		fields:  func(p models.Post) []FormField { return postFields(p, h.loc) },
		row:     postRow,
		identify: func(p models.Post) (string, string) {
			return p.ID, p.Version
		},
		bind: func(p models.Post, id, version string) models.Post {
			p.ID, p.Version = id, version
			return p
		},
	}
}

// teamResource scopes the team table to one role. Records of another role
// read as missing.
func (h *AdminHandler) teamResource(role, slug, title, singular string) *resource[models.TeamMember] {
	s := h.svc.Team
	return &resource[models.TeamMember]{
		slug: slug, title: title, singular: singular, table: schema.TeamMembers,
		columns: []string{"Nome", "Cargo", "Ordem", "Ativo"},
		blank:   models.TeamMember{Role: role, Active: true},
		list: func(ctx context.Context) ([]models.TeamMember, error) {
			return s.GetByRole(ctx, role)
		},
		get: func(ctx context.Context, id string) (models.TeamMember, error) {
			m, err := s.GetByID(ctx, id)
			if err == nil && m.Role != role {
				return models.TeamMember{}, status.ErrNotFound
			}
			return m, err
		},
		create: s.Create,
		update: s.Update,
		delete: s.Delete,
		parse: func(f *formReader) models.TeamMember {
			return parseTeamMember(f, role)
		},
		fields: teamFields,
		row:    teamRow,
		identify: func(m models.TeamMember) (string, string) {
			return m.ID, m.Version
		},
		bind: func(m models.TeamMember, id, version string) models.TeamMember {
			m.ID, m.Version = id, version
			return m
		},
	}
}

func (h *AdminHandler) sponsorResource() *resource[models.Sponsor] {
	s := h.svc.Sponsors
	return &resource[models.Sponsor]{
		slug: "patrocinadores", title: "Patrocinadores", singular: "patrocinador", table: schema.Sponsors,
		columns: []string{"Nome", "Cota", "Ordem", "Ativo"},
		blank:   models.Sponsor{Active: true},
		list:    s.GetAll,
		get:     s.GetByID,
		create:  s.Create,
		update:  s.Update,
		delete:  s.Delete,
		parse:   parseSponsor,
		fields:  sponsorFields,
		row:     sponsorRow,
		identify: func(sp models.Sponsor) (string, string) {
			return sp.ID, sp.Version
		},
		bind: func(sp models.Sponsor, id, version string) models.Sponsor {
			sp.ID, sp.Version = id, version
			return sp
		},
	}
}

// statisticResource edits the counters. Saving is keyed: a new record for
// a key that already exists updates it.
func (h *AdminHandler) statisticResource() *resource[models.Statistic] {
	s := h.svc.Statistics
	return &resource[models.Statistic]{
		slug: "status", title: "Números", singular: "indicador", table: schema.Statistics,
		columns: []string{"Indicador", "Valor", "Rótulo"},
		list:    s.GetAll,
		get:     s.GetByID,
		create:  s.Upsert,
		update:  s.Upsert,
		delete:  s.Delete,
		parse:   parseStatistic,
		fields:  statisticFields,
		row:     statisticRow,
		identify: func(st models.Statistic) (string, string) {
			return st.ID, st.Version
		},
		bind: func(st models.Statistic, id, version string) models.Statistic {
			st.ID, st.Version = id, version
			return st
		},
	}
}

type dashboardCard struct {
	Label string
	Count string
	Href  string
}

type dashboardData struct {
	Cards   []dashboardCard
	Pending int
}

func count[T any](ctx context.Context, table string, fn func(context.Context) ([]T, error)) string {
	items, err := fn(ctx)
	if err != nil {
		slog.Error("Failed to count records", "error", err, "table", table)
		return "–"
	}
	return itoa(len(items))
}

func (h *AdminHandler) Dashboard(e *core.RequestEvent) error {
	ctx := e.Request.Context()

	pending, err := h.svc.Appointments.CountPending(ctx)
	if err != nil {
		slog.Error("Failed to count pending appointments", "error", err)
	}

	data := dashboardData{
		Pending: pending,
		Cards: []dashboardCard{
			{Label: "Eventos", Count: count(ctx, schema.Events, h.svc.Events.GetAll), Href: "/admin/eventos"},
			{Label: "Publicações", Count: count(ctx, schema.Posts, h.svc.Posts.GetAll), Href: "/admin/publicacoes"},
			{Label: "Produtos", Count: count(ctx, schema.Products, h.svc.Products.GetAll), Href: "/admin/produtos"},
			{Label: "Equipe", Count: count(ctx, schema.TeamMembers, h.svc.Team.GetAll), Href: "/admin/diretoria"},
			{Label: "Patrocinadores", Count: count(ctx, schema.Sponsors, h.svc.Sponsors.GetAll), Href: "/admin/patrocinadores"},
			{Label: "Agendamentos", Count: count(ctx, schema.Appointments, h.svc.Appointments.GetAll), Href: "/admin/agendamentos"},
		},
	}
	return h.render.Render(e, http.StatusOK, "admin/dashboard.html", View{Title: "Painel", Nav: "dashboard", Data: data})
}

type appointmentsData struct {
	Appointments []models.Appointment
	Statuses     []Option
	Error        string
}

func (h *AdminHandler) appointmentsView(ctx context.Context, msg string) appointmentsData {
	data := appointmentsData{Statuses: options(appointmentStatusLabels, models.AppointmentStatuses), Error: msg}
	items, err := h.svc.Appointments.GetAll(ctx)
	if err != nil {
		slog.Error("Failed to list appointments", "error", err)
		if data.Error == "" {
			data.Error = msgLoadFailed
		}
		return data
	}
	data.Appointments = items
	return data
}

func (h *AdminHandler) Appointments(e *core.RequestEvent) error {
	data := h.appointmentsView(e.Request.Context(), "")
	return h.render.Render(e, http.StatusOK, "admin/appointments.html", View{Title: "Agendamentos", Nav: "agendamentos", Data: data})
}

func (h *AdminHandler) AppointmentStatus(e *core.RequestEvent) error {
	if err := e.Request.ParseForm(); err != nil {
		return e.BadRequestError("Formulário inválido.", err)
	}
	ctx := e.Request.Context()

	_, err := h.svc.Appointments.UpdateStatus(ctx, e.Request.PathValue("id"), e.Request.PostForm.Get("status"))
	monitoring.TrackAdminWrite(schema.Appointments, "status", err)
	if errors.Is(err, status.ErrNotFound) {
		return h.render.NotFound(e)
	}
	if err != nil {
		_, msg := describeWriteError(err, schema.Appointments)
		return h.render.Render(e, http.StatusUnprocessableEntity, "admin/appointments.html", View{
			Title: "Agendamentos",
			Nav:   "agendamentos",
			Data:  h.appointmentsView(ctx, msg),
		})
	}
	return e.Redirect(http.StatusSeeOther, "/admin/agendamentos")
}

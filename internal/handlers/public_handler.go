package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"magis-site/internal/policy"
	"magis-site/internal/services"
	"magis-site/internal/status"
	"magis-site/models"
	"magis-site/monitoring"
)

// Toucher is told about every public page load.
type Toucher interface {
	Touch(ctx context.Context) bool
}

// Services groups the domain modules the handlers read and write.
type Services struct {
	Events       *services.EventService
	Statistics   *services.StatisticService
	Products     *services.ProductService
	Posts        *services.PostService
	Team         *services.TeamService
	Sponsors     *services.SponsorService
	Appointments *services.AppointmentService
}

type PublicHandler struct {
	render    *Renderer
	svc       Services
	heartbeat Toucher
	loc       *time.Location
	now       func() time.Time
}

func NewPublicHandler(render *Renderer, svc Services, heartbeat Toucher, loc *time.Location) *PublicHandler {
	return &PublicHandler{render: render, svc: svc, heartbeat: heartbeat, loc: loc, now: time.Now}
}

// load runs fn and degrades to the zero value when the backend fails, so a
// public page always renders.
func load[T any](ctx context.Context, page, source string, fn func(context.Context) (T, error)) T {
	v, err := fn(ctx)
	if err != nil {
		slog.Error("Failed to load page data", "error", err, "page", page, "source", source)
		monitoring.TrackLoadFailure(page, source)
		var zero T
		return zero
	}
	return v
}

// visit records the page view and lets the heartbeat catch up after a
// quiet period.
func (h *PublicHandler) visit(e *core.RequestEvent, page string) func() {
	if h.heartbeat != nil {
		h.heartbeat.Touch(e.Request.Context())
	}
	start := time.Now()
	return func() { monitoring.TrackPageView(page, time.Since(start)) }
}

type homeData struct {
	Events   policy.EventsView
	Counters policy.Counters
	Posts    []models.Post
	Sponsors []models.Sponsor
}

func (h *PublicHandler) Home(e *core.RequestEvent) error {
	defer h.visit(e, "home")()
	ctx := e.Request.Context()

	events := load(ctx, "home", "events", h.svc.Events.GetPublic)
	stats := load(ctx, "home", "statistics", h.svc.Statistics.GetSet)
	posts := load(ctx, "home", "posts", func(ctx context.Context) ([]models.Post, error) {
		return h.svc.Posts.GetPublic(ctx, 3)
	})
	sponsors := load(ctx, "home", "sponsors", h.svc.Sponsors.GetPublic)

	return h.render.Render(e, http.StatusOK, "public/home.html", View{
		Title: "Início",
		Nav:   "home",
		Data: homeData{
			Events:   policy.SplitFeatured(events),
			Counters: stats.Counters(h.now(), h.loc),
			Posts:    posts,
			Sponsors: sponsors,
		},
	})
}

type aboutData struct {
	Counters policy.Counters
	Board    []models.TeamMember
}

func (h *PublicHandler) About(e *core.RequestEvent) error {
	defer h.visit(e, "about")()
	ctx := e.Request.Context()

	stats := load(ctx, "about", "statistics", h.svc.Statistics.GetSet)
	board := load(ctx, "about", "team", func(ctx context.Context) ([]models.TeamMember, error) {
		return h.svc.Team.GetPublicByRole(ctx, models.RoleDiretoria)
	})

	return h.render.Render(e, http.StatusOK, "public/about.html", View{
		Title: "Sobre",
		Nav:   "about",
		Data:  aboutData{Counters: stats.Counters(h.now(), h.loc), Board: board},
	})
}

func (h *PublicHandler) Events(e *core.RequestEvent) error {
	defer h.visit(e, "events")()

	events := load(e.Request.Context(), "events", "events", h.svc.Events.GetPublic)
	return h.render.Render(e, http.StatusOK, "public/events.html", View{
		Title: "Eventos",
		Nav:   "events",
		Data:  policy.SplitFeatured(events),
	})
}

func (h *PublicHandler) Products(e *core.RequestEvent) error {
	defer h.visit(e, "products")()

	products := load(e.Request.Context(), "products", "products", h.svc.Products.GetPublic)
	return h.render.Render(e, http.StatusOK, "public/products.html", View{
		Title: "Produtos",
		Nav:   "products",
		Data:  products,
	})
}

func (h *PublicHandler) Blog(e *core.RequestEvent) error {
	defer h.visit(e, "blog")()

	posts := load(e.Request.Context(), "blog", "posts", func(ctx context.Context) ([]models.Post, error) {
		return h.svc.Posts.GetPublic(ctx, 0)
	})
	return h.render.Render(e, http.StatusOK, "public/blog.html", View{
		Title: "Publicações",
		Nav:   "blog",
		Data:  posts,
	})
}

func (h *PublicHandler) Post(e *core.RequestEvent) error {
	defer h.visit(e, "post")()

	post, err := h.svc.Posts.GetBySlug(e.Request.Context(), strings.ToLower(e.Request.PathValue("slug")))
	if errors.Is(err, status.ErrNotFound) {
		return h.render.NotFound(e)
	}
	if err != nil {
		slog.Error("Failed to load post", "error", err, "slug", e.Request.PathValue("slug"))
		monitoring.TrackLoadFailure("post", "posts")
		return h.render.NotFound(e)
	}

	return h.render.Render(e, http.StatusOK, "public/post.html", View{
		Title: post.Title,
		Nav:   "blog",
		Data:  post,
	})
}

type teamData struct {
	Heading string
	Intro   string
	Members []models.TeamMember
}

// Team serves one of the team pages: the board, the volunteers or the
// mentors.
func (h *PublicHandler) Team(role, heading, intro string) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		defer h.visit(e, "team_"+role)()

		members := load(e.Request.Context(), "team_"+role, "team", func(ctx context.Context) ([]models.TeamMember, error) {
			return h.svc.Team.GetPublicByRole(ctx, role)
		})
		return h.render.Render(e, http.StatusOK, "public/team.html", View{
			Title: heading,
			Nav:   "team",
			Data:  teamData{Heading: heading, Intro: intro, Members: members},
		})
	}
}

func (h *PublicHandler) Sponsors(e *core.RequestEvent) error {
	defer h.visit(e, "sponsors")()

	sponsors := load(e.Request.Context(), "sponsors", "sponsors", h.svc.Sponsors.GetPublic)
	return h.render.Render(e, http.StatusOK, "public/sponsors.html", View{
		Title: "Patrocinadores",
		Nav:   "sponsors",
		Data:  sponsors,
	})
}

func (h *PublicHandler) Links(e *core.RequestEvent) error {
	defer h.visit(e, "links")()

	events := load(e.Request.Context(), "links", "events", h.svc.Events.GetPublic)
	return h.render.Render(e, http.StatusOK, "public/links.html", View{
		Title: "Links",
		Data:  policy.Upcoming(events, 3),
	})
}

type contactData struct {
	Form   models.Appointment
	Date   string
	Errors map[string]string
	Error  string
	Sent   bool
}

func (h *PublicHandler) ContactForm(e *core.RequestEvent) error {
	defer h.visit(e, "contact")()

	return h.render.Render(e, http.StatusOK, "public/contact.html", View{
		Title: "Contato",
		Nav:   "contact",
		Data:  contactData{Sent: e.Request.URL.Query().Get("enviado") == "1"},
	})
}

// Contact stores an appointment request from the contact form.
func (h *PublicHandler) Contact(e *core.RequestEvent) error {
	if err := e.Request.ParseForm(); err != nil {
		return e.BadRequestError("Formulário inválido.", err)
	}
	form := e.Request.PostForm

	a := models.Appointment{
		Name:    strings.TrimSpace(form.Get("name")),
		Email:   strings.TrimSpace(form.Get("email")),
		Phone:   strings.TrimSpace(form.Get("phone")),
		School:  strings.TrimSpace(form.Get("school")),
		Message: strings.TrimSpace(form.Get("message")),
	}
	data := contactData{Form: a, Date: form.Get("preferred_date")}

	preferred, err := parseDate(data.Date, h.loc)
	if err != nil {
		data.Errors = map[string]string{"preferred_date": "deve ser uma data válida"}
		return h.render.Render(e, http.StatusUnprocessableEntity, "public/contact.html", View{Title: "Contato", Nav: "contact", Data: data})
	}
	a.PreferredDate = preferred

	if _, err := h.svc.Appointments.Create(e.Request.Context(), a); err != nil {
		var fe *models.FieldError
		if errors.As(err, &fe) {
			data.Errors = fe.Fields
		} else {
			slog.Error("Failed to create appointment", "error", err)
			data.Error = "Não foi possível enviar sua mensagem agora. Tente novamente ou fale conosco pelo WhatsApp."
		}
		return h.render.Render(e, http.StatusUnprocessableEntity, "public/contact.html", View{Title: "Contato", Nav: "contact", Data: data})
	}

	return e.Redirect(http.StatusSeeOther, "/contato?enviado=1")
}

// parseDate reads a yyyy-mm-dd form value as midnight in loc. Empty input
// gives nil.
func parseDate(value string, loc *time.Location) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

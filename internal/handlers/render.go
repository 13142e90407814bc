package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/gorilla/csrf"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"magis-site/internal/backend"
	"magis-site/internal/policy"
	"magis-site/models"
	"magis-site/security"
	"magis-site/utils"
)

//go:embed templates
var templateFS embed.FS

var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

var eventStatusLabels = map[string]string{
	models.EventUpcoming:  "Em breve",
	models.EventOngoing:   "Acontecendo",
	models.EventCompleted: "Realizado",
	models.EventCancelled: "Cancelado",
}

var appointmentStatusLabels = map[string]string{
	models.AppointmentPending:   "Pendente",
	models.AppointmentConfirmed: "Confirmado",
	models.AppointmentCancelled: "Cancelado",
}

func label(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

var funcMap = template.FuncMap{
	"eventDate": policy.FormatEventDate,
	"shortDate": policy.FormatShortDate,
	"price":     policy.FormatPrice,
	"optPrice": func(d *decimal.Decimal) string {
		if d == nil || d.IsZero() {
			return "Gratuito"
		}
		return policy.FormatPrice(*d)
	},
	"markdown":         renderMarkdown,
	"whatsapp":         utils.WhatsAppLink,
	"eventStatus":      func(s string) string { return label(eventStatusLabels, s) },
	"appointmentLabel": func(s string) string { return label(appointmentStatusLabels, s) },
	"optDate": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return policy.FormatShortDate(*t)
	},
}

// View is what every template receives.
type View struct {
	Title      string
	Nav        string
	SiteName   string
	CSRFToken  string
	CSRFField  string
	AdminEmail string
	Year       int
	Data       any
}

// Renderer holds the parsed pages. Public pages share layout.html, admin
// pages share admin/layout.html, and pages listed in bare render without
// navigation.
type Renderer struct {
	pages    map[string]*template.Template
	siteName string
	now      func() time.Time
}

var bare = map[string]bool{"public/links.html": true}

func NewRenderer(siteName string) (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}, siteName: siteName, now: time.Now}

	for _, dir := range []string{"public", "admin"} {
		files, err := fs.Glob(templateFS, "templates/"+dir+"/*.html")
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			name := dir + "/" + path.Base(file)
			if name == "admin/layout.html" {
				continue
			}

			layout := "templates/layout.html"
			switch {
			case dir == "admin":
				layout = "templates/admin/layout.html"
			case bare[name]:
				layout = "templates/bare.html"
			}

			tpl, err := template.New(path.Base(layout)).Funcs(funcMap).ParseFS(templateFS, layout, "templates/partials/*.html", file)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", name, err)
			}
			r.pages[name] = tpl
		}
	}
	return r, nil
}

// Render writes page with status. view.Data carries the page specific data.
func (r *Renderer) Render(e *core.RequestEvent, status int, page string, view View) error {
	tpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("render: unknown page %s", page)
	}

	view.SiteName = r.siteName
	view.Year = r.now().Year()
	if view.CSRFToken == "" {
		view.CSRFToken = csrf.Token(e.Request)
	}
	view.CSRFField = security.CSRFFieldName
	if email, ok := backend.CurrentEmail(e); ok {
		view.AdminEmail = email
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, view); err != nil {
		slog.Error("Failed to render page", "error", err, "page", page)
		return e.InternalServerError("", err)
	}

	e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	e.Response.WriteHeader(status)
	_, err := e.Response.Write(buf.Bytes())
	return err
}

func (r *Renderer) NotFound(e *core.RequestEvent) error {
	return r.Render(e, http.StatusNotFound, "public/not_found.html", View{Title: "Página não encontrada"})
}

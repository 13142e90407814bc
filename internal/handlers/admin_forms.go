package handlers

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"magis-site/internal/policy"
	"magis-site/models"
)

// FormField describes one input of an admin form.
type FormField struct {
	Name     string
	Label    string
	Type     string // text, textarea, markdown, date, number, money, select, checkbox, image, url, email
	Value    string
	Checked  bool
	Options  []Option
	Required bool
	Help     string
	Error    string
}

type Option struct {
	Value string
	Label string
}

func options(labels map[string]string, keys []string) []Option {
	out := make([]Option, 0, len(keys))
	for _, k := range keys {
		out = append(out, Option{Value: k, Label: label(labels, k)})
	}
	return out
}

// formReader collects parse errors while reading typed values out of a
// submitted form.
type formReader struct {
	values url.Values
	loc    *time.Location
	errors map[string]string
}

func newFormReader(values url.Values, loc *time.Location) *formReader {
	return &formReader{values: values, loc: loc, errors: map[string]string{}}
}

func (f *formReader) text(name string) string {
	return strings.TrimSpace(f.values.Get(name))
}

func (f *formReader) bool(name string) bool {
	switch f.values.Get(name) {
	case "on", "true", "1":
		return true
	}
	return false
}

func (f *formReader) int(name string) int {
	v := f.text(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.errors[name] = "deve ser um número inteiro"
	}
	return n
}

func (f *formReader) float(name string) float64 {
	v := strings.ReplaceAll(f.text(name), ",", ".")
	if v == "" {
		return 0
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		f.errors[name] = "deve ser um número"
	}
	return n
}

// money accepts "1234,50", "1.234,50" and "1234.50".
func (f *formReader) money(name string) *decimal.Decimal {
	v := f.text(name)
	if v == "" {
		return nil
	}
	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		f.errors[name] = "deve ser um valor em reais"
		return nil
	}
	return &d
}

func (f *formReader) date(name string) *time.Time {
	t, err := parseDate(f.values.Get(name), f.loc)
	if err != nil {
		f.errors[name] = "deve ser uma data válida"
	}
	return t
}

// err merges the parse errors into the model's validation error.
func (f *formReader) err(validation error) error {
	if len(f.errors) == 0 {
		return validation
	}
	fe := &models.FieldError{Fields: f.errors}
	if validation != nil {
		if ve, ok := validation.(*models.FieldError); ok {
			for k, v := range ve.Fields {
				if _, taken := fe.Fields[k]; !taken {
					fe.Fields[k] = v
				}
			}
		}
	}
	return fe
}

func inputDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func inputOptDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return inputDate(*t)
}

func inputMoney(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func eventFields(e models.Event, loc *time.Location) []FormField {
	date := e.Date
	if !date.IsZero() {
		date = date.In(loc)
	}
	var deadline *time.Time
	if e.RegistrationDeadline != nil {
		d := e.RegistrationDeadline.In(loc)
		deadline = &d
	}
	return []FormField{
		{Name: "title", Label: "Título", Type: "text", Value: e.Title, Required: true},
		{Name: "date", Label: "Data", Type: "date", Value: inputDate(date), Required: true},
		{Name: "status", Label: "Situação", Type: "select", Value: e.Status, Options: options(eventStatusLabels, models.EventStatuses), Required: true},
		{Name: "location", Label: "Local", Type: "text", Value: e.Location},
		{Name: "participants", Label: "Participantes", Type: "text", Value: e.Participants, Help: "Ex.: 120 delegados de 15 escolas"},
		{Name: "category", Label: "Categoria", Type: "text", Value: e.Category},
		{Name: "price", Label: "Valor da inscrição", Type: "money", Value: inputMoney(e.Price), Help: "Deixe em branco para eventos gratuitos"},
		{Name: "registration_deadline", Label: "Inscrições até", Type: "date", Value: inputOptDate(deadline)},
		{Name: "image_url", Label: "Imagem", Type: "image", Value: e.ImageURL},
		{Name: "description", Label: "Descrição", Type: "markdown", Value: e.Description},
	}
}

func parseEvent(f *formReader) models.Event {
	e := models.Event{
		Title:        f.text("title"),
		Status:       f.text("status"),
		Location:     f.text("location"),
		Participants: f.text("participants"),
		Category:     f.text("category"),
		Price:        f.money("price"),
		ImageURL:     f.text("image_url"),
		Description:  f.text("description"),
	}
	if d := f.date("date"); d != nil {
		e.Date = *d
	}
	e.RegistrationDeadline = f.date("registration_deadline")
	return e
}

func eventRow(e models.Event) []string {
	return []string{e.Title, policy.FormatShortDate(e.Date), label(eventStatusLabels, e.Status), e.Location}
}

func productFields(p models.Product) []FormField {
	return []FormField{
		{Name: "name", Label: "Nome", Type: "text", Value: p.Name, Required: true},
		{Name: "price", Label: "Preço", Type: "money", Value: p.Price.StringFixed(2), Required: true},
		{Name: "category", Label: "Categoria", Type: "text", Value: p.Category},
		{Name: "sort_order", Label: "Ordem", Type: "number", Value: itoa(p.SortOrder)},
		{Name: "active", Label: "À venda", Type: "checkbox", Checked: p.Active},
		{Name: "image_url", Label: "Imagem", Type: "image", Value: p.ImageURL},
		{Name: "description", Label: "Descrição", Type: "markdown", Value: p.Description},
	}
}

func parseProduct(f *formReader) models.Product {
	p := models.Product{
		Name:        f.text("name"),
		Category:    f.text("category"),
		SortOrder:   f.int("sort_order"),
		Active:      f.bool("active"),
		ImageURL:    f.text("image_url"),
		Description: f.text("description"),
	}
	if price := f.money("price"); price != nil {
		p.Price = *price
	}
	return p
}

func productRow(p models.Product) []string {
	active := "Não"
	if p.Active {
		active = "Sim"
	}
	return []string{p.Name, policy.FormatPrice(p.Price), p.Category, active}
}

func postFields(p models.Post, loc *time.Location) []FormField {
	var published *time.Time
	if p.PublishedAt != nil {
		d := p.PublishedAt.In(loc)
		published = &d
	}
	return []FormField{
		{Name: "title", Label: "Título", Type: "text", Value: p.Title, Required: true},
		{Name: "slug", Label: "Endereço", Type: "text", Value: p.Slug, Help: "Gerado a partir do título quando vazio"},
		{Name: "author", Label: "Autor", Type: "text", Value: p.Author},
		{Name: "excerpt", Label: "Resumo", Type: "textarea", Value: p.Excerpt},
		{Name: "cover_url", Label: "Capa", Type: "image", Value: p.CoverURL},
		{Name: "published", Label: "Publicado", Type: "checkbox", Checked: p.Published},
		{Name: "published_at", Label: "Data de publicação", Type: "date", Value: inputOptDate(published)},
		{Name: "content", Label: "Conteúdo", Type: "markdown", Value: p.Content},
	}
}

func parsePost(f *formReader) models.Post {
	return models.Post{
		Title:       f.text("title"),
		Slug:        f.text("slug"),
		Author:      f.text("author"),
		Excerpt:     f.text("excerpt"),
		CoverURL:    f.text("cover_url"),
		Published:   f.bool("published"),
		PublishedAt: f.date("published_at"),
		Content:     f.values.Get("content"),
	}
}

func postRow(p models.Post) []string {
	state := "Rascunho"
	if p.Published {
		state = "Publicado"
	}
	date := ""
	if p.PublishedAt != nil {
		date = policy.FormatShortDate(*p.PublishedAt)
	}
	return []string{p.Title, p.Slug, state, date}
}

func teamFields(m models.TeamMember) []FormField {
	return []FormField{
		{Name: "name", Label: "Nome", Type: "text", Value: m.Name, Required: true},
		{Name: "position", Label: "Cargo", Type: "text", Value: m.Position},
		{Name: "photo_url", Label: "Foto", Type: "image", Value: m.PhotoURL},
		{Name: "instagram", Label: "Instagram", Type: "text", Value: m.Instagram, Help: "Somente o usuário, sem @"},
		{Name: "linkedin", Label: "LinkedIn", Type: "url", Value: m.LinkedIn},
		{Name: "sort_order", Label: "Ordem", Type: "number", Value: itoa(m.SortOrder)},
		{Name: "active", Label: "Exibir no site", Type: "checkbox", Checked: m.Active},
		{Name: "bio", Label: "Biografia", Type: "textarea", Value: m.Bio},
	}
}

func parseTeamMember(f *formReader, role string) models.TeamMember {
	return models.TeamMember{
		Name:      f.text("name"),
		Role:      role,
		Position:  f.text("position"),
		PhotoURL:  f.text("photo_url"),
		Instagram: strings.TrimPrefix(f.text("instagram"), "@"),
		LinkedIn:  f.text("linkedin"),
		SortOrder: f.int("sort_order"),
		Active:    f.bool("active"),
		Bio:       f.text("bio"),
	}
}

func teamRow(m models.TeamMember) []string {
	active := "Não"
	if m.Active {
		active = "Sim"
	}
	return []string{m.Name, m.Position, itoa(m.SortOrder), active}
}

func sponsorFields(s models.Sponsor) []FormField {
	return []FormField{
		{Name: "name", Label: "Nome", Type: "text", Value: s.Name, Required: true},
		{Name: "tier", Label: "Cota", Type: "text", Value: s.Tier, Help: "Ex.: ouro, prata, apoio"},
		{Name: "website", Label: "Site", Type: "url", Value: s.Website},
		{Name: "logo_url", Label: "Logo", Type: "image", Value: s.LogoURL},
		{Name: "sort_order", Label: "Ordem", Type: "number", Value: itoa(s.SortOrder)},
		{Name: "active", Label: "Exibir no site", Type: "checkbox", Checked: s.Active},
	}
}

func parseSponsor(f *formReader) models.Sponsor {
	return models.Sponsor{
		Name:      f.text("name"),
		Tier:      f.text("tier"),
		Website:   f.text("website"),
		LogoURL:   f.text("logo_url"),
		SortOrder: f.int("sort_order"),
		Active:    f.bool("active"),
	}
}

func sponsorRow(s models.Sponsor) []string {
	active := "Não"
	if s.Active {
		active = "Sim"
	}
	return []string{s.Name, s.Tier, itoa(s.SortOrder), active}
}

var statisticLabels = map[string]string{
	models.StatDelegados:          "Delegados",
	models.StatEventosRealizados:  "Eventos realizados",
	models.StatValoresArrecadados: "Valores arrecadados",
}

func statisticFields(s models.Statistic) []FormField {
	return []FormField{
		{Name: "key", Label: "Indicador", Type: "select", Value: s.Key, Options: options(statisticLabels, models.StatisticKeys), Required: true},
		{Name: "value", Label: "Valor", Type: "number", Value: strconv.FormatFloat(s.Value, 'f', -1, 64), Required: true},
		{Name: "label", Label: "Rótulo", Type: "text", Value: s.Label, Help: "Texto exibido abaixo do número"},
		{Name: "description", Label: "Descrição", Type: "textarea", Value: s.Description},
	}
}

func parseStatistic(f *formReader) models.Statistic {
	return models.Statistic{
		Key:         f.text("key"),
		Value:       f.float("value"),
		Label:       f.text("label"),
		Description: f.text("description"),
	}
}

func statisticRow(s models.Statistic) []string {
	return []string{label(statisticLabels, s.Key), policy.FormatStatistic(s.Key, s.Value), s.Label}
}

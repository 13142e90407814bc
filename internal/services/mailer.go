package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"magis-site/internal/policy"
	"magis-site/models"
)

// Mailer tells the organization about new contact requests.
type Mailer interface {
	AppointmentReceived(ctx context.Context, a models.Appointment) error
}

type ResendMailer struct {
	client *resend.Client
	from   string
	to     []string
}

func NewResendMailer(apiKey, from string, to []string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

var appointmentMail = template.Must(template.New("appointment").Funcs(template.FuncMap{
	"date": policy.FormatShortDate,
}).Parse(`<h2>Novo agendamento pelo site</h2>
<p><strong>Nome:</strong> {{.Name}}</p>
<p><strong>E-mail:</strong> {{.Email}}</p>
{{if .Phone}}<p><strong>Telefone:</strong> {{.Phone}}</p>{{end}}
{{if .School}}<p><strong>Escola:</strong> {{.School}}</p>{{end}}
{{if .PreferredDate}}<p><strong>Data preferida:</strong> {{date .PreferredDate}}</p>{{end}}
{{if .Message}}<p><strong>Mensagem:</strong></p><p>{{.Message}}</p>{{end}}`))

func renderAppointmentMail(a models.Appointment) (string, error) {
	var buf bytes.Buffer
	view := struct {
		models.Appointment
		PreferredDate any
	}{Appointment: a}
	if a.PreferredDate != nil {
		view.PreferredDate = *a.PreferredDate
	}
	if err := appointmentMail.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (m *ResendMailer) AppointmentReceived(ctx context.Context, a models.Appointment) error {
	if len(m.to) == 0 {
		return nil
	}

	html, err := renderAppointmentMail(a)
	if err != nil {
		return fmt.Errorf("render appointment mail: %w", err)
	}

	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      m.to,
		Subject: "Novo agendamento: " + a.Name,
		Html:    html,
		ReplyTo: a.Email,
	})
	if err != nil {
		return fmt.Errorf("send appointment mail: %w", err)
	}

	slog.Info("Appointment mail sent", "message_id", sent.Id, "appointment_id", a.ID)
	return nil
}

// NopMailer is used when no mail provider is configured.
type NopMailer struct{}

func (NopMailer) AppointmentReceived(_ context.Context, a models.Appointment) error {
	slog.Info("Mail disabled, appointment not mailed", "appointment_id", a.ID)
	return nil
}

package email

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"

	"permit-review/internal/config"
	"permit-review/internal/pkg/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

const senderName = "Permis Miniers"

var ErrNotConfigured = errors.New("email provider is not configured")

// StatusChange is the content of one status-change email.
type StatusChange struct {
	To           string
	ProjectID    string
	ProjectTitle string
	Status       string
	Message      string
}

type Service interface {
	SendStatusChangeEmail(ctx context.Context, msg StatusChange) error
}

type service struct {
	client    *resend.Client
	config    *config.Config
	catalog   *i18n.Catalog
	templates *template.Template
}

func NewService(cfg *config.Config, catalog *i18n.Catalog) Service {
	var client *resend.Client
	if cfg.ResendAPIKey != "" {
		client = resend.NewClient(cfg.ResendAPIKey)
	}
	return &service{
		client:    client,
		config:    cfg,
		catalog:   catalog,
		templates: template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/status_change.html")),
	}
}

type statusChangeData struct {
	Lang       string
	Title      string
	Heading    string
	Intro      string
	StatusName string
	Status     string
	Message    string
	CTA        string
	Link       string
	Signature  string
}

func (s *service) SendStatusChangeEmail(ctx context.Context, msg StatusChange) error {
	if msg.To == "" {
		return fmt.Errorf("missing recipient")
	}

	subject, body, err := s.render(msg)
	if err != nil {
		return err
	}
	if s.client == nil {
		return ErrNotConfigured
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", senderName, s.config.FromEmail),
		To:      []string{msg.To},
		Html:    body,
		Subject: subject,
	}

	_, err = s.client.Emails.SendWithContext(ctx, params)
	return err
}

func (s *service) render(msg StatusChange) (string, string, error) {
	locale := s.config.Locale
	args := map[string]string{"title": msg.ProjectTitle}
	subject := s.catalog.Format(locale, "email.subject", args)

	data := statusChangeData{
		Lang:       locale,
		Title:      subject,
		Heading:    s.catalog.Translate(locale, "email.heading"),
		Intro:      s.catalog.Format(locale, "email.intro", args),
		StatusName: s.catalog.Translate(locale, "email.new_status"),
		Status:     msg.Status,
		Message:    msg.Message,
		CTA:        s.catalog.Translate(locale, "email.cta"),
		Link:       fmt.Sprintf("%s/projects/%s", s.config.AppURL, msg.ProjectID),
		Signature:  s.catalog.Translate(locale, "email.signature"),
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "layout", data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return subject, body.String(), nil
}

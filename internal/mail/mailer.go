// Package mail sends the transactional emails (password reset codes and
// driver invitations) over SMTP.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/config"
	gomail "github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Sender is what the services depend on; tests use a recording fake.
type Sender interface {
	SendPasswordResetOTP(ctx context.Context, to, name, code string) error
	SendDriverInvitation(ctx context.Context, to, name, setupToken string) error
}

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Transport delivers a rendered message.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

type Mailer struct {
	transport   Transport
	frontendURL string
}

func NewMailer(transport Transport, frontendURL string) *Mailer {
	return &Mailer{transport: transport, frontendURL: frontendURL}
}

func (m *Mailer) SendPasswordResetOTP(ctx context.Context, to, name, code string) error {
	body, err := render("password_reset.html", map[string]string{
		"Name":      name,
		"Code":      code,
		"ExpiresIn": "10 minutes",
	})
	if err != nil {
		return err
	}
	if err := m.transport.Deliver(ctx, Message{
		To:      to,
		Subject: "Password Reset OTP - TruckFlow",
		HTML:    body,
	}); err != nil {
		return err
	}
	slog.Info("password reset code sent", "to", to)
	return nil
}

func (m *Mailer) SendDriverInvitation(ctx context.Context, to, name, setupToken string) error {
	body, err := render("driver_invitation.html", map[string]string{
		"Name":      name,
		"SetupLink": m.SetupLink(setupToken),
	})
	if err != nil {
		return err
	}
	if err := m.transport.Deliver(ctx, Message{
		To:      to,
		Subject: "Welcome to TruckFlow - Set Your Password",
		HTML:    body,
	}); err != nil {
		return err
	}
	slog.Info("driver invitation sent", "to", to)
	return nil
}

func (m *Mailer) SetupLink(token string) string {
	return SetupLink(m.frontendURL, token)
}

// SetupLink is the frontend URL a new driver follows to choose a password.
func SetupLink(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/auth/setup-password?token=" + url.QueryEscape(token)
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// SMTPTransport delivers through an SMTP relay with bounded dial and I/O timeouts.
type SMTPTransport struct {
	cfg *config.Config
}

func NewSMTPTransport(cfg *config.Config) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Deliver(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.FromFormat("TruckFlow", t.cfg.MailSender()); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)

	client, err := gomail.NewClient(t.cfg.SMTPHost,
		gomail.WithPort(t.cfg.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(t.cfg.SMTPUser),
		gomail.WithPassword(t.cfg.SMTPPassword),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(t.cfg.SMTPTimeout),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.SMTPTimeout)
	defer cancel()
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
)

var templates = template.Must(template.New("notify").Parse(`
{{define "verification"}}Hello {{.Name}},

Please verify your email address for the Press Release Portal:
{{.Link}}

This link expires in {{.Expires}}.{{end}}

{{define "reset"}}Hello {{.Name}},

A password reset was requested for your account. Use the link below to choose a new password:
{{.Link}}

This link expires in {{.Expires}}. If you did not request a reset you can ignore this email.{{end}}

{{define "approval_request"}}A journalist verified their email and is waiting for approval.

Name: {{.Name}}
Email: {{.Email}}
Publication: {{.Publication}}

Review pending journalists at {{.Link}}{{end}}

{{define "approved"}}Congratulations {{.Name}}!

Your {{.Role}} account has been approved and is now active. Log in at {{.Link}}{{end}}

{{define "rejected"}}Hello {{.Name}},

Your {{.Role}} account application was not approved. Contact support if you believe this is a mistake.{{end}}
`))

type templateData struct {
	Name        string
	Email       string
	Role        account.Role
	Publication string
	Link        string
	Expires     string
}

// Mailer renders account notifications and hands them to a Sender.
type Mailer struct {
	sender       Sender
	log          *zap.Logger
	from         string
	adminEmail   string
	clientURL    string
	verification time.Duration
	reset        time.Duration
}

type MailerOption func(*Mailer)

// WithLinkLifetimes sets the lifetimes quoted in verification and reset
// emails. They should match the secrets the lifecycle issues.
func WithLinkLifetimes(verification, reset time.Duration) MailerOption {
	return func(m *Mailer) {
		m.verification = verification
		m.reset = reset
	}
}

func NewMailer(sender Sender, log *zap.Logger, from, adminEmail, clientURL string, opts ...MailerOption) *Mailer {
	m := &Mailer{
		sender:       sender,
		log:          log,
		from:         from,
		adminEmail:   adminEmail,
		clientURL:    clientURL,
		verification: 24 * time.Hour,
		reset:        time.Hour,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mailer) VerificationRequested(ctx context.Context, a *account.Account, secret string) {
	data := m.data(a, m.link("/verify-email", secret))
	data.Expires = humanDuration(m.verification)
	m.deliver(ctx, a.Email, "Verify your email - Press Release Portal", "verification", data)
}

func (m *Mailer) PasswordResetRequested(ctx context.Context, a *account.Account, secret string) {
	data := m.data(a, m.link("/reset-password", secret))
	data.Expires = humanDuration(m.reset)
	m.deliver(ctx, a.Email, "Password reset - Press Release Portal", "reset", data)
}

func (m *Mailer) ApprovalRequested(ctx context.Context, a *account.Account) {
	if m.adminEmail == "" {
		m.log.Warn("no admin inbox configured, approval request not sent",
			zap.String("account_id", a.ID.String()))
		return
	}
	m.deliver(ctx, m.adminEmail, "Journalist awaiting approval - Press Release Portal", "approval_request",
		m.data(a, m.link("/admin/journalists", "")))
}

func (m *Mailer) AccountApproved(ctx context.Context, a *account.Account) {
	m.deliver(ctx, a.Email, "Account approved - Press Release Portal", "approved", m.data(a, m.link("/login", "")))
}

func (m *Mailer) AccountRejected(ctx context.Context, a *account.Account) {
	m.deliver(ctx, a.Email, "Account application update - Press Release Portal", "rejected", m.data(a, ""))
}

func (m *Mailer) deliver(ctx context.Context, to, subject, tmpl string, data templateData) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		m.log.Error("failed to render notification", zap.String("template", tmpl), zap.Error(err))
		return
	}

	msg := Message{From: m.from, To: to, Subject: subject, Text: body.String()}
	if err := m.sender.Send(ctx, msg); err != nil {
		m.log.Error("failed to send notification",
			zap.String("template", tmpl),
			zap.String("to", to),
			zap.Error(err))
	}
}

func (m *Mailer) data(a *account.Account, link string) templateData {
	return templateData{
		Name:        a.FirstName,
		Email:       a.Email,
		Role:        a.Role,
		Publication: a.Publication,
		Link:        link,
	}
}

func (m *Mailer) link(path, secret string) string {
	if secret == "" {
		return m.clientURL + path
	}
	return fmt.Sprintf("%s%s?token=%s", m.clientURL, path, url.QueryEscape(secret))
}

// humanDuration renders d in the largest whole unit, e.g. "24 hours".
func humanDuration(d time.Duration) string {
	unit, n := "minute", int64(d/time.Minute)
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0 && d != 24*time.Hour:
		unit, n = "day", int64(d/(24*time.Hour))
	case d >= time.Hour && d%time.Hour == 0:
		unit, n = "hour", int64(d/time.Hour)
	}
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

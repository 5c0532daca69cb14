// Package mailer delivers account emails, either inline over SMTP or
// through the durable queue drained by the worker command.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"net/url"
	"strings"

	"github.com/finacore/apiserver/config"
)

// SMTPMailer sends account emails over SMTP. It is constructed once at
// process start and shared across requests.
type SMTPMailer struct {
	addr        string
	auth        smtp.Auth
	from        string
	apiBaseURL  string
	frontendURL string
}

func NewSMTPMailer(cfg config.SMTPConfig, frontendURL string) *SMTPMailer {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth:        auth,
		from:        cfg.From,
		apiBaseURL:  strings.TrimRight(cfg.APIBaseURL, "/"),
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// SendEmailVerification emails a link that round-trips through the API's
// verify-email redirect endpoint.
func (m *SMTPMailer) SendEmailVerification(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/auth/verify-email?token=%s", m.apiBaseURL, url.QueryEscape(token))
	body := fmt.Sprintf(
		"<p>Welcome! Please confirm your email address.</p>"+
			"<p><a href=%q>Verify email</a></p>"+
			"<p>The link expires in 24 hours.</p>", link)
	return m.send(ctx, email, "Verify Email", body)
}

// SendPasswordReset emails a link to the frontend's reset page.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, url.QueryEscape(token))
	body := fmt.Sprintf(
		"<p>A password reset was requested for your account.</p>"+
			"<p><a href=%q>Reset password</a></p>"+
			"<p>If you did not request this, you can ignore this email.</p>", link)
	return m.send(ctx, email, "Reset Password", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg.String()))
}

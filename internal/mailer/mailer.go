// Package mailer delivers generated account credentials to new users over
// SMTP. When no SMTP host is configured the no-op mailer is used, which
// logs the delivery instead of sending, so local setups work without a
// mail server.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/notewall/notewall/internal/config"
	"github.com/notewall/notewall/pkg/logger"
)

// Mailer sends credential emails to freshly registered users.
type Mailer interface {
	SendCredentials(ctx context.Context, to, firstName, password string) error
}

// New returns an SMTP-backed mailer when cfg.SMTP.Host is set, otherwise a
// no-op mailer.
func New(cfg *config.Config) Mailer {
	if cfg.SMTP.Host == "" {
		logger.Info("SMTP not configured, credential emails will be logged only")
		return &noopMailer{}
	}
	return &smtpMailer{
		host: cfg.SMTP.Host,
		port: cfg.SMTP.Port,
		user: cfg.SMTP.Username,
		pass: cfg.SMTP.Password,
		from: cfg.SMTP.From,
	}
}

type smtpMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func (m *smtpMailer) SendCredentials(ctx context.Context, to, firstName, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Your notes board account\r\n")
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", firstName)
	b.WriteString("Your account has been created. Sign in with this password:\r\n\r\n")
	fmt.Fprintf(&b, "    %s\r\n\r\n", password)
	b.WriteString("Please change it after your first login.\r\n")

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to send credentials mail: %w", err)
	}
	logger.Infof("credentials mail sent to %s", to)
	return nil
}

type noopMailer struct{}

func (noopMailer) SendCredentials(_ context.Context, to, _, _ string) error {
	logger.Infof("credentials mail skipped (no SMTP): recipient=%s", to)
	return nil
}

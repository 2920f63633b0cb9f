// Package smtp delivers rendered notifications over SMTP.
package smtp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/dmehra2102/eventia/internal/notification/domain"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Mailer struct {
	log    *slog.Logger
	from   string
	client *mail.Client
}

func NewMailer(log *slog.Logger, cfg Config) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithTLSPortPolicy(mail.TLSMandatory),
		mail.WithPort(cfg.Port),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{log: log, from: cfg.From, client: client}, nil
}

// Send dials, delivers msg and closes the connection.
func (m *Mailer) Send(ctx context.Context, msg domain.Message) error {
	em, err := m.build(msg)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, em); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	m.log.Debug("smtp delivered", "kind", msg.Kind, "to", msg.To)
	return nil
}

func (m *Mailer) build(msg domain.Message) (*mail.Msg, error) {
	em := mail.NewMsg()
	if err := em.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", m.from, err)
	}
	if err := em.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	em.Subject(msg.Subject)
	em.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return em, nil
}

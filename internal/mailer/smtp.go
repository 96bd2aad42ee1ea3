package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"fleet-service/internal/config"
)

var ErrNoRecipients = errors.New("no digest recipients configured")

// SMTPMailer delivers digests over authenticated SMTP with STARTTLS.
type SMTPMailer struct {
	cfg        config.MailConfig
	recipients []string
}

func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	var recipients []string
	for _, addr := range strings.Split(cfg.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	return &SMTPMailer{cfg: cfg, recipients: recipients}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, d Digest) error {
	body, err := Render(d)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.Username); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.recipients...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(d.Subject())
	msg.SetBodyString(mail.TypeTextHTML, body)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}

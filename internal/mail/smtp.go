package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds connection settings for SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	StartTLS bool // upgrade a plain connection with STARTTLS
	SSLTLS   bool // implicit TLS from the first byte (usually port 465)
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	cfg  SMTPConfig
	opts []gomail.Option
}

// NewSMTPSender validates cfg and prepares client options.
// No connection is made until the first Send.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sender address is required")
	}

	opts := []gomail.Option{gomail.WithPort(cfg.Port)}
	switch {
	case cfg.SSLTLS:
		opts = append(opts, gomail.WithSSL())
	case cfg.StartTLS:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	return &SMTPSender{cfg: cfg, opts: opts}, nil
}

// Send dials the relay and delivers msg as multipart text and HTML.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.cfg.Host, s.opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) (*gomail.Msg, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	m := gomail.NewMsg()
	if err := m.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, PlainText(msg.HTML))
	m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)

	return m, nil
}

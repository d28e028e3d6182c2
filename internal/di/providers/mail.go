package providers

import (
	"context"
	"fmt"
	"io"

	"github.com/samber/do/v2"

	"github.com/bookly/bookly-server/internal/config"
	"github.com/bookly/bookly-server/internal/logger"
	"github.com/bookly/bookly-server/internal/mail"
)

// ProvideMailSender returns an SMTP sender, or a logging sender when MAIL_SERVER is unset.
func ProvideMailSender(i do.Injector) (mail.Sender, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Mail.Server == "" {
		log.Warn("MAIL_SERVER not set, emails will be logged instead of sent")
		return &mail.LogSender{Logger: log.Logger}, nil
	}

	smtp, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Mail.Server,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
		StartTLS: cfg.Mail.StartTLS,
		SSLTLS:   cfg.Mail.SSLTLS,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Mail.RatePerMinute > 0 {
		return mail.NewThrottledSender(smtp, cfg.Mail.RatePerMinute, cfg.Mail.Server), nil
	}
	return smtp, nil
}

// ProvideMailRenderer provides the email template renderer.
func ProvideMailRenderer(i do.Injector) (*mail.Renderer, error) {
	return mail.NewRenderer()
}

// MailQueueHandle wraps the background mail queue with shutdown capability.
type MailQueueHandle struct {
	mail.Queue
	sender mail.Sender
}

// Shutdown implements do.Shutdownable. Workers finish the message in hand
// before returning, then the sender is released.
func (h *MailQueueHandle) Shutdown() error {
	if err := h.Close(); err != nil {
		return err
	}
	if c, ok := h.sender.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ProvideMailQueue builds and starts the configured mail queue.
func ProvideMailQueue(i do.Injector) (*MailQueueHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sender := do.MustInvoke[mail.Sender](i)

	var queue mail.Queue
	switch cfg.Mail.Queue {
	case "memory":
		queue = mail.NewMemoryQueue(sender, cfg.Mail.Workers, mailBuffer, log.Logger)
	case "redis":
		redisHandle := do.MustInvoke[*RedisHandle](i)
		queue = mail.NewRedisQueue(redisHandle.Client, sender, cfg.Mail.Workers, log.Logger)
	default:
		return nil, fmt.Errorf("unknown mail queue %q", cfg.Mail.Queue)
	}

	queue.Start(context.Background())

	return &MailQueueHandle{Queue: queue, sender: sender}, nil
}

// Package mail renders and delivers Bookly's transactional email.
//
// Handlers never send directly. They enqueue a Message and return, and
// queue workers hand it to a Sender in the background.
package mail

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Message is a single outbound email.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Validate rejects messages that could never be delivered.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return errors.New("message has no recipients")
	}
	if m.Subject == "" {
		return errors.New("message has no subject")
	}
	return nil
}

// Sender delivers a message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
// It is used when no SMTP server is configured.
type LogSender struct {
	Logger *slog.Logger
}

// Send logs the message envelope and its plain-text body.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.Logger.Info("email (not sent, no MAIL_SERVER configured)",
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
		"body", PlainText(msg.HTML),
	)
	return nil
}

// htmlTagPattern detects whether a body actually contains markup.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote|html|body)[\s>/]`)

// PlainText converts an HTML body to Markdown for the text/plain alternative.
// Input without markup, or markup that fails to convert, is returned as is.
func PlainText(html string) string {
	if html == "" || !htmlTagPattern.MatchString(strings.ToLower(html)) {
		return html
	}

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return html
	}

	return strings.TrimSpace(markdown)
}

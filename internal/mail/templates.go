package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer builds the HTML bodies of Bookly's emails.
type Renderer struct {
	pages map[string]*template.Template
}

const (
	pageVerify  = "verify.html"
	pageReset   = "reset.html"
	pageWelcome = "welcome.html"
)

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	pages := make(map[string]*template.Template)
	for _, page := range []string{pageVerify, pageReset, pageWelcome} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		pages[page] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

func (r *Renderer) render(page string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render %s: %w", page, err)
	}
	return buf.String(), nil
}

// VerifyEmail builds the "Verify your email" message.
func (r *Renderer) VerifyEmail(to, name, link string, expires time.Duration) (Message, error) {
	body, err := r.render(pageVerify, map[string]any{"Name": name, "Link": link, "Expires": humanDuration(expires)})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{to}, Subject: "Verify your email", HTML: body}, nil
}

// ResetPassword builds the password reset message.
func (r *Renderer) ResetPassword(to, link string, expires time.Duration) (Message, error) {
	body, err := r.render(pageReset, map[string]any{"Link": link, "Expires": humanDuration(expires)})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{to}, Subject: "Reset your password", HTML: body}, nil
}

// Welcome builds the welcome message sent by administrators.
func (r *Renderer) Welcome(to []string) (Message, error) {
	body, err := r.render(pageWelcome, nil)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Welcome to Bookly", HTML: body}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if h := int(d / time.Hour); h != 1 {
			return fmt.Sprintf("%d hours", h)
		}
		return "1 hour"
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}

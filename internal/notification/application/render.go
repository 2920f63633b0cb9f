package application

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"

	"github.com/dmehra2102/eventia/internal/notification/domain"
)

//go:embed templates/*.md
var templateFS embed.FS

const (
	ConfirmationSubjectPrefix = "Payment Confirmation - "
	TicketSubject             = "Your Eventia Fest Ticket"
)

// Renderer turns template fields into HTML email bodies. Templates are
// Markdown; user supplied values are escaped before Markdown conversion.
type Renderer struct {
	tmpl *template.Template
	md   goldmark.Markdown
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("email").
		Funcs(template.FuncMap{"md": escapeMarkdown}).
		ParseFS(templateFS, "templates/*.md")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl, md: goldmark.New()}, nil
}

func (r *Renderer) Render(kind domain.Kind, f domain.Fields) (domain.Message, error) {
	var name, subject string
	switch kind {
	case domain.KindPaymentConfirmation:
		name, subject = "payment_confirmation.md", ConfirmationSubjectPrefix+f.EventTitle
	case domain.KindTicket:
		name, subject = "ticket.md", TicketSubject
	default:
		return domain.Message{}, fmt.Errorf("unknown message kind %q", kind)
	}

	var src bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&src, name, f); err != nil {
		return domain.Message{}, fmt.Errorf("execute %s: %w", name, err)
	}
	var html bytes.Buffer
	if err := r.md.Convert(src.Bytes(), &html); err != nil {
		return domain.Message{}, fmt.Errorf("convert %s: %w", name, err)
	}
	return domain.Message{Kind: kind, To: f.Email, Subject: subject, HTML: html.String()}, nil
}

// escapeMarkdown backslash-escapes ASCII punctuation so values render
// literally. Line breaks are folded to spaces.
func escapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r < 0x80 && strings.ContainsRune("\\`*_{}[]()#+-.!<>|~&\"'", r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

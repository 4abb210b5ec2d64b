// Package mailer delivers reminder emails over SMTP.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/taskhive-dev/taskhive/internal/config"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/services"
)

const digestTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2933; max-width: 560px; margin: 0 auto;">
  <h2 style="color: #f59e0b;">TaskHive</h2>
  <p>Hi {{.Name}}, here is what needs your attention today.</p>
  {{if .DueSoon}}
  <h3>Due within 24 hours</h3>
  <ul>
    {{range .DueSoon}}
    <li><strong>{{.Title}}</strong>{{if .Due}} &mdash; due {{.Due}}{{end}}</li>
    {{end}}
  </ul>
  {{end}}
  {{if .Pending}}
  <h3>Still open</h3>
  <ul>
    {{range .Pending}}
    <li>{{.Title}}</li>
    {{end}}
  </ul>
  {{end}}
  <p style="color: #9aa5b1; font-size: 12px;">You are receiving this because email reminders are enabled in your TaskHive settings.</p>
</body>
</html>`

type digestItem struct {
	Title string
	Due   string
}

type digestData struct {
	Name    string
	DueSoon []digestItem
	Pending []digestItem
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
	tmpl   *template.Template
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
		tmpl:   template.Must(template.New("digest").Parse(digestTemplate)),
	}
}

// SendReminderDigest emails one user their daily digest. Due dates are
// rendered in the timezone from the user's settings.
func (m *Mailer) SendReminderDigest(digest *services.ReminderDigest) error {
	if digest.Empty() {
		return nil
	}

	location, err := time.LoadLocation(digest.Settings.Timezone)

	if err != nil {
		location = time.UTC
	}

	data := digestData{Name: displayName(digest.User)}

	for _, todo := range digest.DueSoon {
		item := digestItem{Title: todo.Title}

		if todo.DueDate != nil {
			item.Due = todo.DueDate.In(location).Format("Mon Jan 2, 15:04")
		}

		data.DueSoon = append(data.DueSoon, item)
	}

	for _, todo := range digest.Pending {
		data.Pending = append(data.Pending, digestItem{Title: todo.Title})
	}

	var html bytes.Buffer

	if err := m.tmpl.Execute(&html, data); err != nil {
		return fmt.Errorf("failed to render digest: %w", err)
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", digest.User.Email)
	message.SetHeader("Subject", digestSubject(digest))
	message.SetBody("text/plain", plainDigest(data))
	message.AddAlternative("text/html", html.String())

	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send reminder to %s: %w", digest.User.Email, err)
	}

	return nil
}

func digestSubject(digest *services.ReminderDigest) string {
	if n := len(digest.DueSoon); n > 0 {
		if n == 1 {
			return "TaskHive: 1 todo due in the next 24 hours"
		}

		return fmt.Sprintf("TaskHive: %d todos due in the next 24 hours", n)
	}

	return "TaskHive: your open todos"
}

// plainDigest is the text part for clients that do not render HTML.
func plainDigest(data digestData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s, here is what needs your attention today.\n", data.Name)

	if len(data.DueSoon) > 0 {
		b.WriteString("\nDue within 24 hours:\n")

		for _, item := range data.DueSoon {
			if item.Due != "" {
				fmt.Fprintf(&b, "  - %s (due %s)\n", item.Title, item.Due)
			} else {
				fmt.Fprintf(&b, "  - %s\n", item.Title)
			}
		}
	}

	if len(data.Pending) > 0 {
		b.WriteString("\nStill open:\n")

		for _, item := range data.Pending {
			fmt.Fprintf(&b, "  - %s\n", item.Title)
		}
	}

	return b.String()
}

func displayName(user models.User) string {
	if user.Username != "" {
		return user.Username
	}

	return user.Email
}

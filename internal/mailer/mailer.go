// Package mailer sends transactional e-mail through Resend.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/resend/resend-go/v3"
)

// Decision describes a moderation outcome to report to a product owner.
type Decision struct {
	To          string
	OwnerName   string
	ProductName string
	ProductURL  string
	Approved    bool
	Reason      string
}

// Mailer delivers moderation e-mails.
type Mailer interface {
	SendModerationDecision(ctx context.Context, d Decision) error
}

type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type resendMailer struct {
	emails sender
	from   string
}

// New returns a Resend-backed Mailer, or a no-op Mailer when apiKey is empty.
func New(apiKey, from string) Mailer {
	if apiKey == "" {
		return Noop{}
	}
	return &resendMailer{emails: resend.NewClient(apiKey).Emails, from: from}
}

var decisionTmpl = template.Must(template.New("decision").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif">
  <p>Hi {{if .OwnerName}}{{.OwnerName}}{{else}}there{{end}},</p>
  {{if .Approved}}
  <p>Good news: <strong>{{.ProductName}}</strong> is now live.</p>
  {{if .ProductURL}}<p><a href="{{.ProductURL}}">View your launch</a></p>{{end}}
  {{else}}
  <p><strong>{{.ProductName}}</strong> was not approved.</p>
  <p>Reason: {{.Reason}}</p>
  <p>You can edit the product and submit it again for review.</p>
  {{end}}
</body>
</html>`))

func (m *resendMailer) SendModerationDecision(ctx context.Context, d Decision) error {
	if strings.TrimSpace(d.To) == "" {
		return nil
	}

	var body bytes.Buffer
	if err := decisionTmpl.Execute(&body, d); err != nil {
		return fmt.Errorf("render moderation email: %w", err)
	}

	subject := fmt.Sprintf("Your product %q has been rejected", d.ProductName)
	if d.Approved {
		subject = fmt.Sprintf("Your product %q is live", d.ProductName)
	}

	_, err := m.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{d.To},
		Subject: subject,
		Html:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("send moderation email: %w", err)
	}
	return nil
}

// Noop discards every message.
type Noop struct{}

func (Noop) SendModerationDecision(context.Context, Decision) error { return nil }

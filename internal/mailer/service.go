// Package mailer sends deposit confirmation emails.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/x9-check-image-validator/internal/customer"
	"github.com/ginjaninja78/x9-check-image-validator/internal/deposit"
	"github.com/ginjaninja78/x9-check-image-validator/internal/x9"
)

// ErrNoContact is returned when the customer has no contact address.
var ErrNoContact = errors.New("customer has no contact email")

// Receipt describes a sent confirmation.
type Receipt struct {
	To      string
	Subject string
}

// Service composes and sends confirmations.
type Service struct {
	Directory customer.Directory
	Renderer  *Renderer
	Sender    Sender
	From      string
	Bcc       []string
	Logger    zerolog.Logger
}

// SendConfirmation builds the summary for doc, finds the customer named in
// its file header and sends them the confirmation. A customer missing from
// the directory yields an error wrapping customer.ErrNotFound and nothing
// is sent.
func (s *Service) SendConfirmation(ctx context.Context, doc *x9.Document, fileName string) (*Receipt, error) {
	summary, err := deposit.BuildSummary(doc, fileName)
	if err != nil {
		return nil, fmt.Errorf("build deposit summary: %w", err)
	}

	c, err := s.Directory.Lookup(ctx, summary.CustomerName)
	if err != nil {
		return nil, err
	}
	if c.ContactEmail == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoContact, c.LongName)
	}

	subject, body, err := s.Renderer.Render(summary)
	if err != nil {
		return nil, err
	}

	msg := Message{
		From:     s.From,
		To:       []string{c.ContactEmail},
		Bcc:      s.Bcc,
		Subject:  subject,
		HTMLBody: body,
	}
	if err := s.Sender.Send(ctx, msg); err != nil {
		return nil, err
	}

	s.Logger.Info().
		Str("to", c.ContactEmail).
		Str("subject", subject).
		Str("customer", c.LongName).
		Int("bundles", len(summary.Bundles)).
		Msg("confirmation sent")

	return &Receipt{To: c.ContactEmail, Subject: subject}, nil
}

package mailer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/x9-check-image-validator/internal/config"
	"github.com/ginjaninja78/x9-check-image-validator/internal/customer"
	"github.com/ginjaninja78/x9-check-image-validator/internal/deposit"
	"github.com/ginjaninja78/x9-check-image-validator/internal/x9"
	"github.com/ginjaninja78/x9-check-image-validator/internal/x9/x9test"
)

type fakeDirectory map[string]string

func (d fakeDirectory) Lookup(_ context.Context, name string) (*customer.Customer, error) {
	email, ok := d[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", customer.ErrNotFound, name)
	}
	return &customer.Customer{LongName: name, ContactEmail: email}, nil
}

func (fakeDirectory) Close() error { return nil }

type fakeSender struct {
	sent []Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func depositDocument() *x9.Document {
	return x9test.Document(
		x9test.Bundle("1", "0000123456",
			x9test.Item("0000100000", 2),
			x9test.Item("0000023456", 2),
		),
	)
}

func TestRender(t *testing.T) {
	summary, err := deposit.BuildSummary(depositDocument(), "incoming/acme.x9")
	require.NoError(t, err)

	subject, body, err := Render(summary)
	require.NoError(t, err)

	assert.Equal(t, "Deposit Received: acme.x9", subject)
	assert.Contains(t, body, "Your deposit was received for processing.")
	assert.Contains(t, body, "FILENAME: acme.x9")
	assert.Contains(t, body, "<td>03/15/2024</td>")
	assert.Contains(t, body, "<td>14:05</td>")
	assert.Contains(t, body, "BUNDLE 1")
	assert.Contains(t, body, "<td>$1,234.56</td>")
	assert.Contains(t, body, "<td>"+x9test.RoutingNo+"</td>")
}

func TestRendererOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(`{{ .Summary.CustomerName }} sent {{ money .Summary.Total }}`), 0644))

	r, err := NewRenderer(config.EmailConfig{TemplatePath: path, SubjectFormat: "[X9] {file} received"})
	require.NoError(t, err)

	summary, err := deposit.BuildSummary(depositDocument(), "acme.x9")
	require.NoError(t, err)

	subject, body, err := r.Render(summary)
	require.NoError(t, err)
	assert.Equal(t, "[X9] acme.x9 received", subject)
	assert.Equal(t, "ACME WIDGETS sent $1,234.56", body)

	_, err = NewRenderer(config.EmailConfig{TemplatePath: filepath.Join(t.TempDir(), "none.tmpl")})
	assert.Error(t, err)
}

func newService(sender *fakeSender, dir fakeDirectory) *Service {
	r, err := NewRenderer(config.EmailConfig{})
	if err != nil {
		panic(err)
	}
	return &Service{
		Directory: dir,
		Renderer:  r,
		Sender:    sender,
		From:      "deposits@bank.example",
		Bcc:       []string{"ops@bank.example"},
	}
}

func TestSendConfirmation(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender, fakeDirectory{x9test.OriginName: "treasury@acme.example"})

	receipt, err := svc.SendConfirmation(context.Background(), depositDocument(), "acme.x9")
	require.NoError(t, err)
	assert.Equal(t, &Receipt{To: "treasury@acme.example", Subject: "Deposit Received: acme.x9"}, receipt)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "deposits@bank.example", msg.From)
	assert.Equal(t, []string{"treasury@acme.example"}, msg.To)
	assert.Equal(t, []string{"ops@bank.example"}, msg.Bcc)
	assert.Contains(t, msg.HTMLBody, "$1,234.56")
}

func TestSendConfirmationCustomerMissing(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender, fakeDirectory{})

	_, err := svc.SendConfirmation(context.Background(), depositDocument(), "acme.x9")
	assert.ErrorIs(t, err, customer.ErrNotFound)
	assert.Empty(t, sender.sent)
}

func TestSendConfirmationNoContact(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender, fakeDirectory{x9test.OriginName: ""})

	_, err := svc.SendConfirmation(context.Background(), depositDocument(), "acme.x9")
	assert.ErrorIs(t, err, ErrNoContact)
	assert.Empty(t, sender.sent)
}

func TestSendConfirmationSenderFailure(t *testing.T) {
	sender := &fakeSender{err: fmt.Errorf("connection refused")}
	svc := newService(sender, fakeDirectory{x9test.OriginName: "treasury@acme.example"})

	_, err := svc.SendConfirmation(context.Background(), depositDocument(), "acme.x9")
	assert.EqualError(t, err, "connection refused")
}

func TestBuildMsg(t *testing.T) {
	m, err := buildMsg(Message{
		From:     "deposits@bank.example",
		To:       []string{"treasury@acme.example"},
		Subject:  "Deposit Received: acme.x9",
		HTMLBody: "<p>ok</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"<treasury@acme.example>"}, m.GetToString())

	_, err = buildMsg(Message{From: "not an address", To: []string{"a@b.example"}})
	assert.Error(t, err)
}

func TestNewSMTPSender(t *testing.T) {
	cfg := config.Default().SMTP
	cfg.Username = "user"
	cfg.Password = "secret"

	s, err := NewSMTPSender(cfg)
	require.NoError(t, err)
	assert.NotNil(t, s.client)
}

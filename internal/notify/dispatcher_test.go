package notify

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/coteroyale/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMailer struct {
	mu     sync.Mutex
	sent   []Message
	SendFn func(msg Message) error
}

func (m *mockMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	if m.SendFn != nil {
		return m.SendFn(msg)
	}
	return nil
}

func (m *mockMailer) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

var submission = models.ContactSubmission{
	Name:    "Ala",
	Email:   "ala@example.com",
	Message: "Hello there, I have a question about Terra.",
}

func fixedClock() time.Time { return time.UnixMilli(1_700_000_000_000) }

func TestDispatch_SendsOwnerAndConfirmation(t *testing.T) {
	mailer := &mockMailer{}
	d := NewDispatcher(mailer, Config{}, WithClock(fixedClock))
	defer d.Close()

	err := d.Dispatch(context.Background(), submission, models.ContactSettings{
		RecipientEmail:      "owner@coteroyale.pl",
		SubjectTemplate:     "New message from {{name}}",
		ConfirmationSubject: "Dziękujemy",
	})
	require.NoError(t, err)
	d.Wait()

	sent := mailer.messages()
	require.Len(t, sent, 2)

	owner := sent[0]
	assert.Equal(t, DefaultOwnerFrom, owner.From)
	assert.Equal(t, []string{"owner@coteroyale.pl"}, owner.To)
	assert.Equal(t, "ala@example.com", owner.ReplyTo)
	assert.Equal(t, "New message from Ala", owner.Subject)
	assert.Contains(t, owner.HTML, "<strong>Ala</strong> (ala@example.com)")
	assert.Contains(t, owner.HTML, submission.Message)
	assert.Regexp(t, regexp.MustCompile(`^contact-1700000000000-[0-9a-f]{9}$`), owner.Headers["X-Entity-Ref-ID"])

	confirmation := sent[1]
	assert.Equal(t, DefaultConfirmationFrom, confirmation.From)
	assert.Equal(t, []string{"ala@example.com"}, confirmation.To)
	assert.Equal(t, "Dziękujemy", confirmation.Subject)
	assert.Empty(t, confirmation.ReplyTo)
	assert.Contains(t, confirmation.HTML, "Dziękujemy za kontakt, Ala!")
	assert.Regexp(t, regexp.MustCompile(`^confirmation-1700000000000-[0-9a-f]{9}$`), confirmation.Headers["X-Entity-Ref-ID"])
}

func TestDispatch_DefaultSubjects(t *testing.T) {
	mailer := &mockMailer{}
	d := NewDispatcher(mailer, Config{})
	defer d.Close()

	require.NoError(t, d.Dispatch(context.Background(), submission, models.ContactSettings{RecipientEmail: "owner@coteroyale.pl"}))
	d.Wait()

	sent := mailer.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, "Contact form message from Ala", sent[0].Subject)
	assert.Equal(t, DefaultConfirmationSubject, sent[1].Subject)
}

func TestDispatch_MissingRecipient(t *testing.T) {
	mailer := &mockMailer{}
	d := NewDispatcher(mailer, Config{})
	defer d.Close()

	err := d.Dispatch(context.Background(), submission, models.ContactSettings{})

	assert.ErrorIs(t, err, ErrRecipientNotConfigured)
	assert.Empty(t, mailer.messages())
}

func TestDispatch_OwnerFailureSkipsConfirmation(t *testing.T) {
	providerErr := errors.New("provider down")
	mailer := &mockMailer{SendFn: func(Message) error { return providerErr }}
	d := NewDispatcher(mailer, Config{})
	defer d.Close()

	err := d.Dispatch(context.Background(), submission, models.ContactSettings{RecipientEmail: "owner@coteroyale.pl"})
	d.Wait()

	assert.ErrorIs(t, err, ErrOwnerDelivery)
	assert.ErrorIs(t, err, providerErr)
	assert.Len(t, mailer.messages(), 1)
}

func TestDispatch_ConfirmationFailureIsNotPropagated(t *testing.T) {
	mailer := &mockMailer{SendFn: func(msg Message) error {
		if msg.To[0] == submission.Email {
			return errors.New("mailbox unavailable")
		}
		return nil
	}}

	var mu sync.Mutex
	var handled []error
	d := NewDispatcher(mailer, Config{}, WithErrorHandler(func(err error) {
		mu.Lock()
		handled = append(handled, err)
		mu.Unlock()
	}))
	defer d.Close()

	err := d.Dispatch(context.Background(), submission, models.ContactSettings{RecipientEmail: "owner@coteroyale.pl"})
	require.NoError(t, err)
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, handled, 1)
	assert.ErrorContains(t, handled[0], "mailbox unavailable")
	assert.Len(t, mailer.messages(), 2)
}

func TestDispatch_ConfirmationOutlivesRequestContext(t *testing.T) {
	release := make(chan struct{})
	mailer := &mockMailer{SendFn: func(msg Message) error {
		if msg.To[0] == submission.Email {
			<-release
		}
		return nil
	}}
	var handled []error
	d := NewDispatcher(mailer, Config{}, WithErrorHandler(func(err error) { handled = append(handled, err) }))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Dispatch(ctx, submission, models.ContactSettings{RecipientEmail: "owner@coteroyale.pl"}))
	cancel()

	close(release)
	d.Close()

	assert.Empty(t, handled)
	assert.Len(t, mailer.messages(), 2)
}

func TestOwnerSubject(t *testing.T) {
	assert.Equal(t, "Contact form message from Jan", OwnerSubject("", "Jan"))
	assert.Equal(t, "Jan wrote", OwnerSubject("{{name}} wrote", "Jan"))
	assert.Equal(t, "Jan and {{name}}", OwnerSubject("{{name}} and {{name}}", "Jan"))
	assert.Equal(t, "Static subject", OwnerSubject("Static subject", "Jan"))
}

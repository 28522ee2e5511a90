package notify

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/coteroyale/storefront/internal/metrics"
	"github.com/coteroyale/storefront/internal/models"
	"github.com/coteroyale/storefront/internal/patterns"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Default senders and subjects.
const (
	DefaultOwnerFrom           = "Contact Form <onboarding@resend.dev>"
	DefaultConfirmationFrom    = "Cote Royale <onboarding@resend.dev>"
	DefaultConfirmationSubject = "Thank you for contacting us"
)

var (
	// ErrRecipientNotConfigured means the CMS settings carry no owner address.
	ErrRecipientNotConfigured = errors.New("contact recipient email is not configured")

	// ErrOwnerDelivery means the message could not be delivered to the shop owner.
	ErrOwnerDelivery = errors.New("failed to send email to owner")
)

// Config configures a Dispatcher.
type Config struct {
	OwnerFrom        string
	ConfirmationFrom string
	// Concurrency caps how many confirmation emails are in flight.
	Concurrency int
	// ConfirmationTimeout bounds each detached confirmation send.
	ConfirmationTimeout time.Duration
}

// Dispatcher sends the owner notification synchronously and the submitter confirmation
// in the background. Confirmation failures never reach the caller.
type Dispatcher struct {
	mailer   Mailer
	cfg      Config
	bulkhead *patterns.Bulkhead
	now      func() time.Time

	errs    chan error
	onError func(error)
	pending sync.WaitGroup
	done    chan struct{}
	closed  sync.Once
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithErrorHandler replaces the logger that consumes confirmation failures.
func WithErrorHandler(fn func(error)) Option {
	return func(d *Dispatcher) { d.onError = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher creates a dispatcher and starts the goroutine that drains confirmation errors.
func NewDispatcher(mailer Mailer, cfg Config, opts ...Option) *Dispatcher {
	if cfg.OwnerFrom == "" {
		cfg.OwnerFrom = DefaultOwnerFrom
	}
	if cfg.ConfirmationFrom == "" {
		cfg.ConfirmationFrom = DefaultConfirmationFrom
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}
	if cfg.ConfirmationTimeout <= 0 {
		cfg.ConfirmationTimeout = patterns.DetachedTimeout
	}

	d := &Dispatcher{
		mailer:   mailer,
		cfg:      cfg,
		bulkhead: patterns.NewBulkhead(cfg.Concurrency, cfg.ConfirmationTimeout, "confirmation-email", "storefront-api"),
		now:      time.Now,
		errs:     make(chan error, cfg.Concurrency),
		onError: func(err error) {
			log.WithError(err).Error("Failed to send confirmation email")
		},
		done: make(chan struct{}),
	}
	for _, o := range opts {
		o(d)
	}

	go d.consumeErrors()
	return d
}

func (d *Dispatcher) consumeErrors() {
	defer close(d.done)
	for err := range d.errs {
		d.onError(err)
		d.pending.Done()
	}
}

// Dispatch delivers submission to the owner named in settings, then queues the confirmation.
func (d *Dispatcher) Dispatch(ctx context.Context, submission models.ContactSubmission, settings models.ContactSettings) error {
	if settings.RecipientEmail == "" {
		return ErrRecipientNotConfigured
	}

	html, err := render(ownerTemplate, ownerView{
		Name:    template.HTML(submission.Name),
		Email:   submission.Email,
		Message: template.HTML(submission.Message),
	})
	if err != nil {
		return fmt.Errorf("render owner email: %w", err)
	}

	owner := Message{
		From:    d.cfg.OwnerFrom,
		To:      []string{settings.RecipientEmail},
		ReplyTo: submission.Email,
		Subject: OwnerSubject(settings.SubjectTemplate, submission.Name),
		HTML:    html,
		Headers: map[string]string{"X-Entity-Ref-ID": d.refID("contact")},
	}

	if err := d.mailer.Send(ctx, owner); err != nil {
		metrics.EmailsSent.WithLabelValues("owner", "failed").Inc()
		return fmt.Errorf("%w: %w", ErrOwnerDelivery, err)
	}
	metrics.EmailsSent.WithLabelValues("owner", "sent").Inc()

	d.sendConfirmation(submission, settings.ConfirmationSubject)
	return nil
}

func (d *Dispatcher) sendConfirmation(submission models.ContactSubmission, subject string) {
	if subject == "" {
		subject = DefaultConfirmationSubject
	}

	d.pending.Add(1)
	go func() {
		ctx, cancel := patterns.Detached(d.cfg.ConfirmationTimeout)
		defer cancel()

		err := d.bulkhead.Execute(ctx, func(ctx context.Context) error {
			html, err := render(confirmationTemplate, confirmationView{Name: template.HTML(submission.Name)})
			if err != nil {
				return fmt.Errorf("render confirmation email: %w", err)
			}
			return d.mailer.Send(ctx, Message{
				From:    d.cfg.ConfirmationFrom,
				To:      []string{submission.Email},
				Subject: subject,
				HTML:    html,
				Headers: map[string]string{"X-Entity-Ref-ID": d.refID("confirmation")},
			})
		})
		if err != nil {
			metrics.EmailsSent.WithLabelValues("confirmation", "failed").Inc()
			d.errs <- fmt.Errorf("confirmation to %s: %w", submission.Email, err)
			return
		}
		metrics.EmailsSent.WithLabelValues("confirmation", "sent").Inc()
		d.pending.Done()
	}()
}

// Wait blocks until every queued confirmation has been sent or its failure handled.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

// Close waits for pending confirmations and stops the error consumer. Dispatch must not be
// called afterwards.
func (d *Dispatcher) Close() {
	d.closed.Do(func() {
		d.pending.Wait()
		close(d.errs)
		<-d.done
	})
}

func (d *Dispatcher) refID(kind string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s-%d-%s", kind, d.now().UnixMilli(), suffix)
}

// OwnerSubject fills the first {{name}} of tmpl, or falls back to a generic subject.
func OwnerSubject(tmpl, name string) string {
	if tmpl == "" {
		return "Contact form message from " + name
	}
	return strings.Replace(tmpl, "{{name}}", name, 1)
}

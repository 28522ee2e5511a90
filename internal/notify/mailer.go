// Package notify sends the transactional emails of the contact form.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coteroyale/storefront/internal/patterns"
	"github.com/go-resty/resty/v2"
)

// DefaultResendEndpoint is the Resend send-email API.
const DefaultResendEndpoint = "https://api.resend.com/emails"

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Headers map[string]string
}

// Mailer delivers a Message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// APIError is a non-2xx answer from the email provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("email provider returned status %d: %s", e.StatusCode, e.Body)
}

// permanent reports whether retrying later cannot help, so the breaker should not count it.
func (e *APIError) permanent() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

type resendRequest struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	ReplyTo string            `json:"reply_to,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	client   *resty.Client
	endpoint string
	apiKey   string
	circuit  *patterns.CircuitBreakerWrapper
}

// NewResendMailer creates a mailer. An empty endpoint means DefaultResendEndpoint.
func NewResendMailer(endpoint, apiKey string, timeout time.Duration) *ResendMailer {
	if endpoint == "" {
		endpoint = DefaultResendEndpoint
	}
	if timeout <= 0 {
		timeout = patterns.DefaultTimeout
	}
	return &ResendMailer{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0),
		endpoint: endpoint,
		apiKey:   apiKey,
		circuit: patterns.NewCircuitBreaker("Email", "storefront-api", patterns.BreakerSettings{}, func(err error) bool {
			var apiErr *APIError
			return err == nil || (errors.As(err, &apiErr) && apiErr.permanent())
		}),
	}
}

// Send posts msg to the provider.
func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	body := resendRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		ReplyTo: msg.ReplyTo,
		Headers: msg.Headers,
	}

	_, err := m.circuit.Execute(func() (interface{}, error) {
		resp, httpErr := m.client.R().
			SetContext(ctx).
			SetAuthToken(m.apiKey).
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			Post(m.endpoint)

		if httpErr != nil {
			return nil, fmt.Errorf("HTTP error: %w", httpErr)
		}

		if resp.IsError() {
			return nil, &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
		}

		var response resendResponse
		if err := json.Unmarshal(resp.Body(), &response); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}

		return response, nil
	})

	return err
}

package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coteroyale/storefront/internal/patterns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendMailer_Send(t *testing.T) {
	type captured struct {
		auth string
		body resendRequest
	}
	requests := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var c captured
		c.auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&c.body))
		requests <- c
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "re_test", time.Second)
	err := m.Send(context.Background(), Message{
		From:    DefaultOwnerFrom,
		To:      []string{"owner@coteroyale.pl"},
		ReplyTo: "ala@example.com",
		Subject: "Hi",
		HTML:    "<p>Hi</p>",
		Headers: map[string]string{"X-Entity-Ref-ID": "contact-1-abc"},
	})

	require.NoError(t, err)
	req := <-requests
	got := req.body
	assert.Equal(t, "Bearer re_test", req.auth)
	assert.Equal(t, DefaultOwnerFrom, got.From)
	assert.Equal(t, []string{"owner@coteroyale.pl"}, got.To)
	assert.Equal(t, "ala@example.com", got.ReplyTo)
	assert.Equal(t, "contact-1-abc", got.Headers["X-Entity-Ref-ID"])
}

func TestResendMailer_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "re_test", time.Second)
	err := m.Send(context.Background(), Message{To: []string{"x@example.com"}})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid from")
}

func TestResendMailer_BreakerOpensOnOutage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "re_test", time.Second)
	for i := 0; i < 3; i++ {
		assert.Error(t, m.Send(context.Background(), Message{}))
	}

	err := m.Send(context.Background(), Message{})

	assert.ErrorIs(t, err, patterns.ErrUpstreamUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestResendMailer_ClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	m := NewResendMailer(srv.URL, "re_test", time.Second)
	for i := 0; i < 5; i++ {
		err := m.Send(context.Background(), Message{})
		assert.NotErrorIs(t, err, patterns.ErrUpstreamUnavailable)
	}
	assert.Equal(t, "closed", m.circuit.GetState())
}

package patterns

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream returned 502")

func TestCircuitBreaker_PassesResults(t *testing.T) {
	cb := NewCircuitBreaker("cms-pass", "test", BreakerSettings{}, nil)

	res, err := cb.Execute(func() (interface{}, error) { return "ok", nil })

	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, "closed", cb.GetState())
	assert.Equal(t, 0, cb.GetStateValue())
	assert.Equal(t, "cms-pass", cb.Name())
}

func TestCircuitBreaker_TripsOnFailureRatio(t *testing.T) {
	cb := NewCircuitBreaker("cms-trip", "test", BreakerSettings{Timeout: time.Minute}, nil)

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, errUpstream })
		assert.ErrorIs(t, err, errUpstream)
	}
	assert.Equal(t, 1, cb.GetStateValue())

	called := false
	_, err := cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})

	assert.False(t, called)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorContains(t, err, "circuit breaker cms-trip is open")
}

func TestCircuitBreaker_IgnoresPermanentFailures(t *testing.T) {
	errNotFound := errors.New("not found")
	cb := NewCircuitBreaker("cms-permanent", "test", BreakerSettings{}, func(err error) bool {
		return err == nil || errors.Is(err, errNotFound)
	})

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, errNotFound })
		assert.ErrorIs(t, err, errNotFound)
	}

	assert.Equal(t, "closed", cb.GetState())
}

func TestFormatError(t *testing.T) {
	assert.Nil(t, FormatError("x", nil))
	assert.Equal(t, errUpstream, FormatError("x", errUpstream))

	err := FormatError("stripe", gobreaker.ErrTooManyRequests)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorContains(t, err, "half-open")
}

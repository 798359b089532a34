package utils

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
)

func TestNewBreaker_TripsAfterFailures(t *testing.T) {
	cb := NewBreaker[string]("test-provider", slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	boom := errors.New("boom")

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (string, error) { return "", boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	_, err := cb.Execute(func() (string, error) { return "ok", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestNewBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	rejected := errors.New("rejected")
	cb := NewBreaker[string]("test-client-errors", slog.New(slog.NewTextHandler(io.Discard, nil)),
		func(err error) bool { return errors.Is(err, rejected) })

	for i := 0; i < 10; i++ {
		_, err := cb.Execute(func() (string, error) { return "", rejected })
		assert.ErrorIs(t, err, rejected)
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
	got, err := cb.Execute(func() (string, error) { return "ok", nil })
	assert.NoError(t, err)
	assert.Equal(t, "ok", got)
}

package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(NewTransientError(errors.New("503"), 503)))
	assert.False(t, IsTransient(NewPermanentError(errors.New("400"), 400)))
	assert.False(t, IsTransient(errors.New("some app error")))
	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(errors.New("read tcp: i/o timeout")))
	assert.True(t, IsTransient(errors.New("context deadline exceeded")))
}

func TestIsTransientWrapped(t *testing.T) {
	inner := NewTransientError(errors.New("429 too many requests"), 429)
	wrapped := fmt.Errorf("fetch postal 018956: %w", inner)
	assert.True(t, IsTransient(wrapped))

	perm := fmt.Errorf("fetch postal 018956: %w", NewPermanentError(errors.New("403"), 403))
	assert.False(t, IsTransient(perm))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 301, 400, 403, 404, 410} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	te := NewTransientError(base, 500)
	assert.ErrorIs(t, te, base)
	assert.Equal(t, "boom", te.Error())

	pe := NewPermanentError(base, 404)
	assert.ErrorIs(t, pe, base)
	assert.Equal(t, "boom", pe.Error())
}

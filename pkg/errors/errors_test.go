package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error wins", New(ErrInvalidInput, http.StatusUnprocessableEntity, "bad"), http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("lookup: %w", ErrVerseNotFound), http.StatusNotFound},
		{"language", ErrUnsupportedLanguage, http.StatusBadRequest},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"unavailable", ErrResourceMissing, http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestMalformedWrapsSentinel(t *testing.T) {
	err := Malformed("corpus", 12, "expected %s", "sura|aya|text")
	assert.ErrorIs(t, err, ErrMalformedData)
	assert.Contains(t, err.Error(), "corpus: line 12: expected sura|aya|text")
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusBadRequest, "limit %d", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "invalid input: limit -1", err.Error())
}

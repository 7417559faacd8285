package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found helper", NotFound("review", "9"), http.StatusNotFound},
		{"invalid input helper", InvalidInput("bad value"), http.StatusBadRequest},
		{"already exists helper", AlreadyExists("review", "id", "9"), http.StatusConflict},
		{"unavailable helper", Unavailable("scraper down"), http.StatusBadGateway},
		{"internal helper", Internal(errors.New("boom")), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound},
		{"wrapped app error", fmt.Errorf("outer: %w", NotFound("review", "9")), http.StatusNotFound},
		{"unknown error", errors.New("mystery"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NotFound("product", "42")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Contains(t, err.Error(), "product with id 42 not found")
}

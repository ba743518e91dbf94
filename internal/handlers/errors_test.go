package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bible-concord-api/internal/models"
)

func TestHTTPErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("book name is required: %w", models.ErrInvalid), http.StatusBadRequest},
		{fmt.Errorf("book genesis: %w", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("phrase the beginning: %w", models.ErrConflict), http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		he, ok := httpError(tt.err).(*echo.HTTPError)
		if !ok {
			t.Fatalf("httpError(%v) is not *echo.HTTPError", tt.err)
		}
		if he.Code != tt.code {
			t.Errorf("httpError(%v) code = %d, want %d", tt.err, he.Code, tt.code)
		}
	}
}

package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickbox/tickbox/internal/handler/dto"
	"github.com/tickbox/tickbox/internal/middleware"
	"github.com/tickbox/tickbox/internal/service"
)

func TestFallbackHandlers(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantCode   string
	}{
		{"not found", NotFound, http.StatusNotFound, "NOT_FOUND"},
		{"method not allowed", MethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &service.ValidationError{Field: "email", Message: "email must be a valid email address"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"email taken", service.ErrEmailTaken, http.StatusBadRequest, "EMAIL_TAKEN"},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusBadRequest, "INVALID_CREDENTIALS"},
		{"not found", service.ErrTodoNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", fmt.Errorf("%w: %w", service.ErrUnauthorized, service.ErrTokenRevoked), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"store failure", errors.New("pq: relation todos does not exist"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, nil))

			rec := httptest.NewRecorder()
			writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/todos", nil), logger, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)

			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, body.Error, "relation", "internal detail must not leak")
				assert.Contains(t, logs.String(), "relation")
			} else {
				assert.Empty(t, logs.String())
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Text string `json:"text"`
	}

	t.Run("valid", func(t *testing.T) {
		var p payload
		rec := httptest.NewRecorder()
		ok := decodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi"}`)), &p)
		assert.True(t, ok)
		assert.Equal(t, "hi", p.Text)
	})

	t.Run("malformed", func(t *testing.T) {
		var p payload
		rec := httptest.NewRecorder()
		ok := decodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":`)), &p)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		var p payload
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"`+strings.Repeat("x", 64)+`"}`))
		// unknown length forces the limit to trip while decoding
		req.ContentLength = -1
		h := middleware.MaxBodySize(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decodeJSON(w, r, &p)
		}))
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "ipguard/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressRequest struct {
	Address string `json:"address"`
}

func (r *addressRequest) Normalize() { r.Address = strings.TrimSpace(r.Address) }

func (r *addressRequest) Validate() error {
	if r.Address == "" {
		return errors.New("address is required")
	}
	return nil
}

type coded struct {
	ID string `json:"id"`
}

func (r *coded) Validate() error {
	if r.ID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	return nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("normalizes before validating", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{"address":"  10.0.0.1 "}`))
		w := httptest.NewRecorder()

		req, ok := DecodeAndPrepare[addressRequest](w, r, logger, ctx, "req-1")
		require.True(t, ok)
		assert.Equal(t, "10.0.0.1", req.Address)
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{nope`))
		w := httptest.NewRecorder()

		req, ok := DecodeAndPrepare[addressRequest](w, r, logger, ctx, "req-2")
		assert.False(t, ok)
		assert.Nil(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeError(t, w)["error"])
	})

	t.Run("plain validation error maps to validation_error", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{"address":"  "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[addressRequest](w, r, logger, ctx, "req-3")
		assert.False(t, ok)
		body := decodeError(t, w)
		assert.Equal(t, "validation_error", body["error"])
		assert.Contains(t, body["error_description"], "address is required")
	})

	t.Run("domain error code is preserved", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[coded](w, r, logger, ctx, "req-4")
		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeError(t, w)["error"])
	})
}

func TestWriteError(t *testing.T) {
	t.Run("unknown errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("driver exploded"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal_error", decodeError(t, w)["error"])
	})

	t.Run("unavailable maps to 503", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeUnavailable, "trust store unavailable"))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "trust store unavailable", decodeError(t, w)["error_description"])
	})
}

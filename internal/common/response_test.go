package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteErrorAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("wrap: %w", BadRequest("INVALID_POLICY", "unknown tier policy", nil).WithDetails(map[string]any{"policy": "cheapest"}))
	WriteError(rec, err)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "INVALID_POLICY", body.Error.Code)
	require.Equal(t, "unknown tier policy", body.Error.Message)
	require.Equal(t, map[string]any{"policy": "cheapest"}, body.Error.Details)
}

func TestJSONKeepsMessageCharacters(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]string{"message": "Buy 3 & save <10%>"})
	require.Contains(t, rec.Body.String(), `"Buy 3 & save <10%>"`)
}

func TestWithDetailsDropsEmpty(t *testing.T) {
	err := Unprocessable("X", "msg", nil).WithDetails(map[string]any{})
	require.Nil(t, err.Details)
	require.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
}

func TestWriteErrorPlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "boom")
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewAppError("X", "msg", http.StatusTeapot, cause)
	require.ErrorIs(t, err, cause)
	require.True(t, IsAppError(fmt.Errorf("outer: %w", err)))
	require.Equal(t, "cause", err.Error())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:443"
	require.Equal(t, "203.0.113.5", ClientIP(req))

	req.Header.Set("X-Real-IP", "192.0.2.9")
	require.Equal(t, "192.0.2.9", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	require.Equal(t, "198.51.100.1", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "unknown, 198.51.100.7")
	require.Equal(t, "198.51.100.7", ClientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::ffff:203.0.113.8]:8443"
	require.Equal(t, "203.0.113.8", ClientIP(req))
}

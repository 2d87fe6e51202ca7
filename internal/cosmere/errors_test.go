package cosmere

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"not found status", &APIError{StatusCode: http.StatusNotFound}, KindNotFound},
		{"empty body", errEmptyBody, KindNotFound},
		{"unauthorized", &APIError{StatusCode: http.StatusUnauthorized}, KindUnauthorized},
		{"server error", &APIError{StatusCode: http.StatusInternalServerError}, KindHTTP},
		{"wrapped http", fmt.Errorf("load: %w", &APIError{StatusCode: http.StatusBadGateway}), KindHTTP},
		{"network", &NetworkError{Method: "GET", Path: "/x", Err: errors.New("connection refused")}, KindNetwork},
		{"canceled", fmt.Errorf("wrap: %w", context.Canceled), KindCanceled},
		{"other", errors.New("boom"), KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	netErr := &NetworkError{Err: errors.New("refused")}
	assert.True(t, Retryable(netErr, true))
	assert.False(t, Retryable(netErr, false), "writes are never retried")
	assert.True(t, Retryable(&APIError{StatusCode: 503}, true))
	assert.False(t, Retryable(&APIError{StatusCode: 404}, true))
	assert.False(t, Retryable(nil, true))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil, "load characters"))
	assert.Equal(t, "Not found", UserMessage(ErrNotFound, "load character"))
	assert.Equal(t, "Failed to load characters: could not reach the server",
		UserMessage(&NetworkError{Err: errors.New("refused")}, "load characters"))
	assert.Equal(t, "Failed to load characters: the request timed out",
		UserMessage(&NetworkError{Err: timeoutErr{}}, "load characters"))
	assert.Equal(t, "Failed to delete book (405): Method Not Allowed",
		UserMessage(&APIError{StatusCode: http.StatusMethodNotAllowed}, "delete book"))
	assert.Equal(t, "Failed to save world (422): name is required",
		UserMessage(&APIError{StatusCode: 422, Message: "name is required"}, "save world"))
	assert.Contains(t, UserMessage(&APIError{StatusCode: 401}, "x"), "cosmere login")
}

func TestAPIErrorMessage(t *testing.T) {
	assert.Equal(t, "api error (500): Internal Server Error", (&APIError{StatusCode: 500}).Error())
	assert.Equal(t, "Character not found", errorMessage([]byte(`{"detail":"Character not found"}`)))
	assert.Equal(t, `[{"loc":["body","name"]}]`, errorMessage([]byte(`{"detail":[{"loc":["body","name"]}]}`)))
	assert.Equal(t, "plain failure", errorMessage([]byte("plain failure\n")))
	assert.Equal(t, "", errorMessage(nil))
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/client/session"
)

type fakeSession struct {
	mu      sync.Mutex
	token   string
	cleared []session.Reason
}

func (f *fakeSession) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSession) ClearSession(_ context.Context, reason session.Reason) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared = append(f.cleared, reason)
	return nil
}

func (f *fakeSession) clears() []session.Reason {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]session.Reason(nil), f.cleared...)
}

func newClient(t *testing.T, h http.HandlerFunc, sess Session) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/api/"}, sess, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{}, nil, zerolog.Nop())
	require.Error(t, err)

	c, err := New(Config{}, &fakeSession{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	_, err = New(Config{BaseURL: "localhost:8000"}, &fakeSession{}, zerolog.Nop())
	require.Error(t, err)
}

func TestDoSendsHeadersAndBody(t *testing.T) {
	sess := &fakeSession{token: "tok-1"}
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cart", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]int{"product_id": 7, "quantity": 1}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"message":"ok","cart":{"id":1}}`)
	}, sess)

	var out struct {
		Message string `json:"message"`
	}
	err := c.Post(context.Background(), "/cart", map[string]int{"product_id": 7, "quantity": 1}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Message)
}

func TestDoOmitsAuthorizationWithoutToken(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}, &fakeSession{})

	out := map[string]string{"kept": "yes"}
	require.NoError(t, c.Get(context.Background(), "products", &out))
	assert.Equal(t, "yes", out["kept"])
}

func TestUnauthorizedClearsSession(t *testing.T) {
	sess := &fakeSession{token: "stale"}
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Unauthenticated."}`)
	}, sess)

	err := c.Get(context.Background(), "/cart", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []session.Reason{session.ReasonUnauthorized}, sess.clears())
	assert.Empty(t, sess.Token())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Unauthenticated.", apiErr.Message)
}

func TestUnauthorizedWithoutBodyUsesGenericMessage(t *testing.T) {
	sess := &fakeSession{token: "stale"}
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, sess)

	err := c.Do(context.Background(), http.MethodGet, "/user", nil, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Len(t, sess.clears(), 1)
	assert.Equal(t, msgUnauthorized, UserMessage(err))
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{"validation with fields", http.StatusUnprocessableEntity, `{"message":"Stok tidak cukup","errors":{"quantity":["too many"]}}`, ErrValidation, "Stok tidak cukup"},
		{"bad request", http.StatusBadRequest, `{"message":"Malformed JSON body"}`, ErrValidation, "Malformed JSON body"},
		{"not found", http.StatusNotFound, `{"message":"Not found"}`, ErrNotFound, "Not found"},
		{"forbidden without body", http.StatusForbidden, ``, ErrForbidden, msgForbidden},
		{"server html", http.StatusBadGateway, `<html>bad gateway</html>`, ErrServer, msgServer},
		{"conflict", http.StatusConflict, `{"message":"Already exists"}`, ErrServer, "Already exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &fakeSession{token: "t"}
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, sess)

			err := c.Get(context.Background(), "/x", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.message, UserMessage(err))
			assert.Empty(t, sess.clears())
		})
	}
}

func TestValidationFields(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"invalid","errors":{"email":["taken","bad"],"name":"required"}}`)
	}, &fakeSession{})

	err := c.Post(context.Background(), "/register", map[string]string{}, nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{"email", "name"}, apiErr.FieldNames())
	assert.Equal(t, "taken", apiErr.FieldMessage("email"))
	assert.Equal(t, "required", apiErr.FieldMessage("name"))
	assert.Empty(t, apiErr.FieldMessage("password"))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := New(Config{BaseURL: srv.URL}, &fakeSession{token: "t"}, zerolog.Nop())
	require.NoError(t, err)

	err = c.Get(context.Background(), "/products", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, msgTransport, UserMessage(err))
}

func TestCanceledContext(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, &fakeSession{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Get(ctx, "/products", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, msgCanceled, UserMessage(err))
}

func TestUndecodableSuccess(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}, &fakeSession{})

	var out map[string]any
	err := c.Get(context.Background(), "/products", &out)
	assert.ErrorIs(t, err, ErrServer)
}

func TestUserMessagePlainErrors(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
	assert.Equal(t, msgCanceled, UserMessage(context.Canceled))
}

func TestUnencodableBodyFailsBeforeSending(t *testing.T) {
	sent := false
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		sent = true
		w.WriteHeader(http.StatusOK)
	}, &fakeSession{token: "t"})

	err := c.Post(context.Background(), "/cart", map[string]any{"bad": make(chan int)}, nil)
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
	assert.False(t, sent)
}

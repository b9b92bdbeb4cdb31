package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/client/api"
	"storefront/internal/client/apitest"
	"storefront/internal/client/catalog"
	"storefront/internal/client/session"
	"storefront/internal/client/storefront"
)

func newTestApp(t *testing.T, srv *apitest.Server) *storefront.App {
	t.Helper()
	app, err := storefront.New(context.Background(), storefront.Options{
		API:     api.Config{BaseURL: srv.BaseURL()},
		Storage: session.NewMemoryStorage(),
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func TestDispatchUsageErrors(t *testing.T) {
	srv := apitest.New(t)
	app := newTestApp(t, srv)
	var out bytes.Buffer

	assert.ErrorIs(t, dispatch(context.Background(), app, &out, nil), errUsage)
	assert.ErrorIs(t, dispatch(context.Background(), app, &out, []string{"nope"}), errUsage)
	assert.ErrorIs(t, dispatch(context.Background(), app, &out, []string{"login", "only-email"}), errUsage)
	assert.ErrorIs(t, dispatch(context.Background(), app, &out, []string{"product", "abc"}), errUsage)
	assert.Contains(t, out.String(), "cart-add <product-id> [quantity]")
	assert.Empty(t, srv.Calls())
}

func TestDispatchGuards(t *testing.T) {
	srv := apitest.New(t)
	app := newTestApp(t, srv)
	ctx := context.Background()
	var out bytes.Buffer

	assert.ErrorIs(t, dispatch(ctx, app, &out, []string{"cart"}), errNeedLogin)
	assert.ErrorIs(t, dispatch(ctx, app, &out, []string{"admin-orders"}), errNeedLogin)

	require.NoError(t, app.Session.SetSession(ctx, "tok", session.RoleUser))
	assert.ErrorIs(t, dispatch(ctx, app, &out, []string{"admin-orders"}), errNeedAdmin)
	assert.ErrorIs(t, dispatch(ctx, app, &out, []string{"login", "a@b.c", "pw"}), errAlreadyAuth)
	assert.Empty(t, srv.Calls())
}

func TestDispatchLoginAndCart(t *testing.T) {
	srv := apitest.New(t)
	srv.Handle(http.MethodPost, "/login", http.StatusOK, `{"token":"abc","user":{"id":2,"name":"Buyer","role":"user"}}`)
	srv.Handle(http.MethodGet, "/cart", http.StatusOK, `{"id":1,"items":[]}`)
	srv.Handle(http.MethodGet, "/wishlist", http.StatusOK, `{"id":1,"items":[]}`)
	srv.Handle(http.MethodPost, "/cart", http.StatusOK, `{"message":"ok","cart":{"id":1,"items":[
		{"id":5,"product_id":7,"quantity":2,"product":{"id":7,"name":"Jam Tangan Kayu","price":"450000.00"}}]}}`)
	app := newTestApp(t, srv)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, dispatch(ctx, app, &out, []string{"login", "buyer@example.com", "password123"}))
	assert.Contains(t, out.String(), "Welcome, Buyer. Home: /")

	out.Reset()
	require.NoError(t, dispatch(ctx, app, &out, []string{"cart-add", "7", "2"}))
	assert.Contains(t, out.String(), "Jam Tangan Kayu")
	assert.Contains(t, out.String(), "Rp 900.000")
}

func TestDescribe(t *testing.T) {
	apiErr := &api.Error{Kind: api.KindValidation, Message: "invalid", Fields: map[string][]string{"email": {"taken"}}}
	assert.Equal(t, "invalid\n  email: taken", describe(apiErr))

	formErr := &catalog.FormError{Fields: map[string]string{"name": "Name is required."}}
	assert.Equal(t, "invalid product\n  name: Name is required.", describe(formErr))

	assert.Equal(t, "boom", describe(errors.New("boom")))
}

package orders

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/client/api"
	"storefront/internal/client/apitest"
	"storefront/internal/client/model"
	"storefront/internal/client/session"
)

func setup(t *testing.T, role string) (*Client, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	sess := apitest.Session(t, "tok", role)
	return New(apitest.Client(t, srv, sess), zerolog.Nop()), srv
}

func TestPlaceValidatesBeforeSending(t *testing.T) {
	c, srv := setup(t, session.RoleUser)
	items := []Item{{ProductID: 7, Quantity: 1}}

	tests := []struct {
		name string
		in   PlaceInput
		want error
	}{
		{"address", PlaceInput{Address: " ", PaymentMethod: "bca", Items: items}, ErrMissingAddress},
		{"payment", PlaceInput{Address: "Jl. Merdeka 1", PaymentMethod: "cash", Items: items}, ErrInvalidPaymentMethod},
		{"no items", PlaceInput{Address: "Jl. Merdeka 1", PaymentMethod: "ovo"}, ErrNoItems},
		{"bad item", PlaceInput{Address: "Jl. Merdeka 1", PaymentMethod: "ovo", Items: []Item{{ProductID: 7}}}, ErrInvalidItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Place(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, srv.Calls())
}

func TestPlaceSendsNormalizedOrder(t *testing.T) {
	c, srv := setup(t, session.RoleUser)
	srv.Handle(http.MethodPost, "/orders", http.StatusCreated,
		`{"message":"Order placed","order":{"id":12,"status":"Menunggu Konfirmasi","total_price":"20000.00","items":[{"id":1,"product_id":7,"quantity":2,"price":10000}]}}`)

	o, err := c.Place(context.Background(), PlaceInput{Address: " Jl. Merdeka 1 ", PaymentMethod: "GoPay", Items: []Item{{ProductID: 7, Quantity: 2}}})
	require.NoError(t, err)
	assert.Equal(t, int64(12), o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.InDelta(t, 20000, o.TotalPrice.Float64(), 0.001)
	assert.JSONEq(t, `{"address":"Jl. Merdeka 1","payment_method":"gopay","items":[{"product_id":7,"quantity":2}]}`, srv.Last().Body)
}

func TestPlaceServerValidation(t *testing.T) {
	c, srv := setup(t, session.RoleUser)
	srv.Handle(http.MethodPost, "/orders", http.StatusUnprocessableEntity, `{"message":"invalid","errors":{"items.0.quantity":["Stok tidak mencukupi"]}}`)

	_, err := c.Place(context.Background(), PlaceInput{Address: "x", PaymentMethod: "bca", Items: []Item{{ProductID: 7, Quantity: 50}}})
	assert.ErrorIs(t, err, api.ErrValidation)
}

func TestListAcceptsBothShapes(t *testing.T) {
	c, srv := setup(t, session.RoleAdmin)
	srv.Handle(http.MethodGet, "/orders", http.StatusOK, `{"data":[{"id":1,"status":"Selesai"},{"id":2,"status":"Menunggu Konfirmasi"}]}`)
	srv.Handle(http.MethodGet, "/admin/orders", http.StatusOK, `[{"id":3,"status":"Menunggu Konfirmasi"}]`)

	mine, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	assert.Equal(t, 1, PendingCount(mine))

	all, err := c.AdminList(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(3), all[0].ID)
}

func TestConfirm(t *testing.T) {
	c, srv := setup(t, session.RoleAdmin)
	srv.Handle(http.MethodPut, "/orders/3/confirm", http.StatusOK, `{"message":"ok","order":{"id":3,"status":"Selesai"}}`)

	o, err := c.Confirm(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, o.Status)

	_, err = c.Confirm(context.Background(), 4)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestItemsFromCart(t *testing.T) {
	cart := model.CartSnapshot{Items: []model.CartItem{
		{ID: 1, ProductID: 7, Quantity: 2},
		{ID: 2, Quantity: 1, Product: model.ProductRef{ID: 9}},
	}}
	assert.Equal(t, []Item{{ProductID: 7, Quantity: 2}, {ProductID: 9, Quantity: 1}}, ItemsFromCart(cart))
	assert.Empty(t, ItemsFromCart(model.CartSnapshot{}))
}

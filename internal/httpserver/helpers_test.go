package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/repository/memory"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	usersvc "storefront/internal/service/user"
	wishlistsvc "storefront/internal/service/wishlist"
)

type testAPI struct {
	t       *testing.T
	router  *gin.Engine
	product *domain.Product
}

// memoryDeps wires the real services over an in-memory store.
func memoryDeps(store *memory.Store) (Deps, *usersvc.Service, *categorysvc.Service, *productsvc.Service) {
	users := usersvc.New(store.Users(), store.Tokens(), time.Hour, zerolog.Nop())
	categories := categorysvc.New(store.Categories())
	products := productsvc.New(store.Products(), store.Categories())
	return Deps{
		AuthSvc:     users,
		CartSvc:     cartsvc.New(store.Carts(), store.Products()),
		WishlistSvc: wishlistsvc.New(store.Wishlists(), store.Products()),
		OrderSvc:    ordersvc.New(store.Orders(), store.Products(), zerolog.Nop()),
		ProductSvc:  products,
		CategorySvc: categories,
	}, users, categories, products
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	deps, users, categories, products := memoryDeps(memory.New())

	_, err := users.EnsureAdmin(ctx, "Admin", "admin@gmail.com", "12345678")
	require.NoError(t, err)
	_, err = users.Register(ctx, usersvc.RegisterInput{
		Name: "Buyer", Email: "buyer@example.com", Password: "password123", PasswordConfirmation: "password123",
	})
	require.NoError(t, err)

	cat, err := categories.Ensure(ctx, "Sepatu")
	require.NoError(t, err)
	price := 150000.0
	p, err := products.Create(ctx, productsvc.Input{Name: "Sneakers", Price: &price, Stock: 10, CategoryID: &cat.ID})
	require.NoError(t, err)

	router, err := buildRouter(zerolog.Nop(), deps, Options{})
	require.NoError(t, err)
	return &testAPI{t: t, router: router, product: p}
}

func (a *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(email, password string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp loginResponse
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(a.t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

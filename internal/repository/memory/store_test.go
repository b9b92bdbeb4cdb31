package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func seedShop(t *testing.T, s *Store) (*domain.User, *domain.Product) {
	t.Helper()
	ctx := context.Background()

	u, err := s.Users().Create(ctx, domain.User{Name: "Buyer", Email: "Buyer@Example.com", PasswordHash: "x"})
	require.NoError(t, err)

	cat, err := s.Categories().Upsert(ctx, domain.Category{Name: "Shoes", Slug: "shoes"})
	require.NoError(t, err)

	p, err := s.Products().Create(ctx, domain.Product{Name: "Runner", Price: 150000, Stock: 3, CategoryID: &cat.ID})
	require.NoError(t, err)
	return u, p
}

func TestUsers_EmailIsCaseInsensitiveAndUnique(t *testing.T) {
	s := New()
	u, _ := seedShop(t, s)
	ctx := context.Background()

	assert.Equal(t, "buyer@example.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)

	got, err := s.Users().GetByEmail(ctx, "BUYER@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Users().Create(ctx, domain.User{Email: "buyer@example.com"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestCart_AddMergesAndHydratesProducts(t *testing.T) {
	s := New()
	u, p := seedShop(t, s)
	ctx := context.Background()
	carts := s.Carts()

	c, err := carts.GetOrCreateByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	require.NoError(t, carts.AddItem(ctx, c.ID, p.ID, 1))
	require.NoError(t, carts.AddItem(ctx, c.ID, p.ID, 2))

	c, err = carts.GetOrCreateByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, "Runner", c.Items[0].Product.Name)
	require.NotNil(t, c.Items[0].Product.Category)
	assert.Equal(t, "shoes", c.Items[0].Product.Category.Slug)

	assert.ErrorIs(t, carts.AddItem(ctx, c.ID, 999, 1), domain.ErrNotFound)
	assert.ErrorIs(t, carts.SetItemQuantity(ctx, c.ID+1, c.Items[0].ID, 5), domain.ErrNotFound)

	require.NoError(t, carts.Clear(ctx, c.ID))
	c, err = carts.GetOrCreateByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestWishlist_AddIsIdempotent(t *testing.T) {
	s := New()
	u, p := seedShop(t, s)
	ctx := context.Background()
	lists := s.Wishlists()

	wl, err := lists.GetOrCreateByUser(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, lists.AddItem(ctx, wl.ID, p.ID))
	require.NoError(t, lists.AddItem(ctx, wl.ID, p.ID))

	wl, err = lists.GetOrCreateByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, wl.Items, 1)

	require.NoError(t, lists.RemoveItem(ctx, wl.ID, wl.Items[0].ID))
	assert.ErrorIs(t, lists.RemoveItem(ctx, wl.ID, wl.Items[0].ID), domain.ErrNotFound)
}

func TestProductDelete_CascadesToBaskets(t *testing.T) {
	s := New()
	u, p := seedShop(t, s)
	ctx := context.Background()

	c, err := s.Carts().GetOrCreateByUser(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, s.Carts().AddItem(ctx, c.ID, p.ID, 1))

	require.NoError(t, s.Products().Delete(ctx, p.ID))

	c, err = s.Carts().GetOrCreateByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestOrders_NewestFirstAndStatusUpdate(t *testing.T) {
	s := New()
	u, p := seedShop(t, s)
	ctx := context.Background()
	orders := s.Orders()

	for i := 0; i < 2; i++ {
		_, err := orders.Create(ctx, domain.Order{
			UserID:        u.ID,
			Address:       "Jl. Merdeka 1",
			PaymentMethod: "bca",
			Status:        domain.OrderStatusPending,
			TotalPrice:    p.Price,
			Items:         []domain.OrderItem{{ProductID: p.ID, Quantity: 1, Price: p.Price}},
		})
		require.NoError(t, err)
	}

	list, err := orders.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Greater(t, list[0].ID, list[1].ID)
	require.NotNil(t, list[0].Items[0].Product)

	require.NoError(t, orders.UpdateStatus(ctx, list[0].ID, domain.OrderStatusCompleted))
	got, err := orders.GetByID(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, got.Status)

	assert.ErrorIs(t, orders.UpdateStatus(ctx, 999, domain.OrderStatusCompleted), domain.ErrNotFound)
}

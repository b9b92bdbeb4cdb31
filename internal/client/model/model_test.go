package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountAcceptsNumbersAndStrings(t *testing.T) {
	var p ProductRef
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"A","price":"150000.50"}`), &p))
	assert.InDelta(t, 150000.5, p.Price.Float64(), 0.0001)

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"A","price":99000}`), &p))
	assert.InDelta(t, 99000, p.Price.Float64(), 0.0001)

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"A","price":null}`), &p))
	assert.Zero(t, p.Price)

	assert.Error(t, json.Unmarshal([]byte(`{"price":"abc"}`), &p))
}

func TestAmountRupiah(t *testing.T) {
	assert.Equal(t, "Rp 0", Amount(0).Rupiah())
	assert.Equal(t, "Rp 999", Amount(999).Rupiah())
	assert.Equal(t, "Rp 1.250.000", Amount(1250000).Rupiah())
	assert.Equal(t, "Rp 150.001", Amount(150000.5).Rupiah())
	assert.Equal(t, "-Rp 2", Amount(-1.7).Rupiah())
	assert.Equal(t, "-Rp 1", Amount(-1.2).Rupiah())
	assert.Equal(t, "-Rp 1.500", Amount(-1500).Rupiah())
}

func TestCartTotals(t *testing.T) {
	c := CartSnapshot{Items: []CartItem{
		{ID: 1, ProductID: 7, Quantity: 2, Product: ProductRef{ID: 7, Price: 10000}},
		{ID: 2, ProductID: 9, Quantity: 1, Product: ProductRef{ID: 9, Price: 2500.5}},
	}}
	assert.Equal(t, 3, c.TotalQuantity())
	assert.InDelta(t, 22500.5, c.TotalPrice(), 0.0001)

	empty := CartSnapshot{}
	assert.Equal(t, 0, empty.TotalQuantity())
	assert.Zero(t, empty.TotalPrice())
}

func TestCloneIsDeep(t *testing.T) {
	c := CartSnapshot{ID: 1, Items: []CartItem{{ID: 1, Quantity: 1, Product: ProductRef{Category: &CategoryRef{Name: "A"}}}}}
	cp := c.Clone()
	cp.Items[0].Quantity = 5
	cp.Items[0].Product.Category.Name = "B"
	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, "A", c.Items[0].Product.Category.Name)
}

func TestWishlistContains(t *testing.T) {
	w := WishlistSnapshot{Items: []WishlistItem{
		{ID: 1, ProductID: 7},
		{ID: 2, Product: ProductRef{ID: 9}},
	}}
	assert.True(t, w.Contains(7))
	assert.True(t, w.Contains(9))
	assert.False(t, w.Contains(1))
	assert.False(t, WishlistSnapshot{}.Contains(7))
}

func TestDecodeListShapes(t *testing.T) {
	bare, err := DecodeList[Order](json.RawMessage(`[{"id":1,"status":"Selesai"}]`))
	require.NoError(t, err)
	require.Len(t, bare, 1)

	wrapped, err := DecodeList[Order](json.RawMessage(`{"data":[{"id":1},{"id":2}]}`))
	require.NoError(t, err)
	assert.Len(t, wrapped, 2)

	empty, err := DecodeList[Order](json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = DecodeList[Order](json.RawMessage(`"nope"`))
	assert.Error(t, err)
}

func TestDecodeItemShapes(t *testing.T) {
	p, err := DecodeItem[Product](json.RawMessage(`{"data":{"id":7,"name":"Jam","price":"450000","stock":3}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, 3, p.Stock)

	p, err = DecodeItem[Product](json.RawMessage(`{"id":8,"name":"Topi","price":55000,"category_id":2}`))
	require.NoError(t, err)
	assert.Equal(t, "Topi", p.Name)
	require.NotNil(t, p.CategoryID)
	assert.Equal(t, int64(2), *p.CategoryID)
}

package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/repository/memory"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Fashion":            "fashion",
		"  Rumah & Dapur ":   "rumah-dapur",
		"Elektronik--Gadget": "elektronik-gadget",
		"!!!":                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestEnsureReusesSlug(t *testing.T) {
	svc := New(memory.New().Categories())
	ctx := context.Background()

	first, err := svc.Ensure(ctx, "Rumah & Dapur")
	require.NoError(t, err)
	second, err := svc.Ensure(ctx, "rumah dapur")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.Ensure(ctx, " ")
	assert.True(t, domain.IsValidation(err))
}

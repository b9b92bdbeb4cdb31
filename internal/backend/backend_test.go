package backend

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
)

func TestOpenWithoutDSNUsesMemory(t *testing.T) {
	b, err := Open(context.Background(), config.ServerConfig{TokenTTL: time.Hour}, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.Pool)
	deps := b.Deps()
	assert.Nil(t, deps.DB)
	assert.NotNil(t, deps.AuthSvc)

	cat, err := b.Categories.Ensure(context.Background(), "Aksesoris")
	require.NoError(t, err)
	assert.Equal(t, "aksesoris", cat.Slug)
}

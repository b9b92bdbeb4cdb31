package cart

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/client/api"
	"storefront/internal/client/apitest"
	"storefront/internal/client/model"
	"storefront/internal/client/session"
)

const twoLineCart = `{"id":3,"items":[
	{"id":10,"product_id":7,"quantity":2,"product":{"id":7,"name":"Jam","price":"10000.00"}},
	{"id":11,"product_id":8,"quantity":1,"product":{"id":8,"name":"Topi","price":5000}}
]}`

func setup(t *testing.T, token string) (*Synchronizer, *apitest.Server, *session.Store) {
	t.Helper()
	srv := apitest.New(t)
	sess := apitest.Session(t, token, session.RoleUser)
	return New(apitest.Client(t, srv, sess), sess, zerolog.Nop()), srv, sess
}

func TestFetchWithoutTokenSkipsNetwork(t *testing.T) {
	s, srv, _ := setup(t, "")
	require.NoError(t, s.Fetch(context.Background()))
	assert.Empty(t, srv.Calls())
	assert.False(t, s.Loaded())
	assert.Empty(t, s.Snapshot().Items)
}

func TestFetchReplacesState(t *testing.T) {
	s, srv, _ := setup(t, "tok")
	srv.Handle(http.MethodGet, "/cart", http.StatusOK, twoLineCart)

	require.NoError(t, s.Fetch(context.Background()))
	assert.True(t, s.Loaded())
	assert.False(t, s.Loading())
	assert.Equal(t, "Bearer tok", srv.Last().Auth)

	snap := s.Snapshot()
	require.Len(t, snap.Items, 2)
	assert.Equal(t, int64(3), snap.ID)
	assert.Equal(t, 3, s.Count())
	assert.InDelta(t, 25000, s.Total(), 0.001)
}

func TestMutationsAdoptServerSnapshot(t *testing.T) {
	s, srv, _ := setup(t, "tok")
	srv.Handle(http.MethodGet, "/cart", http.StatusOK, twoLineCart)
	require.NoError(t, s.Fetch(context.Background()))

	// The server merges the add into the existing line; nothing is
	// appended locally.
	srv.Handle(http.MethodPost, "/cart", http.StatusOK, `{"message":"ok","cart":{"id":3,"items":[
		{"id":10,"product_id":7,"quantity":3,"product":{"id":7,"name":"Jam","price":10000}}
	]}}`)
	require.NoError(t, s.Add(context.Background(), 7, 1))
	assert.JSONEq(t, `{"product_id":7,"quantity":1}`, srv.Last().Body)
	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 3, snap.Items[0].Quantity)

	srv.Handle(http.MethodPut, "/cart/10", http.StatusOK, `{"message":"ok","cart":{"id":3,"items":[
		{"id":10,"product_id":7,"quantity":5,"product":{"id":7,"name":"Jam","price":10000}}
	]}}`)
	require.NoError(t, s.SetQuantity(context.Background(), 10, 5))
	assert.JSONEq(t, `{"quantity":5}`, srv.Last().Body)
	assert.Equal(t, 5, s.Count())

	srv.Handle(http.MethodDelete, "/cart/10", http.StatusOK, `{"message":"ok","cart":{"id":3,"items":[]}}`)
	require.NoError(t, s.Remove(context.Background(), 10))
	assert.Empty(t, s.Snapshot().Items)
	assert.True(t, s.Loaded())
}

func TestNonPositiveQuantityNeverSent(t *testing.T) {
	s, srv, _ := setup(t, "tok")
	for _, q := range []int{0, -1} {
		assert.ErrorIs(t, s.Add(context.Background(), 7, q), ErrInvalidQuantity)
		assert.ErrorIs(t, s.SetQuantity(context.Background(), 10, q), ErrInvalidQuantity)
	}
	assert.Empty(t, srv.Calls())
}

func TestFailureLeavesStateUnchanged(t *testing.T) {
	s, srv, _ := setup(t, "tok")
	srv.Handle(http.MethodGet, "/cart", http.StatusOK, twoLineCart)
	require.NoError(t, s.Fetch(context.Background()))
	before := s.Snapshot()

	srv.Handle(http.MethodPost, "/cart", http.StatusUnprocessableEntity, `{"message":"Stok tidak mencukupi"}`)
	err := s.Add(context.Background(), 7, 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrValidation)
	assert.Equal(t, "Stok tidak mencukupi", api.UserMessage(err))
	assert.Equal(t, before, s.Snapshot())
}

func TestSuccessWithoutSnapshotIsFailure(t *testing.T) {
	s, srv, _ := setup(t, "tok")
	srv.Handle(http.MethodGet, "/cart", http.StatusOK, twoLineCart)
	require.NoError(t, s.Fetch(context.Background()))

	srv.Handle(http.MethodPost, "/cart", http.StatusOK, `{"message":"ok"}`)
	err := s.Add(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrMissingSnapshot)
	assert.Equal(t, 3, s.Count())
}

func TestClearEmptiesWhateverTheBody(t *testing.T) {
	bodies := []string{`{"message":"Cart cleared"}`, `{"message":"ok","cart":{"id":3,"items":[{"id":1,"quantity":4}]}}`, ``}
	for _, body := range bodies {
		s, srv, _ := setup(t, "tok")
		srv.Handle(http.MethodGet, "/cart", http.StatusOK, twoLineCart)
		require.NoError(t, s.Fetch(context.Background()))

		srv.Handle(http.MethodDelete, "/cart-clear", http.StatusOK, body)
		require.NoError(t, s.Clear(context.Background()))
		snap := s.Snapshot()
		assert.NotNil(t, snap.Items)
		assert.Empty(t, snap.Items)
		assert.Equal(t, int64(3), snap.ID)
		assert.Zero(t, s.Count())
	}
}

func TestClearFailureKeepsItems(t *testing.T) {
	s, srv, _ := setup(t, "tok")
	srv.Handle(http.MethodGet, "/cart", http.StatusOK, twoLineCart)
	require.NoError(t, s.Fetch(context.Background()))

	srv.Handle(http.MethodDelete, "/cart-clear", http.StatusInternalServerError, `{"message":"Internal server error"}`)
	assert.ErrorIs(t, s.Clear(context.Background()), api.ErrServer)
	assert.Equal(t, 3, s.Count())
}

func TestUnauthorizedClearsSession(t *testing.T) {
	s, srv, sess := setup(t, "tok")
	srv.Handle(http.MethodPost, "/cart", http.StatusUnauthorized, `{"message":"Unauthenticated."}`)

	err := s.Add(context.Background(), 7, 1)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Empty(t, sess.Token())
	assert.Empty(t, sess.Role())
	assert.False(t, s.Loaded())
}

func TestResetAndClose(t *testing.T) {
	s, srv, _ := setup(t, "tok")
	srv.Handle(http.MethodGet, "/cart", http.StatusOK, twoLineCart)
	require.NoError(t, s.Fetch(context.Background()))

	s.Reset()
	assert.False(t, s.Loaded())
	assert.Zero(t, s.Count())

	s.Close()
	assert.ErrorIs(t, s.Fetch(context.Background()), ErrClosed)
	assert.ErrorIs(t, s.Add(context.Background(), 7, 1), ErrClosed)
	assert.ErrorIs(t, s.Clear(context.Background()), ErrClosed)
	assert.Equal(t, 1, srv.Count(http.MethodGet, "/cart"))
}

func TestResetDiscardsLateResponse(t *testing.T) {
	s, srv, _ := setup(t, "tok")
	arrived := make(chan struct{})
	release := make(chan struct{})
	srv.HandleFunc(http.MethodGet, "/cart", func(w http.ResponseWriter, _ *http.Request) {
		close(arrived)
		<-release
		apitest.Reply(w, http.StatusOK, twoLineCart)
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Fetch(context.Background()))
	}()
	<-arrived
	s.Reset()
	close(release)
	wg.Wait()

	assert.False(t, s.Loaded())
	assert.Equal(t, model.CartSnapshot{Items: []model.CartItem{}}, s.Snapshot())
}

package tokenstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/tokenstore"
	"github.com/stretchr/testify/require"
)

// runContract exercises the behaviour every Store driver must share.
func runContract(t *testing.T, st tokenstore.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := st.Get(ctx, "missing")
		require.ErrorIs(t, err, tokenstore.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, st.Set(ctx, "k1", []byte(`{"user_id":"u"}`), time.Minute))

		got, err := st.Get(ctx, "k1")
		require.NoError(t, err)
		require.JSONEq(t, `{"user_id":"u"}`, string(got))
	})

	t.Run("set replaces", func(t *testing.T) {
		require.NoError(t, st.Set(ctx, "k2", []byte("a"), time.Minute))
		require.NoError(t, st.Set(ctx, "k2", []byte("b"), time.Minute))

		got, err := st.Get(ctx, "k2")
		require.NoError(t, err)
		require.Equal(t, "b", string(got))
	})

	t.Run("delete counts existing keys", func(t *testing.T) {
		require.NoError(t, st.Set(ctx, "d1", []byte("x"), time.Minute))
		require.NoError(t, st.Set(ctx, "d2", []byte("y"), time.Minute))

		n, err := st.Delete(ctx, "d1", "d2", "nope")
		require.NoError(t, err)
		require.EqualValues(t, 2, n)

		n, err = st.Delete(ctx, "d1")
		require.NoError(t, err)
		require.EqualValues(t, 0, n)

		_, err = st.Get(ctx, "d2")
		require.ErrorIs(t, err, tokenstore.ErrNotFound)
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		require.ErrorIs(t, st.Set(ctx, "bad", []byte("x"), 0), tokenstore.ErrInvalidTTL)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, st.Ping(ctx))
	})
}

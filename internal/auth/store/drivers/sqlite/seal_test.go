package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"github.com/aussiebroadwan/beatme/internal/auth/store"
	"github.com/aussiebroadwan/beatme/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/beatme/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func openFile(t *testing.T, path string, opts ...sqlite.Option) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore(sqlite.FileDSN(path), opts...)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSealedProviderTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "auth.db")

	sealer, err := cryptox.NewSealer([]byte("provider-token-key"))
	require.NoError(t, err)

	sealed := openFile(t, path, sqlite.WithSealer(sealer))
	plain := openFile(t, path)

	require.NoError(t, sealed.Accounts().CreateAccount(ctx, spotifyAccount("acc-sealed", "sp-sealed")))

	t.Run("round trip through the sealer", func(t *testing.T) {
		got, err := sealed.Accounts().FindAccount(ctx, domain.ProviderSpotify, "sp-sealed")
		require.NoError(t, err)
		require.Equal(t, "sp-access", got.AccessToken)
		require.Equal(t, "sp-refresh", got.RefreshToken)
	})

	t.Run("unreadable without the key", func(t *testing.T) {
		_, err := plain.Accounts().FindAccount(ctx, domain.ProviderSpotify, "sp-sealed")
		require.ErrorIs(t, err, cryptox.ErrUnseal)
	})

	t.Run("rows written in the clear still read", func(t *testing.T) {
		require.NoError(t, plain.Accounts().CreateAccount(ctx, spotifyAccount("acc-plain", "sp-plain")))

		got, err := sealed.Accounts().FindAccount(ctx, domain.ProviderSpotify, "sp-plain")
		require.NoError(t, err)
		require.Equal(t, "sp-access", got.AccessToken)
	})

	t.Run("updates are sealed inside a transaction", func(t *testing.T) {
		require.NoError(t, sealed.Users().CreateUser(ctx, domain.User{ID: "user-sealed"}))
		require.NoError(t, sealed.Accounts().LinkAccount(ctx, "user-sealed", "acc-plain"))

		acc, err := sealed.Accounts().FindAccount(ctx, domain.ProviderSpotify, "sp-plain")
		require.NoError(t, err)
		acc.Apply(domain.Profile{ExternalID: "sp-plain"}, domain.ProviderToken{AccessToken: "rotated"})
		require.NoError(t, sealed.WithTx(ctx, func(tx store.Tx) error {
			return tx.Accounts().UpdateAccount(ctx, acc)
		}))

		got, err := sealed.Accounts().FindUserAccount(ctx, "user-sealed", domain.ProviderSpotify)
		require.NoError(t, err)
		require.Equal(t, "rotated", got.AccessToken)

		_, err = plain.Accounts().FindAccount(ctx, domain.ProviderSpotify, "sp-plain")
		require.ErrorIs(t, err, cryptox.ErrUnseal)
	})
}

func TestFileForeignKeysOnEveryConnection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openFile(t, filepath.Join(t.TempDir(), "auth.db"))

	require.NoError(t, st.Accounts().CreateAccount(ctx, spotifyAccount("acc-1", "sp-1")))

	// Pin one connection so the link below runs on another.
	tx, err := st.Tx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	err = st.Accounts().LinkAccount(ctx, "ghost", "acc-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

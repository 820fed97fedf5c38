package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"github.com/aussiebroadwan/beatme/internal/auth/store"
	"github.com/aussiebroadwan/beatme/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func spotifyAccount(id, external string) domain.AuthAccount {
	return domain.NewAuthAccount(id, domain.ProviderSpotify,
		domain.Profile{ExternalID: external, Name: "DJ", Image: "img", URL: "https://open.spotify.com/user/" + external},
		domain.ProviderToken{AccessToken: "sp-access", RefreshToken: "sp-refresh", ExpiresAt: 1700000000},
	)
}

func TestAccountLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)

	require.NoError(t, st.Users().CreateUser(ctx, domain.User{ID: "user-1"}))
	require.NoError(t, st.Accounts().CreateAccount(ctx, spotifyAccount("acc-1", "sp-1")))
	require.NoError(t, st.Accounts().LinkAccount(ctx, "user-1", "acc-1"))

	t.Run("find by provider identity", func(t *testing.T) {
		got, err := st.Accounts().FindAccount(ctx, domain.ProviderSpotify, "sp-1")
		require.NoError(t, err)
		require.Equal(t, "acc-1", got.ID)
		require.Equal(t, "sp-refresh", got.RefreshToken)
		require.NotNil(t, got.ExpiresAt)
		require.EqualValues(t, 1700000000, *got.ExpiresAt)
	})

	t.Run("same external id at another provider is distinct", func(t *testing.T) {
		_, err := st.Accounts().FindAccount(ctx, domain.ProviderGoogle, "sp-1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate identity is rejected", func(t *testing.T) {
		err := st.Accounts().CreateAccount(ctx, spotifyAccount("acc-2", "sp-1"))
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("owner", func(t *testing.T) {
		owner, err := st.Accounts().GetAccountOwner(ctx, "acc-1")
		require.NoError(t, err)
		require.Equal(t, "user-1", owner)
	})

	t.Run("account has a single owner", func(t *testing.T) {
		require.NoError(t, st.Users().CreateUser(ctx, domain.User{ID: "user-2"}))
		err := st.Accounts().LinkAccount(ctx, "user-2", "acc-1")
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("update overwrites credentials", func(t *testing.T) {
		acc, err := st.Accounts().FindAccount(ctx, domain.ProviderSpotify, "sp-1")
		require.NoError(t, err)

		acc.Apply(domain.Profile{ExternalID: "sp-1", Name: "DJ 2"}, domain.ProviderToken{AccessToken: "new"})
		require.NoError(t, st.Accounts().UpdateAccount(ctx, acc))

		got, err := st.Accounts().FindUserAccount(ctx, "user-1", domain.ProviderSpotify)
		require.NoError(t, err)
		require.Equal(t, "DJ 2", got.Name)
		require.Equal(t, "new", got.AccessToken)
		require.Equal(t, "sp-refresh", got.RefreshToken)
		require.Nil(t, got.ExpiresAt)
	})

	t.Run("update of unknown account", func(t *testing.T) {
		err := st.Accounts().UpdateAccount(ctx, domain.AuthAccount{ID: "missing"})
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestListAccountsByUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)

	require.NoError(t, st.Users().CreateUser(ctx, domain.User{ID: "user-1"}))
	for _, id := range []string{"acc-a", "acc-b"} {
		require.NoError(t, st.Accounts().CreateAccount(ctx, spotifyAccount(id, "ext-"+id)))
		require.NoError(t, st.Accounts().LinkAccount(ctx, "user-1", id))
	}

	accounts, err := st.Accounts().ListAccountsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	require.Equal(t, "acc-a", accounts[0].ID)
	require.Equal(t, "acc-b", accounts[1].ID)

	none, err := st.Accounts().ListAccountsByUser(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newStore(t)

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, domain.User{ID: "user-1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Users().GetUserByID(ctx, "user-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

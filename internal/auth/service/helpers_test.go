package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"github.com/aussiebroadwan/beatme/internal/auth/provider"
	"github.com/aussiebroadwan/beatme/internal/auth/service"
	"github.com/aussiebroadwan/beatme/internal/auth/store"
	"github.com/aussiebroadwan/beatme/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/beatme/internal/auth/tokenstore"
	"github.com/aussiebroadwan/beatme/pkg/jwtx"
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

// clock is a settable time source shared by the token service and the JWT
// verifier.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Unix(1_700_000_000, 0)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingStore records token store reads so tests can assert a lookup never
// happened.
type countingStore struct {
	tokenstore.Store
	gets atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets.Add(1)
	return c.Store.Get(ctx, key)
}

type tokenFixture struct {
	svc    *service.TokenService
	tokens *countingStore
	clock  *clock
	rec    *fakeRecorder
	hmac   *jwtx.HMAC
}

func newTokenFixture(t *testing.T) *tokenFixture {
	t.Helper()

	clk := newClock()
	hmac, err := jwtx.NewHMAC("HS256", []byte("test-secret"))
	require.NoError(t, err)
	hmac.WithClock(clk.Now)

	tokens := &countingStore{Store: tokenstore.NewMemory().WithClock(clk.Now)}
	rec := &fakeRecorder{}

	svc := service.NewTokenService(hmac, tokens, time.Hour, 24*time.Hour, rec)
	svc.Now = clk.Now

	return &tokenFixture{svc: svc, tokens: tokens, clock: clk, rec: rec, hmac: hmac}
}

type fakeRecorder struct {
	mu       sync.Mutex
	flows    map[string]int
	issued   int
	revoked  int
	refreshs map[string]int
}

func (f *fakeRecorder) OAuthFlow(p, outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flows == nil {
		f.flows = map[string]int{}
	}
	f.flows[p+":"+outcome]++
}

func (f *fakeRecorder) TokensIssued() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued++
}

func (f *fakeRecorder) TokensRevoked(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked += n
}

func (f *fakeRecorder) TokenRefresh(outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshs == nil {
		f.refreshs = map[string]int{}
	}
	f.refreshs[outcome]++
}

func (f *fakeRecorder) flow(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flows[key]
}

// fakeAdapter answers every call from its fields.
type fakeAdapter struct {
	provider    domain.Provider
	token       domain.ProviderToken
	profile     domain.Profile
	exchangeErr error
	profileErr  error
	exchanges   atomic.Int64
}

func (f *fakeAdapter) Provider() domain.Provider { return f.provider }
func (f *fakeAdapter) AuthorizeURL() string {
	return "https://consent.example/" + f.provider.Slug()
}

func (f *fakeAdapter) ExchangeCode(_ context.Context, code string) (domain.ProviderToken, error) {
	f.exchanges.Add(1)
	if f.exchangeErr != nil {
		return domain.ProviderToken{}, f.exchangeErr
	}
	return f.token, nil
}

func (f *fakeAdapter) FetchProfile(context.Context, string) (domain.Profile, error) {
	if f.profileErr != nil {
		return domain.Profile{}, f.profileErr
	}
	return f.profile, nil
}

// fakeRefresher adds provider token refresh.
type fakeRefresher struct {
	*fakeAdapter
	refreshed  domain.ProviderToken
	refreshErr error
	refreshes  atomic.Int64
}

func (f *fakeRefresher) RefreshToken(context.Context, string) (domain.ProviderToken, error) {
	f.refreshes.Add(1)
	if f.refreshErr != nil {
		return domain.ProviderToken{}, f.refreshErr
	}
	return f.refreshed, nil
}

var _ provider.Refresher = (*fakeRefresher)(nil)

// txCountingStore fails the test when a transaction is opened.
type txCountingStore struct {
	store.Store
	txs atomic.Int64
}

func (s *txCountingStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	s.txs.Add(1)
	return s.Store.WithTx(ctx, fn)
}

package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface for users and their linked
// provider accounts. Sub-repositories are reached through methods so a Tx
// hands out repositories bound to the transaction.
type Store interface {
	Users() Users
	Accounts() Accounts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a user; the id is generated by the caller.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns the user without accounts.
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

type Accounts interface {
	// FindAccount looks an account up by its provider identity.
	FindAccount(ctx context.Context, p domain.Provider, externalID string) (domain.AuthAccount, error)

	// CreateAccount inserts a new account. ErrAlreadyExists when the
	// (provider, external id) pair is taken.
	CreateAccount(ctx context.Context, a domain.AuthAccount) error

	// UpdateAccount overwrites profile fields and provider credentials.
	UpdateAccount(ctx context.Context, a domain.AuthAccount) error

	// LinkAccount attaches an account to its owning user.
	LinkAccount(ctx context.Context, userID, accountID string) error

	// GetAccountOwner returns the id of the user owning accountID.
	GetAccountOwner(ctx context.Context, accountID string) (string, error)

	// ListAccountsByUser returns a user's accounts in link order.
	ListAccountsByUser(ctx context.Context, userID string) ([]domain.AuthAccount, error)

	// FindUserAccount returns the user's account at provider p.
	FindUserAccount(ctx context.Context, userID string, p domain.Provider) (domain.AuthAccount, error)
}

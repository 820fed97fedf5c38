package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"github.com/aussiebroadwan/beatme/internal/auth/store"
	"github.com/aussiebroadwan/beatme/pkg/cryptox"
)

type accountsRepo struct {
	db     dbtx
	sealer *cryptox.Sealer // nil stores tokens in the clear
}

const accountColumns = `a.id, a.provider, a.external_id, a.name, a.image, a.url,
	a.access_token, a.refresh_token, a.expires_at, a.created_at, a.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *accountsRepo) scanAccount(row rowScanner) (domain.AuthAccount, error) {
	var (
		a                domain.AuthAccount
		provider         string
		refresh          sql.NullString
		expires          sql.NullInt64
		created, updated int64
	)
	err := row.Scan(&a.ID, &provider, &a.ExternalID, &a.Name, &a.Image, &a.URL,
		&a.AccessToken, &refresh, &expires, &created, &updated)
	if err != nil {
		return domain.AuthAccount{}, err
	}

	a.Provider = domain.Provider(provider)
	if a.AccessToken, err = r.sealer.Open(a.AccessToken); err != nil {
		return domain.AuthAccount{}, fmt.Errorf("account %s access token: %w", a.ID, err)
	}
	if a.RefreshToken, err = r.sealer.Open(mapNullString(refresh)); err != nil {
		return domain.AuthAccount{}, fmt.Errorf("account %s refresh token: %w", a.ID, err)
	}
	a.ExpiresAt = mapNullInt64Ptr(expires)
	a.CreatedAt = fromUnix(created)
	a.UpdatedAt = fromUnix(updated)
	return a, nil
}

func (r *accountsRepo) FindAccount(ctx context.Context, p domain.Provider, externalID string) (domain.AuthAccount, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM auth_accounts a WHERE a.provider = ? AND a.external_id = ?`,
		string(p), externalID,
	)
	a, err := r.scanAccount(row)
	if err != nil {
		return domain.AuthAccount{}, mapNotFound(err)
	}
	return a, nil
}

// seal returns a copy of a with its provider tokens sealed.
func (r *accountsRepo) seal(a domain.AuthAccount) (domain.AuthAccount, error) {
	var err error
	if a.AccessToken, err = r.sealer.Seal(a.AccessToken); err != nil {
		return a, err
	}
	if a.RefreshToken, err = r.sealer.Seal(a.RefreshToken); err != nil {
		return a, err
	}
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.AuthAccount) error {
	a, err := r.seal(a)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO auth_accounts
			(id, provider, external_id, name, image, url, access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Provider), a.ExternalID, a.Name, a.Image, a.URL,
		a.AccessToken, mapStringNull(a.RefreshToken), mapOptionalInt64(a.ExpiresAt), now, now,
	)
	return mapConstraint(err)
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, a domain.AuthAccount) error {
	a, err := r.seal(a)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE auth_accounts
		SET name = ?, image = ?, url = ?, access_token = ?, refresh_token = ?, expires_at = ?, updated_at = ?
		WHERE id = ?`,
		a.Name, a.Image, a.URL, a.AccessToken, mapStringNull(a.RefreshToken),
		mapOptionalInt64(a.ExpiresAt), time.Now().Unix(), a.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) LinkAccount(ctx context.Context, userID, accountID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_auth_accounts (user_id, account_id, linked_at) VALUES (?, ?, ?)`,
		userID, accountID, time.Now().Unix(),
	)
	return mapConstraint(err)
}

func (r *accountsRepo) GetAccountOwner(ctx context.Context, accountID string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM user_auth_accounts WHERE account_id = ?`, accountID,
	).Scan(&userID)
	if err != nil {
		return "", mapNotFound(err)
	}
	return userID, nil
}

func (r *accountsRepo) ListAccountsByUser(ctx context.Context, userID string) ([]domain.AuthAccount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM auth_accounts a
		JOIN user_auth_accounts l ON l.account_id = a.id
		WHERE l.user_id = ?
		ORDER BY l.linked_at, a.id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuthAccount
	for rows.Next() {
		a, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) FindUserAccount(ctx context.Context, userID string, p domain.Provider) (domain.AuthAccount, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM auth_accounts a
		JOIN user_auth_accounts l ON l.account_id = a.id
		WHERE l.user_id = ? AND a.provider = ?
		ORDER BY l.linked_at DESC
		LIMIT 1`,
		userID, string(p),
	)
	a, err := r.scanAccount(row)
	if err != nil {
		return domain.AuthAccount{}, mapNotFound(err)
	}
	return a, nil
}

package accounts

import (
	"context"
	"fmt"

	"github.com/fastprodman/ledger/internal/repos/accounts"
)

func (r *accountsRepo) FindByCode(ctx context.Context, code string, forUpdate bool) (accounts.Account, error) {
	query := selectSub + ` WHERE s.code = $1`
	if forUpdate {
		query += lockSub
	}

	return queryOne(r.q.QueryRowContext(ctx, query, code), accounts.KindSub, "find by code")
}

func (r *accountsRepo) FindOwnerAccount(ctx context.Context, owner string, forUpdate bool) (accounts.Account, error) {
	query := selectUser + ` WHERE owner = $1`
	if forUpdate {
		query += lockUser
	}

	return queryOne(r.q.QueryRowContext(ctx, query, owner), accounts.KindUser, "find owner account")
}

func (r *accountsRepo) Get(ctx context.Context, kind accounts.Kind, id int64, forUpdate bool) (accounts.Account, error) {
	var query string

	switch kind {
	case accounts.KindUser:
		query = selectUser + ` WHERE id = $1`
		if forUpdate {
			query += lockUser
		}
	case accounts.KindSub:
		query = selectSub + ` WHERE s.id = $1`
		if forUpdate {
			query += lockSub
		}
	default:
		return accounts.Account{}, fmt.Errorf("get account: unknown kind %d", kind)
	}

	return queryOne(r.q.QueryRowContext(ctx, query, id), kind, "get account")
}

func (r *accountsRepo) ListSubAccounts(ctx context.Context, userAccountID int64) ([]accounts.Account, error) {
	return r.queryMany(ctx, accounts.KindSub, "list sub-accounts",
		selectSub+` WHERE s.user_account_id = $1 ORDER BY s.id`, userAccountID)
}

func (r *accountsRepo) ListUserAccounts(ctx context.Context) ([]accounts.Account, error) {
	return r.queryMany(ctx, accounts.KindUser, "list user accounts", selectUser+` ORDER BY id`)
}

func (r *accountsRepo) queryMany(ctx context.Context, kind accounts.Kind, op, query string, args ...any) ([]accounts.Account, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	//nolint:errcheck
	defer rows.Close()

	var out []accounts.Account

	for rows.Next() {
		acc, err := scanAccount(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		out = append(out, acc)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}

	return out, nil
}

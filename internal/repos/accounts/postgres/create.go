package accounts

import (
	"context"
	"fmt"

	"github.com/fastprodman/ledger/internal/infra/pgutils"
	"github.com/fastprodman/ledger/internal/repos/accounts"
)

func (r *accountsRepo) CreateUserAccount(ctx context.Context, owner string) (accounts.Account, error) {
	row := r.q.QueryRowContext(ctx, `
		INSERT INTO user_accounts (owner)
		VALUES ($1)
		RETURNING id, id, owner, '', balance, balance_achieve, TRUE, created_at, updated_at
	`, owner)

	acc, err := scanAccount(row, accounts.KindUser)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return accounts.Account{}, accounts.ErrDuplicate
		}

		return accounts.Account{}, fmt.Errorf("create user account: %w", err)
	}

	return acc, nil
}

func (r *accountsRepo) CreateSubAccount(ctx context.Context, userAccountID int64, code string) (accounts.Account, error) {
	var id int64

	err := r.q.QueryRowContext(ctx, `
		INSERT INTO sub_accounts (user_account_id, code)
		VALUES ($1, $2)
		RETURNING id
	`, userAccountID, code).Scan(&id)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return accounts.Account{}, accounts.ErrDuplicate
		}

		return accounts.Account{}, fmt.Errorf("create sub-account: %w", err)
	}

	return r.Get(ctx, accounts.KindSub, id, false)
}

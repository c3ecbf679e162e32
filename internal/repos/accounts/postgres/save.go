package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/ledger/internal/infra/pgutils"
	"github.com/fastprodman/ledger/internal/repos/accounts"
)

func (r *accountsRepo) Save(ctx context.Context, acc accounts.Account) (accounts.Account, error) {
	if acc.Balance < 0 || acc.BalanceAchieved < 0 {
		return accounts.Account{}, accounts.ErrNegativeBalance
	}

	var table string

	switch acc.Kind {
	case accounts.KindUser:
		table = "user_accounts"
	case accounts.KindSub:
		table = "sub_accounts"
	default:
		return accounts.Account{}, fmt.Errorf("save account: unknown kind %d", acc.Kind)
	}

	res, err := r.q.ExecContext(ctx, `
		UPDATE `+table+`
		SET balance = $2,
		    balance_achieve = $3,
		    updated_at = now()
		WHERE id = $1
	`, acc.ID, acc.Balance, acc.BalanceAchieved)
	if err != nil {
		if pgutils.IsCheckViolation(err) {
			return accounts.Account{}, accounts.ErrNegativeBalance
		}

		return accounts.Account{}, fmt.Errorf("save account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return accounts.Account{}, fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.Account{}, accounts.ErrAccountNotFound
	}

	return r.Get(ctx, acc.Kind, acc.ID, false)
}

func (r *accountsRepo) SetEnabled(ctx context.Context, subAccountID int64, enabled bool) (accounts.Account, error) {
	var id int64

	err := r.q.QueryRowContext(ctx, `
		UPDATE sub_accounts
		SET enabled = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING id
	`, subAccountID, enabled).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return accounts.Account{}, accounts.ErrAccountNotFound
		}

		return accounts.Account{}, fmt.Errorf("set enabled: %w", err)
	}

	return r.Get(ctx, accounts.KindSub, id, false)
}

package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/ledger/internal/repos/accounts"
)

const (
	selectUser = `
		SELECT id, id, owner, '', balance, balance_achieve, TRUE, created_at, updated_at
		FROM user_accounts`

	selectSub = `
		SELECT s.id, s.user_account_id, u.owner, s.code, s.balance, s.balance_achieve,
		       s.enabled, s.created_at, s.updated_at
		FROM sub_accounts s
		JOIN user_accounts u ON u.id = s.user_account_id`

	lockUser = ` FOR UPDATE`
	lockSub  = ` FOR UPDATE OF s`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner, kind accounts.Kind) (accounts.Account, error) {
	acc := accounts.Account{Kind: kind}

	err := row.Scan(
		&acc.ID,
		&acc.UserAccountID,
		&acc.Owner,
		&acc.Code,
		&acc.Balance,
		&acc.BalanceAchieved,
		&acc.Enabled,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return accounts.Account{}, err
	}

	return acc, nil
}

func queryOne(row *sql.Row, kind accounts.Kind, op string) (accounts.Account, error) {
	acc, err := scanAccount(row, kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return accounts.Account{}, accounts.ErrAccountNotFound
		}

		return accounts.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	return acc, nil
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
	"github.com/fastprodman/ledger/internal/storage"
)

// applyDelta moves acc by amount in direction kind and appends the matching
// record, both through u. acc must have been read under lock in u. The unit
// is left open.
func applyDelta(
	ctx context.Context,
	u storage.Unit,
	acc accounts.Account,
	amount int64,
	kind history.Kind,
	e entry,
) (accounts.Account, history.Record, error) {
	if amount < 1 {
		return accounts.Account{}, history.Record{}, invalid("amount", "amount must be positive")
	}

	before := acc.Balance

	var after int64

	switch kind {
	case history.Increase:
		if before > math.MaxInt64-amount {
			return accounts.Account{}, history.Record{}, invalid("amount", "amount exceeds the balance limit")
		}

		after = before + amount
	case history.Decrease:
		if before < amount {
			return accounts.Account{}, history.Record{},
				fmt.Errorf("%s account %d: %w", acc.Kind, acc.ID, ErrInsufficientFunds)
		}

		after = before - amount
	default:
		return accounts.Account{}, history.Record{}, fmt.Errorf("apply delta: unknown kind %d", kind)
	}

	acc.Balance = after
	acc.BalanceAchieved = after

	saved, err := u.Accounts().Save(ctx, acc)
	if err != nil {
		if errors.Is(err, accounts.ErrNegativeBalance) {
			return accounts.Account{}, history.Record{},
				fmt.Errorf("save %s account %d: %w", acc.Kind, acc.ID, ErrInsufficientFunds)
		}

		return accounts.Account{}, history.Record{}, fmt.Errorf("save %s account %d: %w", acc.Kind, acc.ID, err)
	}

	rec, err := newRecord(saved, before, after, kind, e)
	if err != nil {
		return accounts.Account{}, history.Record{}, fmt.Errorf("build record: %w", err)
	}

	rec, err = u.History().Append(ctx, rec)
	if err != nil {
		return accounts.Account{}, history.Record{}, fmt.Errorf("append record: %w", err)
	}

	return saved, rec, nil
}

func checkAmount(amount int64) error {
	if amount < MinAmount {
		return invalid("amount", fmt.Sprintf("must be at least %d", MinAmount))
	}

	if amount > MaxAmount {
		return invalid("amount", fmt.Sprintf("must be at most %d", MaxAmount))
	}

	return nil
}

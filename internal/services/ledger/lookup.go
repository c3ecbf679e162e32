package ledger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/fastprodman/ledger/internal/repos/accounts"
)

// actorAccount returns the user aggregate of the acting user.
func actorAccount(ctx context.Context, repo accounts.Accounts, actor Actor) (accounts.Account, error) {
	if actor.Name == "" {
		return accounts.Account{}, fmt.Errorf("actor has no account: %w", ErrNotFound)
	}

	acc, err := repo.FindOwnerAccount(ctx, actor.Name, false)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return accounts.Account{}, fmt.Errorf("actor %q has no account: %w", actor.Name, ErrNotFound)
		}

		return accounts.Account{}, fmt.Errorf("find actor account: %w", err)
	}

	return acc, nil
}

// lockInOrder re-reads the given accounts of one kind under lock, ascending
// by ID, and returns them in the order of ids.
func lockInOrder(ctx context.Context, repo accounts.Accounts, kind accounts.Kind, ids ...int64) ([]accounts.Account, error) {
	order := make([]int, len(ids))
	for i := range order {
		order[i] = i
	}

	slices.SortFunc(order, func(a, b int) int { return cmp.Compare(ids[a], ids[b]) })

	out := make([]accounts.Account, len(ids))

	for _, i := range order {
		acc, err := repo.Get(ctx, kind, ids[i], true)
		if err != nil {
			return nil, fmt.Errorf("lock %s account %d: %w", kind, ids[i], err)
		}

		out[i] = acc
	}

	return out, nil
}

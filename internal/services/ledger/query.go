package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
	"github.com/fastprodman/ledger/internal/storage"
)

// Reads never lock. Each call reads one snapshot, so an aggregate always
// equals the sum of the sub-accounts returned with it.

func (s *Service) UserAccount(ctx context.Context, actor Actor, owner string) (UserAccountDetails, error) {
	var details UserAccountDetails

	err := storage.WithSnapshot(ctx, s.store, func(snap storage.Snapshot) error {
		user, err := visibleUser(ctx, snap.Accounts(), actor, owner)
		if err != nil {
			return err
		}

		details, err = withSubAccounts(ctx, snap.Accounts(), user)

		return err
	})
	if err != nil {
		return UserAccountDetails{}, fmt.Errorf("user account: %w", classify(err))
	}

	return details, nil
}

// UserAccounts lists aggregates with their sub-accounts. Admins see every
// owner, or only owner when it is set. Other actors see their own account
// regardless of owner. Unknown owners yield an empty list.
func (s *Service) UserAccounts(ctx context.Context, actor Actor, owner string) ([]UserAccountDetails, error) {
	out := make([]UserAccountDetails, 0)

	err := storage.WithSnapshot(ctx, s.store, func(snap storage.Snapshot) error {
		repo := snap.Accounts()

		if !actor.Admin {
			owner = actor.Name
		}

		var users []accounts.Account

		if owner == "" {
			all, err := repo.ListUserAccounts(ctx)
			if err != nil {
				return fmt.Errorf("list user accounts: %w", err)
			}

			users = all
		} else {
			user, err := repo.FindOwnerAccount(ctx, owner, false)
			if err != nil && !errors.Is(err, accounts.ErrAccountNotFound) {
				return fmt.Errorf("find owner account: %w", err)
			}

			if err == nil {
				users = append(users, user)
			}
		}

		for _, user := range users {
			details, err := withSubAccounts(ctx, repo, user)
			if err != nil {
				return err
			}

			out = append(out, details)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("user accounts: %w", classify(err))
	}

	return out, nil
}

// SubAccounts lists the actor's own sub-accounts ordered by ID.
func (s *Service) SubAccounts(ctx context.Context, actor Actor) ([]accounts.Account, error) {
	var subs []accounts.Account

	err := storage.WithSnapshot(ctx, s.store, func(snap storage.Snapshot) error {
		user, err := actorAccount(ctx, snap.Accounts(), actor)
		if err != nil {
			return err
		}

		subs, err = snap.Accounts().ListSubAccounts(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("list sub-accounts: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sub-accounts: %w", classify(err))
	}

	return subs, nil
}

func (s *Service) UserHistory(ctx context.Context, actor Actor, owner string, rng DateRange) ([]history.Record, error) {
	var recs []history.Record

	err := storage.WithSnapshot(ctx, s.store, func(snap storage.Snapshot) error {
		user, err := visibleUser(ctx, snap.Accounts(), actor, owner)
		if err != nil {
			return err
		}

		recs, err = listHistory(ctx, snap.History(), accounts.KindUser, user.ID, rng)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("user history: %w", classify(err))
	}

	return recs, nil
}

func (s *Service) SubAccountHistory(ctx context.Context, actor Actor, code string, rng DateRange) ([]history.Record, error) {
	var recs []history.Record

	err := storage.WithSnapshot(ctx, s.store, func(snap storage.Snapshot) error {
		sub, err := snap.Accounts().FindByCode(ctx, code, false)
		if err != nil {
			if errors.Is(err, accounts.ErrAccountNotFound) {
				return fmt.Errorf("%q: %w", code, ErrNotFound)
			}

			return fmt.Errorf("find sub-account: %w", err)
		}

		if !actor.Admin && sub.Owner != actor.Name {
			return fmt.Errorf("%q: %w", code, ErrNotFound)
		}

		recs, err = listHistory(ctx, snap.History(), accounts.KindSub, sub.ID, rng)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("sub-account history: %w", classify(err))
	}

	return recs, nil
}

// visibleUser resolves owner (empty means the actor) and hides other owners
// from non-admin actors.
func visibleUser(ctx context.Context, repo accounts.Accounts, actor Actor, owner string) (accounts.Account, error) {
	if owner == "" {
		owner = actor.Name
	}

	if !actor.Admin && owner != actor.Name {
		return accounts.Account{}, fmt.Errorf("owner %q: %w", owner, ErrNotFound)
	}

	user, err := repo.FindOwnerAccount(ctx, owner, false)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return accounts.Account{}, fmt.Errorf("owner %q: %w", owner, ErrNotFound)
		}

		return accounts.Account{}, fmt.Errorf("find owner account: %w", err)
	}

	return user, nil
}

func withSubAccounts(ctx context.Context, repo accounts.Accounts, user accounts.Account) (UserAccountDetails, error) {
	subs, err := repo.ListSubAccounts(ctx, user.ID)
	if err != nil {
		return UserAccountDetails{}, fmt.Errorf("list sub-accounts of %q: %w", user.Owner, err)
	}

	return UserAccountDetails{Account: user, SubAccounts: subs}, nil
}

func listHistory(
	ctx context.Context,
	repo history.History,
	kind accounts.Kind,
	id int64,
	rng DateRange,
) ([]history.Record, error) {
	recs, err := repo.List(ctx, history.Filter{
		AccountKind: kind,
		AccountID:   id,
		From:        rng.From,
		To:          rng.End,
	})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	return recs, nil
}

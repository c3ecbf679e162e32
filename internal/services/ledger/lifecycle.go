package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/storage"
)

const maxCodeAttempts = 5

var (
	errCodeSpaceExhausted = errors.New("no free sub-account code")
	errCodeTaken          = errors.New("sub-account code taken by a concurrent insert")
)

// OpenUserAccount creates the aggregate of owner together with its first
// sub-account, both with a zero balance.
func (s *Service) OpenUserAccount(ctx context.Context, owner string) (UserAccountDetails, error) {
	if owner == "" {
		return UserAccountDetails{}, fmt.Errorf("open user account: %w", invalid("owner", "owner is required"))
	}

	var details UserAccountDetails

	err := s.withCodeRetry(ctx, func(u storage.Unit) error {
		user, err := u.Accounts().CreateUserAccount(ctx, owner)
		if err != nil {
			if errors.Is(err, accounts.ErrDuplicate) {
				return invalid("owner", "owner already has an account")
			}

			return fmt.Errorf("create user account: %w", err)
		}

		sub, err := s.createSubAccount(ctx, u.Accounts(), user)
		if err != nil {
			return err
		}

		details = UserAccountDetails{Account: user, SubAccounts: []accounts.Account{sub}}

		return nil
	})
	if err != nil {
		return UserAccountDetails{}, fmt.Errorf("open user account: %w", classify(err))
	}

	s.logger.DebugContext(ctx, "user account opened", "owner", owner)

	return details, nil
}

// OpenSubAccount adds an empty sub-account to the actor's aggregate.
func (s *Service) OpenSubAccount(ctx context.Context, actor Actor) (accounts.Account, error) {
	var sub accounts.Account

	err := s.withCodeRetry(ctx, func(u storage.Unit) error {
		user, err := actorAccount(ctx, u.Accounts(), actor)
		if err != nil {
			return err
		}

		sub, err = s.createSubAccount(ctx, u.Accounts(), user)

		return err
	})
	if err != nil {
		return accounts.Account{}, fmt.Errorf("open sub-account: %w", classify(err))
	}

	s.logger.DebugContext(ctx, "sub-account opened", "owner", actor.Name, "code", sub.Code)

	return sub, nil
}

// SetSubAccountEnabled toggles whether deposits and transfers may use code.
// Only the owner (or an admin) may change it.
func (s *Service) SetSubAccountEnabled(ctx context.Context, actor Actor, code string, enabled bool) (accounts.Account, error) {
	var sub accounts.Account

	err := storage.WithUnit(ctx, s.store, func(u storage.Unit) error {
		found, err := u.Accounts().FindByCode(ctx, code, false)
		if err != nil {
			if errors.Is(err, accounts.ErrAccountNotFound) {
				return fmt.Errorf("sub-account %q: %w", code, ErrNotFound)
			}

			return fmt.Errorf("find sub-account: %w", err)
		}

		if !actor.Admin && found.Owner != actor.Name {
			return fmt.Errorf("sub-account %q: %w", code, ErrNotFound)
		}

		_, err = u.Accounts().Get(ctx, accounts.KindSub, found.ID, true)
		if err != nil {
			return fmt.Errorf("lock sub-account: %w", err)
		}

		sub, err = u.Accounts().SetEnabled(ctx, found.ID, enabled)
		if err != nil {
			return fmt.Errorf("set enabled: %w", err)
		}

		return nil
	})
	if err != nil {
		return accounts.Account{}, fmt.Errorf("set sub-account enabled: %w", classify(err))
	}

	s.logger.DebugContext(ctx, "sub-account updated", "code", code, "enabled", enabled)

	return sub, nil
}

// withCodeRetry runs fn in a unit and starts over when a concurrent insert
// took the generated sub-account code. The failed insert has already aborted
// the unit, so the retry needs a fresh one.
func (s *Service) withCodeRetry(ctx context.Context, fn func(storage.Unit) error) error {
	var err error

	for range maxCodeAttempts {
		err = storage.WithUnit(ctx, s.store, fn)
		if !errors.Is(err, errCodeTaken) {
			return err
		}

		s.logger.DebugContext(ctx, "sub-account code taken, retrying", "error", err)
	}

	return err
}

// createSubAccount probes for a free code before inserting, since a failed
// insert aborts a Postgres transaction.
func (s *Service) createSubAccount(ctx context.Context, repo accounts.Accounts, user accounts.Account) (accounts.Account, error) {
	for range maxCodeAttempts {
		code := s.newCode(user.Owner)

		_, err := repo.FindByCode(ctx, code, false)
		if err == nil {
			continue
		}

		if !errors.Is(err, accounts.ErrAccountNotFound) {
			return accounts.Account{}, fmt.Errorf("probe code: %w", err)
		}

		sub, err := repo.CreateSubAccount(ctx, user.ID, code)
		if err != nil {
			if errors.Is(err, accounts.ErrDuplicate) {
				return accounts.Account{}, fmt.Errorf("create sub-account %q: %w", code, errCodeTaken)
			}

			return accounts.Account{}, fmt.Errorf("create sub-account: %w", err)
		}

		return sub, nil
	}

	return accounts.Account{}, fmt.Errorf("%w for %q after %d attempts", errCodeSpaceExhausted, user.Owner, maxCodeAttempts)
}

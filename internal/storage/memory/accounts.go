package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/fastprodman/ledger/internal/repos/accounts"
)

var _ accounts.Accounts = (*accountsRepo)(nil)

// accountsRepo ignores forUpdate: a unit already holds the store exclusively.
type accountsRepo struct {
	v   view
	now func() time.Time
}

func (r *accountsRepo) FindByCode(_ context.Context, code string, _ bool) (accounts.Account, error) {
	var out accounts.Account

	err := r.v.read(func(s *state) error {
		id, ok := s.codes[code]
		if !ok {
			return accounts.ErrAccountNotFound
		}

		out = s.withOwner(s.subs[id])

		return nil
	})

	return out, err
}

func (r *accountsRepo) FindOwnerAccount(_ context.Context, owner string, _ bool) (accounts.Account, error) {
	var out accounts.Account

	err := r.v.read(func(s *state) error {
		id, ok := s.owners[owner]
		if !ok {
			return accounts.ErrAccountNotFound
		}

		out = s.users[id]

		return nil
	})

	return out, err
}

func (r *accountsRepo) Get(_ context.Context, kind accounts.Kind, id int64, _ bool) (accounts.Account, error) {
	if kind != accounts.KindUser && kind != accounts.KindSub {
		return accounts.Account{}, fmt.Errorf("get account: unknown kind %d", kind)
	}

	var out accounts.Account

	err := r.v.read(func(s *state) error {
		acc, ok := s.table(kind)[id]
		if !ok {
			return accounts.ErrAccountNotFound
		}

		out = s.withOwner(acc)

		return nil
	})

	return out, err
}

func (r *accountsRepo) ListSubAccounts(_ context.Context, userAccountID int64) ([]accounts.Account, error) {
	var out []accounts.Account

	err := r.v.read(func(s *state) error {
		for _, acc := range s.subs {
			if acc.UserAccountID == userAccountID {
				out = append(out, s.withOwner(acc))
			}
		}

		return nil
	})

	slices.SortFunc(out, func(a, b accounts.Account) int { return cmp.Compare(a.ID, b.ID) })

	return out, err
}

func (r *accountsRepo) ListUserAccounts(_ context.Context) ([]accounts.Account, error) {
	var out []accounts.Account

	err := r.v.read(func(s *state) error {
		out = slices.Collect(maps.Values(s.users))
		return nil
	})

	slices.SortFunc(out, func(a, b accounts.Account) int { return cmp.Compare(a.ID, b.ID) })

	return out, err
}

func (r *accountsRepo) CreateUserAccount(_ context.Context, owner string) (accounts.Account, error) {
	var out accounts.Account

	err := r.v.write(func(s *state) error {
		if _, ok := s.owners[owner]; ok {
			return accounts.ErrDuplicate
		}

		s.nextUserID++
		now := r.now()

		out = accounts.Account{
			ID:            s.nextUserID,
			Kind:          accounts.KindUser,
			UserAccountID: s.nextUserID,
			Owner:         owner,
			Enabled:       true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		s.users[out.ID] = out
		s.owners[owner] = out.ID

		return nil
	})

	return out, err
}

func (r *accountsRepo) CreateSubAccount(_ context.Context, userAccountID int64, code string) (accounts.Account, error) {
	var out accounts.Account

	err := r.v.write(func(s *state) error {
		if _, ok := s.users[userAccountID]; !ok {
			return fmt.Errorf("create sub-account: user account %d: %w", userAccountID, accounts.ErrAccountNotFound)
		}

		if _, ok := s.codes[code]; ok {
			return accounts.ErrDuplicate
		}

		s.nextSubID++
		now := r.now()

		acc := accounts.Account{
			ID:            s.nextSubID,
			Kind:          accounts.KindSub,
			UserAccountID: userAccountID,
			Code:          code,
			Enabled:       true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		s.subs[acc.ID] = acc
		s.codes[code] = acc.ID
		out = s.withOwner(acc)

		return nil
	})

	return out, err
}

func (r *accountsRepo) Save(_ context.Context, acc accounts.Account) (accounts.Account, error) {
	if acc.Balance < 0 || acc.BalanceAchieved < 0 {
		return accounts.Account{}, accounts.ErrNegativeBalance
	}

	if acc.Kind != accounts.KindUser && acc.Kind != accounts.KindSub {
		return accounts.Account{}, fmt.Errorf("save account: unknown kind %d", acc.Kind)
	}

	var out accounts.Account

	err := r.v.write(func(s *state) error {
		table := s.table(acc.Kind)

		stored, ok := table[acc.ID]
		if !ok {
			return accounts.ErrAccountNotFound
		}

		stored.Balance = acc.Balance
		stored.BalanceAchieved = acc.BalanceAchieved
		stored.UpdatedAt = r.now()
		table[acc.ID] = stored
		out = s.withOwner(stored)

		return nil
	})

	return out, err
}

func (r *accountsRepo) SetEnabled(_ context.Context, subAccountID int64, enabled bool) (accounts.Account, error) {
	var out accounts.Account

	err := r.v.write(func(s *state) error {
		stored, ok := s.subs[subAccountID]
		if !ok {
			return accounts.ErrAccountNotFound
		}

		stored.Enabled = enabled
		stored.UpdatedAt = r.now()
		s.subs[subAccountID] = stored
		out = s.withOwner(stored)

		return nil
	})

	return out, err
}

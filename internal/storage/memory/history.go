package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
)

var _ history.History = (*historyRepo)(nil)

type historyRepo struct {
	v   view
	now func() time.Time
}

func (r *historyRepo) Append(_ context.Context, rec history.Record) (history.Record, error) {
	if rec.AccountKind != accounts.KindUser && rec.AccountKind != accounts.KindSub {
		return history.Record{}, fmt.Errorf("append history: unknown account kind %d", rec.AccountKind)
	}

	if rec.Kind.Label() == "" {
		return history.Record{}, fmt.Errorf("append history: unknown kind %d", rec.Kind)
	}

	if rec.BalanceBefore < 0 || rec.BalanceAfter < 0 {
		return history.Record{}, fmt.Errorf("append history: %w", accounts.ErrNegativeBalance)
	}

	err := r.v.write(func(s *state) error {
		if _, ok := s.table(rec.AccountKind)[rec.AccountID]; !ok {
			return fmt.Errorf("append history: %w", accounts.ErrAccountNotFound)
		}

		s.nextRecordID++
		rec.ID = s.nextRecordID
		rec.CreatedAt = r.now()

		log := s.log(rec.AccountKind)
		*log = append(*log, rec)

		return nil
	})
	if err != nil {
		return history.Record{}, err
	}

	return rec, nil
}

// List returns records newest first, by CreatedAt then ID.
func (r *historyRepo) List(_ context.Context, f history.Filter) ([]history.Record, error) {
	if f.AccountKind != accounts.KindUser && f.AccountKind != accounts.KindSub {
		return nil, fmt.Errorf("list history: unknown account kind %d", f.AccountKind)
	}

	out := make([]history.Record, 0)

	err := r.v.read(func(s *state) error {
		log := *s.log(f.AccountKind)

		for i := len(log) - 1; i >= 0; i-- {
			rec := log[i]
			if rec.AccountID != f.AccountID {
				continue
			}

			if rec.CreatedAt.Before(f.From) || rec.CreatedAt.After(f.To) {
				continue
			}

			out = append(out, rec)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(out, func(a, b history.Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(b.ID, a.ID)
	})

	return out, nil
}

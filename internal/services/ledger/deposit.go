package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
	"github.com/fastprodman/ledger/internal/storage"
)

// Deposit adds amount to one of the actor's sub-accounts and to the actor's
// user aggregate:
//
// 1) Validate amount.
// 2) Resolve the actor's aggregate and check it owns the sub-account.
// 3) Lock sub-account, then aggregate (FOR UPDATE).
// 4) Increase both and append one record each.
func (s *Service) Deposit(
	ctx context.Context,
	actor Actor,
	subAccountCode string,
	amount int64,
	req Requester,
) (Receipt, error) {
	err := checkAmount(amount)
	if err != nil {
		return Receipt{}, fmt.Errorf("deposit: %w", err)
	}

	var receipt Receipt

	err = storage.WithUnit(ctx, s.store, func(u storage.Unit) error {
		repo := u.Accounts()

		owner, err := actorAccount(ctx, repo, actor)
		if err != nil {
			return err
		}

		found, err := repo.FindByCode(ctx, subAccountCode, false)
		if err != nil {
			if errors.Is(err, accounts.ErrAccountNotFound) {
				return invalid("sub_account_code", "sub-account code not found")
			}

			return fmt.Errorf("find sub-account: %w", err)
		}

		// Foreign sub-accounts are never locked.
		if found.UserAccountID != owner.ID {
			return invalid("sub_account_code", "sub-account code not found")
		}

		sub, err := repo.Get(ctx, accounts.KindSub, found.ID, true)
		if err != nil {
			return fmt.Errorf("lock sub-account: %w", err)
		}

		if !sub.Enabled {
			return invalid("sub_account_code", "sub-account is disabled")
		}

		user, err := repo.Get(ctx, accounts.KindUser, owner.ID, true)
		if err != nil {
			return fmt.Errorf("lock user account: %w", err)
		}

		e := entry{activity: activityDeposit, author: actor.Name, req: req}

		sub, subRec, err := applyDelta(ctx, u, sub, amount, history.Increase, e)
		if err != nil {
			return fmt.Errorf("increase sub-account: %w", err)
		}

		user, userRec, err := applyDelta(ctx, u, user, amount, history.Increase, e)
		if err != nil {
			return fmt.Errorf("increase user account: %w", err)
		}

		receipt = Receipt{
			Accounts: []accounts.Account{sub, user},
			Records:  []history.Record{subRec, userRec},
		}

		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("deposit: %w", classify(err))
	}

	s.logger.DebugContext(ctx, "deposit committed",
		"actor", actor.Name,
		"sub_account", subAccountCode,
		"amount", amount,
	)

	return receipt, nil
}

package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
	"github.com/fastprodman/ledger/internal/storage"
)

// Transfer moves amount from one of the actor's sub-accounts to any other
// sub-account:
//
// 1) Validate amount and distinct codes.
// 2) Resolve actor, destination and the actor-owned source.
// 3) Lock both sub-accounts in ID order and re-check the source balance.
// 4) Increase destination, decrease source.
// 5) If the aggregates differ, lock both in ID order and mirror the move.
func (s *Service) Transfer(
	ctx context.Context,
	actor Actor,
	sourceCode string,
	destinationCode string,
	amount int64,
	req Requester,
) (Receipt, error) {
	err := checkAmount(amount)
	if err != nil {
		return Receipt{}, fmt.Errorf("transfer: %w", err)
	}

	if sourceCode == destinationCode {
		return Receipt{}, fmt.Errorf("transfer: %w",
			invalid("destination_code", "cannot be the same as source_code"))
	}

	var receipt Receipt

	err = storage.WithUnit(ctx, s.store, func(u storage.Unit) error {
		repo := u.Accounts()

		owner, err := actorAccount(ctx, repo, actor)
		if err != nil {
			return err
		}

		dst, err := repo.FindByCode(ctx, destinationCode, false)
		if err != nil {
			if errors.Is(err, accounts.ErrAccountNotFound) {
				return invalid("destination_code", "destination sub-account does not exist")
			}

			return fmt.Errorf("find destination: %w", err)
		}

		src, err := repo.FindByCode(ctx, sourceCode, false)
		if err != nil && !errors.Is(err, accounts.ErrAccountNotFound) {
			return fmt.Errorf("find source: %w", err)
		}

		if err != nil || src.UserAccountID != owner.ID {
			return invalid("source_code", "source sub-account cannot be found")
		}

		if !src.Enabled {
			return invalid("source_code", "source sub-account is disabled")
		}

		if !dst.Enabled {
			return invalid("destination_code", "destination sub-account is disabled")
		}

		if src.Balance < amount {
			return insufficientBalance()
		}

		subs, err := lockInOrder(ctx, repo, accounts.KindSub, src.ID, dst.ID)
		if err != nil {
			return err
		}

		src, dst = subs[0], subs[1]

		// Balances may have moved between the first read and the lock.
		if src.Balance < amount {
			return insufficientBalance()
		}

		e := entry{activity: activityTransfer, author: actor.Name, req: req}

		dst, dstRec, err := applyDelta(ctx, u, dst, amount, history.Increase, e)
		if err != nil {
			return fmt.Errorf("increase destination: %w", err)
		}

		src, srcRec, err := applyDelta(ctx, u, src, amount, history.Decrease, e)
		if err != nil {
			return fmt.Errorf("decrease source: %w", err)
		}

		receipt = Receipt{
			Accounts: []accounts.Account{dst, src},
			Records:  []history.Record{dstRec, srcRec},
		}

		if src.UserAccountID == dst.UserAccountID {
			return nil
		}

		users, err := lockInOrder(ctx, repo, accounts.KindUser, src.UserAccountID, dst.UserAccountID)
		if err != nil {
			return err
		}

		dstUser, dstUserRec, err := applyDelta(ctx, u, users[1], amount, history.Increase, e)
		if err != nil {
			return fmt.Errorf("increase destination aggregate: %w", err)
		}

		srcUser, srcUserRec, err := applyDelta(ctx, u, users[0], amount, history.Decrease, e)
		if err != nil {
			return fmt.Errorf("decrease source aggregate: %w", err)
		}

		receipt.Accounts = append(receipt.Accounts, dstUser, srcUser)
		receipt.Records = append(receipt.Records, dstUserRec, srcUserRec)

		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("transfer: %w", classify(err))
	}

	s.logger.DebugContext(ctx, "transfer committed",
		"actor", actor.Name,
		"source", sourceCode,
		"destination", destinationCode,
		"amount", amount,
	)

	return receipt, nil
}

func insufficientBalance() error {
	return &ValidationError{Field: "amount", Message: "insufficient balance", Err: ErrInsufficientFunds}
}

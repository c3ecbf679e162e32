package ledger

import (
	"errors"
	"fmt"

	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
)

const (
	activityDeposit  = "deposit"
	activityTransfer = "transfer"
)

// entry is what a composer knows about the operation it is recording.
type entry struct {
	activity string
	author   string
	req      Requester
}

var errBadTransition = errors.New("invalid balance transition")

// newRecord builds the history record of one balance transition. It does no
// I/O.
func newRecord(acc accounts.Account, before, after int64, kind history.Kind, e entry) (history.Record, error) {
	if before < 0 || after < 0 {
		return history.Record{}, fmt.Errorf("%w: negative balance %d -> %d", errBadTransition, before, after)
	}

	switch kind {
	case history.Increase:
		if after <= before {
			return history.Record{}, fmt.Errorf("%w: increase %d -> %d", errBadTransition, before, after)
		}
	case history.Decrease:
		if after >= before {
			return history.Record{}, fmt.Errorf("%w: decrease %d -> %d", errBadTransition, before, after)
		}
	default:
		return history.Record{}, fmt.Errorf("%w: unknown kind %d", errBadTransition, kind)
	}

	return history.Record{
		AccountKind:   acc.Kind,
		AccountID:     acc.ID,
		BalanceBefore: before,
		BalanceAfter:  after,
		Activity:      e.activity,
		Kind:          kind,
		IP:            e.req.IP,
		Location:      e.req.Location,
		UserAgent:     e.req.UserAgent,
		Author:        e.author,
	}, nil
}

package history

import (
	"context"
	"fmt"
	"time"

	"github.com/fastprodman/ledger/internal/repos/accounts"
)

// Kind is the direction of a balance transition.
type Kind uint8

const (
	Increase Kind = iota + 1
	Decrease
)

// Stored labels keep the vocabulary of the legacy ledger data, where
// "debit" increases a balance and "kredit" decreases it.
const (
	labelIncrease = "debit"
	labelDecrease = "kredit"
)

func (k Kind) String() string {
	switch k {
	case Increase:
		return "increase"
	case Decrease:
		return "decrease"
	default:
		return "unknown"
	}
}

// Label returns the persisted label of k.
func (k Kind) Label() string {
	switch k {
	case Increase:
		return labelIncrease
	case Decrease:
		return labelDecrease
	default:
		return ""
	}
}

// ParseLabel maps a persisted label back to a Kind.
func ParseLabel(label string) (Kind, error) {
	switch label {
	case labelIncrease:
		return Increase, nil
	case labelDecrease:
		return Decrease, nil
	default:
		return 0, fmt.Errorf("unknown transaction label %q", label)
	}
}

// Record is an immutable audit entry of one balance transition.
type Record struct {
	ID            int64
	AccountKind   accounts.Kind
	AccountID     int64
	BalanceBefore int64
	BalanceAfter  int64
	Activity      string
	Kind          Kind
	IP            string
	Location      string
	UserAgent     string
	Author        string
	CreatedAt     time.Time
}

// Delta is the signed balance change captured by r.
func (r Record) Delta() int64 {
	return r.BalanceAfter - r.BalanceBefore
}

// Filter selects the records of one account created within [From, To].
type Filter struct {
	AccountKind accounts.Kind
	AccountID   int64
	From        time.Time
	To          time.Time
}

// History is the append-only history store. There is no update or delete.
type History interface {
	Append(ctx context.Context, rec Record) (Record, error)
	// List returns matching records newest first.
	List(ctx context.Context, filter Filter) ([]Record, error)
}

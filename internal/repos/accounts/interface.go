package accounts

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrDuplicate       = errors.New("account already exists")
	ErrNegativeBalance = errors.New("balance would become negative")
)

// Kind tells user aggregate accounts and sub-accounts apart. Both kinds share
// the Account shape but live in separate tables.
type Kind uint8

const (
	KindUser Kind = iota + 1
	KindSub
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindSub:
		return "sub"
	default:
		return "unknown"
	}
}

// Account is a balance holder.
//
// For a user aggregate, UserAccountID equals ID and Code is empty. For a
// sub-account, UserAccountID references the owning aggregate.
// BalanceAchieved mirrors Balance.
type Account struct {
	ID              int64
	Kind            Kind
	UserAccountID   int64
	Owner           string
	Code            string
	Balance         int64
	BalanceAchieved int64
	Enabled         bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Accounts is the account repository. Every method runs against the unit of
// work (or read view) the repository was obtained from.
type Accounts interface {
	// FindByCode returns the sub-account with the given code.
	FindByCode(ctx context.Context, code string, forUpdate bool) (Account, error)
	// FindOwnerAccount returns the user aggregate of owner.
	FindOwnerAccount(ctx context.Context, owner string, forUpdate bool) (Account, error)
	Get(ctx context.Context, kind Kind, id int64, forUpdate bool) (Account, error)
	ListSubAccounts(ctx context.Context, userAccountID int64) ([]Account, error)
	// ListUserAccounts returns every user aggregate ordered by ID.
	ListUserAccounts(ctx context.Context) ([]Account, error)
	CreateUserAccount(ctx context.Context, owner string) (Account, error)
	CreateSubAccount(ctx context.Context, userAccountID int64, code string) (Account, error)
	// Save persists Balance and BalanceAchieved and returns the stored row.
	// A negative balance is rejected with ErrNegativeBalance.
	Save(ctx context.Context, acc Account) (Account, error)
	SetEnabled(ctx context.Context, subAccountID int64, enabled bool) (Account, error)
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fastprodman/ledger/internal/infra/logging"
	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
	"github.com/fastprodman/ledger/internal/storage"
	"github.com/fastprodman/ledger/internal/storage/memory"
)

var (
	testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	testReq = Requester{IP: "203.0.113.7", Location: "Jakarta, ID", UserAgent: "ledger-test/1.0"}
)

// stepClock ticks one millisecond per call starting at testNow.
func stepClock() func() time.Time {
	var n atomic.Int64

	return func() time.Time {
		return testNow.Add(time.Duration(n.Add(1)) * time.Millisecond)
	}
}

// sequentialCodes yields owner_0001, owner_0002, ... per owner.
func sequentialCodes() func(string) string {
	var (
		mu   sync.Mutex
		next = map[string]int{}
	)

	return func(owner string) string {
		mu.Lock()
		defer mu.Unlock()

		next[owner]++

		return fmt.Sprintf("%s_%04X", owner, next[owner])
	}
}

func newTestService(t *testing.T, store storage.Store) *Service {
	t.Helper()

	if store == nil {
		store = memory.New(memory.WithClock(stepClock()))
	}

	return New(store,
		WithClock(func() time.Time { return testNow }),
		WithLogger(logging.Discard()),
		WithCodeGenerator(sequentialCodes()),
	)
}

// openFunded opens owner and deposits amount into its first sub-account
// (skipped when amount is 0). It returns the sub-account code.
func openFunded(t *testing.T, s *Service, owner string, amount int64) string {
	t.Helper()

	details, err := s.OpenUserAccount(t.Context(), owner)
	require.NoError(t, err)

	code := details.SubAccounts[0].Code

	if amount > 0 {
		_, err = s.Deposit(t.Context(), Actor{Name: owner}, code, amount, testReq)
		require.NoError(t, err)
	}

	return code
}

func balances(t *testing.T, s *Service, owner string) (int64, map[string]int64) {
	t.Helper()

	details, err := s.UserAccount(t.Context(), Actor{Name: owner}, owner)
	require.NoError(t, err)

	subs := make(map[string]int64, len(details.SubAccounts))
	for _, sub := range details.SubAccounts {
		subs[sub.Code] = sub.Balance
	}

	return details.Account.Balance, subs
}

// requireAggregateSum checks that every listed owner's aggregate equals the
// sum of its sub-accounts and mirrors BalanceAchieved.
func requireAggregateSum(t *testing.T, s *Service, owners ...string) {
	t.Helper()

	for _, owner := range owners {
		details, err := s.UserAccount(t.Context(), Actor{Name: owner}, owner)
		require.NoError(t, err)

		var sum int64

		for _, sub := range details.SubAccounts {
			require.Equal(t, sub.Balance, sub.BalanceAchieved, "sub %s", sub.Code)
			sum += sub.Balance
		}

		require.Equal(t, details.Account.Balance, details.Account.BalanceAchieved, "owner %s", owner)
		require.Equal(t, sum, details.Account.Balance, "owner %s", owner)
	}
}

var wideRange = DateRange{From: testNow.AddDate(-1, 0, 0), End: testNow.AddDate(1, 0, 0)}

func subHistory(t *testing.T, s *Service, owner, code string) []history.Record {
	t.Helper()

	recs, err := s.SubAccountHistory(t.Context(), Actor{Name: owner}, code, wideRange)
	require.NoError(t, err)

	return recs
}

func userHistory(t *testing.T, s *Service, owner string) []history.Record {
	t.Helper()

	recs, err := s.UserHistory(t.Context(), Actor{Name: owner}, owner, wideRange)
	require.NoError(t, err)

	return recs
}

var errInjected = errors.New("injected failure")

// faultyStore fails the failAt-th history append made through its units.
type faultyStore struct {
	storage.Store

	mu      sync.Mutex
	appends int
	failAt  int
}

func (f *faultyStore) Begin(ctx context.Context) (storage.Unit, error) {
	u, err := f.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &faultyUnit{Unit: u, store: f}, nil
}

type faultyUnit struct {
	storage.Unit

	store *faultyStore
}

func (u *faultyUnit) History() history.History {
	return &faultyHistory{History: u.Unit.History(), store: u.store}
}

type faultyHistory struct {
	history.History

	store *faultyStore
}

func (h *faultyHistory) Append(ctx context.Context, rec history.Record) (history.Record, error) {
	h.store.mu.Lock()
	h.store.appends++
	fail := h.store.appends == h.store.failAt
	h.store.mu.Unlock()

	if fail {
		return history.Record{}, errInjected
	}

	return h.History.Append(ctx, rec)
}

func (f *faultyStore) arm(failAfter int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failAt = f.appends + failAfter
}


// spyStore records the sub-accounts its units read FOR UPDATE and can make
// the next CreateSubAccount calls fail as if another unit inserted the code
// first.
type spyStore struct {
	storage.Store

	mu         sync.Mutex
	lockedSubs []int64
	dupCreates int
	begins     int
}

func (f *spyStore) Begin(ctx context.Context) (storage.Unit, error) {
	u, err := f.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.begins++
	f.mu.Unlock()

	return &spyUnit{Unit: u, store: f}, nil
}

func (f *spyStore) locked() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int64(nil), f.lockedSubs...)
}

type spyUnit struct {
	storage.Unit

	store *spyStore
}

func (u *spyUnit) Accounts() accounts.Accounts {
	return &spyAccounts{Accounts: u.Unit.Accounts(), store: u.store}
}

type spyAccounts struct {
	accounts.Accounts

	store *spyStore
}

func (a *spyAccounts) FindByCode(ctx context.Context, code string, forUpdate bool) (accounts.Account, error) {
	acc, err := a.Accounts.FindByCode(ctx, code, forUpdate)
	if err == nil && forUpdate {
		a.store.mu.Lock()
		a.store.lockedSubs = append(a.store.lockedSubs, acc.ID)
		a.store.mu.Unlock()
	}

	return acc, err
}

func (a *spyAccounts) Get(ctx context.Context, kind accounts.Kind, id int64, forUpdate bool) (accounts.Account, error) {
	if forUpdate && kind == accounts.KindSub {
		a.store.mu.Lock()
		a.store.lockedSubs = append(a.store.lockedSubs, id)
		a.store.mu.Unlock()
	}

	return a.Accounts.Get(ctx, kind, id, forUpdate)
}

func (a *spyAccounts) CreateSubAccount(ctx context.Context, userAccountID int64, code string) (accounts.Account, error) {
	a.store.mu.Lock()
	dup := a.store.dupCreates > 0
	if dup {
		a.store.dupCreates--
	}
	a.store.mu.Unlock()

	if dup {
		return accounts.Account{}, fmt.Errorf("insert sub-account: %w", accounts.ErrDuplicate)
	}

	return a.Accounts.CreateSubAccount(ctx, userAccountID, code)
}

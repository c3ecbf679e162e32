package memory

import (
	"maps"
	"slices"

	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
)

// state is one immutable-once-committed snapshot of the ledger.
type state struct {
	users   map[int64]accounts.Account
	subs    map[int64]accounts.Account
	owners  map[string]int64
	codes   map[string]int64
	userLog []history.Record
	subLog  []history.Record

	nextUserID   int64
	nextSubID    int64
	nextRecordID int64
}

func newState() *state {
	return &state{
		users:  make(map[int64]accounts.Account),
		subs:   make(map[int64]accounts.Account),
		owners: make(map[string]int64),
		codes:  make(map[string]int64),
	}
}

// clone returns a working copy. Logs are clipped so appends to the copy never
// write into the committed backing arrays.
func (s *state) clone() *state {
	return &state{
		users:        maps.Clone(s.users),
		subs:         maps.Clone(s.subs),
		owners:       maps.Clone(s.owners),
		codes:        maps.Clone(s.codes),
		userLog:      slices.Clip(s.userLog),
		subLog:       slices.Clip(s.subLog),
		nextUserID:   s.nextUserID,
		nextSubID:    s.nextSubID,
		nextRecordID: s.nextRecordID,
	}
}

func (s *state) table(kind accounts.Kind) map[int64]accounts.Account {
	if kind == accounts.KindUser {
		return s.users
	}

	return s.subs
}

func (s *state) log(kind accounts.Kind) *[]history.Record {
	if kind == accounts.KindUser {
		return &s.userLog
	}

	return &s.subLog
}

// withOwner fills the derived Owner of a sub-account.
func (s *state) withOwner(acc accounts.Account) accounts.Account {
	if acc.Kind == accounts.KindSub {
		acc.Owner = s.users[acc.UserAccountID].Owner
	}

	return acc
}

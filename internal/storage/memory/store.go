// Package memory implements storage.Store in process memory.
//
// Units are serialized: Begin blocks until the previous unit commits or rolls
// back. A unit mutates a private copy of the committed state, which replaces
// the committed state on Commit and is dropped on Rollback. Read views always
// see the last committed state. A committed state is never mutated again, so
// a Snapshot only pins the current one.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
	"github.com/fastprodman/ledger/internal/storage"
)

var (
	_ storage.Store = (*Store)(nil)

	errReadOnly = errors.New("read-only view")
)

type Store struct {
	sem   chan struct{}
	now   func() time.Time
	mu    sync.RWMutex
	state *state
}

type Option func(*Store)

// WithClock overrides the clock used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		sem:   make(chan struct{}, 1),
		now:   time.Now,
		state: newState(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) Begin(ctx context.Context) (storage.Unit, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.RLock()
	work := s.state.clone()
	s.mu.RUnlock()

	u := &unit{store: s, state: work}

	return u, nil
}

func (s *Store) Snapshot(ctx context.Context) (storage.Snapshot, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	v := frozenView{st: s.state}
	s.mu.RUnlock()

	return &snapshot{
		accounts: &accountsRepo{v: v, now: s.now},
		history:  &historyRepo{v: v, now: s.now},
	}, nil
}

func (s *Store) Accounts() accounts.Accounts {
	return &accountsRepo{v: committedView{s}, now: s.now}
}

func (s *Store) History() history.History {
	return &historyRepo{v: committedView{s}, now: s.now}
}

// view gives repositories access to a state.
type view interface {
	read(fn func(*state) error) error
	write(fn func(*state) error) error
}

type committedView struct{ s *Store }

func (c committedView) read(fn func(*state) error) error {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	return fn(c.s.state)
}

func (committedView) write(func(*state) error) error {
	return errReadOnly
}

// frozenView reads one committed state without locking.
type frozenView struct{ st *state }

func (f frozenView) read(fn func(*state) error) error {
	return fn(f.st)
}

func (frozenView) write(func(*state) error) error {
	return errReadOnly
}

type snapshot struct {
	accounts accounts.Accounts
	history  history.History
}

func (s *snapshot) Accounts() accounts.Accounts { return s.accounts }

func (s *snapshot) History() history.History { return s.history }

func (*snapshot) Close() error { return nil }

type unit struct {
	store  *Store
	mu     sync.Mutex
	state  *state
	closed bool
}

func (u *unit) Accounts() accounts.Accounts {
	return &accountsRepo{v: u, now: u.store.now}
}

func (u *unit) History() history.History {
	return &historyRepo{v: u, now: u.store.now}
}

func (u *unit) read(fn func(*state) error) error {
	return u.write(fn)
}

func (u *unit) write(fn func(*state) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return storage.ErrUnitClosed
	}

	return fn(u.state)
}

func (u *unit) Commit() error {
	return u.finish(true)
}

func (u *unit) Rollback() error {
	return u.finish(false)
}

func (u *unit) finish(commit bool) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return storage.ErrUnitClosed
	}

	u.closed = true

	if commit {
		u.store.mu.Lock()
		u.store.state = u.state
		u.store.mu.Unlock()
	}

	u.state = nil
	<-u.store.sem

	return nil
}

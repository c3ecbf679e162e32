// Package storage defines the unit of work shared by the ledger service and
// its storage backends.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastprodman/ledger/internal/repos/accounts"
	"github.com/fastprodman/ledger/internal/repos/history"
)

// ErrUnitClosed is returned when a unit is used after Commit or Rollback.
var ErrUnitClosed = errors.New("unit already closed")

// Unit is one all-or-nothing unit of work. Repositories obtained from a unit
// see its uncommitted writes; nothing becomes visible to other readers until
// Commit.
type Unit interface {
	Accounts() accounts.Accounts
	History() history.History
	Commit() error
	Rollback() error
}

// Snapshot is a read-only view of committed state as of a single instant.
// Reads through it never observe a unit that commits after it was taken.
type Snapshot interface {
	Accounts() accounts.Accounts
	History() history.History
	Close() error
}

// Store opens units and exposes read views of committed state. Accounts and
// History read the latest committed state per call; use Snapshot when several
// reads must agree with each other.
type Store interface {
	Begin(ctx context.Context) (Unit, error)
	Snapshot(ctx context.Context) (Snapshot, error)
	Accounts() accounts.Accounts
	History() history.History
}

// WithUnit runs fn inside a unit.
// It commits if fn returns nil, otherwise it rolls back. A panic in fn rolls
// back and is re-raised.
func WithUnit(ctx context.Context, s Store, fn func(Unit) error) (err error) {
	u, err := s.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = u.Rollback()
			panic(r)
		}
	}()

	err = fn(u)
	if err != nil {
		rbErr := u.Rollback()
		if rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}

		return err
	}

	err = u.Commit()
	if err != nil {
		return fmt.Errorf("commit unit: %w", err)
	}

	return nil
}

// WithSnapshot runs fn against one snapshot and closes it afterwards.
func WithSnapshot(ctx context.Context, s Store, fn func(Snapshot) error) (err error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}

	defer func() {
		closeErr := snap.Close()
		if closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close snapshot: %w", closeErr))
		}
	}()

	return fn(snap)
}

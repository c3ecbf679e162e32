// Package postgres implements storage.Store on database/sql transactions.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/ledger/internal/repos/accounts"
	accountspg "github.com/fastprodman/ledger/internal/repos/accounts/postgres"
	"github.com/fastprodman/ledger/internal/repos/history"
	historypg "github.com/fastprodman/ledger/internal/repos/history/postgres"
	"github.com/fastprodman/ledger/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Begin(ctx context.Context) (storage.Unit, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	return &unit{
		tx:       tx,
		accounts: accountspg.New(tx),
		history:  historypg.New(tx),
	}, nil
}

// Snapshot opens a read-only REPEATABLE READ transaction, so every statement
// sees the data as of its first query.
func (s *Store) Snapshot(ctx context.Context) (storage.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot tx: %w", err)
	}

	return &snapshot{
		tx:       tx,
		accounts: accountspg.New(tx),
		history:  historypg.New(tx),
	}, nil
}

func (s *Store) Accounts() accounts.Accounts {
	return accountspg.New(s.db)
}

func (s *Store) History() history.History {
	return historypg.New(s.db)
}

type unit struct {
	tx       *sql.Tx
	accounts accounts.Accounts
	history  history.History
}

func (u *unit) Accounts() accounts.Accounts { return u.accounts }

func (u *unit) History() history.History { return u.history }

func (u *unit) Commit() error {
	err := u.tx.Commit()
	if err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (u *unit) Rollback() error {
	err := u.tx.Rollback()
	if err != nil {
		return fmt.Errorf("rollback tx: %w", err)
	}

	return nil
}

type snapshot struct {
	tx       *sql.Tx
	accounts accounts.Accounts
	history  history.History
}

func (s *snapshot) Accounts() accounts.Accounts { return s.accounts }

func (s *snapshot) History() history.History { return s.history }

// Close ends the transaction. Nothing was written, so it rolls back.
func (s *snapshot) Close() error {
	err := s.tx.Rollback()
	if err != nil {
		return fmt.Errorf("rollback snapshot tx: %w", err)
	}

	return nil
}

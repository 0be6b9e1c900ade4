package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/swapbook/swapbook/swapbook/config"
)

// Repos groups the repositories bound to one handle, either the shared
// database or a single transaction.
type Repos struct {
	Swaps         SwapRepository
	Notifications NotificationRepository
	Users         UserRepository
}

func NewRepos(db bun.IDB) *Repos {
	return &Repos{
		Swaps:         NewSwapRepository(db),
		Notifications: NewNotificationRepository(db),
		Users:         NewUserRepository(db),
	}
}

// Store is the swap record store: repositories over the shared handle plus
// a transaction scope that rebinds them.
type Store struct {
	*Repos
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{Repos: NewRepos(db), db: db}
}

func (s *Store) DB() *bun.DB {
	return s.db
}

// WithTransaction runs fn against repositories bound to a new transaction.
// fn's error rolls the transaction back; otherwise it commits.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos *Repos) error) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, config.DefaultTxTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(timeoutCtx, s.txOptions())
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(timeoutCtx, NewRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Postgres runs at READ COMMITTED with explicit row locks. The sqlite driver
// rejects isolation levels, and its single connection serializes anyway.
func (s *Store) txOptions() *sql.TxOptions {
	if s.db.Dialect().Name() == dialect.PG {
		return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ward-inventory-api/internal/ledger"
	"ward-inventory-api/internal/recon"
	"ward-inventory-api/internal/workflow"
)

const txAttempts = 3

// TxRunner runs workflow callbacks inside a database transaction with
// serializable isolation, retrying a bounded number of times on transient
// contention. Side effects of an approval either all commit or all roll back.
type TxRunner struct {
	pool *pgxpool.Pool
}

var _ workflow.TxRunner = (*TxRunner)(nil)

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) Run(ctx context.Context, fn func(ws workflow.Store, ls ledger.Store) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !retryable(err) {
			return err
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ws workflow.Store, ls ledger.Store) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(NewRequestStore(tx), NewLedgerStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ReconTxRunner gives the reconciler the same transactional boundary: a
// count and its alert, or a review and its acknowledgment, land in one
// transaction.
type ReconTxRunner struct {
	pool *pgxpool.Pool
}

var _ recon.TxRunner = (*ReconTxRunner)(nil)

func NewReconTxRunner(pool *pgxpool.Pool) *ReconTxRunner {
	return &ReconTxRunner{pool: pool}
}

func (r *ReconTxRunner) Run(ctx context.Context, fn func(s recon.Store) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !retryable(err) {
			return err
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

func (r *ReconTxRunner) runOnce(ctx context.Context, fn func(s recon.Store) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(NewReconStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

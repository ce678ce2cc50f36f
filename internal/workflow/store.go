package workflow

import (
	"context"
	"time"

	"ward-inventory-api/internal/ledger"
	"ward-inventory-api/internal/models"
)

// Store is the storage boundary for requests. The Resolve* methods are the
// race-safe core: each one is a single conditional write that flips the
// status only while it is still Pending and reports whether any row
// matched. Callers never read-check-then-write.
type Store interface {
	InsertTransferRequest(ctx context.Context, r *models.TransferRequest) (int64, error)
	GetTransferRequest(ctx context.Context, id int64) (*models.TransferRequest, error)
	ResolveTransfer(ctx context.Context, id int64, status, approver string, when time.Time) (bool, error)

	InsertWithdrawalRequest(ctx context.Context, r *models.WithdrawalRequest) (int64, error)
	GetWithdrawalRequest(ctx context.Context, id int64) (*models.WithdrawalRequest, error)
	ResolveWithdrawal(ctx context.Context, id int64, status, approver string, when time.Time) (bool, error)

	InsertHoldingRequest(ctx context.Context, r *models.HoldingRequest) (int64, error)
	GetHoldingRequest(ctx context.Context, id int64) (*models.HoldingRequest, error)
	ResolveHolding(ctx context.Context, id int64, status, approver string, when time.Time) (bool, error)
}

// TxRunner executes fn with request and ledger stores bound to one
// transaction. The status flip and every ledger side effect of an approval
// commit or roll back together; a failed approval leaves no partial writes.
type TxRunner interface {
	Run(ctx context.Context, fn func(ws Store, ls ledger.Store) error) error
}

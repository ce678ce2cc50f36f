package ledger

import (
	"context"

	"ward-inventory-api/internal/models"
)

// Store is the storage boundary for ledger state. Implementations must make
// MovementTotals a single consistent read: concurrent inserts during the
// aggregation must not produce a torn sum.
type Store interface {
	// FindHolding looks up a holding by its natural key. The serial is
	// already normalized by the caller; nil means "no serial". Returns
	// models.ErrNotFound when absent.
	FindHolding(ctx context.Context, assetID, roomID int64, serial *string) (*models.Holding, error)

	// GetHolding looks up a holding by id. Returns models.ErrNotFound when absent.
	GetHolding(ctx context.Context, holdingID int64) (*models.Holding, error)

	InsertHolding(ctx context.Context, h *models.Holding) (int64, error)
	UpdateHolding(ctx context.Context, h *models.Holding) error

	// UpdateBaseline overwrites baseline_qty only. Returns models.ErrNotFound
	// when no holding matches.
	UpdateBaseline(ctx context.Context, holdingID int64, qty int) error

	// BaselineQty returns the declared baseline for (asset, room), or 0 when
	// no holding exists.
	BaselineQty(ctx context.Context, assetID, roomID int64) (int, error)

	// InsertTransaction appends one immutable movement row.
	InsertTransaction(ctx context.Context, t *models.Transaction) (int64, error)

	// MovementTotals returns the inbound sum (to_room = room, kind IN or
	// TRANSFER) and outbound sum (from_room = room, kind OUT or TRANSFER)
	// for an asset, read in one snapshot.
	MovementTotals(ctx context.Context, assetID, roomID int64) (in int, out int, err error)

	// LatestCount returns the most recent daily count for (asset, room) by
	// count date, or nil when none has been recorded.
	LatestCount(ctx context.Context, assetID, roomID int64) (*models.DailyCount, error)
}

package recon

import (
	"context"
	"time"

	"ward-inventory-api/internal/models"
)

// Store is the storage boundary for counts and alerts.
type Store interface {
	// BaselineQty returns the declared baseline for (asset, room), or 0
	// when no holding exists.
	BaselineQty(ctx context.Context, assetID, roomID int64) (int, error)

	InsertCount(ctx context.Context, c *models.DailyCount) (int64, error)
	GetCount(ctx context.Context, countID int64) (*models.DailyCount, error)

	// MarkCountReviewed sets the review fields; reports whether a row matched.
	MarkCountReviewed(ctx context.Context, countID int64, reviewer string, when time.Time) (bool, error)

	InsertAlert(ctx context.Context, a *models.Alert) (int64, error)
	GetAlert(ctx context.Context, alertID int64) (*models.Alert, error)

	// AckAlert acknowledges an alert by id; reports whether a row matched.
	AckAlert(ctx context.Context, alertID int64, by string, when time.Time) (bool, error)

	// AckAlertForCount acknowledges the alert tied to a count, if any.
	AckAlertForCount(ctx context.Context, countID int64, by string, when time.Time) error
}

// TxRunner executes fn against a transactional Store. A count and its alert,
// or a review and its acknowledgment, commit together or not at all.
type TxRunner interface {
	Run(ctx context.Context, fn func(s Store) error) error
}

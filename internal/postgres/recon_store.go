package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"ward-inventory-api/internal/models"
	"ward-inventory-api/internal/recon"
)

// ReconStore implements recon.Store over a Querier.
type ReconStore struct {
	q Querier
}

var _ recon.Store = (*ReconStore)(nil)

func NewReconStore(q Querier) *ReconStore {
	return &ReconStore{q: q}
}

const countCols = `id, asset_id, room_id, count_date, counted_by, qty_counted,
	variance, note, reviewed_by_manager, reviewer, reviewed_on,
	qty_given, qty_received, used_qty, withdraw_qty, equipment_status`

func scanCount(row pgx.Row) (*models.DailyCount, error) {
	var c models.DailyCount
	err := row.Scan(&c.ID, &c.AssetID, &c.RoomID, &c.CountDate, &c.CountedBy, &c.QtyCounted,
		&c.Variance, &c.Note, &c.ReviewedByManager, &c.Reviewer, &c.ReviewedOn,
		&c.QtyGiven, &c.QtyReceived, &c.UsedQty, &c.WithdrawQty, &c.EquipmentStatus)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (s *ReconStore) BaselineQty(ctx context.Context, assetID, roomID int64) (int, error) {
	return NewLedgerStore(s.q).BaselineQty(ctx, assetID, roomID)
}

func (s *ReconStore) InsertCount(ctx context.Context, c *models.DailyCount) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO daily_counts (asset_id, room_id, count_date, counted_by,
			qty_counted, variance, note, qty_given, qty_received, used_qty,
			withdraw_qty, equipment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		c.AssetID, c.RoomID, c.CountDate, c.CountedBy,
		c.QtyCounted, c.Variance, c.Note, c.QtyGiven, c.QtyReceived, c.UsedQty,
		c.WithdrawQty, c.EquipmentStatus,
	).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (s *ReconStore) GetCount(ctx context.Context, countID int64) (*models.DailyCount, error) {
	return scanCount(s.q.QueryRow(ctx, `
		SELECT `+countCols+`
		FROM daily_counts
		WHERE id = $1`, countID))
}

func (s *ReconStore) MarkCountReviewed(ctx context.Context, countID int64, reviewer string, when time.Time) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE daily_counts
		SET reviewed_by_manager = TRUE, reviewer = $2, reviewed_on = $3
		WHERE id = $1`,
		countID, reviewer, when)
	if err != nil {
		return false, mapError(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *ReconStore) InsertAlert(ctx context.Context, a *models.Alert) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO alerts (daily_count_id, severity)
		VALUES ($1, $2)
		RETURNING id`,
		a.DailyCountID, a.Severity,
	).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (s *ReconStore) GetAlert(ctx context.Context, alertID int64) (*models.Alert, error) {
	var a models.Alert
	err := s.q.QueryRow(ctx, `
		SELECT id, daily_count_id, severity, acknowledged, acknowledged_by, acknowledged_on
		FROM alerts
		WHERE id = $1`, alertID,
	).Scan(&a.ID, &a.DailyCountID, &a.Severity, &a.Acknowledged, &a.AcknowledgedBy, &a.AcknowledgedOn)
	if err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

func (s *ReconStore) AckAlert(ctx context.Context, alertID int64, by string, when time.Time) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE alerts
		SET acknowledged = TRUE, acknowledged_by = $2, acknowledged_on = $3
		WHERE id = $1`,
		alertID, by, when)
	if err != nil {
		return false, mapError(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *ReconStore) AckAlertForCount(ctx context.Context, countID int64, by string, when time.Time) error {
	_, err := s.q.Exec(ctx, `
		UPDATE alerts
		SET acknowledged = TRUE, acknowledged_by = $2, acknowledged_on = $3
		WHERE daily_count_id = $1 AND NOT acknowledged`,
		countID, by, when)
	return mapError(err)
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"ward-inventory-api/internal/ledger"
	"ward-inventory-api/internal/models"
)

// LedgerStore implements ledger.Store over a Querier.
type LedgerStore struct {
	q Querier
}

var _ ledger.Store = (*LedgerStore)(nil)

func NewLedgerStore(q Querier) *LedgerStore {
	return &LedgerStore{q: q}
}

const holdingCols = `id, asset_id, room_id, serial_number, baseline_qty,
	date_received, received_by, manager_in_charge, origin, equipment_status,
	created_at, updated_at`

func scanHolding(row pgx.Row) (*models.Holding, error) {
	var h models.Holding
	err := row.Scan(&h.ID, &h.AssetID, &h.RoomID, &h.SerialNumber, &h.BaselineQty,
		&h.DateReceived, &h.ReceivedBy, &h.ManagerInCharge, &h.Origin, &h.EquipmentStatus,
		&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &h, nil
}

func (s *LedgerStore) FindHolding(ctx context.Context, assetID, roomID int64, serial *string) (*models.Holding, error) {
	// serial_number is NULL for untracked holdings, so the nil case needs
	// its own predicate.
	if serial == nil {
		return scanHolding(s.q.QueryRow(ctx, `
			SELECT `+holdingCols+`
			FROM holdings
			WHERE asset_id = $1 AND room_id = $2 AND serial_number IS NULL`,
			assetID, roomID))
	}
	return scanHolding(s.q.QueryRow(ctx, `
		SELECT `+holdingCols+`
		FROM holdings
		WHERE asset_id = $1 AND room_id = $2 AND serial_number = $3`,
		assetID, roomID, *serial))
}

func (s *LedgerStore) GetHolding(ctx context.Context, holdingID int64) (*models.Holding, error) {
	return scanHolding(s.q.QueryRow(ctx, `
		SELECT `+holdingCols+`
		FROM holdings
		WHERE id = $1`, holdingID))
}

func (s *LedgerStore) InsertHolding(ctx context.Context, h *models.Holding) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO holdings (asset_id, room_id, serial_number, baseline_qty,
			date_received, received_by, manager_in_charge, origin, equipment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		h.AssetID, h.RoomID, h.SerialNumber, h.BaselineQty,
		h.DateReceived, h.ReceivedBy, h.ManagerInCharge, h.Origin, h.EquipmentStatus,
	).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (s *LedgerStore) UpdateHolding(ctx context.Context, h *models.Holding) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE holdings
		SET baseline_qty = $2, date_received = $3, received_by = $4,
			manager_in_charge = $5, origin = $6, equipment_status = $7,
			updated_at = now()
		WHERE id = $1`,
		h.ID, h.BaselineQty, h.DateReceived, h.ReceivedBy,
		h.ManagerInCharge, h.Origin, h.EquipmentStatus)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *LedgerStore) UpdateBaseline(ctx context.Context, holdingID int64, qty int) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE holdings SET baseline_qty = $2, updated_at = now() WHERE id = $1`,
		holdingID, qty)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *LedgerStore) BaselineQty(ctx context.Context, assetID, roomID int64) (int, error) {
	var qty int
	err := s.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(baseline_qty), 0)
		FROM holdings
		WHERE asset_id = $1 AND room_id = $2`, assetID, roomID).Scan(&qty)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapError(err)
	}
	return qty, nil
}

func (s *LedgerStore) InsertTransaction(ctx context.Context, t *models.Transaction) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO transactions (asset_id, from_room_id, to_room_id, kind, qty,
			serial_number, txn_date, delivered_by, received_by, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		t.AssetID, t.FromRoomID, t.ToRoomID, t.Kind, t.Qty,
		t.SerialNumber, t.TxnDate, t.DeliveredBy, t.ReceivedBy, t.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (s *LedgerStore) MovementTotals(ctx context.Context, assetID, roomID int64) (int, int, error) {
	// One statement, so both sums come from the same snapshot.
	var in, out int
	err := s.q.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(qty) FILTER (WHERE to_room_id = $2 AND kind IN ('IN', 'TRANSFER')), 0),
			COALESCE(SUM(qty) FILTER (WHERE from_room_id = $2 AND kind IN ('OUT', 'TRANSFER')), 0)
		FROM transactions
		WHERE asset_id = $1`, assetID, roomID).Scan(&in, &out)
	if err != nil {
		return 0, 0, mapError(err)
	}
	return in, out, nil
}

func (s *LedgerStore) LatestCount(ctx context.Context, assetID, roomID int64) (*models.DailyCount, error) {
	c, err := scanCount(s.q.QueryRow(ctx, `
		SELECT `+countCols+`
		FROM daily_counts
		WHERE asset_id = $1 AND room_id = $2
		ORDER BY count_date DESC, id DESC
		LIMIT 1`, assetID, roomID))
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

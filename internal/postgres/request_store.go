package postgres

import (
	"context"
	"time"

	"ward-inventory-api/internal/models"
	"ward-inventory-api/internal/workflow"
)

// RequestStore implements workflow.Store over a Querier.
type RequestStore struct {
	q Querier
}

var _ workflow.Store = (*RequestStore)(nil)

func NewRequestStore(q Querier) *RequestStore {
	return &RequestStore{q: q}
}

// resolve flips a request's status in one conditional update. Zero rows
// matched means the request is gone or already resolved; the caller decides
// which by re-reading.
func (s *RequestStore) resolve(ctx context.Context, table string, id int64, status, approver string, when time.Time) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE `+table+`
		SET status = $2, approved_by = $3, approved_on = $4
		WHERE id = $1 AND status = 'Pending'`,
		id, status, approver, when)
	if err != nil {
		return false, mapError(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *RequestStore) InsertTransferRequest(ctx context.Context, r *models.TransferRequest) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO transfer_requests (asset_id, from_room_id, to_room_id, qty,
			reason, requested_by, requested_on, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		r.AssetID, r.FromRoomID, r.ToRoomID, r.Qty,
		r.Reason, r.RequestedBy, r.RequestedOn, r.Status,
	).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (s *RequestStore) GetTransferRequest(ctx context.Context, id int64) (*models.TransferRequest, error) {
	var r models.TransferRequest
	err := s.q.QueryRow(ctx, `
		SELECT id, asset_id, from_room_id, to_room_id, qty, reason,
			requested_by, requested_on, status, approved_by, approved_on
		FROM transfer_requests
		WHERE id = $1`, id,
	).Scan(&r.ID, &r.AssetID, &r.FromRoomID, &r.ToRoomID, &r.Qty, &r.Reason,
		&r.RequestedBy, &r.RequestedOn, &r.Status, &r.ApprovedBy, &r.ApprovedOn)
	if err != nil {
		return nil, mapError(err)
	}
	return &r, nil
}

func (s *RequestStore) ResolveTransfer(ctx context.Context, id int64, status, approver string, when time.Time) (bool, error) {
	return s.resolve(ctx, "transfer_requests", id, status, approver, when)
}

func (s *RequestStore) InsertWithdrawalRequest(ctx context.Context, r *models.WithdrawalRequest) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO withdrawal_requests (asset_id, room_id, qty, note,
			requested_by, requested_on, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		r.AssetID, r.RoomID, r.Qty, r.Note,
		r.RequestedBy, r.RequestedOn, r.Status,
	).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (s *RequestStore) GetWithdrawalRequest(ctx context.Context, id int64) (*models.WithdrawalRequest, error) {
	var r models.WithdrawalRequest
	err := s.q.QueryRow(ctx, `
		SELECT id, asset_id, room_id, qty, note,
			requested_by, requested_on, status, approved_by, approved_on
		FROM withdrawal_requests
		WHERE id = $1`, id,
	).Scan(&r.ID, &r.AssetID, &r.RoomID, &r.Qty, &r.Note,
		&r.RequestedBy, &r.RequestedOn, &r.Status, &r.ApprovedBy, &r.ApprovedOn)
	if err != nil {
		return nil, mapError(err)
	}
	return &r, nil
}

func (s *RequestStore) ResolveWithdrawal(ctx context.Context, id int64, status, approver string, when time.Time) (bool, error) {
	return s.resolve(ctx, "withdrawal_requests", id, status, approver, when)
}

func (s *RequestStore) InsertHoldingRequest(ctx context.Context, r *models.HoldingRequest) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO holding_requests (asset_id, room_id, serial_number, baseline_qty,
			origin, requested_by, requested_on, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		r.AssetID, r.RoomID, r.SerialNumber, r.BaselineQty,
		r.Origin, r.RequestedBy, r.RequestedOn, r.Status,
	).Scan(&id)
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (s *RequestStore) GetHoldingRequest(ctx context.Context, id int64) (*models.HoldingRequest, error) {
	var r models.HoldingRequest
	err := s.q.QueryRow(ctx, `
		SELECT id, asset_id, room_id, serial_number, baseline_qty, origin,
			requested_by, requested_on, status, approved_by, approved_on
		FROM holding_requests
		WHERE id = $1`, id,
	).Scan(&r.ID, &r.AssetID, &r.RoomID, &r.SerialNumber, &r.BaselineQty, &r.Origin,
		&r.RequestedBy, &r.RequestedOn, &r.Status, &r.ApprovedBy, &r.ApprovedOn)
	if err != nil {
		return nil, mapError(err)
	}
	return &r, nil
}

func (s *RequestStore) ResolveHolding(ctx context.Context, id int64, status, approver string, when time.Time) (bool, error) {
	return s.resolve(ctx, "holding_requests", id, status, approver, when)
}

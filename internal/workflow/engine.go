// Package workflow implements the approval state machine for transfer,
// withdrawal and holding-declaration requests. A request is created Pending
// and resolves exactly once; approval side effects land on the ledger inside
// the same transaction as the status flip.
package workflow

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ward-inventory-api/internal/ledger"
	"ward-inventory-api/internal/models"
)

// Engine runs the three request workflows over an injected store and
// transaction runner.
type Engine struct {
	store  Store
	runner TxRunner
	log    zerolog.Logger
}

// New creates an Engine.
func New(store Store, runner TxRunner, log zerolog.Logger) *Engine {
	return &Engine{store: store, runner: runner, log: log}
}

// SubmitTransfer creates a Pending transfer request. Equal source and
// destination rooms or a non-positive quantity are rejected.
func (e *Engine) SubmitTransfer(ctx context.Context, in models.SubmitTransferRequest, requester string) (*models.TransferRequest, error) {
	if in.FromRoomID == in.ToRoomID || in.Qty <= 0 {
		return nil, models.ErrInvalidRequest
	}
	req := &models.TransferRequest{
		AssetID:     in.AssetID,
		FromRoomID:  in.FromRoomID,
		ToRoomID:    in.ToRoomID,
		Qty:         in.Qty,
		Reason:      in.Reason,
		RequestedBy: requester,
		RequestedOn: time.Now(),
		Status:      models.StatusPending,
	}
	id, err := e.store.InsertTransferRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	req.ID = id
	e.log.Info().Int64("request_id", id).Str("requested_by", requester).Msg("transfer request submitted")
	return req, nil
}

// SubmitWithdrawal creates a Pending withdrawal request.
func (e *Engine) SubmitWithdrawal(ctx context.Context, in models.SubmitWithdrawalRequest, requester string) (*models.WithdrawalRequest, error) {
	if in.Qty <= 0 {
		return nil, models.ErrInvalidRequest
	}
	req := &models.WithdrawalRequest{
		AssetID:     in.AssetID,
		RoomID:      in.RoomID,
		Qty:         in.Qty,
		Note:        in.Note,
		RequestedBy: requester,
		RequestedOn: time.Now(),
		Status:      models.StatusPending,
	}
	id, err := e.store.InsertWithdrawalRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	req.ID = id
	e.log.Info().Int64("request_id", id).Str("requested_by", requester).Msg("withdrawal request submitted")
	return req, nil
}

// SubmitHolding creates a Pending baseline declaration.
func (e *Engine) SubmitHolding(ctx context.Context, in models.SubmitHoldingRequest, requester string) (*models.HoldingRequest, error) {
	if in.BaselineQty < 0 {
		return nil, models.ErrInvalidRequest
	}
	req := &models.HoldingRequest{
		AssetID:      in.AssetID,
		RoomID:       in.RoomID,
		SerialNumber: ledger.NormalizeSerial(in.SerialNumber),
		BaselineQty:  in.BaselineQty,
		Origin:       in.Origin,
		RequestedBy:  requester,
		RequestedOn:  time.Now(),
		Status:       models.StatusPending,
	}
	id, err := e.store.InsertHoldingRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	req.ID = id
	e.log.Info().Int64("request_id", id).Str("requested_by", requester).Msg("holding request submitted")
	return req, nil
}

// GetTransfer returns a transfer request by id.
func (e *Engine) GetTransfer(ctx context.Context, requestID int64) (*models.TransferRequest, error) {
	return e.store.GetTransferRequest(ctx, requestID)
}

// GetWithdrawal returns a withdrawal request by id.
func (e *Engine) GetWithdrawal(ctx context.Context, requestID int64) (*models.WithdrawalRequest, error) {
	return e.store.GetWithdrawalRequest(ctx, requestID)
}

// GetHolding returns a baseline declaration by id.
func (e *Engine) GetHolding(ctx context.Context, requestID int64) (*models.HoldingRequest, error) {
	return e.store.GetHoldingRequest(ctx, requestID)
}

// ApproveTransfer flips the request to Approved and books the two transfer
// legs: an outbound leg against the source room and an inbound leg to the
// destination, same asset, quantity and date. Each leg contributes to
// exactly one room's balance.
func (e *Engine) ApproveTransfer(ctx context.Context, requestID int64, approver string) (*models.TransferRequest, error) {
	var out *models.TransferRequest
	err := e.runner.Run(ctx, func(ws Store, ls ledger.Store) error {
		req, err := ws.GetTransferRequest(ctx, requestID)
		if err != nil {
			return err
		}
		now := time.Now()
		matched, err := ws.ResolveTransfer(ctx, requestID, models.StatusApproved, approver, now)
		if err != nil {
			return err
		}
		if !matched {
			return models.ErrAlreadyResolved
		}

		led := ledger.New(ls)
		meta := ledger.Meta{TxnDate: now, CreatedBy: approver}
		outLeg, err := ledger.TransferOut(req.AssetID, req.FromRoomID, req.Qty)
		if err != nil {
			return err
		}
		inLeg, err := ledger.TransferIn(req.AssetID, req.ToRoomID, req.Qty)
		if err != nil {
			return err
		}
		if _, err := led.Record(ctx, outLeg, meta); err != nil {
			return err
		}
		if _, err := led.Record(ctx, inLeg, meta); err != nil {
			return err
		}

		req.Status = models.StatusApproved
		req.ApprovedBy = &approver
		req.ApprovedOn = &now
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Int64("request_id", requestID).Str("approved_by", approver).Msg("transfer approved")
	return out, nil
}

// ApproveWithdrawal flips the request to Approved and books a single IN
// movement to the requested room: the stock is restocked from outside, not
// taken from another room.
func (e *Engine) ApproveWithdrawal(ctx context.Context, requestID int64, approver string) (*models.WithdrawalRequest, error) {
	var out *models.WithdrawalRequest
	err := e.runner.Run(ctx, func(ws Store, ls ledger.Store) error {
		req, err := ws.GetWithdrawalRequest(ctx, requestID)
		if err != nil {
			return err
		}
		now := time.Now()
		matched, err := ws.ResolveWithdrawal(ctx, requestID, models.StatusApproved, approver, now)
		if err != nil {
			return err
		}
		if !matched {
			return models.ErrAlreadyResolved
		}

		m, err := ledger.Inbound(req.AssetID, req.RoomID, req.Qty)
		if err != nil {
			return err
		}
		if _, err := ledger.New(ls).Record(ctx, m, ledger.Meta{TxnDate: now, CreatedBy: approver}); err != nil {
			return err
		}

		req.Status = models.StatusApproved
		req.ApprovedBy = &approver
		req.ApprovedOn = &now
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Int64("request_id", requestID).Str("approved_by", approver).Msg("withdrawal approved")
	return out, nil
}

// ApproveHolding flips the request to Approved and applies the declared
// baseline through the ledger upsert, with the approver recorded as both
// receiver and manager in charge. No transaction row is booked: a baseline
// declaration is not a movement.
func (e *Engine) ApproveHolding(ctx context.Context, requestID int64, approver string) (*models.HoldingRequest, error) {
	var out *models.HoldingRequest
	err := e.runner.Run(ctx, func(ws Store, ls ledger.Store) error {
		req, err := ws.GetHoldingRequest(ctx, requestID)
		if err != nil {
			return err
		}
		now := time.Now()
		matched, err := ws.ResolveHolding(ctx, requestID, models.StatusApproved, approver, now)
		if err != nil {
			return err
		}
		if !matched {
			return models.ErrAlreadyResolved
		}

		_, err = ledger.New(ls).UpsertHolding(ctx, ledger.HoldingInput{
			AssetID:         req.AssetID,
			RoomID:          req.RoomID,
			SerialNumber:    req.SerialNumber,
			BaselineQty:     req.BaselineQty,
			DateReceived:    now,
			ReceivedBy:      approver,
			ManagerInCharge: approver,
			Origin:          req.Origin,
		})
		if err != nil {
			return err
		}

		req.Status = models.StatusApproved
		req.ApprovedBy = &approver
		req.ApprovedOn = &now
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Int64("request_id", requestID).Str("approved_by", approver).Msg("holding declaration approved")
	return out, nil
}

// RejectTransfer sets the request to Rejected. No ledger side effect.
func (e *Engine) RejectTransfer(ctx context.Context, requestID int64, approver string) error {
	return e.reject(ctx, requestID, approver, "transfer",
		func(ctx context.Context, id int64, when time.Time) (bool, error) {
			return e.store.ResolveTransfer(ctx, id, models.StatusRejected, approver, when)
		},
		func(ctx context.Context, id int64) error {
			_, err := e.store.GetTransferRequest(ctx, id)
			return err
		})
}

// RejectWithdrawal sets the request to Rejected. No ledger side effect.
func (e *Engine) RejectWithdrawal(ctx context.Context, requestID int64, approver string) error {
	return e.reject(ctx, requestID, approver, "withdrawal",
		func(ctx context.Context, id int64, when time.Time) (bool, error) {
			return e.store.ResolveWithdrawal(ctx, id, models.StatusRejected, approver, when)
		},
		func(ctx context.Context, id int64) error {
			_, err := e.store.GetWithdrawalRequest(ctx, id)
			return err
		})
}

// RejectHolding sets the request to Rejected. No ledger side effect.
func (e *Engine) RejectHolding(ctx context.Context, requestID int64, approver string) error {
	return e.reject(ctx, requestID, approver, "holding",
		func(ctx context.Context, id int64, when time.Time) (bool, error) {
			return e.store.ResolveHolding(ctx, id, models.StatusRejected, approver, when)
		},
		func(ctx context.Context, id int64) error {
			_, err := e.store.GetHoldingRequest(ctx, id)
			return err
		})
}

// reject runs the conditional flip and, when nothing matched, distinguishes
// a missing request from an already-resolved one.
func (e *Engine) reject(ctx context.Context, requestID int64, approver, kind string,
	resolve func(context.Context, int64, time.Time) (bool, error),
	exists func(context.Context, int64) error,
) error {
	matched, err := resolve(ctx, requestID, time.Now())
	if err != nil {
		return err
	}
	if !matched {
		if err := exists(ctx, requestID); err != nil {
			return err
		}
		return models.ErrAlreadyResolved
	}
	e.log.Info().Int64("request_id", requestID).Str("kind", kind).Str("rejected_by", approver).Msg("request rejected")
	return nil
}

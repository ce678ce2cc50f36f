package models

import "time"

// Request statuses. A request is created Pending and resolves exactly once
// to Approved or Rejected; both are terminal.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// TransferRequest proposes moving qty of an asset from one room to another.
// Approval emits the two transfer legs on the ledger.
type TransferRequest struct {
	ID          int64      `json:"id"`
	AssetID     int64      `json:"asset_id"`
	FromRoomID  int64      `json:"from_room_id"`
	ToRoomID    int64      `json:"to_room_id"`
	Qty         int        `json:"qty"`
	Reason      *string    `json:"reason,omitempty"`
	RequestedBy string     `json:"requested_by"`
	RequestedOn time.Time  `json:"requested_on"`
	Status      string     `json:"status"`
	ApprovedBy  *string    `json:"approved_by,omitempty"`
	ApprovedOn  *time.Time `json:"approved_on,omitempty"`
}

// WithdrawalRequest asks for supplies to be issued to a room. Approval books
// an IN movement: the stock arrives from outside, not from another room.
type WithdrawalRequest struct {
	ID          int64      `json:"id"`
	AssetID     int64      `json:"asset_id"`
	RoomID      int64      `json:"room_id"`
	Qty         int        `json:"qty"`
	Note        *string    `json:"note,omitempty"`
	RequestedBy string     `json:"requested_by"`
	RequestedOn time.Time  `json:"requested_on"`
	Status      string     `json:"status"`
	ApprovedBy  *string    `json:"approved_by,omitempty"`
	ApprovedOn  *time.Time `json:"approved_on,omitempty"`
}

// HoldingRequest declares a baseline quantity pending approval. Approval
// upserts the holding; it never books a movement because a baseline change
// redefines the reference point rather than moving stock.
type HoldingRequest struct {
	ID           int64      `json:"id"`
	AssetID      int64      `json:"asset_id"`
	RoomID       int64      `json:"room_id"`
	SerialNumber *string    `json:"serial_number,omitempty"`
	BaselineQty  int        `json:"baseline_qty"`
	Origin       *string    `json:"origin,omitempty"`
	RequestedBy  string     `json:"requested_by"`
	RequestedOn  time.Time  `json:"requested_on"`
	Status       string     `json:"status"`
	ApprovedBy   *string    `json:"approved_by,omitempty"`
	ApprovedOn   *time.Time `json:"approved_on,omitempty"`
}

// SubmitTransferRequest represents the request body for submitting a transfer
type SubmitTransferRequest struct {
	AssetID    int64   `json:"asset_id" validate:"required"`
	FromRoomID int64   `json:"from_room_id" validate:"required"`
	ToRoomID   int64   `json:"to_room_id" validate:"required"`
	Qty        int     `json:"qty" validate:"required"`
	Reason     *string `json:"reason,omitempty"`
}

// SubmitWithdrawalRequest represents the request body for submitting a withdrawal
type SubmitWithdrawalRequest struct {
	AssetID int64   `json:"asset_id" validate:"required"`
	RoomID  int64   `json:"room_id" validate:"required"`
	Qty     int     `json:"qty" validate:"required"`
	Note    *string `json:"note,omitempty"`
}

// SubmitHoldingRequest represents the request body for declaring a baseline
type SubmitHoldingRequest struct {
	AssetID      int64   `json:"asset_id" validate:"required"`
	RoomID       int64   `json:"room_id" validate:"required"`
	SerialNumber *string `json:"serial_number,omitempty"`
	BaselineQty  int     `json:"baseline_qty"`
	Origin       *string `json:"origin,omitempty"`
}

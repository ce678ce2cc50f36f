package models

import "time"

// Transaction kinds. IN and OUT move stock across the facility boundary,
// TRANSFER rows are single legs of a room-to-room move (one row per side),
// ADJUST corrects a balance in place.
const (
	TxnIn       = "IN"
	TxnOut      = "OUT"
	TxnTransfer = "TRANSFER"
	TxnAdjust   = "ADJUST"
)

// Transaction is an immutable record of inventory movement. Rows are append
// only; nothing updates or deletes them. Which of FromRoomID/ToRoomID is set
// depends on the kind: IN and the inbound transfer leg carry only ToRoomID,
// OUT and the outbound leg only FromRoomID.
type Transaction struct {
	ID           int64     `json:"id"`
	AssetID      int64     `json:"asset_id"`
	FromRoomID   *int64    `json:"from_room_id,omitempty"`
	ToRoomID     *int64    `json:"to_room_id,omitempty"`
	Kind         string    `json:"kind"`
	Qty          int       `json:"qty"`
	SerialNumber *string   `json:"serial_number,omitempty"`
	TxnDate      time.Time `json:"txn_date"`
	DeliveredBy  *string   `json:"delivered_by,omitempty"`
	ReceivedBy   *string   `json:"received_by,omitempty"`
	CreatedBy    string    `json:"created_by"`
}

// RecordTransactionRequest represents the request body for recording a
// manual movement
type RecordTransactionRequest struct {
	AssetID      int64   `json:"asset_id" validate:"required"`
	FromRoomID   *int64  `json:"from_room_id,omitempty"`
	ToRoomID     *int64  `json:"to_room_id,omitempty"`
	Kind         string  `json:"kind" validate:"required"`
	Qty          int     `json:"qty" validate:"required"`
	SerialNumber *string `json:"serial_number,omitempty"`
	DeliveredBy  *string `json:"delivered_by,omitempty"`
	ReceivedBy   *string `json:"received_by,omitempty"`
}

// TransactionRow is the denormalized transaction listing row
type TransactionRow struct {
	ID           int64   `json:"id"`
	TxnDate      string  `json:"txn_date"`
	AssetName    string  `json:"asset_name"`
	AssetType    string  `json:"asset_type"`
	Kind         string  `json:"kind"`
	FromRoom     *string `json:"from_room,omitempty"`
	ToRoom       *string `json:"to_room,omitempty"`
	Qty          int     `json:"qty"`
	SerialNumber *string `json:"serial_number,omitempty"`
	DeliveredBy  *string `json:"delivered_by,omitempty"`
	ReceivedBy   *string `json:"received_by,omitempty"`
	CreatedBy    string  `json:"created_by"`
}

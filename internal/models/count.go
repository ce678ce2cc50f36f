package models

import "time"

// DailyCount is an immutable snapshot of a physical count. Variance is fixed
// at creation time against the baseline of the moment; only the review
// fields change afterwards.
type DailyCount struct {
	ID                int64      `json:"id"`
	AssetID           int64      `json:"asset_id"`
	RoomID            int64      `json:"room_id"`
	CountDate         time.Time  `json:"count_date"`
	CountedBy         string     `json:"counted_by"`
	QtyCounted        int        `json:"qty_counted"`
	Variance          int        `json:"variance"`
	Note              *string    `json:"note,omitempty"`
	ReviewedByManager bool       `json:"reviewed_by_manager"`
	Reviewer          *string    `json:"reviewer,omitempty"`
	ReviewedOn        *time.Time `json:"reviewed_on,omitempty"`

	// Category-specific fields, carried through opaquely:
	// linens / central supply
	QtyGiven    *int `json:"qty_given,omitempty"`
	QtyReceived *int `json:"qty_received,omitempty"`
	// office supplies
	UsedQty     *int `json:"used_qty,omitempty"`
	WithdrawQty *int `json:"withdraw_qty,omitempty"`
	// equipment
	EquipmentStatus *string `json:"equipment_status,omitempty"`
}

// RecordCountRequest represents the request body for recording a count
type RecordCountRequest struct {
	AssetID         int64   `json:"asset_id" validate:"required"`
	RoomID          int64   `json:"room_id" validate:"required"`
	QtyCounted      int     `json:"qty_counted"`
	Note            *string `json:"note,omitempty"`
	QtyGiven        *int    `json:"qty_given,omitempty"`
	QtyReceived     *int    `json:"qty_received,omitempty"`
	UsedQty         *int    `json:"used_qty,omitempty"`
	WithdrawQty     *int    `json:"withdraw_qty,omitempty"`
	EquipmentStatus *string `json:"equipment_status,omitempty"`
}

// RecordCountResponse returns the computed variance to the caller
type RecordCountResponse struct {
	CountID  int64 `json:"count_id"`
	Variance int   `json:"variance"`
}

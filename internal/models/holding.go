package models

import "time"

// Holding is a declared baseline quantity of an asset assigned to a room,
// optionally serial-tracked. There is exactly one holding per
// (asset, room, serial) where a blank serial counts as "no serial".
type Holding struct {
	ID              int64     `json:"id"`
	AssetID         int64     `json:"asset_id"`
	RoomID          int64     `json:"room_id"`
	SerialNumber    *string   `json:"serial_number,omitempty"`
	BaselineQty     int       `json:"baseline_qty"`
	DateReceived    time.Time `json:"date_received"`
	ReceivedBy      string    `json:"received_by"`
	ManagerInCharge string    `json:"manager_in_charge"`
	Origin          *string   `json:"origin,omitempty"`
	EquipmentStatus *string   `json:"equipment_status,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpsertHoldingRequest represents the request body for creating or replacing
// a holding record
type UpsertHoldingRequest struct {
	AssetID         int64   `json:"asset_id" validate:"required"`
	RoomID          int64   `json:"room_id" validate:"required"`
	SerialNumber    *string `json:"serial_number,omitempty"`
	BaselineQty     int     `json:"baseline_qty"`
	DateReceived    *string `json:"date_received,omitempty"` // RFC 3339; defaults to now
	ReceivedBy      string  `json:"received_by"`
	ManagerInCharge string  `json:"manager_in_charge"`
	Origin          *string `json:"origin,omitempty"`
	EquipmentStatus *string `json:"equipment_status,omitempty"`
}

// SetBaselineRequest represents the request body for overwriting a holding's
// baseline quantity
type SetBaselineRequest struct {
	BaselineQty int `json:"baseline_qty"`
}

// HoldingRow is the denormalized holdings row served by the read API and fed
// to the report exporter. The field set is the stable row shape the export
// hook depends on.
type HoldingRow struct {
	HoldingID       int64   `json:"holding_id"`
	DepartmentID    int64   `json:"department_id"`
	Department      string  `json:"department"`
	RoomID          int64   `json:"room_id"`
	Room            string  `json:"room"`
	TypeID          int64   `json:"type_id"`
	AssetType       string  `json:"asset_type"`
	AssetID         int64   `json:"asset_id"`
	AssetName       string  `json:"asset_name"`
	Unit            *string `json:"unit,omitempty"`
	SerialNumber    *string `json:"serial_number,omitempty"`
	DateReceived    string  `json:"date_received"`
	ReceivedBy      string  `json:"received_by"`
	ManagerInCharge string  `json:"manager_in_charge"`
	Origin          *string `json:"origin,omitempty"`
	EquipmentStatus *string `json:"equipment_status,omitempty"`
	BaselineQty     int     `json:"baseline_qty"`
	QtyOnHand       int     `json:"qty_on_hand"`
	LastCount       *int    `json:"last_count,omitempty"`
	LastVariance    *int    `json:"last_variance,omitempty"`
}

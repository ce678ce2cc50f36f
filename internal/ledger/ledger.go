// Package ledger derives quantity-on-hand from declared baselines plus an
// append-only movement log. Baseline changes are not movements: they
// redefine the reference point a room is counted against.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"ward-inventory-api/internal/models"
)

// Ledger exposes the mutation and derivation primitives over an injected
// store.
type Ledger struct {
	store Store
}

// New creates a Ledger over the given store.
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// NormalizeSerial maps blank serials to nil so that "" and NULL address the
// same holding slot.
func NormalizeSerial(serial *string) *string {
	if serial == nil {
		return nil
	}
	s := strings.TrimSpace(*serial)
	if s == "" {
		return nil
	}
	return &s
}

// HoldingInput carries the fields of an upsert.
type HoldingInput struct {
	AssetID         int64
	RoomID          int64
	SerialNumber    *string
	BaselineQty     int
	DateReceived    time.Time
	ReceivedBy      string
	ManagerInCharge string
	Origin          *string
	EquipmentStatus *string
}

// UpsertHolding creates the holding for (asset, room, serial) or overwrites
// all mutable fields of the existing one. The serial is normalized first, so
// there is always exactly one holding per normalized key.
func (l *Ledger) UpsertHolding(ctx context.Context, in HoldingInput) (*models.Holding, error) {
	if in.BaselineQty < 0 {
		return nil, models.ErrInvalidRequest
	}
	serial := NormalizeSerial(in.SerialNumber)
	when := in.DateReceived
	if when.IsZero() {
		when = time.Now()
	}

	existing, err := l.store.FindHolding(ctx, in.AssetID, in.RoomID, serial)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		existing.SerialNumber = serial
		existing.BaselineQty = in.BaselineQty
		existing.DateReceived = when
		existing.ReceivedBy = in.ReceivedBy
		existing.ManagerInCharge = in.ManagerInCharge
		existing.Origin = in.Origin
		existing.EquipmentStatus = in.EquipmentStatus
		if err := l.store.UpdateHolding(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	h := &models.Holding{
		AssetID:         in.AssetID,
		RoomID:          in.RoomID,
		SerialNumber:    serial,
		BaselineQty:     in.BaselineQty,
		DateReceived:    when,
		ReceivedBy:      in.ReceivedBy,
		ManagerInCharge: in.ManagerInCharge,
		Origin:          in.Origin,
		EquipmentStatus: in.EquipmentStatus,
	}
	id, err := l.store.InsertHolding(ctx, h)
	if err != nil {
		return nil, err
	}
	h.ID = id
	return h, nil
}

// GetHolding returns a holding by id.
func (l *Ledger) GetHolding(ctx context.Context, holdingID int64) (*models.Holding, error) {
	return l.store.GetHolding(ctx, holdingID)
}

// SetBaseline overwrites a holding's baseline quantity in place. No
// transaction row is created.
func (l *Ledger) SetBaseline(ctx context.Context, holdingID int64, qty int) error {
	if qty < 0 {
		return models.ErrInvalidRequest
	}
	return l.store.UpdateBaseline(ctx, holdingID, qty)
}

// Record appends one immutable transaction row for the movement.
func (l *Ledger) Record(ctx context.Context, m Movement, meta Meta) (*models.Transaction, error) {
	if meta.TxnDate.IsZero() {
		meta.TxnDate = time.Now()
	}
	t := m.row(meta)
	id, err := l.store.InsertTransaction(ctx, t)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return t, nil
}

// QuantityOnHand computes baseline + inbound − outbound over the full
// transaction history for (asset, room). Linear in that asset's
// transactions; this is a read-path call, not a hot one.
func (l *Ledger) QuantityOnHand(ctx context.Context, assetID, roomID int64) (int, error) {
	baseline, err := l.store.BaselineQty(ctx, assetID, roomID)
	if err != nil {
		return 0, err
	}
	in, out, err := l.store.MovementTotals(ctx, assetID, roomID)
	if err != nil {
		return 0, err
	}
	return baseline + in - out, nil
}

// LastCount returns the most recent daily count for (asset, room), or nil
// when the pair has never been counted.
func (l *Ledger) LastCount(ctx context.Context, assetID, roomID int64) (*models.DailyCount, error) {
	return l.store.LatestCount(ctx, assetID, roomID)
}

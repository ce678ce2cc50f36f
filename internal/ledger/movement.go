package ledger

import (
	"time"

	"ward-inventory-api/internal/models"
)

// Movement is a validated, tagged description of one transaction row. The
// constructors are the only way to build one, so a kind can never carry a
// room it must not have (an IN with a source room, an OUT with a
// destination, and so on).
type Movement struct {
	assetID    int64
	kind       string
	fromRoomID *int64
	toRoomID   *int64
	qty        int
	serial     *string
}

// Meta carries the bookkeeping fields of a movement row.
type Meta struct {
	TxnDate     time.Time
	DeliveredBy *string
	ReceivedBy  *string
	CreatedBy   string
}

func validQty(qty int) error {
	if qty <= 0 {
		return models.ErrInvalidRequest
	}
	return nil
}

// Inbound books qty of an asset arriving into a room from outside the
// facility.
func Inbound(assetID, toRoomID int64, qty int) (Movement, error) {
	if err := validQty(qty); err != nil {
		return Movement{}, err
	}
	return Movement{assetID: assetID, kind: models.TxnIn, toRoomID: &toRoomID, qty: qty}, nil
}

// Outbound books qty of an asset leaving a room for outside the facility.
func Outbound(assetID, fromRoomID int64, qty int) (Movement, error) {
	if err := validQty(qty); err != nil {
		return Movement{}, err
	}
	return Movement{assetID: assetID, kind: models.TxnOut, fromRoomID: &fromRoomID, qty: qty}, nil
}

// TransferOut is the source-side leg of a room-to-room transfer; it carries
// only the source room and decrements its balance.
func TransferOut(assetID, fromRoomID int64, qty int) (Movement, error) {
	if err := validQty(qty); err != nil {
		return Movement{}, err
	}
	return Movement{assetID: assetID, kind: models.TxnTransfer, fromRoomID: &fromRoomID, qty: qty}, nil
}

// TransferIn is the destination-side leg of a room-to-room transfer.
func TransferIn(assetID, toRoomID int64, qty int) (Movement, error) {
	if err := validQty(qty); err != nil {
		return Movement{}, err
	}
	return Movement{assetID: assetID, kind: models.TxnTransfer, toRoomID: &toRoomID, qty: qty}, nil
}

// Adjustment records a manual correction against a room. Adjustment rows are
// audit entries only; the quantity-on-hand derivation does not include them.
func Adjustment(assetID, roomID int64, qty int) (Movement, error) {
	if err := validQty(qty); err != nil {
		return Movement{}, err
	}
	return Movement{assetID: assetID, kind: models.TxnAdjust, toRoomID: &roomID, qty: qty}, nil
}

// WithSerial attaches a serial number to the movement. Blank serials are
// dropped, matching holding serial normalization.
func (m Movement) WithSerial(serial string) Movement {
	if s := NormalizeSerial(&serial); s != nil {
		m.serial = s
	}
	return m
}

// Kind returns the transaction kind the movement will be recorded as.
func (m Movement) Kind() string { return m.kind }

// row flattens the movement into the persisted transaction shape.
func (m Movement) row(meta Meta) *models.Transaction {
	return &models.Transaction{
		AssetID:      m.assetID,
		FromRoomID:   m.fromRoomID,
		ToRoomID:     m.toRoomID,
		Kind:         m.kind,
		Qty:          m.qty,
		SerialNumber: m.serial,
		TxnDate:      meta.TxnDate,
		DeliveredBy:  meta.DeliveredBy,
		ReceivedBy:   meta.ReceivedBy,
		CreatedBy:    meta.CreatedBy,
	}
}

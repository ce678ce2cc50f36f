package ledger_test

import (
	"context"
	"testing"

	"ward-inventory-api/internal/ledger"
	"ward-inventory-api/internal/memstore"
	"ward-inventory-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovementConstructors_RoomPlacement(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	led := ledger.New(mem)

	tests := []struct {
		name     string
		build    func() (ledger.Movement, error)
		kind     string
		wantFrom *int64
		wantTo   *int64
	}{
		{
			name:   "inbound carries only destination",
			build:  func() (ledger.Movement, error) { return ledger.Inbound(1, 10, 5) },
			kind:   models.TxnIn,
			wantTo: int64Ptr(10),
		},
		{
			name:     "outbound carries only source",
			build:    func() (ledger.Movement, error) { return ledger.Outbound(1, 10, 5) },
			kind:     models.TxnOut,
			wantFrom: int64Ptr(10),
		},
		{
			name:     "transfer out leg carries only source",
			build:    func() (ledger.Movement, error) { return ledger.TransferOut(1, 10, 5) },
			kind:     models.TxnTransfer,
			wantFrom: int64Ptr(10),
		},
		{
			name:   "transfer in leg carries only destination",
			build:  func() (ledger.Movement, error) { return ledger.TransferIn(1, 20, 5) },
			kind:   models.TxnTransfer,
			wantTo: int64Ptr(20),
		},
		{
			name:   "adjustment targets the room",
			build:  func() (ledger.Movement, error) { return ledger.Adjustment(1, 10, 5) },
			kind:   models.TxnAdjust,
			wantTo: int64Ptr(10),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.kind, m.Kind())

			row, err := led.Record(ctx, m, ledger.Meta{CreatedBy: "test"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, row.FromRoomID)
			assert.Equal(t, tt.wantTo, row.ToRoomID)
		})
	}
}

func TestMovementConstructors_RejectNonPositiveQty(t *testing.T) {
	for _, qty := range []int{0, -4} {
		_, err := ledger.Inbound(1, 2, qty)
		assert.ErrorIs(t, err, models.ErrInvalidRequest)
		_, err = ledger.Outbound(1, 2, qty)
		assert.ErrorIs(t, err, models.ErrInvalidRequest)
		_, err = ledger.TransferOut(1, 2, qty)
		assert.ErrorIs(t, err, models.ErrInvalidRequest)
		_, err = ledger.TransferIn(1, 2, qty)
		assert.ErrorIs(t, err, models.ErrInvalidRequest)
		_, err = ledger.Adjustment(1, 2, qty)
		assert.ErrorIs(t, err, models.ErrInvalidRequest)
	}
}

func TestMovementWithSerial(t *testing.T) {
	ctx := context.Background()
	led := ledger.New(memstore.New())

	m, err := ledger.Inbound(1, 2, 1)
	require.NoError(t, err)

	row, err := led.Record(ctx, m.WithSerial("  SN-9 "), ledger.Meta{CreatedBy: "test"})
	require.NoError(t, err)
	require.NotNil(t, row.SerialNumber)
	assert.Equal(t, "SN-9", *row.SerialNumber)

	// Blank serials are dropped rather than stored as empty strings
	row, err = led.Record(ctx, m.WithSerial("   "), ledger.Meta{CreatedBy: "test"})
	require.NoError(t, err)
	assert.Nil(t, row.SerialNumber)
}

func int64Ptr(v int64) *int64 { return &v }

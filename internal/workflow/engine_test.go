package workflow_test

import (
	"context"
	"testing"

	"ward-inventory-api/internal/ledger"
	"ward-inventory-api/internal/memstore"
	"ward-inventory-api/internal/models"
	"ward-inventory-api/internal/workflow"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) (*workflow.Engine, *memstore.Mem, *ledger.Ledger) {
	t.Helper()
	mem := memstore.New()
	return workflow.New(mem, mem, zerolog.Nop()), mem, ledger.New(mem)
}

func strPtr(s string) *string { return &s }

func TestSubmitTransfer_Validation(t *testing.T) {
	eng, _, _ := newEngine(t)
	ctx := context.Background()

	_, err := eng.SubmitTransfer(ctx, models.SubmitTransferRequest{
		AssetID: 1, FromRoomID: 2, ToRoomID: 2, Qty: 5,
	}, "jstaff")
	assert.ErrorIs(t, err, models.ErrInvalidRequest)

	_, err = eng.SubmitTransfer(ctx, models.SubmitTransferRequest{
		AssetID: 1, FromRoomID: 2, ToRoomID: 3, Qty: 0,
	}, "jstaff")
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestApproveTransfer_BooksBothLegs(t *testing.T) {
	eng, mem, led := newEngine(t)
	ctx := context.Background()

	// Room 2 starts with 10 on hand, room 3 with 0
	_, err := led.UpsertHolding(ctx, ledger.HoldingInput{AssetID: 1, RoomID: 2, BaselineQty: 10})
	require.NoError(t, err)

	req, err := eng.SubmitTransfer(ctx, models.SubmitTransferRequest{
		AssetID: 1, FromRoomID: 2, ToRoomID: 3, Qty: 4, Reason: strPtr("restock"),
	}, "jstaff")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)

	approved, err := eng.ApproveTransfer(ctx, req.ID, "mmanager")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "mmanager", *approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedOn)

	// Exactly two TRANSFER legs, one per side
	txns := mem.Transactions()
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, models.TxnTransfer, txn.Kind)
		assert.Equal(t, 4, txn.Qty)
	}

	fromQty, err := led.QuantityOnHand(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, fromQty)

	toQty, err := led.QuantityOnHand(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, toQty)
}

func TestApproveTransfer_ResolvesExactlyOnce(t *testing.T) {
	eng, mem, _ := newEngine(t)
	ctx := context.Background()

	req, err := eng.SubmitTransfer(ctx, models.SubmitTransferRequest{
		AssetID: 1, FromRoomID: 2, ToRoomID: 3, Qty: 1,
	}, "jstaff")
	require.NoError(t, err)

	_, err = eng.ApproveTransfer(ctx, req.ID, "mmanager")
	require.NoError(t, err)

	// Second approval must not book further movements
	_, err = eng.ApproveTransfer(ctx, req.ID, "mmanager")
	assert.ErrorIs(t, err, models.ErrAlreadyResolved)
	assert.Len(t, mem.Transactions(), 2)

	// Neither can a rejection flip an approved request
	err = eng.RejectTransfer(ctx, req.ID, "mmanager")
	assert.ErrorIs(t, err, models.ErrAlreadyResolved)
}

func TestApproveTransfer_NotFound(t *testing.T) {
	eng, _, _ := newEngine(t)
	_, err := eng.ApproveTransfer(context.Background(), 404, "mmanager")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRejectTransfer_NoLedgerSideEffect(t *testing.T) {
	eng, mem, _ := newEngine(t)
	ctx := context.Background()

	req, err := eng.SubmitTransfer(ctx, models.SubmitTransferRequest{
		AssetID: 1, FromRoomID: 2, ToRoomID: 3, Qty: 5,
	}, "jstaff")
	require.NoError(t, err)

	require.NoError(t, eng.RejectTransfer(ctx, req.ID, "mmanager"))

	got, err := eng.GetTransfer(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Empty(t, mem.Transactions())

	// Rejection is just as terminal as approval
	_, err = eng.ApproveTransfer(ctx, req.ID, "mmanager")
	assert.ErrorIs(t, err, models.ErrAlreadyResolved)
}

func TestApproveWithdrawal_BooksSingleInbound(t *testing.T) {
	eng, mem, led := newEngine(t)
	ctx := context.Background()

	req, err := eng.SubmitWithdrawal(ctx, models.SubmitWithdrawalRequest{
		AssetID: 4, RoomID: 2, Qty: 12, Note: strPtr("pens for station"),
	}, "jstaff")
	require.NoError(t, err)

	approved, err := eng.ApproveWithdrawal(ctx, req.ID, "mmanager")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	// One IN movement into the requested room; nothing leaves another room
	txns := mem.Transactions()
	require.Len(t, txns, 1)
	assert.Equal(t, models.TxnIn, txns[0].Kind)
	assert.Nil(t, txns[0].FromRoomID)
	require.NotNil(t, txns[0].ToRoomID)
	assert.Equal(t, int64(2), *txns[0].ToRoomID)

	qty, err := led.QuantityOnHand(ctx, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 12, qty)
}

func TestSubmitWithdrawal_RejectsNonPositiveQty(t *testing.T) {
	eng, _, _ := newEngine(t)
	_, err := eng.SubmitWithdrawal(context.Background(), models.SubmitWithdrawalRequest{
		AssetID: 4, RoomID: 2, Qty: -1,
	}, "jstaff")
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestApproveHolding_UpsertsWithoutMovement(t *testing.T) {
	eng, mem, led := newEngine(t)
	ctx := context.Background()

	req, err := eng.SubmitHolding(ctx, models.SubmitHoldingRequest{
		AssetID: 1, RoomID: 2, BaselineQty: 30, Origin: strPtr("donation"),
	}, "jstaff")
	require.NoError(t, err)

	approved, err := eng.ApproveHolding(ctx, req.ID, "mmanager")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	// A baseline declaration redefines the reference point; it moves nothing
	assert.Empty(t, mem.Transactions())

	qty, err := led.QuantityOnHand(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 30, qty)
}

func TestApproveHolding_SecondApprovalOverwritesViaNewRequest(t *testing.T) {
	eng, _, led := newEngine(t)
	ctx := context.Background()

	first, err := eng.SubmitHolding(ctx, models.SubmitHoldingRequest{
		AssetID: 1, RoomID: 2, BaselineQty: 30,
	}, "jstaff")
	require.NoError(t, err)
	_, err = eng.ApproveHolding(ctx, first.ID, "mmanager")
	require.NoError(t, err)

	second, err := eng.SubmitHolding(ctx, models.SubmitHoldingRequest{
		AssetID: 1, RoomID: 2, BaselineQty: 18,
	}, "jstaff")
	require.NoError(t, err)
	_, err = eng.ApproveHolding(ctx, second.ID, "mmanager")
	require.NoError(t, err)

	// Same (asset, room, no serial) slot: the later approval overwrites
	qty, err := led.QuantityOnHand(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 18, qty)
}

func TestSubmitHolding_NormalizesSerial(t *testing.T) {
	eng, _, _ := newEngine(t)
	req, err := eng.SubmitHolding(context.Background(), models.SubmitHoldingRequest{
		AssetID: 6, RoomID: 1, SerialNumber: strPtr("  IP-0002 "), BaselineQty: 1,
	}, "jstaff")
	require.NoError(t, err)
	require.NotNil(t, req.SerialNumber)
	assert.Equal(t, "IP-0002", *req.SerialNumber)
}

package memstore_test

import (
	"context"
	"errors"
	"testing"

	"ward-inventory-api/internal/ledger"
	"ward-inventory-api/internal/memstore"
	"ward-inventory-api/internal/models"
	"ward-inventory-api/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_RollsBackOnError(t *testing.T) {
	mem := memstore.New()
	ctx := context.Background()

	boom := errors.New("boom")
	err := mem.Run(ctx, func(ws workflow.Store, ls ledger.Store) error {
		to := int64(2)
		_, insErr := ls.InsertTransaction(ctx, &models.Transaction{
			AssetID: 1, ToRoomID: &to, Kind: models.TxnIn, Qty: 5, CreatedBy: "test",
		})
		require.NoError(t, insErr)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// The insert inside the failed callback must not be visible
	assert.Empty(t, mem.Transactions())
}

func TestRun_CommitsOnSuccess(t *testing.T) {
	mem := memstore.New()
	ctx := context.Background()

	err := mem.Run(ctx, func(ws workflow.Store, ls ledger.Store) error {
		to := int64(2)
		_, insErr := ls.InsertTransaction(ctx, &models.Transaction{
			AssetID: 1, ToRoomID: &to, Kind: models.TxnIn, Qty: 5, CreatedBy: "test",
		})
		return insErr
	})
	require.NoError(t, err)
	assert.Len(t, mem.Transactions(), 1)
}

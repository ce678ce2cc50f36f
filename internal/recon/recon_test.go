package recon_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ward-inventory-api/internal/ledger"
	"ward-inventory-api/internal/memstore"
	"ward-inventory-api/internal/models"
	"ward-inventory-api/internal/recon"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReconciler(t *testing.T) (*recon.Reconciler, *memstore.Mem, *ledger.Ledger) {
	t.Helper()
	mem := memstore.New()
	return recon.New(mem, memstore.ReconRunner{Mem: mem}, zerolog.Nop()), mem, ledger.New(mem)
}

func intPtr(v int) *int { return &v }

func TestRecordCount_MatchingCountRaisesNoAlert(t *testing.T) {
	rec, _, led := newReconciler(t)
	ctx := context.Background()

	_, err := led.UpsertHolding(ctx, ledger.HoldingInput{AssetID: 1, RoomID: 2, BaselineQty: 40})
	require.NoError(t, err)

	res, err := rec.RecordCount(ctx, models.RecordCountRequest{
		AssetID: 1, RoomID: 2, QtyCounted: 40,
	}, "jstaff")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Variance)
	assert.Nil(t, res.Alert)
	assert.False(t, res.Count.ReviewedByManager)
}

func TestRecordCount_VarianceRaisesGradedAlert(t *testing.T) {
	rec, _, led := newReconciler(t)
	ctx := context.Background()

	_, err := led.UpsertHolding(ctx, ledger.HoldingInput{AssetID: 1, RoomID: 2, BaselineQty: 100})
	require.NoError(t, err)

	tests := []struct {
		counted      int
		wantVariance int
		wantSeverity string
	}{
		{75, -25, models.SeverityHigh},
		{88, -12, models.SeverityMedium},
		{95, -5, models.SeverityLow},
		{130, 30, models.SeverityHigh},
	}
	for _, tt := range tests {
		res, err := rec.RecordCount(ctx, models.RecordCountRequest{
			AssetID: 1, RoomID: 2, QtyCounted: tt.counted,
		}, "jstaff")
		require.NoError(t, err)
		assert.Equal(t, tt.wantVariance, res.Variance)
		require.NotNil(t, res.Alert)
		assert.Equal(t, tt.wantSeverity, res.Alert.Severity)
		assert.Equal(t, res.Count.ID, res.Alert.DailyCountID)
		assert.False(t, res.Alert.Acknowledged)
	}
}

func TestRecordCount_UncountedPairGradesLow(t *testing.T) {
	rec, _, _ := newReconciler(t)

	// No holding declared: baseline reads 0 and any count is a Low alert
	res, err := rec.RecordCount(context.Background(), models.RecordCountRequest{
		AssetID: 9, RoomID: 9, QtyCounted: 50,
	}, "jstaff")
	require.NoError(t, err)
	assert.Equal(t, 50, res.Variance)
	require.NotNil(t, res.Alert)
	assert.Equal(t, models.SeverityLow, res.Alert.Severity)
}

func TestRecordCount_NegativeCountRejected(t *testing.T) {
	rec, _, _ := newReconciler(t)
	_, err := rec.RecordCount(context.Background(), models.RecordCountRequest{
		AssetID: 1, RoomID: 2, QtyCounted: -1,
	}, "jstaff")
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
}

func TestRecordCount_CategoryFieldsCarriedThrough(t *testing.T) {
	rec, _, _ := newReconciler(t)

	res, err := rec.RecordCount(context.Background(), models.RecordCountRequest{
		AssetID: 1, RoomID: 2, QtyCounted: 10,
		QtyGiven: intPtr(3), QtyReceived: intPtr(5),
	}, "jstaff")
	require.NoError(t, err)

	got, err := rec.GetCount(context.Background(), res.Count.ID)
	require.NoError(t, err)
	require.NotNil(t, got.QtyGiven)
	assert.Equal(t, 3, *got.QtyGiven)
	require.NotNil(t, got.QtyReceived)
	assert.Equal(t, 5, *got.QtyReceived)
}

func TestReviewCount_AcknowledgesAlert(t *testing.T) {
	rec, _, led := newReconciler(t)
	ctx := context.Background()

	_, err := led.UpsertHolding(ctx, ledger.HoldingInput{AssetID: 1, RoomID: 2, BaselineQty: 100})
	require.NoError(t, err)

	res, err := rec.RecordCount(ctx, models.RecordCountRequest{
		AssetID: 1, RoomID: 2, QtyCounted: 70,
	}, "jstaff")
	require.NoError(t, err)
	require.NotNil(t, res.Alert)

	require.NoError(t, rec.ReviewCount(ctx, res.Count.ID, "mmanager"))

	count, err := rec.GetCount(ctx, res.Count.ID)
	require.NoError(t, err)
	assert.True(t, count.ReviewedByManager)
	require.NotNil(t, count.Reviewer)
	assert.Equal(t, "mmanager", *count.Reviewer)

	alert, err := rec.GetAlert(ctx, res.Alert.ID)
	require.NoError(t, err)
	assert.True(t, alert.Acknowledged)
	require.NotNil(t, alert.AcknowledgedBy)
	assert.Equal(t, "mmanager", *alert.AcknowledgedBy)
}

func TestReviewCount_NoAlertIsFine(t *testing.T) {
	rec, _, led := newReconciler(t)
	ctx := context.Background()

	_, err := led.UpsertHolding(ctx, ledger.HoldingInput{AssetID: 1, RoomID: 2, BaselineQty: 10})
	require.NoError(t, err)

	res, err := rec.RecordCount(ctx, models.RecordCountRequest{
		AssetID: 1, RoomID: 2, QtyCounted: 10,
	}, "jstaff")
	require.NoError(t, err)
	require.Nil(t, res.Alert)

	assert.NoError(t, rec.ReviewCount(ctx, res.Count.ID, "mmanager"))
}

func TestReviewCount_NotFound(t *testing.T) {
	rec, _, _ := newReconciler(t)
	assert.ErrorIs(t, rec.ReviewCount(context.Background(), 404, "mmanager"), models.ErrNotFound)
}

func TestAcknowledgeAlert(t *testing.T) {
	rec, _, _ := newReconciler(t)
	ctx := context.Background()

	res, err := rec.RecordCount(ctx, models.RecordCountRequest{
		AssetID: 1, RoomID: 2, QtyCounted: 5,
	}, "jstaff")
	require.NoError(t, err)
	require.NotNil(t, res.Alert)

	require.NoError(t, rec.AcknowledgeAlert(ctx, res.Alert.ID, "mmanager"))
	alert, err := rec.GetAlert(ctx, res.Alert.ID)
	require.NoError(t, err)
	assert.True(t, alert.Acknowledged)

	assert.ErrorIs(t, rec.AcknowledgeAlert(ctx, 404, "mmanager"), models.ErrNotFound)
}

var errStorage = errors.New("storage unavailable")

// faultyStore fails selected writes so tests can interrupt a mutation
// between its statements.
type faultyStore struct {
	recon.Store
	failAlert bool
	failAck   bool
}

func (s faultyStore) InsertAlert(ctx context.Context, a *models.Alert) (int64, error) {
	if s.failAlert {
		return 0, errStorage
	}
	return s.Store.InsertAlert(ctx, a)
}

func (s faultyStore) AckAlertForCount(ctx context.Context, countID int64, by string, when time.Time) error {
	if s.failAck {
		return errStorage
	}
	return s.Store.AckAlertForCount(ctx, countID, by, when)
}

type faultyRunner struct {
	inner     recon.TxRunner
	failAlert bool
	failAck   bool
}

func (r faultyRunner) Run(ctx context.Context, fn func(s recon.Store) error) error {
	return r.inner.Run(ctx, func(s recon.Store) error {
		return fn(faultyStore{Store: s, failAlert: r.failAlert, failAck: r.failAck})
	})
}

func TestRecordCount_FailedAlertWriteLeavesNoCount(t *testing.T) {
	mem := memstore.New()
	led := ledger.New(mem)
	rec := recon.New(mem, faultyRunner{inner: memstore.ReconRunner{Mem: mem}, failAlert: true}, zerolog.Nop())
	ctx := context.Background()

	_, err := led.UpsertHolding(ctx, ledger.HoldingInput{AssetID: 1, RoomID: 2, BaselineQty: 100})
	require.NoError(t, err)

	_, err = rec.RecordCount(ctx, models.RecordCountRequest{
		AssetID: 1, RoomID: 2, QtyCounted: 70,
	}, "jstaff")
	require.ErrorIs(t, err, errStorage)

	// The count written before the alert failed must have rolled back with it
	_, err = mem.GetCount(ctx, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// A matching count never touches the alert path and still lands
	res, err := rec.RecordCount(ctx, models.RecordCountRequest{
		AssetID: 1, RoomID: 2, QtyCounted: 100,
	}, "jstaff")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Variance)
}

func TestReviewCount_FailedAckLeavesCountUnreviewed(t *testing.T) {
	rec, mem, led := newReconciler(t)
	ctx := context.Background()

	_, err := led.UpsertHolding(ctx, ledger.HoldingInput{AssetID: 1, RoomID: 2, BaselineQty: 100})
	require.NoError(t, err)

	res, err := rec.RecordCount(ctx, models.RecordCountRequest{
		AssetID: 1, RoomID: 2, QtyCounted: 70,
	}, "jstaff")
	require.NoError(t, err)
	require.NotNil(t, res.Alert)

	flaky := recon.New(mem, faultyRunner{inner: memstore.ReconRunner{Mem: mem}, failAck: true}, zerolog.Nop())
	require.ErrorIs(t, flaky.ReviewCount(ctx, res.Count.ID, "mmanager"), errStorage)

	// Review and ack move together: the failed ack rolled the review back too
	count, err := rec.GetCount(ctx, res.Count.ID)
	require.NoError(t, err)
	assert.False(t, count.ReviewedByManager)
	alert, err := rec.GetAlert(ctx, res.Alert.ID)
	require.NoError(t, err)
	assert.False(t, alert.Acknowledged)
}

// Package recon records physical counts against declared baselines, raises
// severity-graded alerts on non-zero variance, and tracks manager review
// and alert acknowledgment.
package recon

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ward-inventory-api/internal/models"
)

// Reconciler exposes the count-and-alert operations over an injected store
// and transaction runner.
type Reconciler struct {
	store  Store
	runner TxRunner
	log    zerolog.Logger
}

// New creates a Reconciler.
func New(store Store, runner TxRunner, log zerolog.Logger) *Reconciler {
	return &Reconciler{store: store, runner: runner, log: log}
}

// CountResult is returned from RecordCount.
type CountResult struct {
	Count    *models.DailyCount
	Alert    *models.Alert // nil when variance is zero
	Variance int
}

// RecordCount snapshots a physical count. Variance is computed against the
// baseline at this moment (no holding means baseline 0); a non-zero
// variance raises exactly one alert for the count, written in the same
// transaction so the count never lands without it. Category-specific fields
// are stored opaquely, not validated against the asset's category.
func (r *Reconciler) RecordCount(ctx context.Context, in models.RecordCountRequest, countedBy string) (*CountResult, error) {
	if in.QtyCounted < 0 {
		return nil, models.ErrInvalidRequest
	}

	var result *CountResult
	err := r.runner.Run(ctx, func(s Store) error {
		baseline, err := s.BaselineQty(ctx, in.AssetID, in.RoomID)
		if err != nil {
			return err
		}
		variance := in.QtyCounted - baseline

		count := &models.DailyCount{
			AssetID:         in.AssetID,
			RoomID:          in.RoomID,
			CountDate:       time.Now(),
			CountedBy:       countedBy,
			QtyCounted:      in.QtyCounted,
			Variance:        variance,
			Note:            in.Note,
			QtyGiven:        in.QtyGiven,
			QtyReceived:     in.QtyReceived,
			UsedQty:         in.UsedQty,
			WithdrawQty:     in.WithdrawQty,
			EquipmentStatus: in.EquipmentStatus,
		}
		countID, err := s.InsertCount(ctx, count)
		if err != nil {
			return err
		}
		count.ID = countID

		result = &CountResult{Count: count, Variance: variance}
		if variance == 0 {
			return nil
		}
		alert := &models.Alert{
			DailyCountID: countID,
			Severity:     GradeSeverity(baseline, variance),
		}
		alertID, err := s.InsertAlert(ctx, alert)
		if err != nil {
			return err
		}
		alert.ID = alertID
		result.Alert = alert
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Alert != nil {
		r.log.Warn().
			Int64("count_id", result.Count.ID).
			Int("variance", result.Variance).
			Str("severity", result.Alert.Severity).
			Msg("count variance alert raised")
	}
	return result, nil
}

// GetCount returns a daily count by id.
func (r *Reconciler) GetCount(ctx context.Context, countID int64) (*models.DailyCount, error) {
	return r.store.GetCount(ctx, countID)
}

// GetAlert returns an alert by id.
func (r *Reconciler) GetAlert(ctx context.Context, alertID int64) (*models.Alert, error) {
	return r.store.GetAlert(ctx, alertID)
}

// ReviewCount marks the count as manager-reviewed and acknowledges its
// alert, if one exists, as a single combined side effect: both writes commit
// in one transaction.
func (r *Reconciler) ReviewCount(ctx context.Context, countID int64, manager string) error {
	err := r.runner.Run(ctx, func(s Store) error {
		now := time.Now()
		matched, err := s.MarkCountReviewed(ctx, countID, manager, now)
		if err != nil {
			return err
		}
		if !matched {
			return models.ErrNotFound
		}
		return s.AckAlertForCount(ctx, countID, manager, now)
	})
	if err != nil {
		return err
	}
	r.log.Info().Int64("count_id", countID).Str("reviewer", manager).Msg("count reviewed")
	return nil
}

// AcknowledgeAlert acknowledges a single alert outside the review flow.
func (r *Reconciler) AcknowledgeAlert(ctx context.Context, alertID int64, user string) error {
	matched, err := r.store.AckAlert(ctx, alertID, user, time.Now())
	if err != nil {
		return err
	}
	if !matched {
		return models.ErrNotFound
	}
	return nil
}

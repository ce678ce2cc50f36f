// Package memstore provides an in-memory implementation of the ledger,
// workflow and recon store boundaries, plus a transaction runner with
// all-or-nothing semantics. It backs unit tests and small deployments that
// do not need PostgreSQL.
package memstore

import (
	"context"
	"sync"
	"time"

	"ward-inventory-api/internal/ledger"
	"ward-inventory-api/internal/models"
	"ward-inventory-api/internal/recon"
	"ward-inventory-api/internal/workflow"
)

// Verify interface compliance
var (
	_ ledger.Store      = (*Mem)(nil)
	_ workflow.Store    = (*Mem)(nil)
	_ recon.Store       = (*Mem)(nil)
	_ workflow.TxRunner = (*Mem)(nil)
)

type state struct {
	holdings       []models.Holding
	transactions   []models.Transaction
	transferReqs   []models.TransferRequest
	withdrawalReqs []models.WithdrawalRequest
	holdingReqs    []models.HoldingRequest
	counts         []models.DailyCount
	alerts         []models.Alert

	nextHoldingID    int64
	nextTxnID        int64
	nextTransferID   int64
	nextWithdrawalID int64
	nextHoldingReqID int64
	nextCountID      int64
	nextAlertID      int64
}

func newState() *state {
	return &state{
		nextHoldingID:    1,
		nextTxnID:        1,
		nextTransferID:   1,
		nextWithdrawalID: 1,
		nextHoldingReqID: 1,
		nextCountID:      1,
		nextAlertID:      1,
	}
}

func (s *state) clone() *state {
	c := *s
	c.holdings = append([]models.Holding(nil), s.holdings...)
	c.transactions = append([]models.Transaction(nil), s.transactions...)
	c.transferReqs = append([]models.TransferRequest(nil), s.transferReqs...)
	c.withdrawalReqs = append([]models.WithdrawalRequest(nil), s.withdrawalReqs...)
	c.holdingReqs = append([]models.HoldingRequest(nil), s.holdingReqs...)
	c.counts = append([]models.DailyCount(nil), s.counts...)
	c.alerts = append([]models.Alert(nil), s.alerts...)
	return &c
}

// Mem holds all state behind one mutex.
type Mem struct {
	mu sync.Mutex
	st *state
}

// New creates an empty store.
func New() *Mem {
	return &Mem{st: newState()}
}

// Run clones the state, applies fn to the clone and swaps it in only on
// success, so a failed callback leaves no partial writes. Writers are
// serialized for the duration of the callback.
func (m *Mem) Run(ctx context.Context, fn func(ws workflow.Store, ls ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &Mem{st: m.st.clone()}
	if err := fn(tx, tx); err != nil {
		return err
	}
	m.st = tx.st
	return nil
}

// ReconRunner adapts Mem to the reconciliation transaction boundary with the
// same clone-and-swap semantics as Run.
type ReconRunner struct {
	Mem *Mem
}

var _ recon.TxRunner = ReconRunner{}

func (r ReconRunner) Run(ctx context.Context, fn func(s recon.Store) error) error {
	r.Mem.mu.Lock()
	defer r.Mem.mu.Unlock()
	tx := &Mem{st: r.Mem.st.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	r.Mem.st = tx.st
	return nil
}

func sameSerial(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// --- ledger.Store ---

func (m *Mem) FindHolding(_ context.Context, assetID, roomID int64, serial *string) (*models.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.holdings {
		h := m.st.holdings[i]
		if h.AssetID == assetID && h.RoomID == roomID && sameSerial(h.SerialNumber, serial) {
			out := h
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Mem) GetHolding(_ context.Context, holdingID int64) (*models.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.holdings {
		if m.st.holdings[i].ID == holdingID {
			out := m.st.holdings[i]
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Mem) InsertHolding(_ context.Context, h *models.Holding) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.holdings {
		existing := m.st.holdings[i]
		if existing.AssetID == h.AssetID && existing.RoomID == h.RoomID && sameSerial(existing.SerialNumber, h.SerialNumber) {
			return 0, models.ErrDuplicateKey
		}
	}
	id := m.st.nextHoldingID
	m.st.nextHoldingID++
	row := *h
	row.ID = id
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	m.st.holdings = append(m.st.holdings, row)
	return id, nil
}

func (m *Mem) UpdateHolding(_ context.Context, h *models.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.holdings {
		if m.st.holdings[i].ID == h.ID {
			row := *h
			row.CreatedAt = m.st.holdings[i].CreatedAt
			row.UpdatedAt = time.Now()
			m.st.holdings[i] = row
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *Mem) UpdateBaseline(_ context.Context, holdingID int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.holdings {
		if m.st.holdings[i].ID == holdingID {
			m.st.holdings[i].BaselineQty = qty
			m.st.holdings[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *Mem) BaselineQty(_ context.Context, assetID, roomID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.baselineQty(assetID, roomID), nil
}

func (s *state) baselineQty(assetID, roomID int64) int {
	total := 0
	for i := range s.holdings {
		if s.holdings[i].AssetID == assetID && s.holdings[i].RoomID == roomID {
			total += s.holdings[i].BaselineQty
		}
	}
	return total
}

func (m *Mem) InsertTransaction(_ context.Context, t *models.Transaction) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.st.nextTxnID
	m.st.nextTxnID++
	row := *t
	row.ID = id
	m.st.transactions = append(m.st.transactions, row)
	return id, nil
}

func (m *Mem) MovementTotals(_ context.Context, assetID, roomID int64) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var in, out int
	for i := range m.st.transactions {
		t := m.st.transactions[i]
		if t.AssetID != assetID {
			continue
		}
		if t.ToRoomID != nil && *t.ToRoomID == roomID && (t.Kind == models.TxnIn || t.Kind == models.TxnTransfer) {
			in += t.Qty
		}
		if t.FromRoomID != nil && *t.FromRoomID == roomID && (t.Kind == models.TxnOut || t.Kind == models.TxnTransfer) {
			out += t.Qty
		}
	}
	return in, out, nil
}

func (m *Mem) LatestCount(_ context.Context, assetID, roomID int64) (*models.DailyCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.DailyCount
	for i := range m.st.counts {
		c := m.st.counts[i]
		if c.AssetID != assetID || c.RoomID != roomID {
			continue
		}
		if latest == nil || c.CountDate.After(latest.CountDate) ||
			(c.CountDate.Equal(latest.CountDate) && c.ID > latest.ID) {
			cc := c
			latest = &cc
		}
	}
	return latest, nil
}

// Transactions returns a copy of the full movement log, oldest first.
func (m *Mem) Transactions() []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Transaction(nil), m.st.transactions...)
}

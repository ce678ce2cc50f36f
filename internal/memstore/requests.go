package memstore

import (
	"context"
	"time"

	"ward-inventory-api/internal/models"
)

// workflow.Store implementation. Each Resolve* flips the status only while
// it is still Pending, under the store mutex, and reports whether a row
// matched.

func (m *Mem) InsertTransferRequest(_ context.Context, r *models.TransferRequest) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.st.nextTransferID
	m.st.nextTransferID++
	row := *r
	row.ID = id
	m.st.transferReqs = append(m.st.transferReqs, row)
	return id, nil
}

func (m *Mem) GetTransferRequest(_ context.Context, id int64) (*models.TransferRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.transferReqs {
		if m.st.transferReqs[i].ID == id {
			out := m.st.transferReqs[i]
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Mem) ResolveTransfer(_ context.Context, id int64, status, approver string, when time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.transferReqs {
		r := &m.st.transferReqs[i]
		if r.ID == id && r.Status == models.StatusPending {
			r.Status = status
			r.ApprovedBy = &approver
			r.ApprovedOn = &when
			return true, nil
		}
	}
	return false, nil
}

func (m *Mem) InsertWithdrawalRequest(_ context.Context, r *models.WithdrawalRequest) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.st.nextWithdrawalID
	m.st.nextWithdrawalID++
	row := *r
	row.ID = id
	m.st.withdrawalReqs = append(m.st.withdrawalReqs, row)
	return id, nil
}

func (m *Mem) GetWithdrawalRequest(_ context.Context, id int64) (*models.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.withdrawalReqs {
		if m.st.withdrawalReqs[i].ID == id {
			out := m.st.withdrawalReqs[i]
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Mem) ResolveWithdrawal(_ context.Context, id int64, status, approver string, when time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.withdrawalReqs {
		r := &m.st.withdrawalReqs[i]
		if r.ID == id && r.Status == models.StatusPending {
			r.Status = status
			r.ApprovedBy = &approver
			r.ApprovedOn = &when
			return true, nil
		}
	}
	return false, nil
}

func (m *Mem) InsertHoldingRequest(_ context.Context, r *models.HoldingRequest) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.st.nextHoldingReqID
	m.st.nextHoldingReqID++
	row := *r
	row.ID = id
	m.st.holdingReqs = append(m.st.holdingReqs, row)
	return id, nil
}

func (m *Mem) GetHoldingRequest(_ context.Context, id int64) (*models.HoldingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.holdingReqs {
		if m.st.holdingReqs[i].ID == id {
			out := m.st.holdingReqs[i]
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Mem) ResolveHolding(_ context.Context, id int64, status, approver string, when time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.holdingReqs {
		r := &m.st.holdingReqs[i]
		if r.ID == id && r.Status == models.StatusPending {
			r.Status = status
			r.ApprovedBy = &approver
			r.ApprovedOn = &when
			return true, nil
		}
	}
	return false, nil
}

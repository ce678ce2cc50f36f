package memstore

import (
	"context"
	"time"

	"ward-inventory-api/internal/models"
)

// recon.Store implementation. BaselineQty is shared with the ledger side.

func (m *Mem) InsertCount(_ context.Context, c *models.DailyCount) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.st.nextCountID
	m.st.nextCountID++
	row := *c
	row.ID = id
	m.st.counts = append(m.st.counts, row)
	return id, nil
}

func (m *Mem) GetCount(_ context.Context, countID int64) (*models.DailyCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.counts {
		if m.st.counts[i].ID == countID {
			out := m.st.counts[i]
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Mem) MarkCountReviewed(_ context.Context, countID int64, reviewer string, when time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.counts {
		c := &m.st.counts[i]
		if c.ID == countID {
			c.ReviewedByManager = true
			c.Reviewer = &reviewer
			c.ReviewedOn = &when
			return true, nil
		}
	}
	return false, nil
}

func (m *Mem) InsertAlert(_ context.Context, a *models.Alert) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.st.nextAlertID
	m.st.nextAlertID++
	row := *a
	row.ID = id
	m.st.alerts = append(m.st.alerts, row)
	return id, nil
}

func (m *Mem) GetAlert(_ context.Context, alertID int64) (*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.alerts {
		if m.st.alerts[i].ID == alertID {
			out := m.st.alerts[i]
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *Mem) AckAlert(_ context.Context, alertID int64, by string, when time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.alerts {
		a := &m.st.alerts[i]
		if a.ID == alertID {
			a.Acknowledged = true
			a.AcknowledgedBy = &by
			a.AcknowledgedOn = &when
			return true, nil
		}
	}
	return false, nil
}

func (m *Mem) AckAlertForCount(_ context.Context, countID int64, by string, when time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.st.alerts {
		a := &m.st.alerts[i]
		if a.DailyCountID == countID {
			a.Acknowledged = true
			a.AcknowledgedBy = &by
			a.AcknowledgedOn = &when
		}
	}
	return nil
}

package internal

import (
	"net/http"
)

// getDashboardStats returns facility-wide summary counts for the dashboard
func (s *Server) getDashboardStats(w http.ResponseWriter, r *http.Request) {
	type Stats struct {
		AssetTypes         int `json:"asset_types"`
		Assets             int `json:"assets"`
		Departments        int `json:"departments"`
		Rooms              int `json:"rooms"`
		Holdings           int `json:"holdings"`
		PendingTransfers   int `json:"pending_transfers"`
		PendingWithdrawals int `json:"pending_withdrawals"`
		PendingHoldings    int `json:"pending_holdings"`
		UnreviewedCounts   int `json:"unreviewed_counts"`
		OpenAlerts         int `json:"open_alerts"`
		OpenHighAlerts     int `json:"open_high_alerts"`
		TransactionsToday  int `json:"transactions_today"`
	}

	var stats Stats
	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM asset_types", &stats.AssetTypes},
		{"SELECT COUNT(*) FROM assets", &stats.Assets},
		{"SELECT COUNT(*) FROM departments", &stats.Departments},
		{"SELECT COUNT(*) FROM rooms", &stats.Rooms},
		{"SELECT COUNT(*) FROM holdings", &stats.Holdings},
		{"SELECT COUNT(*) FROM transfer_requests WHERE status = 'Pending'", &stats.PendingTransfers},
		{"SELECT COUNT(*) FROM withdrawal_requests WHERE status = 'Pending'", &stats.PendingWithdrawals},
		{"SELECT COUNT(*) FROM holding_requests WHERE status = 'Pending'", &stats.PendingHoldings},
		{"SELECT COUNT(*) FROM daily_counts WHERE NOT reviewed_by_manager", &stats.UnreviewedCounts},
		{"SELECT COUNT(*) FROM alerts WHERE NOT acknowledged", &stats.OpenAlerts},
		{"SELECT COUNT(*) FROM alerts WHERE NOT acknowledged AND severity = 'High'", &stats.OpenHighAlerts},
		{"SELECT COUNT(*) FROM transactions WHERE txn_date::date = CURRENT_DATE", &stats.TransactionsToday},
	}

	for _, q := range queries {
		if err := s.DB.QueryRowContext(r.Context(), q.sql).Scan(q.dest); err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
	}

	sendJSON(w, http.StatusOK, stats)
}

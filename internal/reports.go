package internal

import (
	"net/http"
	"time"

	"ward-inventory-api/internal/models"
	"ward-inventory-api/pkg/exporter"
)

// exportHoldingsReport streams the full denormalized holdings report as an
// Excel workbook
func (s *Server) exportHoldingsReport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(), holdingRowSQL+" ORDER BY d.name, r.name, a.name")
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	holdings := []models.HoldingRow{}
	for rows.Next() {
		var row models.HoldingRow
		if err := scanHoldingRow(rows.Scan, &row); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		holdings = append(holdings, row)
	}

	filename := "holdings-" + time.Now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := exporter.ExportHoldings(w, holdings, exporter.ExportOptions{}); err != nil {
		s.Log.Error().Err(err).Msg("holdings report export failed")
	}
}

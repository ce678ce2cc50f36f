package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ward-inventory-api/internal/auth"
	"ward-inventory-api/internal/models"

	"github.com/go-chi/chi/v5"
)

// recordCount handles snapshotting a physical count. The response carries
// the variance so the caller sees the discrepancy immediately.
func (s *Server) recordCount(w http.ResponseWriter, r *http.Request) {
	var req models.RecordCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if req.AssetID == 0 || req.RoomID == 0 {
		http.Error(w, "asset_id and room_id are required", 400)
		return
	}

	result, err := s.Recon.RecordCount(r.Context(), req, auth.UsernameFromContext(r.Context()))
	if err != nil {
		sendDomainError(w, err)
		return
	}

	if result.Alert != nil {
		s.Metrics.AlertRaised(result.Alert.Severity)
	}

	sendJSON(w, http.StatusCreated, models.RecordCountResponse{
		CountID:  result.Count.ID,
		Variance: result.Variance,
	})
}

// listCounts handles daily count listing with filters and pagination
func (s *Server) listCounts(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if assetID := strings.TrimSpace(r.URL.Query().Get("asset_id")); assetID != "" {
		if v, ok := parseIDParam(assetID); ok {
			clauses = append(clauses, fmt.Sprintf("c.asset_id = $%d", arg))
			args = append(args, v)
			arg++
		}
	}
	if roomID := strings.TrimSpace(r.URL.Query().Get("room_id")); roomID != "" {
		if v, ok := parseIDParam(roomID); ok {
			clauses = append(clauses, fmt.Sprintf("c.room_id = $%d", arg))
			args = append(args, v)
			arg++
		}
	}
	if reviewed := strings.TrimSpace(r.URL.Query().Get("reviewed")); reviewed != "" {
		clauses = append(clauses, fmt.Sprintf("c.reviewed_by_manager = $%d", arg))
		args = append(args, reviewed == "true")
		arg++
	}
	if date := strings.TrimSpace(r.URL.Query().Get("date")); date != "" {
		clauses = append(clauses, fmt.Sprintf("c.count_date::date = $%d", arg))
		args = append(args, date)
		arg++
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`
		SELECT c.id, c.asset_id, c.room_id, c.count_date, c.counted_by, c.qty_counted,
		       c.variance, c.note, c.reviewed_by_manager, c.reviewer, c.reviewed_on,
		       c.qty_given, c.qty_received, c.used_qty, c.withdraw_qty, c.equipment_status,
		       COUNT(*) OVER() as total_count
		FROM daily_counts c%s`, whereClause)

	allowedSort := map[string]string{
		"id":         "c.id",
		"count_date": "c.count_date",
		"variance":   "c.variance",
	}
	if params.sort == "" {
		params.sort = "-count_date,-id"
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	counts := []interface{}{}
	var totalCount int
	for rows.Next() {
		var c models.DailyCount
		if err := rows.Scan(&c.ID, &c.AssetID, &c.RoomID, &c.CountDate, &c.CountedBy, &c.QtyCounted,
			&c.Variance, &c.Note, &c.ReviewedByManager, &c.Reviewer, &c.ReviewedOn,
			&c.QtyGiven, &c.QtyReceived, &c.UsedQty, &c.WithdrawQty, &c.EquipmentStatus, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		counts = append(counts, c)
	}

	sendListResponse(w, counts, totalCount, params)
}

// getCount handles getting a single daily count by ID
func (s *Server) getCount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	c, err := s.Recon.GetCount(r.Context(), id)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, c)
}

// reviewCount marks a count reviewed and acknowledges its alert, if one was
// raised
func (s *Server) reviewCount(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	if err := s.Recon.ReviewCount(r.Context(), id, auth.UsernameFromContext(r.Context())); err != nil {
		sendDomainError(w, err)
		return
	}

	c, err := s.Recon.GetCount(r.Context(), id)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, c)
}

// listAlerts handles the denormalized alert listing with filters and
// pagination
func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if severity := strings.TrimSpace(r.URL.Query().Get("severity")); severity != "" {
		clauses = append(clauses, fmt.Sprintf("al.severity = $%d", arg))
		args = append(args, severity)
		arg++
	}
	if ack := strings.TrimSpace(r.URL.Query().Get("acknowledged")); ack != "" {
		clauses = append(clauses, fmt.Sprintf("al.acknowledged = $%d", arg))
		args = append(args, ack == "true")
		arg++
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`
		SELECT al.id, al.severity, al.acknowledged, al.acknowledged_by, al.acknowledged_on,
		       c.id, c.count_date, c.qty_counted, c.variance, c.reviewed_by_manager,
		       a.name, t.name, r.name, d.name,
		       COUNT(*) OVER() as total_count
		FROM alerts al
		JOIN daily_counts c ON c.id = al.daily_count_id
		JOIN assets a ON a.id = c.asset_id
		JOIN asset_types t ON t.id = a.type_id
		JOIN rooms r ON r.id = c.room_id
		JOIN departments d ON d.id = r.department_id%s`, whereClause)

	allowedSort := map[string]string{
		"id":       "al.id",
		"severity": "al.severity",
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	alerts := []interface{}{}
	var totalCount int
	for rows.Next() {
		var row models.AlertRow
		var countDate time.Time
		var ackOn *time.Time
		if err := rows.Scan(&row.ID, &row.Severity, &row.Acknowledged, &row.AcknowledgedBy, &ackOn,
			&row.DailyCountID, &countDate, &row.QtyCounted, &row.Variance, &row.Reviewed,
			&row.AssetName, &row.AssetType, &row.Room, &row.Department, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		row.CountDate = countDate.Format("2006-01-02")
		if ackOn != nil {
			formatted := ackOn.Format(time.RFC3339)
			row.AcknowledgedOn = &formatted
		}
		alerts = append(alerts, row)
	}

	sendListResponse(w, alerts, totalCount, params)
}

// acknowledgeAlert marks an alert acknowledged
func (s *Server) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	if err := s.Recon.AcknowledgeAlert(r.Context(), id, auth.UsernameFromContext(r.Context())); err != nil {
		sendDomainError(w, err)
		return
	}

	a, err := s.Recon.GetAlert(r.Context(), id)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, a)
}

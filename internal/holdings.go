package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ward-inventory-api/internal/ledger"
	"ward-inventory-api/internal/models"

	"github.com/go-chi/chi/v5"
)

// holdingRowSQL is the denormalized holdings projection. qty_on_hand is
// derived as baseline plus inbound movements minus outbound movements for
// the holding's (asset, room); ADJUST rows never contribute.
const holdingRowSQL = `
	SELECT h.id, d.id, d.name, r.id, r.name, t.id, t.name, a.id, a.name, a.unit,
	       h.serial_number, h.date_received, h.received_by, h.manager_in_charge,
	       h.origin, h.equipment_status, h.baseline_qty,
	       h.baseline_qty
	       + COALESCE((SELECT SUM(x.qty) FROM transactions x
	                   WHERE x.asset_id = h.asset_id AND x.to_room_id = h.room_id
	                     AND x.kind IN ('IN', 'TRANSFER')), 0)
	       - COALESCE((SELECT SUM(x.qty) FROM transactions x
	                   WHERE x.asset_id = h.asset_id AND x.from_room_id = h.room_id
	                     AND x.kind IN ('OUT', 'TRANSFER')), 0) AS qty_on_hand,
	       lc.qty_counted, lc.variance
	FROM holdings h
	JOIN assets a ON a.id = h.asset_id
	JOIN asset_types t ON t.id = a.type_id
	JOIN rooms r ON r.id = h.room_id
	JOIN departments d ON d.id = r.department_id
	LEFT JOIN LATERAL (
		SELECT c.qty_counted, c.variance
		FROM daily_counts c
		WHERE c.asset_id = h.asset_id AND c.room_id = h.room_id
		ORDER BY c.count_date DESC, c.id DESC
		LIMIT 1
	) lc ON TRUE`

func scanHoldingRow(scan func(dest ...interface{}) error, row *models.HoldingRow) error {
	var dateReceived time.Time
	err := scan(&row.HoldingID, &row.DepartmentID, &row.Department, &row.RoomID, &row.Room,
		&row.TypeID, &row.AssetType, &row.AssetID, &row.AssetName, &row.Unit,
		&row.SerialNumber, &dateReceived, &row.ReceivedBy, &row.ManagerInCharge,
		&row.Origin, &row.EquipmentStatus, &row.BaselineQty,
		&row.QtyOnHand, &row.LastCount, &row.LastVariance)
	if err != nil {
		return err
	}
	row.DateReceived = dateReceived.Format("2006-01-02")
	return nil
}

// listHoldings handles the denormalized holdings listing with filters and
// pagination
func (s *Server) listHoldings(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	filters := map[string]string{
		"department_id": "d.id",
		"room_id":       "r.id",
		"type_id":       "t.id",
		"asset_id":      "a.id",
	}
	for param, col := range filters {
		if v := strings.TrimSpace(r.URL.Query().Get(param)); v != "" {
			if id, ok := parseIDParam(v); ok {
				clauses = append(clauses, fmt.Sprintf("%s = $%d", col, arg))
				args = append(args, id)
				arg++
			}
		}
	}

	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		clauses = append(clauses, fmt.Sprintf("t.category = $%d", arg))
		args = append(args, category)
		arg++
	}

	if params.q != "" {
		clauses = append(clauses, fmt.Sprintf("a.name ILIKE $%d", arg))
		args = append(args, "%"+params.q+"%")
		arg++
	}

	sqlStr := strings.Replace(holdingRowSQL, "SELECT h.id,",
		"SELECT COUNT(*) OVER() as total_count, h.id,", 1)
	if len(clauses) > 0 {
		sqlStr += " WHERE " + strings.Join(clauses, " AND ")
	}

	allowedSort := map[string]string{
		"id":            "h.id",
		"asset_name":    "a.name",
		"department":    "d.name",
		"room":          "r.name",
		"baseline_qty":  "h.baseline_qty",
		"date_received": "h.date_received",
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	holdings := []interface{}{}
	var totalCount int
	for rows.Next() {
		var row models.HoldingRow
		if err := scanHoldingRow(func(dest ...interface{}) error {
			return rows.Scan(append([]interface{}{&totalCount}, dest...)...)
		}, &row); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		holdings = append(holdings, row)
	}

	sendListResponse(w, holdings, totalCount, params)
}

// getHolding handles getting a single denormalized holding by ID
func (s *Server) getHolding(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	var row models.HoldingRow
	qr := s.DB.QueryRowContext(r.Context(), holdingRowSQL+" WHERE h.id = $1", id)
	if err := scanHoldingRow(qr.Scan, &row); err != nil {
		if strings.Contains(err.Error(), "no rows") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	sendJSON(w, http.StatusOK, row)
}

// upsertHolding handles direct holding creation or replacement by natural
// key (asset, room, serial)
func (s *Server) upsertHolding(w http.ResponseWriter, r *http.Request) {
	var req models.UpsertHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	if req.AssetID == 0 || req.RoomID == 0 {
		http.Error(w, "asset_id and room_id are required", 400)
		return
	}
	if req.BaselineQty < 0 {
		http.Error(w, "baseline_qty must not be negative", 400)
		return
	}
	if req.ReceivedBy == "" || req.ManagerInCharge == "" {
		http.Error(w, "received_by and manager_in_charge are required", 400)
		return
	}

	dateReceived := time.Now()
	if req.DateReceived != nil && *req.DateReceived != "" {
		parsed, err := time.Parse(time.RFC3339, *req.DateReceived)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", *req.DateReceived)
		}
		if err != nil {
			http.Error(w, "invalid date_received", 400)
			return
		}
		dateReceived = parsed
	}

	h, err := s.Ledger.UpsertHolding(r.Context(), ledger.HoldingInput{
		AssetID:         req.AssetID,
		RoomID:          req.RoomID,
		SerialNumber:    req.SerialNumber,
		BaselineQty:     req.BaselineQty,
		DateReceived:    dateReceived,
		ReceivedBy:      req.ReceivedBy,
		ManagerInCharge: req.ManagerInCharge,
		Origin:          nullIfEmpty(req.Origin),
		EquipmentStatus: nullIfEmpty(req.EquipmentStatus),
	})
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, h)
}

// setHoldingBaseline overwrites a holding's baseline quantity in place
func (s *Server) setHoldingBaseline(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	var req models.SetBaselineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	if err := s.Ledger.SetBaseline(r.Context(), id, req.BaselineQty); err != nil {
		sendDomainError(w, err)
		return
	}

	h, err := s.Ledger.GetHolding(r.Context(), id)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, h)
}

// getQuantityOnHand returns the derived balance for an (asset, room) pair
func (s *Server) getQuantityOnHand(w http.ResponseWriter, r *http.Request) {
	assetID, ok := parseIDParam(r.URL.Query().Get("asset_id"))
	if !ok {
		http.Error(w, "asset_id is required", 400)
		return
	}
	roomID, ok := parseIDParam(r.URL.Query().Get("room_id"))
	if !ok {
		http.Error(w, "room_id is required", 400)
		return
	}

	qty, err := s.Ledger.QuantityOnHand(r.Context(), assetID, roomID)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"asset_id":    assetID,
		"room_id":     roomID,
		"qty_on_hand": qty,
	})
}

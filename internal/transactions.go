package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ward-inventory-api/internal/auth"
	"ward-inventory-api/internal/ledger"
	"ward-inventory-api/internal/models"
)

// listTransactions handles the denormalized movement listing with filters
// and pagination
func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if assetID := strings.TrimSpace(r.URL.Query().Get("asset_id")); assetID != "" {
		if v, ok := parseIDParam(assetID); ok {
			clauses = append(clauses, fmt.Sprintf("x.asset_id = $%d", arg))
			args = append(args, v)
			arg++
		}
	}

	// A room filter matches either side of the movement
	if roomID := strings.TrimSpace(r.URL.Query().Get("room_id")); roomID != "" {
		if v, ok := parseIDParam(roomID); ok {
			clauses = append(clauses, fmt.Sprintf("(x.from_room_id = $%d OR x.to_room_id = $%d)", arg, arg))
			args = append(args, v)
			arg++
		}
	}

	if kind := strings.TrimSpace(r.URL.Query().Get("kind")); kind != "" {
		clauses = append(clauses, fmt.Sprintf("x.kind = $%d", arg))
		args = append(args, kind)
		arg++
	}

	if from := strings.TrimSpace(r.URL.Query().Get("from")); from != "" {
		clauses = append(clauses, fmt.Sprintf("x.txn_date >= $%d", arg))
		args = append(args, from)
		arg++
	}
	if to := strings.TrimSpace(r.URL.Query().Get("to")); to != "" {
		clauses = append(clauses, fmt.Sprintf("x.txn_date <= $%d", arg))
		args = append(args, to)
		arg++
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`
		SELECT x.id, x.txn_date, a.name, t.name, x.kind, fr.name, tr.name,
		       x.qty, x.serial_number, x.delivered_by, x.received_by, x.created_by,
		       COUNT(*) OVER() as total_count
		FROM transactions x
		JOIN assets a ON a.id = x.asset_id
		JOIN asset_types t ON t.id = a.type_id
		LEFT JOIN rooms fr ON fr.id = x.from_room_id
		LEFT JOIN rooms tr ON tr.id = x.to_room_id%s`, whereClause)

	allowedSort := map[string]string{
		"id":       "x.id",
		"txn_date": "x.txn_date",
		"kind":     "x.kind",
		"qty":      "x.qty",
	}
	if params.sort == "" {
		params.sort = "-txn_date,-id"
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	txns := []interface{}{}
	var totalCount int
	for rows.Next() {
		var row models.TransactionRow
		var txnDate time.Time
		if err := rows.Scan(&row.ID, &txnDate, &row.AssetName, &row.AssetType, &row.Kind,
			&row.FromRoom, &row.ToRoom, &row.Qty, &row.SerialNumber,
			&row.DeliveredBy, &row.ReceivedBy, &row.CreatedBy, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		row.TxnDate = txnDate.Format(time.RFC3339)
		txns = append(txns, row)
	}

	sendListResponse(w, txns, totalCount, params)
}

// recordTransaction handles recording a manual movement. The movement shape
// is decided by kind: IN needs a destination, OUT a source, TRANSFER is
// recorded as the leg matching whichever room is given, ADJUST corrects a
// room's balance without affecting the derivation.
func (s *Server) recordTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	if req.AssetID == 0 {
		http.Error(w, "asset_id is required", 400)
		return
	}

	var m ledger.Movement
	var err error
	switch req.Kind {
	case models.TxnIn:
		if req.ToRoomID == nil {
			http.Error(w, "to_room_id is required for IN", 400)
			return
		}
		m, err = ledger.Inbound(req.AssetID, *req.ToRoomID, req.Qty)
	case models.TxnOut:
		if req.FromRoomID == nil {
			http.Error(w, "from_room_id is required for OUT", 400)
			return
		}
		m, err = ledger.Outbound(req.AssetID, *req.FromRoomID, req.Qty)
	case models.TxnTransfer:
		switch {
		case req.FromRoomID != nil && req.ToRoomID != nil:
			http.Error(w, "a transfer leg carries exactly one room", 400)
			return
		case req.FromRoomID != nil:
			m, err = ledger.TransferOut(req.AssetID, *req.FromRoomID, req.Qty)
		case req.ToRoomID != nil:
			m, err = ledger.TransferIn(req.AssetID, *req.ToRoomID, req.Qty)
		default:
			http.Error(w, "from_room_id or to_room_id is required for TRANSFER", 400)
			return
		}
	case models.TxnAdjust:
		if req.ToRoomID == nil {
			http.Error(w, "to_room_id is required for ADJUST", 400)
			return
		}
		m, err = ledger.Adjustment(req.AssetID, *req.ToRoomID, req.Qty)
	default:
		http.Error(w, "invalid kind", 400)
		return
	}
	if err != nil {
		sendDomainError(w, err)
		return
	}

	if req.SerialNumber != nil && strings.TrimSpace(*req.SerialNumber) != "" {
		m = m.WithSerial(strings.TrimSpace(*req.SerialNumber))
	}

	txn, err := s.Ledger.Record(r.Context(), m, ledger.Meta{
		DeliveredBy: req.DeliveredBy,
		ReceivedBy:  req.ReceivedBy,
		CreatedBy:   auth.UsernameFromContext(r.Context()),
	})
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusCreated, txn)
}

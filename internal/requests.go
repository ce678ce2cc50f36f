package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ward-inventory-api/internal/auth"
	"ward-inventory-api/internal/models"

	"github.com/go-chi/chi/v5"
)

// requestKind labels for metrics
const (
	kindTransfer   = "transfer"
	kindWithdrawal = "withdrawal"
	kindHolding    = "holding"
)

// statusFilter builds an optional status WHERE clause for request listings
func statusFilter(r *http.Request, clauses *[]string, args *[]interface{}, arg *int) {
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		*clauses = append(*clauses, fmt.Sprintf("status = $%d", *arg))
		*args = append(*args, status)
		*arg++
	}
}

// submitTransferRequest handles creating a Pending transfer request
func (s *Server) submitTransferRequest(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if req.AssetID == 0 || req.FromRoomID == 0 || req.ToRoomID == 0 {
		http.Error(w, "asset_id, from_room_id and to_room_id are required", 400)
		return
	}

	created, err := s.Workflow.SubmitTransfer(r.Context(), req, auth.UsernameFromContext(r.Context()))
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusCreated, created)
}

// listTransferRequests handles transfer request listing with status filter
func (s *Server) listTransferRequests(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1
	statusFilter(r, &clauses, &args, &arg)

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`
		SELECT id, asset_id, from_room_id, to_room_id, qty, reason,
		       requested_by, requested_on, status, approved_by, approved_on,
		       COUNT(*) OVER() as total_count
		FROM transfer_requests%s`, whereClause)

	allowedSort := map[string]string{
		"id":           "id",
		"requested_on": "requested_on",
		"status":       "status",
	}
	if params.sort == "" {
		params.sort = "-requested_on,-id"
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	requests := []interface{}{}
	var totalCount int
	for rows.Next() {
		var req models.TransferRequest
		if err := rows.Scan(&req.ID, &req.AssetID, &req.FromRoomID, &req.ToRoomID, &req.Qty, &req.Reason,
			&req.RequestedBy, &req.RequestedOn, &req.Status, &req.ApprovedBy, &req.ApprovedOn, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		requests = append(requests, req)
	}

	sendListResponse(w, requests, totalCount, params)
}

// getTransferRequest handles getting a single transfer request by ID
func (s *Server) getTransferRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	req, err := s.Workflow.GetTransfer(r.Context(), id)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, req)
}

// approveTransferRequest approves a pending transfer and books both legs
func (s *Server) approveTransferRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	req, err := s.Workflow.ApproveTransfer(r.Context(), id, auth.UsernameFromContext(r.Context()))
	if err != nil {
		sendDomainError(w, err)
		return
	}

	s.Metrics.RequestResolved(kindTransfer, models.StatusApproved)
	sendJSON(w, http.StatusOK, req)
}

// rejectTransferRequest rejects a pending transfer
func (s *Server) rejectTransferRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	if err := s.Workflow.RejectTransfer(r.Context(), id, auth.UsernameFromContext(r.Context())); err != nil {
		sendDomainError(w, err)
		return
	}

	s.Metrics.RequestResolved(kindTransfer, models.StatusRejected)
	req, err := s.Workflow.GetTransfer(r.Context(), id)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, req)
}

// submitWithdrawalRequest handles creating a Pending withdrawal request.
// Withdrawals are an office-supplies flow; other categories are rejected
// here at the boundary.
func (s *Server) submitWithdrawalRequest(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if req.AssetID == 0 || req.RoomID == 0 {
		http.Error(w, "asset_id and room_id are required", 400)
		return
	}

	var category string
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT t.category FROM assets a JOIN asset_types t ON t.id = a.type_id
		WHERE a.id = $1`, req.AssetID).Scan(&category)
	if err != nil {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	if category != models.CategoryOfficeSupplies {
		http.Error(w, "withdrawal requests are limited to office supplies", 400)
		return
	}

	created, err := s.Workflow.SubmitWithdrawal(r.Context(), req, auth.UsernameFromContext(r.Context()))
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusCreated, created)
}

// listWithdrawalRequests handles withdrawal request listing with status filter
func (s *Server) listWithdrawalRequests(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1
	statusFilter(r, &clauses, &args, &arg)

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`
		SELECT id, asset_id, room_id, qty, note,
		       requested_by, requested_on, status, approved_by, approved_on,
		       COUNT(*) OVER() as total_count
		FROM withdrawal_requests%s`, whereClause)

	allowedSort := map[string]string{
		"id":           "id",
		"requested_on": "requested_on",
		"status":       "status",
	}
	if params.sort == "" {
		params.sort = "-requested_on,-id"
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	requests := []interface{}{}
	var totalCount int
	for rows.Next() {
		var req models.WithdrawalRequest
		if err := rows.Scan(&req.ID, &req.AssetID, &req.RoomID, &req.Qty, &req.Note,
			&req.RequestedBy, &req.RequestedOn, &req.Status, &req.ApprovedBy, &req.ApprovedOn, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		requests = append(requests, req)
	}

	sendListResponse(w, requests, totalCount, params)
}

// getWithdrawalRequest handles getting a single withdrawal request by ID
func (s *Server) getWithdrawalRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	req, err := s.Workflow.GetWithdrawal(r.Context(), id)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, req)
}

// approveWithdrawalRequest approves a pending withdrawal and books the
// restock movement
func (s *Server) approveWithdrawalRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	req, err := s.Workflow.ApproveWithdrawal(r.Context(), id, auth.UsernameFromContext(r.Context()))
	if err != nil {
		sendDomainError(w, err)
		return
	}

	s.Metrics.RequestResolved(kindWithdrawal, models.StatusApproved)
	sendJSON(w, http.StatusOK, req)
}

// rejectWithdrawalRequest rejects a pending withdrawal
func (s *Server) rejectWithdrawalRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	if err := s.Workflow.RejectWithdrawal(r.Context(), id, auth.UsernameFromContext(r.Context())); err != nil {
		sendDomainError(w, err)
		return
	}

	s.Metrics.RequestResolved(kindWithdrawal, models.StatusRejected)
	req, err := s.Workflow.GetWithdrawal(r.Context(), id)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, req)
}

// submitHoldingRequest handles declaring a baseline pending approval
func (s *Server) submitHoldingRequest(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if req.AssetID == 0 || req.RoomID == 0 {
		http.Error(w, "asset_id and room_id are required", 400)
		return
	}

	created, err := s.Workflow.SubmitHolding(r.Context(), req, auth.UsernameFromContext(r.Context()))
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusCreated, created)
}

// listHoldingRequests handles baseline declaration listing with status filter
func (s *Server) listHoldingRequests(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1
	statusFilter(r, &clauses, &args, &arg)

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`
		SELECT id, asset_id, room_id, serial_number, baseline_qty, origin,
		       requested_by, requested_on, status, approved_by, approved_on,
		       COUNT(*) OVER() as total_count
		FROM holding_requests%s`, whereClause)

	allowedSort := map[string]string{
		"id":           "id",
		"requested_on": "requested_on",
		"status":       "status",
	}
	if params.sort == "" {
		params.sort = "-requested_on,-id"
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	requests := []interface{}{}
	var totalCount int
	for rows.Next() {
		var req models.HoldingRequest
		if err := rows.Scan(&req.ID, &req.AssetID, &req.RoomID, &req.SerialNumber, &req.BaselineQty, &req.Origin,
			&req.RequestedBy, &req.RequestedOn, &req.Status, &req.ApprovedBy, &req.ApprovedOn, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		requests = append(requests, req)
	}

	sendListResponse(w, requests, totalCount, params)
}

// getHoldingRequest handles getting a single baseline declaration by ID
func (s *Server) getHoldingRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	req, err := s.Workflow.GetHolding(r.Context(), id)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, req)
}

// approveHoldingRequest approves a pending baseline declaration and applies
// the upsert
func (s *Server) approveHoldingRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	req, err := s.Workflow.ApproveHolding(r.Context(), id, auth.UsernameFromContext(r.Context()))
	if err != nil {
		sendDomainError(w, err)
		return
	}

	s.Metrics.RequestResolved(kindHolding, models.StatusApproved)
	sendJSON(w, http.StatusOK, req)
}

// rejectHoldingRequest rejects a pending baseline declaration
func (s *Server) rejectHoldingRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "invalid id", 400)
		return
	}

	if err := s.Workflow.RejectHolding(r.Context(), id, auth.UsernameFromContext(r.Context())); err != nil {
		sendDomainError(w, err)
		return
	}

	s.Metrics.RequestResolved(kindHolding, models.StatusRejected)
	req, err := s.Workflow.GetHolding(r.Context(), id)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, req)
}

//go:build integration

package tests

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ward-inventory-api/internal/testutil"
)

type fixture struct {
	TypeID       int64
	AssetID      int64
	OfficeTypeID int64
	PenAssetID   int64
	DeptID       int64
	RoomA        int64
	RoomB        int64
}

// setupFixture builds a small catalog over the API: one linens asset, one
// office-supplies asset, one department with two rooms. Names are unique per
// call so tests stay independent.
func setupFixture(t *testing.T) fixture {
	t.Helper()
	token := tokenFor(t, "manager")
	suffix := time.Now().UnixNano()

	var fx fixture
	var id struct {
		ID int64 `json:"id"`
	}

	w := doJSON(t, "POST", "/asset-types", token,
		map[string]string{"name": fmt.Sprintf("Linens %d", suffix), "category": "linens"}, &id)
	if w.Code != http.StatusCreated {
		t.Fatalf("asset type: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	fx.TypeID = id.ID

	w = doJSON(t, "POST", "/assets", token,
		map[string]interface{}{"type_id": fx.TypeID, "name": "Bed sheet", "unit": "piece"}, &id)
	if w.Code != http.StatusCreated {
		t.Fatalf("asset: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	fx.AssetID = id.ID

	w = doJSON(t, "POST", "/asset-types", token,
		map[string]string{"name": fmt.Sprintf("Stationery %d", suffix), "category": "office_supplies"}, &id)
	if w.Code != http.StatusCreated {
		t.Fatalf("office type: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	fx.OfficeTypeID = id.ID

	w = doJSON(t, "POST", "/assets", token,
		map[string]interface{}{"type_id": fx.OfficeTypeID, "name": "Ballpoint pen", "unit": "piece"}, &id)
	if w.Code != http.StatusCreated {
		t.Fatalf("pen asset: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	fx.PenAssetID = id.ID

	w = doJSON(t, "POST", "/departments", token,
		map[string]string{"name": fmt.Sprintf("Ward %d", suffix)}, &id)
	if w.Code != http.StatusCreated {
		t.Fatalf("department: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	fx.DeptID = id.ID

	w = doJSON(t, "POST", "/rooms", token,
		map[string]interface{}{"department_id": fx.DeptID, "name": "Storage"}, &id)
	if w.Code != http.StatusCreated {
		t.Fatalf("room A: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	fx.RoomA = id.ID

	w = doJSON(t, "POST", "/rooms", token,
		map[string]interface{}{"department_id": fx.DeptID, "name": "Nurse Station"}, &id)
	if w.Code != http.StatusCreated {
		t.Fatalf("room B: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	fx.RoomB = id.ID

	return fx
}

func qtyOnHand(t *testing.T, assetID, roomID int64) int {
	t.Helper()
	var out struct {
		QtyOnHand int `json:"qty_on_hand"`
	}
	w := doJSON(t, "GET",
		fmt.Sprintf("/holdings/qty-on-hand?asset_id=%d&room_id=%d", assetID, roomID),
		tokenFor(t, "staff"), nil, &out)
	if w.Code != http.StatusOK {
		t.Fatalf("qty-on-hand: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	return out.QtyOnHand
}

func TestTransferWorkflow(t *testing.T) {
	testutil.RequireIntegration(t)
	fx := setupFixture(t)
	manager := tokenFor(t, "manager")
	staff := tokenFor(t, "staff")

	// Declare a baseline of 10 in the storage room
	w := doJSON(t, "POST", "/holdings", manager, map[string]interface{}{
		"asset_id": fx.AssetID, "room_id": fx.RoomA, "baseline_qty": 10,
		"received_by": "jstaff", "manager_in_charge": "mmanager",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("holding: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Staff submit the transfer, manager approves it
	var req struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	w = doJSON(t, "POST", "/requests/transfers", staff, map[string]interface{}{
		"asset_id": fx.AssetID, "from_room_id": fx.RoomA, "to_room_id": fx.RoomB, "qty": 4,
	}, &req)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if req.Status != "Pending" {
		t.Errorf("Expected Pending, got %s", req.Status)
	}

	// Staff cannot approve
	w = doJSON(t, "POST", fmt.Sprintf("/requests/transfers/%d/approve", req.ID), staff, nil, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for staff approval, got %d", w.Code)
	}

	var approved struct {
		Status     string  `json:"status"`
		ApprovedBy *string `json:"approved_by"`
	}
	w = doJSON(t, "POST", fmt.Sprintf("/requests/transfers/%d/approve", req.ID), manager, nil, &approved)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if approved.Status != "Approved" {
		t.Errorf("Expected Approved, got %s", approved.Status)
	}

	// Both room balances moved by the transferred quantity
	if got := qtyOnHand(t, fx.AssetID, fx.RoomA); got != 6 {
		t.Errorf("Expected 6 on hand in source room, got %d", got)
	}
	if got := qtyOnHand(t, fx.AssetID, fx.RoomB); got != 4 {
		t.Errorf("Expected 4 on hand in destination room, got %d", got)
	}

	// Approval resolves exactly once
	w = doJSON(t, "POST", fmt.Sprintf("/requests/transfers/%d/approve", req.ID), manager, nil, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 on second approval, got %d", w.Code)
	}
	if got := qtyOnHand(t, fx.AssetID, fx.RoomA); got != 6 {
		t.Errorf("Second approval must not move stock again, got %d", got)
	}
}

func TestWithdrawalWorkflow(t *testing.T) {
	testutil.RequireIntegration(t)
	fx := setupFixture(t)
	manager := tokenFor(t, "manager")
	staff := tokenFor(t, "staff")

	// Only office supplies can be withdrawn
	w := doJSON(t, "POST", "/requests/withdrawals", staff, map[string]interface{}{
		"asset_id": fx.AssetID, "room_id": fx.RoomB, "qty": 5,
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-office asset, got %d: %s", w.Code, w.Body.String())
	}

	var req struct {
		ID int64 `json:"id"`
	}
	w = doJSON(t, "POST", "/requests/withdrawals", staff, map[string]interface{}{
		"asset_id": fx.PenAssetID, "room_id": fx.RoomB, "qty": 12,
	}, &req)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, "POST", fmt.Sprintf("/requests/withdrawals/%d/approve", req.ID), manager, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Stock arrives from outside into the requested room
	if got := qtyOnHand(t, fx.PenAssetID, fx.RoomB); got != 12 {
		t.Errorf("Expected 12 on hand, got %d", got)
	}
}

func TestHoldingDeclarationWorkflow(t *testing.T) {
	testutil.RequireIntegration(t)
	fx := setupFixture(t)
	manager := tokenFor(t, "manager")
	staff := tokenFor(t, "staff")

	var req struct {
		ID int64 `json:"id"`
	}
	w := doJSON(t, "POST", "/requests/holdings", staff, map[string]interface{}{
		"asset_id": fx.AssetID, "room_id": fx.RoomA, "baseline_qty": 30,
	}, &req)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, "POST", fmt.Sprintf("/requests/holdings/%d/approve", req.ID), manager, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// The declared baseline is live and no movement was booked for it
	if got := qtyOnHand(t, fx.AssetID, fx.RoomA); got != 30 {
		t.Errorf("Expected 30 on hand, got %d", got)
	}
	var txns struct {
		Total int `json:"total"`
	}
	w = doJSON(t, "GET", fmt.Sprintf("/transactions?asset_id=%d", fx.AssetID), staff, nil, &txns)
	if w.Code != http.StatusOK {
		t.Fatalf("transactions: expected 200, got %d", w.Code)
	}
	if txns.Total != 0 {
		t.Errorf("Expected no transactions after a baseline declaration, got %d", txns.Total)
	}
}

func TestRejectedRequestIsTerminal(t *testing.T) {
	testutil.RequireIntegration(t)
	fx := setupFixture(t)
	manager := tokenFor(t, "manager")

	var req struct {
		ID int64 `json:"id"`
	}
	w := doJSON(t, "POST", "/requests/transfers", tokenFor(t, "staff"), map[string]interface{}{
		"asset_id": fx.AssetID, "from_room_id": fx.RoomA, "to_room_id": fx.RoomB, "qty": 2,
	}, &req)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d", w.Code)
	}

	var rejected struct {
		Status string `json:"status"`
	}
	w = doJSON(t, "POST", fmt.Sprintf("/requests/transfers/%d/reject", req.ID), manager, nil, &rejected)
	if w.Code != http.StatusOK {
		t.Fatalf("reject: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if rejected.Status != "Rejected" {
		t.Errorf("Expected Rejected, got %s", rejected.Status)
	}

	w = doJSON(t, "POST", fmt.Sprintf("/requests/transfers/%d/approve", req.ID), manager, nil, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 approving a rejected request, got %d", w.Code)
	}
}

func TestReconciliationFlow(t *testing.T) {
	testutil.RequireIntegration(t)
	fx := setupFixture(t)
	manager := tokenFor(t, "manager")
	staff := tokenFor(t, "staff")

	w := doJSON(t, "POST", "/holdings", manager, map[string]interface{}{
		"asset_id": fx.AssetID, "room_id": fx.RoomA, "baseline_qty": 100,
		"received_by": "jstaff", "manager_in_charge": "mmanager",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("holding: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Counting 75 against a baseline of 100 is a High variance
	var count struct {
		CountID  int64 `json:"count_id"`
		Variance int   `json:"variance"`
	}
	w = doJSON(t, "POST", "/counts", staff, map[string]interface{}{
		"asset_id": fx.AssetID, "room_id": fx.RoomA, "qty_counted": 75,
	}, &count)
	if w.Code != http.StatusCreated {
		t.Fatalf("count: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if count.Variance != -25 {
		t.Errorf("Expected variance -25, got %d", count.Variance)
	}

	var alerts struct {
		Items []struct {
			ID           int64  `json:"id"`
			Severity     string `json:"severity"`
			Acknowledged bool   `json:"acknowledged"`
		} `json:"items"`
	}
	w = doJSON(t, "GET", "/alerts?severity=High&acknowledged=false", manager, nil, &alerts)
	if w.Code != http.StatusOK {
		t.Fatalf("alerts: expected 200, got %d", w.Code)
	}
	found := false
	for _, a := range alerts.Items {
		if a.Severity == "High" && !a.Acknowledged {
			found = true
		}
	}
	if !found {
		t.Error("Expected an unacknowledged High alert")
	}

	// Manager review acknowledges the count's alert
	var reviewed struct {
		ReviewedByManager bool `json:"reviewed_by_manager"`
	}
	w = doJSON(t, "POST", fmt.Sprintf("/counts/%d/review", count.CountID), manager, nil, &reviewed)
	if w.Code != http.StatusOK {
		t.Fatalf("review: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !reviewed.ReviewedByManager {
		t.Error("Expected count to be marked reviewed")
	}
}

func TestHoldingsReportExport(t *testing.T) {
	testutil.RequireIntegration(t)
	fx := setupFixture(t)
	manager := tokenFor(t, "manager")

	w := doJSON(t, "POST", "/holdings", manager, map[string]interface{}{
		"asset_id": fx.AssetID, "room_id": fx.RoomA, "baseline_qty": 5,
		"received_by": "jstaff", "manager_in_charge": "mmanager",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("holding: expected 200, got %d", w.Code)
	}

	req := httptest.NewRequest("GET", "/reports/holdings.xlsx", nil)
	req.Header.Set("Authorization", "Bearer "+manager)
	rec := httptest.NewRecorder()
	testServer.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Unexpected content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("Expected a non-empty workbook")
	}
}

package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ward-inventory-api/internal/models"

	"github.com/go-chi/chi/v5"
)

// isUniqueViolation reports whether a database/sql error is a unique
// constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}

// isForeignKeyViolation reports whether a database/sql error is a foreign
// key constraint failure.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "foreign key")
}

// listAssetTypes handles asset type listing with category filter and pagination
func (s *Server) listAssetTypes(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		clauses = append(clauses, fmt.Sprintf("category = $%d", arg))
		args = append(args, category)
		arg++
	}

	if params.q != "" {
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", arg))
		args = append(args, "%"+params.q+"%")
		arg++
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`
		SELECT id, name, category, created_at, updated_at,
		       COUNT(*) OVER() as total_count
		FROM asset_types%s`, whereClause)

	allowedSort := map[string]string{
		"id":         "id",
		"name":       "name",
		"category":   "category",
		"created_at": "created_at",
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	types := []interface{}{}
	var totalCount int
	for rows.Next() {
		var t models.AssetType
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.CreatedAt, &t.UpdatedAt, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		types = append(types, t)
	}

	sendListResponse(w, types, totalCount, params)
}

// getAssetType handles getting a single asset type by ID
func (s *Server) getAssetType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var t models.AssetType
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT id, name, category, created_at, updated_at
		FROM asset_types WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Category, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	sendJSON(w, http.StatusOK, t)
}

// createAssetType handles creating a new asset type
func (s *Server) createAssetType(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssetTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", 400)
		return
	}
	if !models.IsValidCategory(req.Category) {
		http.Error(w, "invalid category", 400)
		return
	}

	var t models.AssetType
	err := s.DB.QueryRowContext(r.Context(), `
		INSERT INTO asset_types (name, category)
		VALUES ($1, $2)
		RETURNING id, name, category, created_at, updated_at
	`, req.Name, req.Category).
		Scan(&t.ID, &t.Name, &t.Category, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "asset type with this name already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	sendJSON(w, http.StatusCreated, t)
}

// updateAssetType handles updating an asset type
func (s *Server) updateAssetType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.CreateAssetTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", 400)
		return
	}
	if !models.IsValidCategory(req.Category) {
		http.Error(w, "invalid category", 400)
		return
	}

	var t models.AssetType
	err := s.DB.QueryRowContext(r.Context(), `
		UPDATE asset_types
		SET name = $2, category = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, name, category, created_at, updated_at
	`, id, req.Name, req.Category).
		Scan(&t.ID, &t.Name, &t.Category, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "asset type with this name already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	sendJSON(w, http.StatusOK, t)
}

// deleteAssetType handles deleting an asset type. Types still referenced by
// assets cannot be removed.
func (s *Server) deleteAssetType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM asset_types WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			http.Error(w, "asset type is referenced by assets", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listAssets handles asset listing with filters and pagination
func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if typeID := strings.TrimSpace(r.URL.Query().Get("type_id")); typeID != "" {
		if v, ok := parseIDParam(typeID); ok {
			clauses = append(clauses, fmt.Sprintf("a.type_id = $%d", arg))
			args = append(args, v)
			arg++
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

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`
		SELECT a.id, a.type_id, a.name, a.unit, a.created_at, a.updated_at,
		       COUNT(*) OVER() as total_count
		FROM assets a
		JOIN asset_types t ON t.id = a.type_id%s`, whereClause)

	allowedSort := map[string]string{
		"id":         "a.id",
		"name":       "a.name",
		"type_id":    "a.type_id",
		"created_at": "a.created_at",
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	assets := []interface{}{}
	var totalCount int
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.TypeID, &a.Name, &a.Unit, &a.CreatedAt, &a.UpdatedAt, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		assets = append(assets, a)
	}

	sendListResponse(w, assets, totalCount, params)
}

// getAsset handles getting a single asset by ID
func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var a models.Asset
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT id, type_id, name, unit, created_at, updated_at
		FROM assets WHERE id = $1`, id).
		Scan(&a.ID, &a.TypeID, &a.Name, &a.Unit, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	sendJSON(w, http.StatusOK, a)
}

// createAsset handles creating a new asset
func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.TypeID == 0 || req.Name == "" {
		http.Error(w, "type_id and name are required", 400)
		return
	}

	var a models.Asset
	err := s.DB.QueryRowContext(r.Context(), `
		INSERT INTO assets (type_id, name, unit)
		VALUES ($1, $2, $3)
		RETURNING id, type_id, name, unit, created_at, updated_at
	`, req.TypeID, req.Name, nullIfEmpty(req.Unit)).
		Scan(&a.ID, &a.TypeID, &a.Name, &a.Unit, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "asset with this name already exists for this type", http.StatusConflict)
			return
		}
		if isForeignKeyViolation(err) {
			http.Error(w, "asset type does not exist", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	sendJSON(w, http.StatusCreated, a)
}

// updateAsset handles updating an asset
func (s *Server) updateAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.TypeID == 0 || req.Name == "" {
		http.Error(w, "type_id and name are required", 400)
		return
	}

	var a models.Asset
	err := s.DB.QueryRowContext(r.Context(), `
		UPDATE assets
		SET type_id = $2, name = $3, unit = $4, updated_at = now()
		WHERE id = $1
		RETURNING id, type_id, name, unit, created_at, updated_at
	`, id, req.TypeID, req.Name, nullIfEmpty(req.Unit)).
		Scan(&a.ID, &a.TypeID, &a.Name, &a.Unit, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "asset with this name already exists for this type", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	sendJSON(w, http.StatusOK, a)
}

// deleteAsset handles deleting an asset. Assets with ledger history cannot
// be removed.
func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			http.Error(w, "asset is referenced by ledger data", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listDepartments handles department listing
func (s *Server) listDepartments(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	if params.q != "" {
		clauses = append(clauses, "name ILIKE $1")
		args = append(args, "%"+params.q+"%")
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`
		SELECT id, name, created_at, updated_at,
		       COUNT(*) OVER() as total_count
		FROM departments%s`, whereClause)

	allowedSort := map[string]string{
		"id":         "id",
		"name":       "name",
		"created_at": "created_at",
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	departments := []interface{}{}
	var totalCount int
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		departments = append(departments, d)
	}

	sendListResponse(w, departments, totalCount, params)
}

// createDepartment handles creating a new department
func (s *Server) createDepartment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", 400)
		return
	}

	var d models.Department
	err := s.DB.QueryRowContext(r.Context(), `
		INSERT INTO departments (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at
	`, req.Name).
		Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "department with this name already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	sendJSON(w, http.StatusCreated, d)
}

// updateDepartment handles renaming a department
func (s *Server) updateDepartment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", 400)
		return
	}

	var d models.Department
	err := s.DB.QueryRowContext(r.Context(), `
		UPDATE departments
		SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at
	`, id, req.Name).
		Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "department with this name already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	sendJSON(w, http.StatusOK, d)
}

// deleteDepartment handles deleting a department. Departments that still own
// rooms cannot be removed.
func (s *Server) deleteDepartment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			http.Error(w, "department still owns rooms", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listRooms handles room listing with department filter
func (s *Server) listRooms(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if deptID := strings.TrimSpace(r.URL.Query().Get("department_id")); deptID != "" {
		if v, ok := parseIDParam(deptID); ok {
			clauses = append(clauses, fmt.Sprintf("department_id = $%d", arg))
			args = append(args, v)
			arg++
		}
	}

	if params.q != "" {
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", arg))
		args = append(args, "%"+params.q+"%")
		arg++
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := fmt.Sprintf(`
		SELECT id, department_id, name, created_at, updated_at,
		       COUNT(*) OVER() as total_count
		FROM rooms%s`, whereClause)

	allowedSort := map[string]string{
		"id":            "id",
		"name":          "name",
		"department_id": "department_id",
		"created_at":    "created_at",
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	rooms := []interface{}{}
	var totalCount int
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.DepartmentID, &room.Name, &room.CreatedAt, &room.UpdatedAt, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		rooms = append(rooms, room)
	}

	sendListResponse(w, rooms, totalCount, params)
}

// createRoom handles creating a new room
func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.DepartmentID == 0 || req.Name == "" {
		http.Error(w, "department_id and name are required", 400)
		return
	}

	var room models.Room
	err := s.DB.QueryRowContext(r.Context(), `
		INSERT INTO rooms (department_id, name)
		VALUES ($1, $2)
		RETURNING id, department_id, name, created_at, updated_at
	`, req.DepartmentID, req.Name).
		Scan(&room.ID, &room.DepartmentID, &room.Name, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "room with this name already exists in this department", http.StatusConflict)
			return
		}
		if isForeignKeyViolation(err) {
			http.Error(w, "department does not exist", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	sendJSON(w, http.StatusCreated, room)
}

// updateRoom handles updating a room
func (s *Server) updateRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.DepartmentID == 0 || req.Name == "" {
		http.Error(w, "department_id and name are required", 400)
		return
	}

	var room models.Room
	err := s.DB.QueryRowContext(r.Context(), `
		UPDATE rooms
		SET department_id = $2, name = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, department_id, name, created_at, updated_at
	`, id, req.DepartmentID, req.Name).
		Scan(&room.ID, &room.DepartmentID, &room.Name, &room.CreatedAt, &room.UpdatedAt)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "room with this name already exists in this department", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	sendJSON(w, http.StatusOK, room)
}

// deleteRoom handles deleting a room. Rooms with holdings or movement
// history cannot be removed.
func (s *Server) deleteRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			http.Error(w, "room is referenced by ledger data", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

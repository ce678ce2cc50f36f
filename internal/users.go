package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ward-inventory-api/internal/auth"
	"ward-inventory-api/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// loginUser handles user authentication
func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	query := `
		SELECT id, username, password_hash, full_name, roles, is_active,
		       created_at, updated_at, last_login_at
		FROM users
		WHERE username = $1 AND is_active = true`

	var user models.User
	var fullName sql.NullString
	var lastLoginAt sql.NullTime
	var roles pq.StringArray

	err := s.DB.QueryRowContext(r.Context(), query, req.Username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &fullName,
		&roles, &user.IsActive, &user.CreatedAt, &user.UpdatedAt, &lastLoginAt,
	)
	if err == sql.ErrNoRows {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	// Update last login time; failure here must not fail the login
	if _, err := s.DB.ExecContext(r.Context(), "UPDATE users SET last_login_at = now() WHERE id = $1", user.ID); err != nil {
		s.Log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to update last_login_at")
	}

	if fullName.Valid {
		user.FullName = &fullName.String
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	user.Roles = roles

	token, err := s.JWTManager.GenerateToken(user.ID, user.Username, user.Roles)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	sendJSON(w, http.StatusOK, models.LoginResponse{
		Token: token,
		User:  user.Redacted(),
	})
}

// createUser handles user creation
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" || len(req.Roles) == 0 {
		http.Error(w, "Username, password, and roles are required", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		http.Error(w, "Password must be at least 8 characters", http.StatusBadRequest)
		return
	}
	if !models.ValidateRoles(req.Roles) {
		http.Error(w, "Invalid roles provided", http.StatusBadRequest)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	var user models.User
	var roles pq.StringArray
	err = s.DB.QueryRowContext(r.Context(), `
		INSERT INTO users (username, password_hash, full_name, roles)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, full_name, roles, is_active, created_at, updated_at
	`, req.Username, string(hashedPassword), req.FullName, pq.Array(req.Roles)).
		Scan(&user.ID, &user.Username, &user.FullName, &roles, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "User with this username already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	user.Roles = roles

	sendJSON(w, http.StatusCreated, user.Redacted())
}

// listUsers handles user listing
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	if params.q != "" {
		clauses = append(clauses, "username ILIKE $1")
		args = append(args, "%"+params.q+"%")
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	sqlStr := `
		SELECT id, username, full_name, roles, is_active, created_at, updated_at, last_login_at,
		       COUNT(*) OVER() as total_count
		FROM users` + whereClause

	allowedSort := map[string]string{
		"id":         "id",
		"username":   "username",
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

	users := []interface{}{}
	var totalCount int
	for rows.Next() {
		var user models.User
		var fullName sql.NullString
		var lastLoginAt sql.NullTime
		var roles pq.StringArray
		if err := rows.Scan(&user.ID, &user.Username, &fullName, &roles, &user.IsActive,
			&user.CreatedAt, &user.UpdatedAt, &lastLoginAt, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if fullName.Valid {
			user.FullName = &fullName.String
		}
		if lastLoginAt.Valid {
			user.LastLoginAt = &lastLoginAt.Time
		}
		user.Roles = roles
		users = append(users, user.Redacted())
	}

	sendListResponse(w, users, totalCount, params)
}

// getUser handles getting a single user by ID
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var user models.User
	var fullName sql.NullString
	var lastLoginAt sql.NullTime
	var roles pq.StringArray
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT id, username, full_name, roles, is_active, created_at, updated_at, last_login_at
		FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Username, &fullName, &roles, &user.IsActive,
			&user.CreatedAt, &user.UpdatedAt, &lastLoginAt)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if fullName.Valid {
		user.FullName = &fullName.String
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	user.Roles = roles

	sendJSON(w, http.StatusOK, user.Redacted())
}

// getUserProfile returns the authenticated user's own record
func (s *Server) getUserProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == 0 {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var user models.User
	var fullName sql.NullString
	var lastLoginAt sql.NullTime
	var roles pq.StringArray
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT id, username, full_name, roles, is_active, created_at, updated_at, last_login_at
		FROM users WHERE id = $1`, userID).
		Scan(&user.ID, &user.Username, &fullName, &roles, &user.IsActive,
			&user.CreatedAt, &user.UpdatedAt, &lastLoginAt)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if fullName.Valid {
		user.FullName = &fullName.String
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	user.Roles = roles

	sendJSON(w, http.StatusOK, user.Redacted())
}

// changePasswordRequest is the body for /auth/change-password
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// changePassword lets the authenticated user rotate their own password
func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == 0 {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.NewPassword) < 8 {
		http.Error(w, "Password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	var currentHash string
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT password_hash FROM users WHERE id = $1 AND is_active = true`, userID).
		Scan(&currentHash)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(req.CurrentPassword)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	_, err = s.DB.ExecContext(r.Context(), `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		userID, string(newHash))
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"status": "password changed", "changed_at": time.Now().Format(time.RFC3339)})
}

package internal

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"ward-inventory-api/internal/auth"
	"ward-inventory-api/internal/config"
	"ward-inventory-api/internal/ledger"
	"ward-inventory-api/internal/postgres"
	"ward-inventory-api/internal/recon"
	"ward-inventory-api/internal/workflow"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

type Server struct {
	DB         *sql.DB
	Pool       *pgxpool.Pool
	Router     *chi.Mux
	JWTManager *auth.JWTManager
	Metrics    *Metrics
	Log        zerolog.Logger

	Ledger   *ledger.Ledger
	Workflow *workflow.Engine
	Recon    *recon.Reconciler
}

func NewServer(cfg *config.Config, log zerolog.Logger) *Server {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database connection")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("database ping failed")
	}

	// pgxpool backs the engine stores and the transaction runner
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pgxpool")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
	if err := jwtManager.ValidateConfig(); err != nil {
		log.Fatal().Err(err).Msg("JWT configuration validation failed")
	}

	metrics := NewMetrics()

	s := &Server{
		DB:         db,
		Pool:       pool,
		Router:     chi.NewRouter(),
		JWTManager: jwtManager,
		Metrics:    metrics,
		Log:        log,
		Ledger:     ledger.New(postgres.NewLedgerStore(pool)),
		Workflow:   workflow.New(postgres.NewRequestStore(pool), postgres.NewTxRunner(pool), log),
		Recon:      recon.New(postgres.NewReconStore(pool), postgres.NewReconTxRunner(pool), log),
	}

	s.Router.Use(RequestLogger(log))

	// Mount public routes FIRST (no middleware)
	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	s.Router.Get("/dbping", func(w http.ResponseWriter, r *http.Request) {
		if err := s.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "db: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		if _, err := w.Write([]byte("db: ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	// Public auth routes (no JWT required)
	s.Router.Post("/auth/login", s.loginUser)

	// Mount metrics if enabled
	if os.Getenv("ENABLE_METRICS") == "true" {
		s.Router.Use(s.Metrics.Middleware())
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	// Create a protected route group with middleware
	s.Router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(s.JWTManager))
		s.mountProtectedRoutes(r)
	})

	return s
}

// Close properly shuts down the server and cleans up resources
func (s *Server) Close(ctx context.Context) error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// mountProtectedRoutes mounts all protected routes that require authentication
func (s *Server) mountProtectedRoutes(r chi.Router) {
	// Catalog routes - managers maintain the catalog, admins delete
	r.Get("/asset-types", s.listAssetTypes)
	r.Get("/asset-types/{id}", s.getAssetType)
	r.Post("/asset-types", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.createAssetType)).(http.HandlerFunc))
	r.Put("/asset-types/{id}", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.updateAssetType)).(http.HandlerFunc))
	r.Delete("/asset-types/{id}", auth.MustRole("nursing_admin")(http.HandlerFunc(s.deleteAssetType)).(http.HandlerFunc))

	r.Get("/assets", s.listAssets)
	r.Get("/assets/{id}", s.getAsset)
	r.Post("/assets", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.createAsset)).(http.HandlerFunc))
	r.Put("/assets/{id}", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.updateAsset)).(http.HandlerFunc))
	r.Delete("/assets/{id}", auth.MustRole("nursing_admin")(http.HandlerFunc(s.deleteAsset)).(http.HandlerFunc))

	r.Get("/departments", s.listDepartments)
	r.Post("/departments", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.createDepartment)).(http.HandlerFunc))
	r.Put("/departments/{id}", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.updateDepartment)).(http.HandlerFunc))
	r.Delete("/departments/{id}", auth.MustRole("nursing_admin")(http.HandlerFunc(s.deleteDepartment)).(http.HandlerFunc))

	r.Get("/rooms", s.listRooms)
	r.Post("/rooms", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.createRoom)).(http.HandlerFunc))
	r.Put("/rooms/{id}", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.updateRoom)).(http.HandlerFunc))
	r.Delete("/rooms/{id}", auth.MustRole("nursing_admin")(http.HandlerFunc(s.deleteRoom)).(http.HandlerFunc))

	// Ledger routes
	r.Get("/holdings", s.listHoldings)
	r.Get("/holdings/qty-on-hand", s.getQuantityOnHand)
	r.Get("/holdings/{id}", s.getHolding)
	r.Post("/holdings", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.upsertHolding)).(http.HandlerFunc))
	r.Put("/holdings/{id}/baseline", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.setHoldingBaseline)).(http.HandlerFunc))

	r.Get("/transactions", s.listTransactions)
	r.Post("/transactions", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.recordTransaction)).(http.HandlerFunc))

	// Approval workflow routes - any role submits, managers resolve
	r.Post("/requests/transfers", s.submitTransferRequest)
	r.Get("/requests/transfers", s.listTransferRequests)
	r.Get("/requests/transfers/{id}", s.getTransferRequest)
	r.Post("/requests/transfers/{id}/approve", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.approveTransferRequest)).(http.HandlerFunc))
	r.Post("/requests/transfers/{id}/reject", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.rejectTransferRequest)).(http.HandlerFunc))

	r.Post("/requests/withdrawals", s.submitWithdrawalRequest)
	r.Get("/requests/withdrawals", s.listWithdrawalRequests)
	r.Get("/requests/withdrawals/{id}", s.getWithdrawalRequest)
	r.Post("/requests/withdrawals/{id}/approve", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.approveWithdrawalRequest)).(http.HandlerFunc))
	r.Post("/requests/withdrawals/{id}/reject", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.rejectWithdrawalRequest)).(http.HandlerFunc))

	r.Post("/requests/holdings", s.submitHoldingRequest)
	r.Get("/requests/holdings", s.listHoldingRequests)
	r.Get("/requests/holdings/{id}", s.getHoldingRequest)
	r.Post("/requests/holdings/{id}/approve", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.approveHoldingRequest)).(http.HandlerFunc))
	r.Post("/requests/holdings/{id}/reject", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.rejectHoldingRequest)).(http.HandlerFunc))

	// Reconciliation routes - staff record counts, managers review
	r.Post("/counts", s.recordCount)
	r.Get("/counts", s.listCounts)
	r.Get("/counts/{id}", s.getCount)
	r.Post("/counts/{id}/review", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.reviewCount)).(http.HandlerFunc))

	r.Get("/alerts", s.listAlerts)
	r.Post("/alerts/{id}/acknowledge", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.acknowledgeAlert)).(http.HandlerFunc))

	// Reports and dashboard
	r.Get("/reports/holdings.xlsx", auth.MustRole("manager", "nursing_admin")(http.HandlerFunc(s.exportHoldingsReport)).(http.HandlerFunc))
	r.Get("/dashboard/stats", s.getDashboardStats)

	// User management routes (nursing_admin only)
	r.Post("/users", auth.MustRole("nursing_admin")(http.HandlerFunc(s.createUser)).(http.HandlerFunc))
	r.Get("/users", auth.MustRole("nursing_admin")(http.HandlerFunc(s.listUsers)).(http.HandlerFunc))
	r.Get("/users/{id}", auth.MustRole("nursing_admin")(http.HandlerFunc(s.getUser)).(http.HandlerFunc))

	// Self-service routes
	r.Get("/auth/profile", s.getUserProfile)
	r.Put("/auth/change-password", s.changePassword)
}

package main

import (
	"net/http"
	"os"

	"ward-inventory-api/internal"
	"ward-inventory-api/internal/config"
	"ward-inventory-api/pkg/logger"
)

func main() {
	// Load and validate configuration
	cfg, err := config.LoadAndValidate()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Env:   cfg.Environment,
		Level: os.Getenv("LOG_LEVEL"),
	})

	srv := internal.NewServer(cfg, log)

	log.Info().
		Str("environment", cfg.Environment).
		Str("jwt_issuer", cfg.JWTIssuer).
		Str("jwt_audience", cfg.JWTAudience).
		Dur("jwt_expiry", cfg.JWTExpiry).
		Str("port", cfg.Port).
		Msg("starting ward inventory API server")

	if err := http.ListenAndServe(":"+cfg.Port, srv.Router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

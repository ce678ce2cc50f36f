package internal

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RequestLogger returns a middleware that logs one structured line per
// request after it completes.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

			next.ServeHTTP(rw, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.code).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

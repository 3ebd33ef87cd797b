package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/K-sous4/scarf-store/models"
	"github.com/K-sous4/scarf-store/services"
	"github.com/K-sous4/scarf-store/userctx"
)

// Paths that never produce audit entries
var auditSkipPaths = map[string]bool{
	"/health": true,
	"/ping":   true,
}

// Auth endpoints whose POSTs count as authentication attempts
var authAttemptPaths = map[string]bool{
	"/api/v1/auth/login":   true,
	"/api/v1/auth/sign-in": true,
}

// AuditLogger is the outermost interceptor. It records exactly one entry per
// completed exchange and never changes the response it observes; a panic
// below it still yields an entry before propagating.
func AuditLogger(audit *services.AuditService, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auditSkipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			recorder := newResponseRecorder(w)
			r = r.WithContext(userctx.WithCapture(r.Context()))
			start := time.Now()

			defer func() {
				if rec := recover(); rec != nil {
					// The panic escaped every inner recoverer; the exchange
					// still gets its entry.
					record(audit, log, r, http.StatusInternalServerError, "internal error", start)
					panic(rec)
				}
			}()

			next.ServeHTTP(recorder, r)

			record(audit, log, r, recorder.status, extractErrorMessage(recorder), start)
		})
	}
}

func record(audit *services.AuditService, log zerolog.Logger, r *http.Request, status int, errorMessage string, start time.Time) {
	entry := models.AuditLogEntry{
		Timestamp:      time.Now().UTC(),
		Method:         r.Method,
		Endpoint:       r.URL.Path,
		StatusCode:     status,
		ResponseTimeMs: float64(time.Since(start)) / float64(time.Millisecond),
		IPAddress:      getIPAddress(r),
		UserAgent:      r.UserAgent(),
		IsError:        status >= 400,
		IsAuthAttempt:  r.Method == http.MethodPost && authAttemptPaths[r.URL.Path],
		IsUnauthorized: status == http.StatusUnauthorized || status == http.StatusForbidden,
	}

	if status >= 400 {
		entry.ErrorMessage = errorMessage
	}

	if principal, ok := userctx.Captured(r.Context()); ok {
		userID := principal.UserID
		entry.UserID = &userID
		entry.Username = principal.Username
	}

	audit.Record(entry)

	event := log.Info()
	if entry.IsError {
		event = log.Warn()
	}
	event.
		Str("method", entry.Method).
		Str("endpoint", entry.Endpoint).
		Int("status", entry.StatusCode).
		Float64("duration_ms", entry.ResponseTimeMs).
		Str("ip", entry.IPAddress).
		Msg("request completed")
}

// extractErrorMessage pulls the error field out of a structured JSON error
// body, best effort.
func extractErrorMessage(recorder *responseRecorder) string {
	if recorder.status < 400 {
		return ""
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(recorder.body.Bytes(), &payload); err == nil && payload.Error != "" {
		return payload.Error
	}

	return http.StatusText(recorder.status)
}

// getIPAddress extracts the client IP, checking proxy headers first
func getIPAddress(r *http.Request) string {
	// X-Forwarded-For may contain several IPs; take the first
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	// Fall back to the transport peer address
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

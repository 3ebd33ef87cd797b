package models

import "time"

// AuditLogEntry represents one completed HTTP exchange.
// Entries are append-only; nothing in the application mutates or deletes them.
type AuditLogEntry struct {
	ID             int64
	Timestamp      time.Time
	Method         string
	Endpoint       string
	StatusCode     int
	ResponseTimeMs float64
	IPAddress      string
	UserAgent      string
	UserID         *int64
	Username       string
	ErrorMessage   string
	IsError        bool
	IsAuthAttempt  bool
	IsUnauthorized bool
}

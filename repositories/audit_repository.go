package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/K-sous4/scarf-store/models"
)

// AuditRepository handles audit log persistence. The log is append-only:
// no update or delete operations are exposed.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLogEntry) error
	ListRecent(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
}

type sqliteAuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &sqliteAuditRepository{db: db}
}

// Create inserts a new audit log entry
func (r *sqliteAuditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	query := `
		INSERT INTO audit_logs (timestamp, method, endpoint, status_code, response_time_ms,
			ip_address, user_agent, user_id, username, error_message,
			is_error, is_auth_attempt, is_unauthorized)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	var userID any
	if entry.UserID != nil {
		userID = *entry.UserID
	}
	var username any
	if entry.Username != "" {
		username = entry.Username
	}
	var errorMessage any
	if entry.ErrorMessage != "" {
		errorMessage = entry.ErrorMessage
	}

	result, err := r.db.ExecContext(ctx, query,
		entry.Timestamp,
		entry.Method,
		entry.Endpoint,
		entry.StatusCode,
		entry.ResponseTimeMs,
		entry.IPAddress,
		entry.UserAgent,
		userID,
		username,
		errorMessage,
		entry.IsError,
		entry.IsAuthAttempt,
		entry.IsUnauthorized,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get audit log id: %w", err)
	}
	entry.ID = id

	return nil
}

// ListRecent returns the newest entries, most recent first
func (r *sqliteAuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, timestamp, method, endpoint, status_code, response_time_ms,
			ip_address, user_agent, user_id, username, error_message,
			is_error, is_auth_attempt, is_unauthorized
		FROM audit_logs
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var entry models.AuditLogEntry
		var ipAddress, userAgent, username, errorMessage sql.NullString
		var userID sql.NullInt64

		err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.Method,
			&entry.Endpoint,
			&entry.StatusCode,
			&entry.ResponseTimeMs,
			&ipAddress,
			&userAgent,
			&userID,
			&username,
			&errorMessage,
			&entry.IsError,
			&entry.IsAuthAttempt,
			&entry.IsUnauthorized,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log entry: %w", err)
		}

		entry.IPAddress = ipAddress.String
		entry.UserAgent = userAgent.String
		entry.Username = username.String
		entry.ErrorMessage = errorMessage.String
		if userID.Valid {
			id := userID.Int64
			entry.UserID = &id
		}

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit logs: %w", err)
	}

	return entries, nil
}

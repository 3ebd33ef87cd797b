package models

import "time"

// SessionRecord holds the server-side claims bound to a session identifier.
// The identifier itself is the Redis key and is not stored in the value.
type SessionRecord struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

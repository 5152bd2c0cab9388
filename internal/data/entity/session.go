package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a refresh-token grant. Access tokens are stateless JWTs.
type Session struct {
	ID        uuid.UUID  `db:"id"`
	UserID    int64      `db:"user_id"`
	Token     uuid.UUID  `db:"token"`
	UserAgent *string    `db:"user_agent"`
	IPAddress *string    `db:"ip_address"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}

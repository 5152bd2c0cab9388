package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("record already exists")
	ErrReferenceMissing = errors.New("referenced record does not exist")

	// Both match ErrConflict.
	ErrEmailExists    = fmt.Errorf("email: %w", ErrConflict)
	ErrUsernameExists = fmt.Errorf("username: %w", ErrConflict)
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// userConflict names the unique index a users write collided with, or
// returns nil when err is not a unique violation.
func userConflict(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case "users_email_key":
		return ErrEmailExists
	case "users_username_key":
		return ErrUsernameExists
	default:
		return ErrConflict
	}
}

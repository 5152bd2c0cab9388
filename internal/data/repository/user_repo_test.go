package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestUserFilterClause(t *testing.T) {
	active := true

	tests := []struct {
		name     string
		filter   UserFilter
		wantArgs []any
		wantSQL  []string
	}{
		{
			name:     "no filter",
			filter:   UserFilter{},
			wantArgs: nil,
			wantSQL:  []string{"WHERE deleted_at IS NULL"},
		},
		{
			name:     "wildcards are literal",
			filter:   UserFilter{Search: " a_b%c\\ "},
			wantArgs: []any{`%a\_b\%c\\%`},
			wantSQL:  []string{`username ILIKE $1 ESCAPE '\'`, `email ILIKE $1 ESCAPE '\'`, `phone_number ILIKE $1 ESCAPE '\'`},
		},
		{
			name:     "search and active",
			filter:   UserFilter{Search: "_", IsActive: &active},
			wantArgs: []any{`%\_%`, true},
			wantSQL:  []string{"is_active = $2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.clause()
			if fmt.Sprint(args) != fmt.Sprint(tt.wantArgs) {
				t.Errorf("args: got %v, want %v", args, tt.wantArgs)
			}
			for _, fragment := range tt.wantSQL {
				if !strings.Contains(where, fragment) {
					t.Errorf("expected %q in %q", fragment, where)
				}
			}
		})
	}
}

func TestUserConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"email index", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_email_key"}, ErrEmailExists},
		{"username index", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_username_key"}, ErrUsernameExists},
		{"other unique index", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_pkey"}, ErrConflict},
		{"not a unique violation", &pgconn.PgError{Code: pgForeignKeyViolation}, nil},
		{"plain error", errors.New("boom"), nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := userConflict(fmt.Errorf("write: %w", tt.err))
			if tt.err == nil {
				got = userConflict(nil)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if got != nil && !errors.Is(got, ErrConflict) {
				t.Fatalf("%v must match ErrConflict", got)
			}
		})
	}
}

package entity

import (
	"time"
)

type OTPPurpose string

const (
	OTPPurposeRegister OTPPurpose = "register"
	OTPPurposeLogin    OTPPurpose = "login"
)

func (p OTPPurpose) Valid() bool {
	return p == OTPPurposeRegister || p == OTPPurposeLogin
}

// OTPChallenge is stored in Redis as JSON; the code itself is never persisted.
// Attempts are counted in a separate key.
type OTPChallenge struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Purpose     OTPPurpose `json:"purpose"`
	CodeHash    string     `json:"code_hash"`
	ExpiresAt   time.Time  `json:"expires_at"`
	MaxAttempts int        `json:"max_attempts"`
}

// PendingRegistration holds a sign-up until its code is verified.
type PendingRegistration struct {
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"password_hash"`
	Phone        *string `json:"phone_number,omitempty"`
}

package usecase

import (
	"errors"
	"strings"

	"book-recommendation/pkg/utils"
)

// Taxonomy. Handlers classify with errors.Is against these.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotAuthenticated   = errors.New("User not authenticated")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrInactiveUser       = errors.New("User account is disabled")
	ErrForbidden          = errors.New("You do not have permission to perform this action")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrCodeRateLimited    = errors.New("Please wait before requesting another code")
)

// Client-facing messages, each attached to one taxonomy class.
var (
	ErrBookNotFound        = notFound(errors.New("Book not found"))
	ErrReviewNotFound      = notFound(errors.New("Review not found"))
	ErrUserNotFound        = notFound(errors.New("User not found"))
	ErrReviewExists        = conflict(errors.New("Review already exists"))
	ErrEmailTaken          = conflict(errors.New("A user with that email already exists"))
	ErrUsernameTaken       = conflict(errors.New("A user with that username already exists"))
	ErrGenreRequired       = invalid(errors.New("Genre query parameter is required"))
	ErrWrongPassword       = invalid(errors.New("Old password is incorrect"))
	ErrInvalidCode         = invalid(errors.New("Invalid or expired code"))
	ErrInvalidRefreshToken = withKind(errors.New("Invalid or expired refresh token"), ErrNotAuthenticated)
)

// kindError lets errors.Is match both the message sentinel and its class.
type kindError struct {
	msg  error
	kind error
}

func (e *kindError) Error() string { return e.msg.Error() }

func (e *kindError) Unwrap() []error { return []error{e.msg, e.kind} }

func withKind(msg, kind error) error { return &kindError{msg: msg, kind: kind} }

func notFound(msg error) error { return withKind(msg, ErrNotFound) }

func conflict(msg error) error { return withKind(msg, ErrConflict) }

func invalid(msg error) error { return withKind(msg, ErrValidation) }

// ValidationError carries field level messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validateRequest(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// Message returns the text that is safe to show to a client.
// For wrapped errors it is the first message sentinel in the chain.
func Message(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.Error()
	}
	return err.Error()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

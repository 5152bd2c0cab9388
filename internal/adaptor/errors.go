package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"book-recommendation/internal/data/entity"
	"book-recommendation/internal/usecase"
	"book-recommendation/pkg/utils"

	"go.uber.org/zap"
)

// handleServiceError maps the usecase taxonomy to a status code. Anything
// unclassified is logged and reported as an opaque 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var validationErr *usecase.ValidationError

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, usecase.Message(err), nil)

	case errors.Is(err, usecase.ErrNotAuthenticated),
		errors.Is(err, usecase.ErrInvalidCredentials):
		log.Warn(operation+" failed - unauthenticated", zap.Error(err))
		utils.ResponseUnauthorized(w, usecase.Message(err))

	case errors.Is(err, usecase.ErrForbidden),
		errors.Is(err, usecase.ErrInactiveUser):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, usecase.Message(err))

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, usecase.Message(err))

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseBadRequest(w, usecase.Message(err), nil)

	case errors.Is(err, usecase.ErrCodeRateLimited):
		log.Warn(operation+" failed - rate limited", zap.Error(err))
		utils.ResponseTooManyRequests(w, usecase.Message(err))

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeJSON reads the request body into dst. An empty body decodes to the
// zero value so that validation can report the missing fields.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// actorFromContext builds the caller identity set by the auth middleware.
func actorFromContext(r *http.Request) (usecase.Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return usecase.Actor{}, false
	}
	role, _ := utils.GetRoleFromContext(r.Context())
	return usecase.Actor{ID: userID, Role: entity.UserRole(role)}, true
}

package adaptor

import (
	"net/http"

	"book-recommendation/internal/dto/request"
	"book-recommendation/internal/usecase"
	"book-recommendation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log.With(zap.String("handler", "user")),
	}
}

// GetAllUsers handles GET /user-list/ (admin only)
func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, usecase.ErrNotAuthenticated.Error())
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	req := &request.UserListRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("page_size"), request.DefaultPageSize),
		},
		Search:   query.Get("search"),
		IsActive: utils.ParseBool(query.Get("is_active")),
	}

	users, err := h.service.GetAllUsers(r.Context(), actor, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get all users")
		return
	}

	utils.WriteJSON(w, http.StatusOK, users)
}

// GetUser handles GET /user-detail/{id}/
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), actor, id)
	if err != nil {
		handleServiceError(w, h.log, err, "get user")
		return
	}

	utils.WriteJSON(w, http.StatusOK, user)
}

// UpdateUser handles PUT /user-update/{id}/
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var req request.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), actor, id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update user")
		return
	}

	utils.WriteJSON(w, http.StatusOK, user)
}

// ChangePassword handles PUT /user-change-password/{id}/
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var req request.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if err := h.service.ChangePassword(r.Context(), actor, id, &req); err != nil {
		handleServiceError(w, h.log, err, "change password")
		return
	}

	utils.ResponseSuccess(w, "Password updated successfully", nil)
}

// DeleteUser handles DELETE /user-delete/{id}/
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), actor, id); err != nil {
		handleServiceError(w, h.log, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, "User deleted successfully", nil)
}

func (h *UserHandler) target(w http.ResponseWriter, r *http.Request) (usecase.Actor, int64, bool) {
	actor, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, usecase.ErrNotAuthenticated.Error())
		return usecase.Actor{}, 0, false
	}

	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.ResponseNotFound(w, usecase.ErrUserNotFound.Error())
		return usecase.Actor{}, 0, false
	}

	return actor, id, true
}

package adaptor

import (
	"net"
	"net/http"

	"book-recommendation/internal/dto/request"
	"book-recommendation/internal/dto/response"
	"book-recommendation/internal/usecase"
	"book-recommendation/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Register handles POST /register/
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest

	// Decode request body
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	// Call service
	challenge, err := h.service.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "register")
		return
	}

	utils.WriteJSON(w, http.StatusOK, challenge)
}

// VerifyRegistration handles POST /register/verify/
func (h *AuthHandler) VerifyRegistration(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	user, err := h.service.VerifyRegistration(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "verify registration")
		return
	}

	utils.ResponseCreated(w, response.MsgUserCreated, user)
}

// Login handles POST /login/
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	challenge, err := h.service.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "login")
		return
	}

	utils.WriteJSON(w, http.StatusOK, challenge)
}

// VerifyLogin handles POST /login/verify/
func (h *AuthHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	tokens, err := h.service.VerifyLogin(r.Context(), &req, clientMeta(r))
	if err != nil {
		handleServiceError(w, h.log, err, "verify login")
		return
	}

	utils.WriteJSON(w, http.StatusOK, tokens)
}

// RefreshToken handles POST /token/refresh/
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	tokens, err := h.service.RefreshToken(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "refresh token")
		return
	}

	utils.WriteJSON(w, http.StatusOK, tokens)
}

// VerifyToken handles POST /token/verify/
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.VerifyToken(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "verify token")
		return
	}

	utils.ResponseSuccess(w, response.MsgTokenValid, nil)
}

// Logout handles POST /logout/ (protected)
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, usecase.ErrNotAuthenticated.Error())
		return
	}

	if err := h.service.Logout(r.Context(), userID); err != nil {
		handleServiceError(w, h.log, err, "logout")
		return
	}

	utils.ResponseSuccess(w, response.MsgLoggedOut, nil)
}

// clientMeta expects RealIP to have normalised RemoteAddr.
func clientMeta(r *http.Request) usecase.ClientMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return usecase.ClientMeta{
		UserAgent: r.UserAgent(),
		IPAddress: ip,
	}
}

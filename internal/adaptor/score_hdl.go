package adaptor

import (
	"net/http"

	"book-recommendation/internal/dto/request"
	"book-recommendation/internal/dto/response"
	"book-recommendation/internal/usecase"
	"book-recommendation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ScoreHandler struct {
	service usecase.ReviewService
	log     *zap.Logger
}

func NewScoreHandler(service usecase.ReviewService, log *zap.Logger) *ScoreHandler {
	return &ScoreHandler{
		service: service,
		log:     log.With(zap.String("handler", "score")),
	}
}

// AddScore handles POST /score-add/{book_id}/ (protected)
func (h *ScoreHandler) AddScore(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req request.ScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resp, err := h.service.AddReview(r.Context(), userID, bookID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "add review")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, resp)
}

// UpdateScore handles PUT /score-update/{book_id}/ (protected)
func (h *ScoreHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req request.ScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if err := h.service.UpdateReview(r.Context(), userID, bookID, &req); err != nil {
		handleServiceError(w, h.log, err, "update review")
		return
	}

	utils.ResponseSuccess(w, response.MsgReviewUpdated, nil)
}

// DeleteScore handles DELETE /score-delete/{book_id}/ (protected)
func (h *ScoreHandler) DeleteScore(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), userID, bookID); err != nil {
		handleServiceError(w, h.log, err, "delete review")
		return
	}

	utils.ResponseSuccess(w, response.MsgRatingDeleted, nil)
}

// target reads the caller and the book id. The route pattern only admits
// digits, so a parse failure means an id out of range.
func (h *ScoreHandler) target(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, usecase.ErrNotAuthenticated.Error())
		return 0, 0, false
	}

	bookID, ok := utils.ParseID(chi.URLParam(r, "book_id"))
	if !ok {
		utils.ResponseNotFound(w, usecase.ErrBookNotFound.Error())
		return 0, 0, false
	}

	return userID, bookID, true
}

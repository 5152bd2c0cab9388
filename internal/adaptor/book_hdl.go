package adaptor

import (
	"net/http"

	"book-recommendation/internal/dto/request"
	"book-recommendation/internal/usecase"
	"book-recommendation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookHandler struct {
	service usecase.BookService
	log     *zap.Logger
}

func NewBookHandler(service usecase.BookService, log *zap.Logger) *BookHandler {
	return &BookHandler{
		service: service,
		log:     log.With(zap.String("handler", "book")),
	}
}

// GetBooks handles GET /book-list/
func (h *BookHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.GetBooks(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get books")
		return
	}

	utils.WriteJSON(w, http.StatusOK, books)
}

// GetBooksByGenre handles GET /book-genre/?genre=X
func (h *BookHandler) GetBooksByGenre(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.GetBooksByGenre(r.Context(), r.URL.Query().Get("genre"))
	if err != nil {
		handleServiceError(w, h.log, err, "get books by genre")
		return
	}

	utils.WriteJSON(w, http.StatusOK, books)
}

// GetGenres handles GET /genres/
func (h *BookHandler) GetGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.service.GetGenres(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get genres")
		return
	}

	utils.WriteJSON(w, http.StatusOK, genres)
}

// CreateBook handles POST /admin/books (admin only)
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req request.BookRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	// Validate request
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	book, err := h.service.CreateBook(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create book")
		return
	}

	utils.ResponseCreated(w, "Book created successfully", book)
}

// UpdateBook handles PUT /admin/books/{id} (admin only)
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.ResponseNotFound(w, "Book not found")
		return
	}

	var req request.BookRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	book, err := h.service.UpdateBook(r.Context(), bookID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update book")
		return
	}

	utils.ResponseSuccess(w, "Book updated successfully", book)
}

// DeleteBook handles DELETE /admin/books/{id} (admin only)
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.ResponseNotFound(w, "Book not found")
		return
	}

	if err := h.service.DeleteBook(r.Context(), bookID); err != nil {
		handleServiceError(w, h.log, err, "delete book")
		return
	}

	utils.ResponseSuccess(w, "Book deleted successfully", nil)
}

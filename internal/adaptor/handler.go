package adaptor

import (
	"book-recommendation/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth  *AuthHandler
	User  *UserHandler
	Book  *BookHandler
	Score *ScoreHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:  NewAuthHandler(service.Auth, log),
		User:  NewUserHandler(service.User, log),
		Book:  NewBookHandler(service.Book, log),
		Score: NewScoreHandler(service.Review, log),
	}
}

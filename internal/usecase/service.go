package usecase

import (
	"book-recommendation/internal/data/repository"
	"book-recommendation/pkg/mailer"
	"book-recommendation/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth           AuthService
	User           UserService
	Book           BookService
	Review         ReviewService
	Recommendation RecommendationService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	tokens *utils.TokenManager,
	mail mailer.Sender,
	log *zap.Logger,
) *Service {
	recommendation := NewRecommendationService(repo.Genre, repo.Review, log)

	return &Service{
		Auth:           NewAuthService(repo, config, tokens, mail, log),
		User:           NewUserService(repo.User, repo.Session, log),
		Book:           NewBookService(repo, log),
		Review:         NewReviewService(repo.Review, recommendation, log),
		Recommendation: recommendation,
	}
}

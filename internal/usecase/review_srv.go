package usecase

import (
	"context"
	"errors"
	"fmt"

	"book-recommendation/internal/data/entity"
	"book-recommendation/internal/data/repository"
	"book-recommendation/internal/dto/request"
	"book-recommendation/internal/dto/response"
	"book-recommendation/pkg/metrics"

	"go.uber.org/zap"
)

type ReviewService interface {
	// AddReview stores the rating and then computes recommendations.
	// A recommendation failure is reported inside the result; the review
	// stays written.
	AddReview(ctx context.Context, userID, bookID int64, req *request.ScoreRequest) (*response.ScoreAddResponse, error)
	UpdateReview(ctx context.Context, userID, bookID int64, req *request.ScoreRequest) error
	DeleteReview(ctx context.Context, userID, bookID int64) error
}

type reviewService struct {
	reviews     repository.ReviewRepository
	recommender RecommendationService
	log         *zap.Logger
}

func NewReviewService(reviews repository.ReviewRepository, recommender RecommendationService, log *zap.Logger) ReviewService {
	return &reviewService{
		reviews:     reviews,
		recommender: recommender,
		log:         log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) AddReview(ctx context.Context, userID, bookID int64, req *request.ScoreRequest) (*response.ScoreAddResponse, error) {
	if userID < 1 {
		return nil, ErrNotAuthenticated
	}
	if err := validateRequest(req); err != nil {
		s.log.Warn("Add review validation failed", zap.Error(err))
		return nil, err
	}

	review := &entity.Review{
		BookID:        bookID,
		AccountUserID: userID,
		Rating:        *req.Rating,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			metrics.RecordReviewWrite("add", "conflict")
			return nil, ErrReviewExists
		case errors.Is(err, repository.ErrReferenceMissing):
			metrics.RecordReviewWrite("add", "not_found")
			return nil, ErrBookNotFound
		default:
			metrics.RecordReviewWrite("add", "error")
			return nil, fmt.Errorf("add review: %w", err)
		}
	}
	metrics.RecordReviewWrite("add", "ok")

	s.log.Info("Review added",
		zap.Int64("review_id", review.ID),
		zap.Int64("user_id", userID),
		zap.Int64("book_id", bookID),
		zap.Int("rating", review.Rating),
	)

	recommendations, err := s.recommender.Recommend(ctx, userID, bookID)
	if err != nil {
		s.log.Error("Failed to compute recommendations after review write",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.Int64("book_id", bookID),
		)
		recommendations = response.RecommendationResult{Error: response.MsgRecommendError}
	}

	return &response.ScoreAddResponse{
		Message:         response.MsgReviewAdded,
		Recommendations: recommendations,
	}, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, userID, bookID int64, req *request.ScoreRequest) error {
	if userID < 1 {
		return ErrNotAuthenticated
	}
	if err := validateRequest(req); err != nil {
		s.log.Warn("Update review validation failed", zap.Error(err))
		return err
	}

	if err := s.reviews.UpdateRating(ctx, userID, bookID, *req.Rating); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordReviewWrite("update", "not_found")
			return ErrReviewNotFound
		}
		metrics.RecordReviewWrite("update", "error")
		return fmt.Errorf("update review: %w", err)
	}
	metrics.RecordReviewWrite("update", "ok")

	s.log.Info("Review updated",
		zap.Int64("user_id", userID),
		zap.Int64("book_id", bookID),
		zap.Int("rating", *req.Rating),
	)

	return nil
}

func (s *reviewService) DeleteReview(ctx context.Context, userID, bookID int64) error {
	if userID < 1 {
		return ErrNotAuthenticated
	}

	if err := s.reviews.Delete(ctx, userID, bookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordReviewWrite("delete", "not_found")
			return ErrReviewNotFound
		}
		metrics.RecordReviewWrite("delete", "error")
		return fmt.Errorf("delete review: %w", err)
	}
	metrics.RecordReviewWrite("delete", "ok")

	s.log.Info("Review deleted",
		zap.Int64("user_id", userID),
		zap.Int64("book_id", bookID),
	)

	return nil
}

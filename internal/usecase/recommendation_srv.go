package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"book-recommendation/internal/data/entity"
	"book-recommendation/internal/data/repository"
	"book-recommendation/internal/dto/response"
	"book-recommendation/pkg/metrics"

	"go.uber.org/zap"
)

const (
	outcomeOK            = "ok"
	outcomeGenreNotFound = "genre_not_found"
	outcomeNotEnoughData = "not_enough_data"
	outcomeNoSimilar     = "no_similar"
	outcomeError         = "error"
)

// RecommendationService suggests books for a user who just rated bookID.
//
// Users are similar when they share at least one rated book with the
// target user within the genre of bookID. Every book a similar user rated,
// in any genre, that the target user has not rated is a candidate. Candidates
// are ranked by their average rating among similar users.
type RecommendationService interface {
	// Recommend returns soft signals (unknown genre, no history) in the
	// result's Message. A non-nil error means a store failure.
	Recommend(ctx context.Context, userID, bookID int64) (response.RecommendationResult, error)
}

type recommendationService struct {
	genres  repository.GenreRepository
	reviews repository.ReviewRepository
	log     *zap.Logger
}

func NewRecommendationService(
	genres repository.GenreRepository,
	reviews repository.ReviewRepository,
	log *zap.Logger,
) RecommendationService {
	return &recommendationService{
		genres:  genres,
		reviews: reviews,
		log:     log.With(zap.String("service", "recommendation")),
	}
}

func (s *recommendationService) Recommend(ctx context.Context, userID, bookID int64) (response.RecommendationResult, error) {
	start := time.Now()

	result, outcome, err := s.recommend(ctx, userID, bookID)
	if err != nil {
		outcome = outcomeError
	}
	metrics.RecordRecommendation(outcome, time.Since(start))

	if err != nil {
		return response.RecommendationResult{}, err
	}

	s.log.Debug("Recommendations computed",
		zap.Int64("user_id", userID),
		zap.Int64("book_id", bookID),
		zap.String("outcome", outcome),
		zap.Int("count", len(result.Items)),
	)

	return result, nil
}

func (s *recommendationService) recommend(ctx context.Context, userID, bookID int64) (response.RecommendationResult, string, error) {
	// 1. Genre of the rated book
	genre, ok, err := s.genres.FindByBookID(ctx, bookID)
	if err != nil {
		return response.RecommendationResult{}, "", fmt.Errorf("find genre: %w", err)
	}
	if !ok {
		return response.RecommendationResult{Message: response.MsgGenreNotFound}, outcomeGenreNotFound, nil
	}

	// 2. Everything the user has rated so far
	ratedIDs, err := s.reviews.FindRatedBookIDs(ctx, userID)
	if err != nil {
		return response.RecommendationResult{}, "", fmt.Errorf("find rated books: %w", err)
	}
	if len(ratedIDs) == 0 {
		return response.RecommendationResult{Message: response.MsgNotEnoughData}, outcomeNotEnoughData, nil
	}
	rated := make(map[int64]struct{}, len(ratedIDs))
	for _, id := range ratedIDs {
		rated[id] = struct{}{}
	}

	// 3-5. Other users in the genre who share a rated book
	pool, err := s.reviews.FindGenreRatings(ctx, genre, userID)
	if err != nil {
		return response.RecommendationResult{}, "", fmt.Errorf("find genre ratings: %w", err)
	}
	similar := similarUsers(buildProfiles(pool), rated)
	if len(similar) == 0 {
		return response.RecommendationResult{Items: []response.Recommendation{}}, outcomeNoSimilar, nil
	}

	// 6. Average what the similar users rated, minus what the user has seen
	ratings, err := s.reviews.FindRatingsByUsers(ctx, similar)
	if err != nil {
		return response.RecommendationResult{}, "", fmt.Errorf("find ratings of similar users: %w", err)
	}

	return response.RecommendationResult{Items: rankCandidates(ratings, rated)}, outcomeOK, nil
}

// buildProfiles maps user -> book -> rating.
func buildProfiles(pool []entity.GenreRating) map[int64]map[int64]int {
	profiles := make(map[int64]map[int64]int)
	for _, r := range pool {
		profile, ok := profiles[r.UserID]
		if !ok {
			profile = make(map[int64]int)
			profiles[r.UserID] = profile
		}
		profile[r.BookID] = r.Rating
	}
	return profiles
}

// similarUsers returns, in ascending order, the users whose profile shares
// at least one book with rated.
func similarUsers(profiles map[int64]map[int64]int, rated map[int64]struct{}) []int64 {
	var similar []int64
	for userID, profile := range profiles {
		for bookID := range profile {
			if _, ok := rated[bookID]; ok {
				similar = append(similar, userID)
				break
			}
		}
	}
	sort.Slice(similar, func(i, j int) bool { return similar[i] < similar[j] })
	return similar
}

// rankCandidates averages ratings per book not in rated, best first.
// Ties keep ascending book id.
func rankCandidates(ratings []entity.TitledRating, rated map[int64]struct{}) []response.Recommendation {
	type acc struct {
		title string
		sum   int
		n     int
	}

	byBook := make(map[int64]*acc)
	for _, r := range ratings {
		if _, seen := rated[r.BookID]; seen {
			continue
		}
		a, ok := byBook[r.BookID]
		if !ok {
			a = &acc{title: r.Title}
			byBook[r.BookID] = a
		}
		a.sum += r.Rating
		a.n++
	}

	out := make([]response.Recommendation, 0, len(byBook))
	for bookID, a := range byBook {
		out = append(out, response.Recommendation{
			BookID: bookID,
			Title:  a.title,
			Rating: float64(a.sum) / float64(a.n),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].BookID < out[j].BookID
	})

	return out
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"book-recommendation/internal/data/entity"
	"book-recommendation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReviewRepository interface {
	// Create inserts the review only if the (book, user) pair has none yet.
	// It returns ErrConflict when a review already exists and
	// ErrReferenceMissing when the book or user does not exist.
	Create(ctx context.Context, review *entity.Review) error
	UpdateRating(ctx context.Context, userID, bookID int64, rating int) error
	Delete(ctx context.Context, userID, bookID int64) error
	Exists(ctx context.Context, userID, bookID int64) (bool, error)

	// Recommendation queries
	FindRatedBookIDs(ctx context.Context, userID int64) ([]int64, error)
	FindGenreRatings(ctx context.Context, genre string, excludeUserID int64) ([]entity.GenreRating, error)
	FindRatingsByUsers(ctx context.Context, userIDs []int64) ([]entity.TitledRating, error)
}

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (book_id, account_user_id, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (book_id, account_user_id) DO NOTHING
		RETURNING id
	`

	now := time.Now()
	review.CreatedAt, review.UpdatedAt = now, now

	err := r.db.QueryRow(ctx, query,
		review.BookID,
		review.AccountUserID,
		review.Rating,
		review.CreatedAt,
		review.UpdatedAt,
	).Scan(&review.ID)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("review for book %d by user %d: %w", review.BookID, review.AccountUserID, ErrConflict)
	case pgErrorCode(err) == pgForeignKeyViolation:
		return fmt.Errorf("review for book %d by user %d: %w", review.BookID, review.AccountUserID, ErrReferenceMissing)
	case err != nil:
		r.log.Error("Failed to create review",
			zap.Error(err),
			zap.Int64("book_id", review.BookID),
			zap.Int64("user_id", review.AccountUserID),
		)
		return fmt.Errorf("create review for book %d by user %d: %w", review.BookID, review.AccountUserID, err)
	}

	return nil
}

func (r *reviewRepository) UpdateRating(ctx context.Context, userID, bookID int64, rating int) error {
	query := `
		UPDATE reviews
		SET rating = $3, updated_at = NOW()
		WHERE account_user_id = $1 AND book_id = $2
	`

	result, err := r.db.Exec(ctx, query, userID, bookID, rating)
	if err != nil {
		r.log.Error("Failed to update review",
			zap.Error(err),
			zap.Int64("book_id", bookID),
			zap.Int64("user_id", userID),
		)
		return fmt.Errorf("update review for book %d by user %d: %w", bookID, userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update review for book %d by user %d: %w", bookID, userID, ErrNotFound)
	}

	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, userID, bookID int64) error {
	query := `DELETE FROM reviews WHERE account_user_id = $1 AND book_id = $2`

	result, err := r.db.Exec(ctx, query, userID, bookID)
	if err != nil {
		r.log.Error("Failed to delete review",
			zap.Error(err),
			zap.Int64("book_id", bookID),
			zap.Int64("user_id", userID),
		)
		return fmt.Errorf("delete review for book %d by user %d: %w", bookID, userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete review for book %d by user %d: %w", bookID, userID, ErrNotFound)
	}

	return nil
}

func (r *reviewRepository) Exists(ctx context.Context, userID, bookID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE account_user_id = $1 AND book_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, bookID).Scan(&exists); err != nil {
		r.log.Error("Failed to check review existence", zap.Error(err))
		return false, fmt.Errorf("check review for book %d by user %d: %w", bookID, userID, err)
	}

	return exists, nil
}

func (r *reviewRepository) FindRatedBookIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT book_id FROM reviews WHERE account_user_id = $1`, userID)
	if err != nil {
		r.log.Error("Failed to list rated books", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("list books rated by user %d: %w", userID, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("collect books rated by user %d: %w", userID, err)
	}

	return ids, nil
}

func (r *reviewRepository) FindGenreRatings(ctx context.Context, genre string, excludeUserID int64) ([]entity.GenreRating, error) {
	query := `
		SELECT r.account_user_id, r.book_id, r.rating
		FROM reviews r
		JOIN books b ON b.id = r.book_id
		WHERE b.genre = $1 AND r.account_user_id <> $2
	`

	rows, err := r.db.Query(ctx, query, genre, excludeUserID)
	if err != nil {
		r.log.Error("Failed to list genre ratings", zap.Error(err), zap.String("genre", genre))
		return nil, fmt.Errorf("list ratings in genre %q: %w", genre, err)
	}

	ratings, err := pgx.CollectRows(rows, pgx.RowToStructByName[entity.GenreRating])
	if err != nil {
		return nil, fmt.Errorf("collect ratings in genre %q: %w", genre, err)
	}

	return ratings, nil
}

func (r *reviewRepository) FindRatingsByUsers(ctx context.Context, userIDs []int64) ([]entity.TitledRating, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT r.account_user_id, r.book_id, b.title, r.rating
		FROM reviews r
		JOIN books b ON b.id = r.book_id
		WHERE r.account_user_id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		r.log.Error("Failed to list ratings of users", zap.Error(err), zap.Int("users", len(userIDs)))
		return nil, fmt.Errorf("list ratings of %d users: %w", len(userIDs), err)
	}

	ratings, err := pgx.CollectRows(rows, pgx.RowToStructByName[entity.TitledRating])
	if err != nil {
		return nil, fmt.Errorf("collect ratings of %d users: %w", len(userIDs), err)
	}

	return ratings, nil
}

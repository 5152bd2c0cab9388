package repository

import (
	"context"
	"errors"
	"fmt"

	"book-recommendation/internal/data/entity"
	"book-recommendation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// GenreRepository is the genre index over the books table.
type GenreRepository interface {
	// FindByBookID reports ok=false when the book does not exist.
	FindByBookID(ctx context.Context, bookID int64) (genre string, ok bool, err error)
	FindAll(ctx context.Context) ([]entity.Genre, error)
}

type genreRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewGenreRepository(db database.PgxIface, log *zap.Logger) GenreRepository {
	return &genreRepository{
		db:  db,
		log: log.With(zap.String("repository", "genre")),
	}
}

func (r *genreRepository) FindByBookID(ctx context.Context, bookID int64) (string, bool, error) {
	var genre string
	err := r.db.QueryRow(ctx, `SELECT genre FROM books WHERE id = $1`, bookID).Scan(&genre)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		r.log.Error("Failed to find book genre", zap.Error(err), zap.Int64("book_id", bookID))
		return "", false, fmt.Errorf("find genre of book %d: %w", bookID, err)
	}

	return genre, true, nil
}

func (r *genreRepository) FindAll(ctx context.Context) ([]entity.Genre, error) {
	query := `
		SELECT genre, COUNT(*) AS book_count
		FROM books
		GROUP BY genre
		ORDER BY genre
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list genres", zap.Error(err))
		return nil, fmt.Errorf("list genres: %w", err)
	}

	genres, err := pgx.CollectRows(rows, pgx.RowToStructByName[entity.Genre])
	if err != nil {
		return nil, fmt.Errorf("collect genres: %w", err)
	}

	return genres, nil
}

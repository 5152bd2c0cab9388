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

type BookRepository interface {
	FindAll(ctx context.Context) ([]*entity.Book, error)
	FindByGenre(ctx context.Context, genre string) ([]*entity.Book, error)
	FindByID(ctx context.Context, id int64) (*entity.Book, error)

	// Catalogue administration
	Create(ctx context.Context, book *entity.Book) error
	Update(ctx context.Context, book *entity.Book) error
	Delete(ctx context.Context, id int64) error
}

type bookRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookRepository(db database.PgxIface, log *zap.Logger) BookRepository {
	return &bookRepository{
		db:  db,
		log: log.With(zap.String("repository", "book")),
	}
}

func (r *bookRepository) FindAll(ctx context.Context) ([]*entity.Book, error) {
	query := `
		SELECT id, title, author, genre, created_at, updated_at
		FROM books
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list books", zap.Error(err))
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	return r.scanBooks(rows)
}

func (r *bookRepository) FindByGenre(ctx context.Context, genre string) ([]*entity.Book, error) {
	query := `
		SELECT id, title, author, genre, created_at, updated_at
		FROM books
		WHERE genre = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, genre)
	if err != nil {
		r.log.Error("Failed to list books by genre", zap.Error(err), zap.String("genre", genre))
		return nil, fmt.Errorf("list books by genre %q: %w", genre, err)
	}
	defer rows.Close()

	return r.scanBooks(rows)
}

func (r *bookRepository) FindByID(ctx context.Context, id int64) (*entity.Book, error) {
	query := `
		SELECT id, title, author, genre, created_at, updated_at
		FROM books
		WHERE id = $1
	`

	var book entity.Book
	err := r.db.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Genre,
		&book.CreatedAt,
		&book.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find book by ID", zap.Error(err), zap.Int64("book_id", id))
		return nil, fmt.Errorf("find book %d: %w", id, err)
	}

	return &book, nil
}

func (r *bookRepository) Create(ctx context.Context, book *entity.Book) error {
	query := `
		INSERT INTO books (title, author, genre, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	book.CreatedAt, book.UpdatedAt = now, now

	err := r.db.QueryRow(ctx, query,
		book.Title,
		book.Author,
		book.Genre,
		book.CreatedAt,
		book.UpdatedAt,
	).Scan(&book.ID)
	if err != nil {
		r.log.Error("Failed to create book", zap.Error(err), zap.String("title", book.Title))
		return fmt.Errorf("create book %q: %w", book.Title, err)
	}

	return nil
}

func (r *bookRepository) Update(ctx context.Context, book *entity.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, genre = $4, updated_at = $5
		WHERE id = $1
	`

	book.UpdatedAt = time.Now()
	result, err := r.db.Exec(ctx, query, book.ID, book.Title, book.Author, book.Genre, book.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to update book", zap.Error(err), zap.Int64("book_id", book.ID))
		return fmt.Errorf("update book %d: %w", book.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update book %d: %w", book.ID, ErrNotFound)
	}

	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete book", zap.Error(err), zap.Int64("book_id", id))
		return fmt.Errorf("delete book %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete book %d: %w", id, ErrNotFound)
	}

	r.log.Info("Book deleted", zap.Int64("book_id", id))
	return nil
}

func (r *bookRepository) scanBooks(rows pgx.Rows) ([]*entity.Book, error) {
	books := make([]*entity.Book, 0)
	for rows.Next() {
		var book entity.Book
		if err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.Genre,
			&book.CreatedAt,
			&book.UpdatedAt,
		); err != nil {
			r.log.Error("Failed to scan book row", zap.Error(err))
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, &book)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate book rows: %w", err)
	}

	return books, nil
}

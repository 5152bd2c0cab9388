package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"book-recommendation/internal/data/entity"
	"book-recommendation/internal/data/repository"
	"book-recommendation/internal/dto/request"
	"book-recommendation/internal/dto/response"

	"go.uber.org/zap"
)

type BookService interface {
	// Public endpoints
	GetBooks(ctx context.Context) ([]response.BookResponse, error)
	GetBooksByGenre(ctx context.Context, genre string) ([]response.BookResponse, error)
	GetGenres(ctx context.Context) ([]response.GenreResponse, error)

	// Admin endpoints
	CreateBook(ctx context.Context, req *request.BookRequest) (*response.BookResponse, error)
	UpdateBook(ctx context.Context, id int64, req *request.BookRequest) (*response.BookResponse, error)
	DeleteBook(ctx context.Context, id int64) error
}

type bookService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewBookService(repo *repository.Repository, log *zap.Logger) BookService {
	return &bookService{
		repo: repo,
		log:  log.With(zap.String("service", "book")),
	}
}

func (s *bookService) GetBooks(ctx context.Context) ([]response.BookResponse, error) {
	books, err := s.repo.Book.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get books: %w", err)
	}

	return response.BooksToResponse(books), nil
}

// GetBooksByGenre matches genre exactly, case included.
func (s *bookService) GetBooksByGenre(ctx context.Context, genre string) ([]response.BookResponse, error) {
	if genre == "" {
		return nil, ErrGenreRequired
	}

	books, err := s.repo.Book.FindByGenre(ctx, genre)
	if err != nil {
		return nil, fmt.Errorf("get books by genre: %w", err)
	}

	s.log.Debug("Books filtered by genre", zap.String("genre", genre), zap.Int("count", len(books)))
	return response.BooksToResponse(books), nil
}

func (s *bookService) GetGenres(ctx context.Context) ([]response.GenreResponse, error) {
	genres, err := s.repo.Genre.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}

	out := make([]response.GenreResponse, 0, len(genres))
	for _, g := range genres {
		out = append(out, response.GenreResponse{Name: g.Name, BookCount: g.BookCount})
	}
	return out, nil
}

func (s *bookService) CreateBook(ctx context.Context, req *request.BookRequest) (*response.BookResponse, error) {
	if err := validateRequest(req); err != nil {
		s.log.Warn("Create book validation failed", zap.Error(err))
		return nil, err
	}

	book := &entity.Book{
		Title:  strings.TrimSpace(req.Title),
		Author: strings.TrimSpace(req.Author),
		Genre:  strings.TrimSpace(req.Genre),
	}

	if err := s.repo.Book.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.log.Info("Book created", zap.Int64("book_id", book.ID), zap.String("title", book.Title))

	resp := response.BookToResponse(book)
	return &resp, nil
}

func (s *bookService) UpdateBook(ctx context.Context, id int64, req *request.BookRequest) (*response.BookResponse, error) {
	if err := validateRequest(req); err != nil {
		s.log.Warn("Update book validation failed", zap.Error(err))
		return nil, err
	}

	book := &entity.Book{
		BaseNoDelete: entity.BaseNoDelete{ID: id},
		Title:        strings.TrimSpace(req.Title),
		Author:       strings.TrimSpace(req.Author),
		Genre:        strings.TrimSpace(req.Genre),
	}

	if err := s.repo.Book.Update(ctx, book); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.log.Info("Book updated", zap.Int64("book_id", id))

	resp := response.BookToResponse(book)
	return &resp, nil
}

func (s *bookService) DeleteBook(ctx context.Context, id int64) error {
	if err := s.repo.Book.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

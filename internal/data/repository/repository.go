package repository

import (
	"book-recommendation/pkg/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Repository struct {
	User    UserRepository
	Session SessionRepository
	OTP     OTPRepository
	Book    BookRepository
	Genre   GenreRepository
	Review  ReviewRepository
}

func NewRepository(db database.PgxIface, rdb *redis.Client, log *zap.Logger) *Repository {
	return &Repository{
		User:    NewUserRepository(db, log),
		Session: NewSessionRepository(db, log),
		OTP:     NewOTPRepository(rdb, log),
		Book:    NewBookRepository(db, log),
		Genre:   NewGenreRepository(db, log),
		Review:  NewReviewRepository(db, log),
	}
}

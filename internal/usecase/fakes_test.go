package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"book-recommendation/internal/data/entity"
	"book-recommendation/internal/data/repository"
)

var errStore = errors.New("store unavailable")

// memCatalog backs the book, genre and review repositories with maps.
type memCatalog struct {
	mu      sync.Mutex
	books   map[int64]*entity.Book
	reviews map[[2]int64]int // (user, book) -> rating
	nextID  int64

	failRatings bool
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		books:   make(map[int64]*entity.Book),
		reviews: make(map[[2]int64]int),
	}
}

func (c *memCatalog) addBook(id int64, title, genre string) {
	c.books[id] = &entity.Book{BaseNoDelete: entity.BaseNoDelete{ID: id}, Title: title, Author: "author", Genre: genre}
}

func (c *memCatalog) rate(userID, bookID int64, rating int) {
	c.reviews[[2]int64{userID, bookID}] = rating
}

// genre repository

type memGenres struct{ *memCatalog }

func (g memGenres) FindByBookID(_ context.Context, bookID int64) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.books[bookID]
	if !ok {
		return "", false, nil
	}
	return b.Genre, true, nil
}

func (g memGenres) FindAll(_ context.Context) ([]entity.Genre, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range g.books {
		counts[b.Genre]++
	}
	out := make([]entity.Genre, 0, len(counts))
	for name, n := range counts {
		out = append(out, entity.Genre{Name: name, BookCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// review repository

type memReviews struct{ *memCatalog }

func (m memReviews) Create(_ context.Context, review *entity.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[review.BookID]; !ok {
		return repository.ErrReferenceMissing
	}
	key := [2]int64{review.AccountUserID, review.BookID}
	if _, ok := m.reviews[key]; ok {
		return repository.ErrConflict
	}
	m.nextID++
	review.ID = m.nextID
	m.reviews[key] = review.Rating
	return nil
}

func (m memReviews) UpdateRating(_ context.Context, userID, bookID int64, rating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{userID, bookID}
	if _, ok := m.reviews[key]; !ok {
		return repository.ErrNotFound
	}
	m.reviews[key] = rating
	return nil
}

func (m memReviews) Delete(_ context.Context, userID, bookID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{userID, bookID}
	if _, ok := m.reviews[key]; !ok {
		return repository.ErrNotFound
	}
	delete(m.reviews, key)
	return nil
}

func (m memReviews) Exists(_ context.Context, userID, bookID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.reviews[[2]int64{userID, bookID}]
	return ok, nil
}

func (m memReviews) FindRatedBookIDs(_ context.Context, userID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRatings {
		return nil, errStore
	}
	var ids []int64
	for key := range m.reviews {
		if key[0] == userID {
			ids = append(ids, key[1])
		}
	}
	return ids, nil
}

func (m memReviews) FindGenreRatings(_ context.Context, genre string, excludeUserID int64) ([]entity.GenreRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.GenreRating
	for key, rating := range m.reviews {
		if key[0] == excludeUserID || m.books[key[1]].Genre != genre {
			continue
		}
		out = append(out, entity.GenreRating{UserID: key[0], BookID: key[1], Rating: rating})
	}
	return out, nil
}

func (m memReviews) FindRatingsByUsers(_ context.Context, userIDs []int64) ([]entity.TitledRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[int64]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	var out []entity.TitledRating
	for key, rating := range m.reviews {
		if wanted[key[0]] {
			out = append(out, entity.TitledRating{UserID: key[0], BookID: key[1], Title: m.books[key[1]].Title, Rating: rating})
		}
	}
	return out, nil
}

// book repository

type memBooks struct{ *memCatalog }

func (m memBooks) FindAll(_ context.Context) ([]*entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(*entity.Book) bool { return true }), nil
}

func (m memBooks) FindByGenre(_ context.Context, genre string) ([]*entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(b *entity.Book) bool { return b.Genre == genre }), nil
}

func (m memBooks) FindByID(_ context.Context, id int64) (*entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.books[id], nil
}

func (m memBooks) Create(_ context.Context, book *entity.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	book.ID = int64(len(m.books) + 1)
	m.books[book.ID] = book
	return nil
}

func (m memBooks) Update(_ context.Context, book *entity.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[book.ID]; !ok {
		return repository.ErrNotFound
	}
	m.books[book.ID] = book
	return nil
}

func (m memBooks) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.books, id)
	for key := range m.reviews {
		if key[1] == id {
			delete(m.reviews, key)
		}
	}
	return nil
}

func (m memBooks) sorted(keep func(*entity.Book) bool) []*entity.Book {
	var out []*entity.Book
	for _, b := range m.books {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// user and session repositories

type memUsers struct {
	mu     sync.Mutex
	users  map[int64]*entity.User
	nextID int64
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[int64]*entity.User)}
}

func (m *memUsers) add(u entity.User) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = &u
	return &u
}

func (m *memUsers) Create(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(user); err != nil {
		return err
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.Username == username })
}

func (m *memUsers) find(match func(*entity.User) bool) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.DeletedAt == nil && match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindAll(_ context.Context, filter repository.UserFilter, limit, offset int) ([]*entity.User, error) {
	all := m.filtered(filter)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memUsers) CountAll(_ context.Context, filter repository.UserFilter) (int64, error) {
	return int64(len(m.filtered(filter))), nil
}

func (m *memUsers) filtered(filter repository.UserFilter) []*entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.User
	for _, u := range m.users {
		if u.DeletedAt != nil {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		if s := strings.ToLower(filter.Search); s != "" &&
			!strings.Contains(strings.ToLower(u.Username), s) &&
			!strings.Contains(strings.ToLower(u.Email), s) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memUsers) Update(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := m.conflict(user); err != nil {
		return err
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

// conflict mirrors the unique indexes on live users. Callers hold mu.
func (m *memUsers) conflict(user *entity.User) error {
	for _, u := range m.users {
		if u.ID == user.ID || u.DeletedAt != nil {
			continue
		}
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailExists
		}
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}
	return nil
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	u.IsActive = false
	return nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]*entity.Session)}
}

func (m *memSessions) Create(_ context.Context, session *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	m.sessions[session.Token.String()] = &cp
	return nil
}

func (m *memSessions) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok || s.RevokedAt != nil || !s.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) Revoke(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok || s.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (m *memSessions) RevokeAllUserSessions(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, s := range m.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (m *memSessions) CleanExpiredSessions(_ context.Context) (int64, error) {
	return 0, nil
}

func (m *memSessions) active(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			n++
		}
	}
	return n
}

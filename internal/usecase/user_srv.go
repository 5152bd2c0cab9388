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
	"book-recommendation/pkg/utils"

	"go.uber.org/zap"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   int64
	Role entity.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

// canManage reports whether the actor may act on the user with id.
func (a Actor) canManage(id int64) bool {
	return a.ID > 0 && (a.ID == id || a.IsAdmin())
}

type UserService interface {
	GetAllUsers(ctx context.Context, actor Actor, req *request.UserListRequest) (*response.PaginatedResponse[response.UserResponse], error)
	GetUser(ctx context.Context, actor Actor, id int64) (*response.UserResponse, error)
	UpdateUser(ctx context.Context, actor Actor, id int64, req *request.UpdateUserRequest) (*response.UserResponse, error)
	ChangePassword(ctx context.Context, actor Actor, id int64, req *request.ChangePasswordRequest) error
	DeleteUser(ctx context.Context, actor Actor, id int64) error
}

type userService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	log         *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		log:         log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetAllUsers(ctx context.Context, actor Actor, req *request.UserListRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	if actor.ID < 1 {
		return nil, ErrNotAuthenticated
	}
	if err := us.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}

	// Set defaults
	if req.Page < 1 {
		req.Page = 1
	}
	req.PerPage = req.Limit()

	filter := repository.UserFilter{
		Search:   strings.TrimSpace(req.Search),
		IsActive: req.IsActive,
	}

	users, err := us.userRepo.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	total, err := us.userRepo.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	userResponses := make([]response.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = response.UserToResponse(user)
	}

	us.log.Info("Users retrieved",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("page_size", req.PerPage),
	)

	return response.NewPaginatedResponse(userResponses, req.Page, req.PerPage, total), nil
}

func (us *userService) GetUser(ctx context.Context, actor Actor, id int64) (*response.UserResponse, error) {
	user, err := us.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateUser(ctx context.Context, actor Actor, id int64, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := us.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var email, username string
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
	}
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
	}

	if err := checkAvailable(ctx, us.userRepo, user.ID, email, username); err != nil {
		return nil, err
	}

	if email != "" {
		user.Email = email
	}
	if username != "" {
		user.Username = username
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}

	if err := us.userRepo.Update(ctx, user); err != nil {
		return nil, us.mapWriteError(err)
	}

	us.log.Info("User updated", zap.Int64("user_id", user.ID), zap.Int64("actor_id", actor.ID))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) ChangePassword(ctx context.Context, actor Actor, id int64, req *request.ChangePasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	user, err := us.loadManaged(ctx, actor, id)
	if err != nil {
		return err
	}

	if !utils.CheckPasswordHash(req.OldPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	hashed, err := utils.HashPassword(req.NewPassword1)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hashed

	if err := us.userRepo.Update(ctx, user); err != nil {
		return us.mapWriteError(err)
	}

	if err := us.sessionRepo.RevokeAllUserSessions(ctx, user.ID); err != nil {
		return err
	}

	us.log.Info("Password changed", zap.Int64("user_id", user.ID), zap.Int64("actor_id", actor.ID))
	return nil
}

func (us *userService) DeleteUser(ctx context.Context, actor Actor, id int64) error {
	user, err := us.loadManaged(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := us.userRepo.Delete(ctx, user.ID); err != nil {
		return us.mapWriteError(err)
	}

	if err := us.sessionRepo.RevokeAllUserSessions(ctx, user.ID); err != nil {
		return err
	}

	us.log.Info("User deleted",
		zap.Int64("user_id", user.ID),
		zap.Int64("actor_id", actor.ID),
		zap.String("email", user.Email))
	return nil
}

// loadManaged checks ownership before existence so that a customer cannot
// probe which ids exist. Acting on someone else needs an admin role in the
// store, not just in the token.
func (us *userService) loadManaged(ctx context.Context, actor Actor, id int64) (*entity.User, error) {
	if actor.ID < 1 {
		return nil, ErrNotAuthenticated
	}
	if !actor.canManage(id) {
		return nil, ErrForbidden
	}
	if actor.ID != id {
		if err := us.requireAdmin(ctx, actor); err != nil {
			return nil, err
		}
	}

	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// requireAdmin re-reads the actor so a demoted or deleted admin is refused
// before the token expires.
func (us *userService) requireAdmin(ctx context.Context, actor Actor) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	stored, err := us.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if stored == nil || !stored.IsActive || stored.Role != entity.RoleAdmin {
		us.log.Warn("Stale admin token rejected", zap.Int64("actor_id", actor.ID))
		return ErrForbidden
	}
	return nil
}

func (us *userService) mapWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrEmailExists):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrConflict):
		return ErrUsernameTaken
	default:
		return err
	}
}

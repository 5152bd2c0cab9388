package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"book-recommendation/internal/data/entity"
	"book-recommendation/internal/data/repository"
	"book-recommendation/internal/dto/request"
	"book-recommendation/internal/dto/response"
	"book-recommendation/pkg/mailer"
	"book-recommendation/pkg/metrics"
	"book-recommendation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientMeta describes where a login came from.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.ChallengeResponse, error)
	VerifyRegistration(ctx context.Context, req *request.VerifyCodeRequest) (*response.UserResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.ChallengeResponse, error)
	VerifyLogin(ctx context.Context, req *request.VerifyCodeRequest, meta ClientMeta) (*response.TokenResponse, error)
	RefreshToken(ctx context.Context, req *request.RefreshTokenRequest) (*response.TokenResponse, error)
	VerifyToken(ctx context.Context, req *request.VerifyTokenRequest) error
	// Logout revokes every refresh session of the user.
	Logout(ctx context.Context, userID int64) error
}

type authService struct {
	repo   *repository.Repository // grouping userRepo, sessionRepo, & otpRepo
	config *utils.Config
	tokens *utils.TokenManager
	mail   mailer.Sender
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	tokens *utils.TokenManager,
	mail mailer.Sender,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		tokens: tokens,
		mail:   mail,
		log:    log.With(zap.String("service", "auth")),
		now:    time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.ChallengeResponse, error) {
	// 1. Validate input
	if err := validateRequest(req); err != nil {
		s.log.Warn("Register validation failed", zap.Error(err))
		return nil, err
	}

	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	// 2. Email and username must be free
	if err := s.ensureAvailable(ctx, 0, email, username); err != nil {
		return nil, err
	}

	// 3. Park the registration until the code is confirmed
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	pending := &entity.PendingRegistration{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Phone:        req.Phone,
	}
	if err := s.repo.OTP.SavePendingRegistration(ctx, pending, s.otpTTL()); err != nil {
		return nil, err
	}

	// 4. Send the code
	return s.issueChallenge(ctx, entity.OTPPurposeRegister, email)
}

func (s *authService) VerifyRegistration(ctx context.Context, req *request.VerifyCodeRequest) (*response.UserResponse, error) {
	if err := validateRequest(req); err != nil {
		s.log.Warn("Verify registration validation failed", zap.Error(err))
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if err := s.verifyChallenge(ctx, entity.OTPPurposeRegister, req.ChallengeID, email, req.Code); err != nil {
		return nil, err
	}

	pending, err := s.repo.OTP.FindPendingRegistration(ctx, email)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, ErrInvalidCode
	}

	user := &entity.User{
		Username:     pending.Username,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Phone:        pending.Phone,
		Role:         entity.RoleCustomer,
		IsActive:     true,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		// someone took the email or username while the code was in flight
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.repo.OTP.DeletePendingRegistration(ctx, email); err != nil {
		s.log.Warn("Failed to drop pending registration", zap.Error(err), zap.Int64("user_id", user.ID))
	}

	s.log.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.ChallengeResponse, error) {
	// 1. Validate
	if err := validateRequest(req); err != nil {
		s.log.Warn("Login validation failed", zap.Error(err))
		return nil, err
	}

	// 2. Check credentials
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// 3. Send the second factor
	return s.issueChallenge(ctx, entity.OTPPurposeLogin, user.Email)
}

func (s *authService) VerifyLogin(ctx context.Context, req *request.VerifyCodeRequest, meta ClientMeta) (*response.TokenResponse, error) {
	if err := validateRequest(req); err != nil {
		s.log.Warn("Verify login validation failed", zap.Error(err))
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if err := s.verifyChallenge(ctx, entity.OTPPurposeLogin, req.ChallengeID, email, req.Code); err != nil {
		return nil, err
	}

	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	session, err := s.createSession(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}

	resp, err := s.issueAccessToken(user)
	if err != nil {
		return nil, err
	}
	resp.RefreshToken = session.Token.String()

	s.log.Info("User logged in",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))

	return resp, nil
}

func (s *authService) RefreshToken(ctx context.Context, req *request.RefreshTokenRequest) (*response.TokenResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	session, err := s.repo.Session.FindValidSession(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.repo.User.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidRefreshToken
	}

	resp, err := s.issueAccessToken(user)
	if err != nil {
		return nil, err
	}
	resp.User = nil

	return resp, nil
}

func (s *authService) VerifyToken(_ context.Context, req *request.VerifyTokenRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	if _, err := s.tokens.ParseAccessToken(req.Token); err != nil {
		return withKind(errors.New("Invalid or expired token"), ErrNotAuthenticated)
	}
	return nil
}

func (s *authService) Logout(ctx context.Context, userID int64) error {
	if userID < 1 {
		return ErrNotAuthenticated
	}

	if err := s.repo.Session.RevokeAllUserSessions(ctx, userID); err != nil {
		return err
	}

	s.log.Info("User logged out", zap.Int64("user_id", userID))
	return nil
}

// ==================== HELPER METHODS ====================

// authenticate returns the same error for an unknown email and a wrong password.
func (s *authService) authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := s.repo.User.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.Int64("user_id", user.ID))
		return nil, ErrInactiveUser
	}
	return user, nil
}

// ensureAvailable checks email and username against every user except selfID.
func (s *authService) ensureAvailable(ctx context.Context, selfID int64, email, username string) error {
	return checkAvailable(ctx, s.repo.User, selfID, email, username)
}

func checkAvailable(ctx context.Context, users repository.UserRepository, selfID int64, email, username string) error {
	if email != "" {
		existing, err := users.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return ErrEmailTaken
		}
	}

	if username != "" {
		existing, err := users.FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			return ErrUsernameTaken
		}
	}

	return nil
}

func (s *authService) issueChallenge(ctx context.Context, purpose entity.OTPPurpose, email string) (*response.ChallengeResponse, error) {
	resendWindow := time.Duration(s.config.OTP.ResendSeconds) * time.Second

	ok, err := s.repo.OTP.AcquireResendSlot(ctx, purpose, email, resendWindow)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCodeRateLimited
	}

	code, err := utils.GenerateOTP(s.config.OTP.Length)
	if err != nil {
		_ = s.repo.OTP.ReleaseResendSlot(ctx, purpose, email)
		return nil, err
	}

	codeHash, err := utils.HashPassword(code)
	if err != nil {
		_ = s.repo.OTP.ReleaseResendSlot(ctx, purpose, email)
		return nil, fmt.Errorf("hash otp: %w", err)
	}

	ttl := s.otpTTL()
	challenge := &entity.OTPChallenge{
		ID:          uuid.NewString(),
		Email:       email,
		Purpose:     purpose,
		CodeHash:    codeHash,
		ExpiresAt:   s.now().Add(ttl),
		MaxAttempts: s.config.OTP.MaxAttempts,
	}

	if err := s.repo.OTP.SaveChallenge(ctx, challenge, ttl); err != nil {
		_ = s.repo.OTP.ReleaseResendSlot(ctx, purpose, email)
		return nil, err
	}

	subject, body := otpMessage(purpose, code, ttl)
	err = s.mail.Send(ctx, email, subject, body)
	metrics.RecordOTPEmail(string(purpose), err)
	if err != nil {
		_ = s.repo.OTP.DeleteChallenge(ctx, challenge.ID)
		_ = s.repo.OTP.ReleaseResendSlot(ctx, purpose, email)
		return nil, fmt.Errorf("send %s code: %w", purpose, err)
	}

	s.log.Info("One-time code sent",
		zap.String("purpose", string(purpose)),
		zap.String("challenge_id", challenge.ID))

	return &response.ChallengeResponse{
		Message:     response.MsgCodeSent,
		ChallengeID: challenge.ID,
		ExpiresIn:   int(ttl.Seconds()),
		ResendIn:    s.config.OTP.ResendSeconds,
	}, nil
}

// verifyChallenge consumes the challenge on success. Every submission burns
// one attempt before the code is compared; once attempts run out the
// challenge is dropped.
func (s *authService) verifyChallenge(ctx context.Context, purpose entity.OTPPurpose, id, email, code string) error {
	challenge, err := s.repo.OTP.FindChallenge(ctx, id)
	if err != nil {
		return err
	}
	if challenge == nil || challenge.Purpose != purpose || challenge.Email != email {
		return ErrInvalidCode
	}
	if !s.now().Before(challenge.ExpiresAt) {
		_ = s.repo.OTP.DeleteChallenge(ctx, id)
		return ErrInvalidCode
	}

	attempt, err := s.repo.OTP.RegisterAttempt(ctx, id)
	if err != nil {
		return err
	}
	if attempt == 0 {
		return ErrInvalidCode
	}
	if attempt > challenge.MaxAttempts {
		_ = s.repo.OTP.DeleteChallenge(ctx, id)
		return ErrInvalidCode
	}

	if !utils.CheckPasswordHash(code, challenge.CodeHash) {
		if attempt >= challenge.MaxAttempts {
			_ = s.repo.OTP.DeleteChallenge(ctx, id)
		}
		s.log.Warn("Wrong one-time code",
			zap.String("challenge_id", id),
			zap.Int("attempts", attempt))
		return ErrInvalidCode
	}

	consumed, err := s.repo.OTP.ConsumeChallenge(ctx, id)
	if err != nil {
		return err
	}
	if !consumed {
		return ErrInvalidCode
	}
	return nil
}

func (s *authService) createSession(ctx context.Context, userID int64, meta ClientMeta) (*entity.Session, error) {
	now := s.now()
	session := &entity.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     uuid.New(),
		UserAgent: optional(meta.UserAgent),
		IPAddress: optional(meta.IPAddress),
		ExpiresAt: now.Add(s.config.JWT.RefreshTTL),
		CreatedAt: now,
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *authService) issueAccessToken(user *entity.User) (*response.TokenResponse, error) {
	token, expiresAt, err := s.tokens.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	u := response.UserToResponse(user)
	return &response.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        &u,
	}, nil
}

func (s *authService) otpTTL() time.Duration {
	minutes := s.config.OTP.ExpiryMinutes
	if minutes <= 0 {
		minutes = 2
	}
	return time.Duration(minutes) * time.Minute
}

func otpMessage(purpose entity.OTPPurpose, code string, ttl time.Duration) (string, string) {
	subject := "Your login code"
	if purpose == entity.OTPPurposeRegister {
		subject = "Confirm your registration"
	}
	body := fmt.Sprintf("Your code is %s. It expires in %d minutes.", code, int(ttl.Minutes()))
	return subject, body
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

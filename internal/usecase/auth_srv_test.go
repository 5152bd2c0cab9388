package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"book-recommendation/internal/data/entity"
	"book-recommendation/internal/data/repository"
	"book-recommendation/internal/dto/request"
	"book-recommendation/pkg/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
	fail  error
}

func (m *captureMailer) Send(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	// "Your code is 123456. It expires in ..."
	fields := strings.Fields(body)
	m.codes[to] = strings.TrimSuffix(fields[3], ".")
	return nil
}

func (m *captureMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type authFixture struct {
	svc      AuthService
	users    *memUsers
	sessions *memSessions
	mail     *captureMailer
	redis    *miniredis.Miniredis
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := zap.NewNop()
	users := newMemUsers()
	sessions := newMemSessions()
	mail := &captureMailer{codes: make(map[string]string)}

	config := &utils.Config{
		JWT: utils.JWTConfig{Secret: "secret", Issuer: "test", AccessTTL: time.Minute, RefreshTTL: time.Hour},
		OTP: utils.OTPConfig{ExpiryMinutes: 2, Length: 6, MaxAttempts: 3, ResendSeconds: 60},
	}
	repo := &repository.Repository{
		User:    users,
		Session: sessions,
		OTP:     repository.NewOTPRepository(rdb, log),
	}

	return &authFixture{
		svc:      NewAuthService(repo, config, utils.NewTokenManager(config.JWT), mail, log),
		users:    users,
		sessions: sessions,
		mail:     mail,
		redis:    mr,
	}
}

func registerReq(username, email string) *request.RegisterRequest {
	return &request.RegisterRequest{Username: username, Email: email, Password: "password123", Password2: "password123"}
}

func TestRegisterAndVerify(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	challenge, err := f.svc.Register(ctx, registerReq("reader", "Reader@Example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if challenge.ChallengeID == "" || challenge.ExpiresIn != 120 {
		t.Fatalf("unexpected challenge %+v", challenge)
	}

	code := f.mail.code("reader@example.com")
	if len(code) != 6 {
		t.Fatalf("expected a 6 digit code, got %q", code)
	}

	wrong := &request.VerifyCodeRequest{ChallengeID: challenge.ChallengeID, Email: "reader@example.com", Code: "000000"}
	if code == "000000" {
		wrong.Code = "111111"
	}
	if _, err := f.svc.VerifyRegistration(ctx, wrong); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	user, err := f.svc.VerifyRegistration(ctx, &request.VerifyCodeRequest{
		ChallengeID: challenge.ChallengeID, Email: "reader@example.com", Code: code,
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.Email != "reader@example.com" || user.Role != entity.RoleCustomer || !user.IsActive {
		t.Fatalf("unexpected user %+v", user)
	}

	// challenge is single use
	if _, err := f.svc.VerifyRegistration(ctx, &request.VerifyCodeRequest{
		ChallengeID: challenge.ChallengeID, Email: "reader@example.com", Code: code,
	}); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected reused challenge to fail, got %v", err)
	}

	if _, err := f.svc.Register(ctx, registerReq("other", "reader@example.com")); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := f.svc.Register(ctx, registerReq("reader", "new@example.com")); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterResendCooldown(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	if _, err := f.svc.Register(ctx, registerReq("reader", "reader@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.svc.Register(ctx, registerReq("reader", "reader@example.com")); !errors.Is(err, ErrCodeRateLimited) {
		t.Fatalf("expected ErrCodeRateLimited, got %v", err)
	}

	f.redis.FastForward(61 * time.Second)
	if _, err := f.svc.Register(ctx, registerReq("reader", "reader@example.com")); err != nil {
		t.Fatalf("register after cooldown: %v", err)
	}
}

func TestRegisterMailFailureReleasesCooldown(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.mail.fail = errors.New("smtp down")

	if _, err := f.svc.Register(ctx, registerReq("reader", "reader@example.com")); err == nil {
		t.Fatalf("expected mail failure")
	}

	f.mail.fail = nil
	if _, err := f.svc.Register(ctx, registerReq("reader", "reader@example.com")); err != nil {
		t.Fatalf("expected retry to be allowed, got %v", err)
	}
}

func TestVerifyRegistrationUsernameTakenMeanwhile(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	challenge, err := f.svc.Register(ctx, registerReq("reader", "reader@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	f.users.add(entity.User{Username: "reader", Email: "someone@example.com", Role: entity.RoleCustomer, IsActive: true})

	if _, err := f.svc.VerifyRegistration(ctx, &request.VerifyCodeRequest{
		ChallengeID: challenge.ChallengeID, Email: "reader@example.com", Code: f.mail.code("reader@example.com"),
	}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestVerifyAttemptsExhausted(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	challenge, err := f.svc.Register(ctx, registerReq("reader", "reader@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	code := f.mail.code("reader@example.com")
	wrongCode := "999999"
	if code == wrongCode {
		wrongCode = "888888"
	}

	for i := 0; i < 3; i++ {
		_, err := f.svc.VerifyRegistration(ctx, &request.VerifyCodeRequest{
			ChallengeID: challenge.ChallengeID, Email: "reader@example.com", Code: wrongCode,
		})
		if !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("attempt %d: expected ErrInvalidCode, got %v", i, err)
		}
	}

	if _, err := f.svc.VerifyRegistration(ctx, &request.VerifyCodeRequest{
		ChallengeID: challenge.ChallengeID, Email: "reader@example.com", Code: code,
	}); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected challenge to be burnt, got %v", err)
	}
}

func TestVerifyAttemptsUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	challenge, err := f.svc.Register(ctx, registerReq("reader", "reader@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	code := f.mail.code("reader@example.com")
	wrongCode := "999999"
	if code == wrongCode {
		wrongCode = "888888"
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.VerifyRegistration(ctx, &request.VerifyCodeRequest{
				ChallengeID: challenge.ChallengeID, Email: "reader@example.com", Code: wrongCode,
			})
		}()
	}
	wg.Wait()

	if _, err := f.svc.VerifyRegistration(ctx, &request.VerifyCodeRequest{
		ChallengeID: challenge.ChallengeID, Email: "reader@example.com", Code: code,
	}); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected challenge to be burnt after parallel guesses, got %v", err)
	}
}

func TestVerifyCodeIsSingleUseUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	f.users.add(entity.User{Username: "reader", Email: "reader@example.com", PasswordHash: hash, Role: entity.RoleCustomer, IsActive: true})

	challenge, err := f.svc.Login(ctx, &request.LoginRequest{Email: "reader@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	code := f.mail.code("reader@example.com")

	const workers = 3
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.VerifyLogin(ctx, &request.VerifyCodeRequest{
				ChallengeID: challenge.ChallengeID, Email: "reader@example.com", Code: code,
			}, ClientMeta{})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, ErrInvalidCode):
			t.Fatalf("unexpected error %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one verification to succeed, got %d", succeeded)
	}
}

func TestLoginFlow(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := f.users.add(entity.User{Username: "reader", Email: "reader@example.com", PasswordHash: hash, Role: entity.RoleCustomer, IsActive: true})
	f.users.add(entity.User{Username: "gone", Email: "gone@example.com", PasswordHash: hash, Role: entity.RoleCustomer})

	if _, err := f.svc.Login(ctx, &request.LoginRequest{Email: "reader@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.svc.Login(ctx, &request.LoginRequest{Email: "nobody@example.com", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, err := f.svc.Login(ctx, &request.LoginRequest{Email: "gone@example.com", Password: "password123"}); !errors.Is(err, ErrInactiveUser) {
		t.Fatalf("expected ErrInactiveUser, got %v", err)
	}

	challenge, err := f.svc.Login(ctx, &request.LoginRequest{Email: "reader@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	tokens, err := f.svc.VerifyLogin(ctx, &request.VerifyCodeRequest{
		ChallengeID: challenge.ChallengeID, Email: "reader@example.com", Code: f.mail.code("reader@example.com"),
	}, ClientMeta{UserAgent: "go-test", IPAddress: "127.0.0.1"})
	if err != nil {
		t.Fatalf("verify login: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" || tokens.User == nil || tokens.User.ID != user.ID {
		t.Fatalf("unexpected tokens %+v", tokens)
	}

	if err := f.svc.VerifyToken(ctx, &request.VerifyTokenRequest{Token: tokens.AccessToken}); err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if err := f.svc.VerifyToken(ctx, &request.VerifyTokenRequest{Token: "garbage"}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	refreshed, err := f.svc.RefreshToken(ctx, &request.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == "" || refreshed.RefreshToken != "" {
		t.Fatalf("unexpected refresh response %+v", refreshed)
	}

	if err := f.svc.Logout(ctx, user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if f.sessions.active(user.ID) != 0 {
		t.Fatalf("expected all sessions revoked")
	}
	if _, err := f.svc.RefreshToken(ctx, &request.RefreshTokenRequest{RefreshToken: tokens.RefreshToken}); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken after logout, got %v", err)
	}
}

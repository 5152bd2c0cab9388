package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"book-recommendation/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const otpKeyPrefix = "bookrec:otp"

// OTPRepository keeps short-lived one-time-code state in Redis.
type OTPRepository interface {
	// AcquireResendSlot returns false while a previous code for the same
	// purpose and email is still inside its resend window.
	AcquireResendSlot(ctx context.Context, purpose entity.OTPPurpose, email string, window time.Duration) (bool, error)
	ReleaseResendSlot(ctx context.Context, purpose entity.OTPPurpose, email string) error

	SaveChallenge(ctx context.Context, challenge *entity.OTPChallenge, ttl time.Duration) error
	FindChallenge(ctx context.Context, id string) (*entity.OTPChallenge, error)
	// RegisterAttempt atomically counts one verification attempt and returns
	// the new count, or 0 when the challenge no longer exists.
	RegisterAttempt(ctx context.Context, id string) (int, error)
	// ConsumeChallenge deletes the challenge and reports whether this call
	// was the one that removed it.
	ConsumeChallenge(ctx context.Context, id string) (bool, error)
	DeleteChallenge(ctx context.Context, id string) error

	SavePendingRegistration(ctx context.Context, reg *entity.PendingRegistration, ttl time.Duration) error
	FindPendingRegistration(ctx context.Context, email string) (*entity.PendingRegistration, error)
	DeletePendingRegistration(ctx context.Context, email string) error
}

type otpRepository struct {
	client *redis.Client
	log    *zap.Logger
}

func NewOTPRepository(client *redis.Client, log *zap.Logger) OTPRepository {
	return &otpRepository{
		client: client,
		log:    log.With(zap.String("repository", "otp")),
	}
}

func (r *otpRepository) AcquireResendSlot(ctx context.Context, purpose entity.OTPPurpose, email string, window time.Duration) (bool, error) {
	if window <= 0 {
		return true, nil
	}

	ok, err := r.client.SetNX(ctx, resendKey(purpose, email), "1", window).Result()
	if err != nil {
		r.log.Error("Failed to acquire resend slot", zap.Error(err), zap.String("purpose", string(purpose)))
		return false, fmt.Errorf("acquire resend slot: %w", err)
	}

	return ok, nil
}

func (r *otpRepository) ReleaseResendSlot(ctx context.Context, purpose entity.OTPPurpose, email string) error {
	if err := r.client.Del(ctx, resendKey(purpose, email)).Err(); err != nil {
		return fmt.Errorf("release resend slot: %w", err)
	}
	return nil
}

func (r *otpRepository) SaveChallenge(ctx context.Context, challenge *entity.OTPChallenge, ttl time.Duration) error {
	raw, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("marshal otp challenge: %w", err)
	}

	if err := r.client.Set(ctx, challengeKey(challenge.ID), raw, ttl).Err(); err != nil {
		r.log.Error("Failed to save otp challenge", zap.Error(err), zap.String("challenge_id", challenge.ID))
		return fmt.Errorf("save otp challenge %s: %w", challenge.ID, err)
	}

	return nil
}

func (r *otpRepository) FindChallenge(ctx context.Context, id string) (*entity.OTPChallenge, error) {
	raw, err := r.client.Get(ctx, challengeKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to load otp challenge", zap.Error(err), zap.String("challenge_id", id))
		return nil, fmt.Errorf("load otp challenge %s: %w", id, err)
	}

	var challenge entity.OTPChallenge
	if err := json.Unmarshal(raw, &challenge); err != nil {
		return nil, fmt.Errorf("unmarshal otp challenge %s: %w", id, err)
	}

	return &challenge, nil
}

// registerAttempt counts against the challenge key's remaining TTL so the
// counter never outlives the challenge.
var registerAttempt = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
local n = redis.call("INCR", KEYS[2])
if n == 1 then
	local ttl = redis.call("PTTL", KEYS[1])
	if ttl > 0 then
		redis.call("PEXPIRE", KEYS[2], ttl)
	end
end
return n
`)

func (r *otpRepository) RegisterAttempt(ctx context.Context, id string) (int, error) {
	n, err := registerAttempt.Run(ctx, r.client, []string{challengeKey(id), attemptsKey(id)}).Int()
	if err != nil {
		r.log.Error("Failed to count otp attempt", zap.Error(err), zap.String("challenge_id", id))
		return 0, fmt.Errorf("count otp attempt %s: %w", id, err)
	}
	return n, nil
}

func (r *otpRepository) ConsumeChallenge(ctx context.Context, id string) (bool, error) {
	removed, err := r.client.Del(ctx, challengeKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("consume otp challenge %s: %w", id, err)
	}
	_ = r.client.Del(ctx, attemptsKey(id)).Err()
	return removed == 1, nil
}

func (r *otpRepository) DeleteChallenge(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, challengeKey(id), attemptsKey(id)).Err(); err != nil {
		return fmt.Errorf("delete otp challenge %s: %w", id, err)
	}
	return nil
}

func (r *otpRepository) SavePendingRegistration(ctx context.Context, reg *entity.PendingRegistration, ttl time.Duration) error {
	raw, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("marshal pending registration: %w", err)
	}

	if err := r.client.Set(ctx, pendingKey(reg.Email), raw, ttl).Err(); err != nil {
		r.log.Error("Failed to save pending registration", zap.Error(err))
		return fmt.Errorf("save pending registration: %w", err)
	}

	return nil
}

func (r *otpRepository) FindPendingRegistration(ctx context.Context, email string) (*entity.PendingRegistration, error) {
	raw, err := r.client.Get(ctx, pendingKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to load pending registration", zap.Error(err))
		return nil, fmt.Errorf("load pending registration: %w", err)
	}

	var reg entity.PendingRegistration
	if err := json.Unmarshal(raw, &reg); err != nil {
		return nil, fmt.Errorf("unmarshal pending registration: %w", err)
	}

	return &reg, nil
}

func (r *otpRepository) DeletePendingRegistration(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, pendingKey(email)).Err(); err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}
	return nil
}

func challengeKey(id string) string {
	return fmt.Sprintf("%s:challenge:%s", otpKeyPrefix, id)
}

func attemptsKey(id string) string {
	return challengeKey(id) + ":attempts"
}

func resendKey(purpose entity.OTPPurpose, email string) string {
	return fmt.Sprintf("%s:resend:%s:%s", otpKeyPrefix, purpose, normalizeEmail(email))
}

func pendingKey(email string) string {
	return fmt.Sprintf("%s:pending:%s", otpKeyPrefix, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

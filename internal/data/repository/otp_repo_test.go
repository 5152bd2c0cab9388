package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"book-recommendation/internal/data/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newTestOTPRepo(t *testing.T) (OTPRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewOTPRepository(rdb, zap.NewNop()), mr
}

func TestOTPChallengeLifecycle(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestOTPRepo(t)

	challenge := &entity.OTPChallenge{
		ID:          "c-1",
		Email:       "reader@example.com",
		Purpose:     entity.OTPPurposeLogin,
		CodeHash:    "hash",
		ExpiresAt:   time.Now().Add(2 * time.Minute),
		MaxAttempts: 3,
	}
	if err := repo.SaveChallenge(ctx, challenge, 2*time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.FindChallenge(ctx, "c-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || got.Email != challenge.Email || got.MaxAttempts != 3 {
		t.Fatalf("unexpected challenge %+v", got)
	}

	mr.FastForward(30 * time.Second)

	for want := 1; want <= 2; want++ {
		n, err := repo.RegisterAttempt(ctx, "c-1")
		if err != nil || n != want {
			t.Fatalf("attempt %d: got %d (%v)", want, n, err)
		}
	}
	if ttl := mr.TTL(attemptsKey("c-1")); ttl <= 0 || ttl > 90*time.Second {
		t.Fatalf("expected the counter to share the challenge ttl, got %v", ttl)
	}

	consumed, err := repo.ConsumeChallenge(ctx, "c-1")
	if err != nil || !consumed {
		t.Fatalf("first consume: %v %v", consumed, err)
	}
	consumed, err = repo.ConsumeChallenge(ctx, "c-1")
	if err != nil || consumed {
		t.Fatalf("second consume must report nothing removed: %v %v", consumed, err)
	}
	if mr.Exists(attemptsKey("c-1")) {
		t.Fatalf("attempt counter left behind")
	}
	if got, err := repo.FindChallenge(ctx, "c-1"); err != nil || got != nil {
		t.Fatalf("expected nil after consume, got %+v (%v)", got, err)
	}
}

func TestRegisterAttemptOnMissingChallenge(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestOTPRepo(t)

	challenge := &entity.OTPChallenge{ID: "c-2", Email: "a@b.io", Purpose: entity.OTPPurposeRegister}
	if err := repo.SaveChallenge(ctx, challenge, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	n, err := repo.RegisterAttempt(ctx, "c-2")
	if err != nil || n != 0 {
		t.Fatalf("expected 0 for an expired challenge, got %d (%v)", n, err)
	}
	if mr.Exists(attemptsKey("c-2")) {
		t.Fatalf("counter created for a missing challenge")
	}
}

func TestRegisterAttemptIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestOTPRepo(t)

	challenge := &entity.OTPChallenge{ID: "c-3", Email: "a@b.io", Purpose: entity.OTPPurposeLogin}
	if err := repo.SaveChallenge(ctx, challenge, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	const workers = 20
	seen := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.RegisterAttempt(ctx, "c-3")
			if err != nil {
				t.Errorf("register attempt: %v", err)
			}
			seen <- n
		}()
	}
	wg.Wait()
	close(seen)

	counts := make(map[int]bool)
	for n := range seen {
		if counts[n] {
			t.Fatalf("attempt number %d handed out twice", n)
		}
		counts[n] = true
	}
	if len(counts) != workers {
		t.Fatalf("expected %d distinct attempt numbers, got %d", workers, len(counts))
	}
}

func TestResendSlot(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestOTPRepo(t)

	ok, err := repo.AcquireResendSlot(ctx, entity.OTPPurposeLogin, "Reader@Example.com", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	// emails are normalised and purposes are separate
	ok, _ = repo.AcquireResendSlot(ctx, entity.OTPPurposeLogin, "reader@example.com", time.Minute)
	if ok {
		t.Fatalf("expected slot to be taken")
	}
	ok, _ = repo.AcquireResendSlot(ctx, entity.OTPPurposeRegister, "reader@example.com", time.Minute)
	if !ok {
		t.Fatalf("expected a separate slot per purpose")
	}

	mr.FastForward(time.Minute + time.Second)
	ok, _ = repo.AcquireResendSlot(ctx, entity.OTPPurposeLogin, "reader@example.com", time.Minute)
	if !ok {
		t.Fatalf("expected slot after the window")
	}

	if err := repo.ReleaseResendSlot(ctx, entity.OTPPurposeLogin, "reader@example.com"); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, _ = repo.AcquireResendSlot(ctx, entity.OTPPurposeLogin, "reader@example.com", time.Minute)
	if !ok {
		t.Fatalf("expected slot after release")
	}
}

func TestPendingRegistration(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestOTPRepo(t)

	phone := "0812345678"
	reg := &entity.PendingRegistration{Username: "reader", Email: "reader@example.com", PasswordHash: "h", Phone: &phone}
	if err := repo.SavePendingRegistration(ctx, reg, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.FindPendingRegistration(ctx, "READER@example.com")
	if err != nil || got == nil || got.Username != "reader" || got.Phone == nil || *got.Phone != phone {
		t.Fatalf("unexpected pending registration %+v (%v)", got, err)
	}

	mr.FastForward(2 * time.Minute)
	if got, err := repo.FindPendingRegistration(ctx, "reader@example.com"); err != nil || got != nil {
		t.Fatalf("expected expiry, got %+v (%v)", got, err)
	}
}

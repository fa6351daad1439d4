package fetch

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_AllowsBurstWithinBudget(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		waited, err := rl.Wait(context.Background())
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
		if waited != 0 {
			t.Errorf("request %d waited %s, want no wait", i, waited)
		}
	}
	if got := rl.CurrentRate(); got != 3 {
		t.Errorf("CurrentRate = %d, want 3", got)
	}
}

func TestRateLimiter_BlocksWhenExhausted(t *testing.T) {
	rl := NewRateLimiter(2, 100*time.Millisecond)
	for i := 0; i < 2; i++ {
		if _, err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}

	start := time.Now()
	waited, err := rl.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if waited <= 0 {
		t.Error("expected a reported wait once budget is exhausted")
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("third request returned after %s, expected it to block", elapsed)
	}
}

func TestRateLimiter_CanceledContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	if _, err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rl.Wait(ctx); err == nil {
		t.Error("expected context error while blocked")
	}
}

func TestRateLimiter_ZeroConfigDefaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	if _, err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute, HalfOpenMaxReq: 1})

	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		if err := b.Do(func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: err = %v, want boom", i, err)
		}
	}

	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("state = %s, want open", got)
	}

	called := false
	err := b.Do(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Fatal("fn must not run while the breaker is open")
	}
}

func TestCircuitBreakerRecoversThroughHalfOpen(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second, HalfOpenMaxReq: 1})

	current := time.Unix(1700000000, 0)
	b.now = func() time.Time { return current }

	if err := b.Do(func() error { return errors.New("boom") }); err == nil {
		t.Fatal("expected failure")
	}
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("state = %s, want open", got)
	}

	current = current.Add(2 * time.Second)
	if got := b.State(); got != CircuitStateHalfOpen {
		t.Fatalf("state = %s, want half_open", got)
	}

	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("half-open probe: %v", err)
	}
	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("state = %s, want closed", got)
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second, HalfOpenMaxReq: 1})

	current := time.Unix(1700000000, 0)
	b.now = func() time.Time { return current }

	_ = b.Do(func() error { return errors.New("boom") })
	current = current.Add(2 * time.Second)

	if err := b.Do(func() error { return errors.New("still down") }); err == nil {
		t.Fatal("expected probe failure")
	}
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("state = %s, want open", got)
	}
}

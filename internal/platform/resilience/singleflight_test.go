package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlightCollapsesConcurrentCalls(t *testing.T) {
	var g SingleFlight
	var executions atomic.Int32

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			val, err, _ := g.Do("points:2025:3", func() (any, error) {
				executions.Add(1)
				time.Sleep(20 * time.Millisecond)
				return 42, nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
			if val != 42 {
				t.Errorf("val = %v, want 42", val)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Fatalf("executions = %d, want 1", got)
	}
}

func TestSingleFlightDistinctKeysRunIndependently(t *testing.T) {
	var g SingleFlight

	a, err, shared := g.Do("a", func() (any, error) { return "first", nil })
	if err != nil || a != "first" || shared {
		t.Fatalf("a = %v err = %v shared = %v", a, err, shared)
	}
	b, err, shared := g.Do("b", func() (any, error) { return "second", nil })
	if err != nil || b != "second" || shared {
		t.Fatalf("b = %v err = %v shared = %v", b, err, shared)
	}
}

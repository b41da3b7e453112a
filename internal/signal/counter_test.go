package signal

import (
	"sync"
	"testing"
)

func TestDailyCounterNeverOvershoots(t *testing.T) {
	const (
		limit      = 8
		goroutines = 64
	)

	counter := NewDailyCounter()

	var wg sync.WaitGroup
	acquired := make(chan struct{}, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if counter.TryAcquire(limit) {
				acquired <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(acquired)

	if got := len(acquired); got != limit {
		t.Errorf("acquired %d slots, want %d", got, limit)
	}
	if counter.Count() != limit {
		t.Errorf("count = %d, want %d", counter.Count(), limit)
	}
	if counter.TryAcquire(limit) {
		t.Error("acquire succeeded past the limit")
	}
}

func TestDailyCounterRelease(t *testing.T) {
	counter := NewDailyCounter()

	if !counter.TryAcquire(1) {
		t.Fatal("first acquire should succeed")
	}
	if counter.TryAcquire(1) {
		t.Fatal("second acquire should fail at limit 1")
	}

	counter.Release()
	if !counter.TryAcquire(1) {
		t.Error("acquire should succeed after release")
	}

	// Releasing an empty counter must not go negative.
	counter.Reset()
	counter.Release()
	if counter.Count() != 0 {
		t.Errorf("count = %d, want 0", counter.Count())
	}
}

func TestDailyCounterSeedAndReset(t *testing.T) {
	counter := NewDailyCounter()
	counter.Seed(5)

	if counter.Count() != 5 {
		t.Errorf("count = %d, want 5", counter.Count())
	}
	if !counter.TryAcquire(8) {
		t.Error("acquire should succeed with quota remaining")
	}
	if counter.TryAcquire(6) {
		t.Error("acquire should fail once the limit is reached")
	}

	counter.Reset()
	if counter.Count() != 0 {
		t.Errorf("count after reset = %d, want 0", counter.Count())
	}
}

package admission

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestGateSerializesSameKey(t *testing.T) {
	gate := NewGate()

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := gate.Acquire(context.Background(), "policy-a")
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxSeen)
	}
}

func TestGateIndependentKeys(t *testing.T) {
	gate := NewGate()
	releaseA, err := gate.Acquire(context.Background(), "policy-a")
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	defer releaseA()

	// A different key must not be blocked by the held one.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	releaseB, err := gate.Acquire(ctx, "policy-b")
	if err != nil {
		t.Fatalf("acquire b: %v", err)
	}
	releaseB()
}

func TestGateRespectsContext(t *testing.T) {
	gate := NewGate()
	release, err := gate.Acquire(context.Background(), "policy-a")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := gate.Acquire(ctx, "policy-a"); err == nil {
		t.Fatal("expected context error while key is held")
	}
}

func TestReleaseIdempotent(t *testing.T) {
	gate := NewGate()
	release, err := gate.Acquire(context.Background(), "policy-a")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	release()
	release() // second call must be a no-op

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	again, err := gate.Acquire(ctx, "policy-a")
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	again()
}

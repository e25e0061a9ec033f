package circuitbreaker

import (
	"sync"
	"testing"
	"time"
)

// fakeClock drives a breaker's notion of time
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(cfg Config) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := New(cfg)
	cb.now = clock.Now
	return cb, clock
}

// trip records failures until the breaker opens
func trip(cb *CircuitBreaker) {
	for cb.State() != StateOpen {
		cb.RecordFailure()
	}
}

func TestNew(t *testing.T) {
	cb := New(Config{Name: "apple", Threshold: 3, Cooldown: 10 * time.Second})

	if cb.Name() != "apple" {
		t.Errorf("Expected name 'apple', got %q", cb.Name())
	}
	if cb.threshold != 3 {
		t.Errorf("Expected threshold 3, got %d", cb.threshold)
	}
	if cb.cooldown != 10*time.Second {
		t.Errorf("Expected cooldown 10s, got %v", cb.cooldown)
	}
	if cb.State() != StateClosed {
		t.Errorf("Expected initial state CLOSED, got %s", cb.State())
	}
}

func TestNew_Defaults(t *testing.T) {
	cb := New(Config{})

	if cb.threshold != 5 {
		t.Errorf("Expected default threshold 5, got %d", cb.threshold)
	}
	if cb.cooldown != 5*time.Minute {
		t.Errorf("Expected default cooldown 5m, got %v", cb.cooldown)
	}
	if cb.halfOpenTimeout != 30*time.Second {
		t.Errorf("Expected default halfOpenTimeout 30s, got %v", cb.halfOpenTimeout)
	}
	if cb.name != "default" {
		t.Errorf("Expected default name 'default', got %q", cb.name)
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(Config{Threshold: 3, Cooldown: time.Minute})

	if !cb.Allow() {
		t.Error("Expected Allow() in CLOSED state")
	}

	for i := 1; i < 3; i++ {
		cb.RecordFailure()
		if cb.State() != StateClosed {
			t.Fatalf("Expected CLOSED after %d failures, got %s", i, cb.State())
		}
	}

	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Errorf("Expected OPEN after 3 failures, got %s", cb.State())
	}
	if cb.Allow() {
		t.Error("Expected Allow() to return false in OPEN state")
	}
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(Config{Threshold: 3})

	cb.RecordFailure()
	cb.RecordFailure()
	if cb.Failures() != 2 {
		t.Errorf("Expected 2 failures, got %d", cb.Failures())
	}

	cb.RecordSuccess()
	if cb.Failures() != 0 {
		t.Errorf("Expected 0 failures after success, got %d", cb.Failures())
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	tests := []struct {
		name     string
		outcome  func(cb *CircuitBreaker)
		expected State
	}{
		{"Probe success closes", (*CircuitBreaker).RecordSuccess, StateClosed},
		{"Probe failure reopens", (*CircuitBreaker).RecordFailure, StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, clock := newTestBreaker(Config{Threshold: 2, Cooldown: time.Minute})
			trip(cb)

			clock.Advance(59 * time.Second)
			if cb.Allow() {
				t.Fatal("Expected requests blocked before cooldown")
			}

			clock.Advance(time.Second)
			if !cb.Allow() {
				t.Fatal("Expected the probe to be allowed after cooldown")
			}
			if cb.State() != StateHalfOpen {
				t.Fatalf("Expected HALF-OPEN, got %s", cb.State())
			}
			if cb.Allow() {
				t.Error("Expected a second request to be blocked while probing")
			}

			tt.outcome(cb)
			if cb.State() != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, cb.State())
			}
		})
	}
}

func TestCircuitBreaker_HalfOpenTimeout(t *testing.T) {
	cb, clock := newTestBreaker(Config{Threshold: 1, Cooldown: time.Minute, HalfOpenTimeout: 10 * time.Second})
	trip(cb)

	clock.Advance(time.Minute)
	cb.Allow()

	clock.Advance(4 * time.Second)
	if got := cb.TimeUntilRetry(); got != 6*time.Second {
		t.Errorf("Expected 6s until the probe expires, got %v", got)
	}

	clock.Advance(6 * time.Second)
	if cb.Allow() {
		t.Error("Expected Allow() false when the probe timed out")
	}
	if cb.State() != StateOpen {
		t.Errorf("Expected OPEN after probe timeout, got %s", cb.State())
	}
	if got := cb.TimeUntilRetry(); got != time.Minute {
		t.Errorf("Expected a fresh cooldown, got %v", got)
	}
}

func TestCircuitBreaker_TimeUntilRetry(t *testing.T) {
	cb, clock := newTestBreaker(Config{Threshold: 1, Cooldown: time.Minute})

	if cb.TimeUntilRetry() != 0 {
		t.Errorf("Expected 0 while CLOSED, got %v", cb.TimeUntilRetry())
	}

	trip(cb)
	clock.Advance(20 * time.Second)
	if got := cb.TimeUntilRetry(); got != 40*time.Second {
		t.Errorf("Expected 40s, got %v", got)
	}

	clock.Advance(2 * time.Minute)
	if got := cb.TimeUntilRetry(); got != 0 {
		t.Errorf("Expected 0 after cooldown, got %v", got)
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb, _ := newTestBreaker(Config{Threshold: 2, Cooldown: time.Minute})
	trip(cb)

	cb.Reset()

	if cb.State() != StateClosed {
		t.Errorf("Expected CLOSED after reset, got %s", cb.State())
	}
	if cb.Failures() != 0 {
		t.Errorf("Expected 0 failures after reset, got %d", cb.Failures())
	}
	if !cb.Allow() {
		t.Error("Expected Allow() after reset")
	}
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	var transitions []string
	cb, clock := newTestBreaker(Config{
		Name:      "spotify",
		Threshold: 2,
		Cooldown:  time.Minute,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})

	trip(cb)
	clock.Advance(time.Minute)
	cb.Allow()
	cb.RecordSuccess()
	cb.Reset() // already closed, no transition

	expected := []string{
		"spotify:CLOSED->OPEN",
		"spotify:OPEN->HALF-OPEN",
		"spotify:HALF-OPEN->CLOSED",
	}
	if len(transitions) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, transitions)
	}
	for i := range expected {
		if transitions[i] != expected[i] {
			t.Errorf("Transition %d: expected %q, got %q", i, expected[i], transitions[i])
		}
	}
}

func TestCircuitBreaker_StateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "CLOSED"},
		{StateOpen, "OPEN"},
		{StateHalfOpen, "HALF-OPEN"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	cb := New(Config{Threshold: 100, Cooldown: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cb.Allow()
				if id%2 == 0 {
					cb.RecordFailure()
				} else {
					cb.RecordSuccess()
				}
				cb.State()
				cb.TimeUntilRetry()
			}
		}(i)
	}
	wg.Wait()
}

func TestSet(t *testing.T) {
	set := NewSet(Config{Name: "ignored", Threshold: 1, Cooldown: time.Minute})

	apple := set.Get("apple")
	if apple != set.Get("apple") {
		t.Error("Expected the same breaker for the same name")
	}
	if apple.Name() != "apple" || apple.threshold != 1 {
		t.Errorf("Expected breaker named apple with shared config, got %q/%d", apple.Name(), apple.threshold)
	}

	apple.RecordFailure()
	set.Get("spotify")

	states := set.States()
	if len(states) != 2 || states["apple"] != StateOpen || states["spotify"] != StateClosed {
		t.Errorf("Unexpected states: %v", states)
	}
}

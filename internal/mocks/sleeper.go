package mocks

import (
	"context"
	"sync"
	"time"
)

// FakeSleeper implements the server's Sleeper contract for testing: it
// records every requested delay and returns immediately. Setting Err
// simulates a peer disconnect during the delay.
type FakeSleeper struct {
	mu     sync.Mutex
	delays []time.Duration

	Err error
}

// Sleep records the delay without waiting.
func (f *FakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays = append(f.delays, d)
	if f.Err != nil {
		return f.Err
	}
	return ctx.Err()
}

// Delays returns a copy of the delays requested so far, in order.
func (f *FakeSleeper) Delays() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.delays))
	copy(out, f.delays)
	return out
}

package validation

import (
	"sync"
	"time"
)

// CommandLimiter is a token bucket limiter keyed by pilot ID. Scripted
// controllers and replay feeds can emit commands far faster than any human;
// the battle loop drops the excess rather than letting one feed starve the
// tick budget.
type CommandLimiter struct {
	maxCommands int
	window      time.Duration
	pilots      map[string]*pilotBucket
	mu          sync.RWMutex
	cleanupTick *time.Ticker
	done        chan struct{}
}

type pilotBucket struct {
	tokens     int
	lastRefill time.Time
	maxTokens  int
	window     time.Duration
	mu         sync.Mutex
}

// NewCommandLimiter creates a limiter allowing maxCommands per window per
// pilot
func NewCommandLimiter(maxCommands int, window time.Duration) *CommandLimiter {
	cl := &CommandLimiter{
		maxCommands: maxCommands,
		window:      window,
		pilots:      make(map[string]*pilotBucket),
		done:        make(chan struct{}),
	}
	cl.cleanupTick = time.NewTicker(window)
	go cl.cleanup()
	return cl
}

// Allow reports whether the pilot may issue another command now
func (cl *CommandLimiter) Allow(pilotID string) bool {
	cl.mu.RLock()
	bucket, exists := cl.pilots[pilotID]
	cl.mu.RUnlock()

	if !exists {
		cl.mu.Lock()
		bucket, exists = cl.pilots[pilotID]
		if !exists {
			bucket = &pilotBucket{
				tokens:     cl.maxCommands,
				lastRefill: time.Now(),
				maxTokens:  cl.maxCommands,
				window:     cl.window,
			}
			cl.pilots[pilotID] = bucket
		}
		cl.mu.Unlock()
	}

	return bucket.take()
}

func (b *pilotBucket) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if elapsed := now.Sub(b.lastRefill); elapsed >= b.window {
		b.tokens = b.maxTokens
		b.lastRefill = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// cleanup drops buckets idle for more than one window
func (cl *CommandLimiter) cleanup() {
	for {
		select {
		case <-cl.done:
			return
		case <-cl.cleanupTick.C:
			cutoff := time.Now().Add(-cl.window)
			cl.mu.Lock()
			for id, bucket := range cl.pilots {
				bucket.mu.Lock()
				idle := bucket.lastRefill.Before(cutoff) && bucket.tokens == bucket.maxTokens
				bucket.mu.Unlock()
				if idle {
					delete(cl.pilots, id)
				}
			}
			cl.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine
func (cl *CommandLimiter) Close() {
	cl.cleanupTick.Stop()
	close(cl.done)
}

package orchestrator

import (
	"sync"
	"time"
)

// circuitState tracks the breaker's three states: closed allows every call
// through, open rejects everything, half-open lets a trickle of probe calls
// through to decide whether to recover.
type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
	stateHalfOpen
)

// circuitBreaker is a minimal breaker for a single-process, single-
// dependency caller: one volume/error-rate threshold over the outcomes
// counted since the breaker last closed, one sleep window before probing, and a fixed
// half-open probe budget. It deliberately skips a sliding-bucket window,
// metrics hooks, and its own panic-recovery — Run already recovers its own
// panics and this breaker only ever wraps that single call, so there is
// nothing left for a second panic guard or a metrics exporter to observe.
type circuitBreaker struct {
	mu sync.Mutex

	errorThreshold  float64
	volumeThreshold int
	sleepWindow     time.Duration
	halfOpenBudget  int

	state          circuitState
	stateChangedAt time.Time

	successes int
	failures  int

	halfOpenAllowed int
}

// newCircuitBreaker builds a breaker with conservative defaults (50% error
// rate, 10-request volume floor, 30s sleep window) and a small half-open
// probe budget, since Run's call volume here is orders of magnitude lower
// than a service mesh's.
func newCircuitBreaker() *circuitBreaker {
	return &circuitBreaker{
		errorThreshold:  0.5,
		volumeThreshold: 10,
		sleepWindow:     30 * time.Second,
		halfOpenBudget:  3,
		state:           stateClosed,
		stateChangedAt:  time.Now(),
	}
}

// allow reports whether a call may proceed, transitioning open->half-open
// once sleepWindow has elapsed.
func (cb *circuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return true
	case stateOpen:
		if time.Since(cb.stateChangedAt) < cb.sleepWindow {
			return false
		}
		cb.transition(stateHalfOpen)
		cb.halfOpenAllowed = 1
		return true
	case stateHalfOpen:
		if cb.halfOpenAllowed >= cb.halfOpenBudget {
			return false
		}
		cb.halfOpenAllowed++
		return true
	default:
		return true
	}
}

// recordSuccess and recordFailure feed the closed-state error-rate
// evaluation and close/reopen a half-open probe on the first result they
// see — this breaker's budget is small enough that waiting for a full
// batch of probes would never fire.
func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.successes++
	if cb.state == stateHalfOpen {
		cb.transition(stateClosed)
		cb.successes, cb.failures = 0, 0
	}
}

func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	if cb.state == stateHalfOpen {
		cb.transition(stateOpen)
		return
	}

	total := cb.successes + cb.failures
	if total >= cb.volumeThreshold {
		rate := float64(cb.failures) / float64(total)
		if rate >= cb.errorThreshold {
			cb.transition(stateOpen)
		}
	}
}

// transition must be called with cb.mu held.
func (cb *circuitBreaker) transition(to circuitState) {
	if cb.state == to {
		return
	}
	cb.state = to
	cb.stateChangedAt = time.Now()
	if to == stateClosed {
		cb.successes, cb.failures = 0, 0
	}
}

// responseCache is a TTL-bounded, request-string-keyed cache for Run's
// final rendered output. Translation/formatting is the expensive,
// non-deterministic tail of Run, so re-serving an identical recent goal
// skips the whole pipeline rather than memoizing any one stage.
type responseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// newResponseCache builds a cache with the given TTL. A zero or negative
// ttl disables caching entirely (get always misses, put is a no-op) — used
// by callers that want circuit-breaker protection without response reuse.
func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

func (c *responseCache) get(key string) (string, bool) {
	if c.ttl <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

func (c *responseCache) put(key, value string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiresAt: time.Now().Add(c.ttl)}
}

package provider

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/os-ghost/core/internal/ghosterr"
	"github.com/os-ghost/core/internal/logging"
)

// recoveryWindow is how long the circuit breaker skips the primary after
// it starts failing, per spec.md §4.3 ("≈30 s").
const recoveryWindow = 30 * time.Second

// rateLimitWindow is the rate limiter's reset period.
const rateLimitWindow = time.Minute

// rateLimitRetries bounds the short sleeps a caller waits through before
// a rate-limited call is dropped.
const rateLimitRetries = 3

// rateLimitRetryDelay is the sleep between rate-limit retries.
const rateLimitRetryDelay = 50 * time.Millisecond

// Router holds an optional primary provider and a required secondary,
// routing calls by Class and tripping a circuit breaker on primary
// errors.
type Router struct {
	primary   Client
	secondary Client

	failing      atomic.Bool
	failingSince atomic.Int64 // unix nanos

	rateMu       sync.Mutex
	rateCount    int
	rateWindowAt time.Time
	rateCapRPM   int

	primaryCalls   atomic.Int64
	secondaryCalls atomic.Int64
}

// NewRouter constructs a Router. secondary must be non-nil; primary may
// be nil if the user has not configured a remote provider.
func NewRouter(primary, secondary Client, rateCapRPM int) (*Router, error) {
	if secondary == nil {
		return nil, fmt.Errorf("%w: secondary provider is required", ghosterr.ErrProviderUnavailable)
	}
	if rateCapRPM <= 0 {
		rateCapRPM = 60
	}
	return &Router{
		primary:    primary,
		secondary:  secondary,
		rateCapRPM: rateCapRPM,
	}, nil
}

// Call routes a call of the given Class, trying the preferred provider
// first and falling back to the other exactly once on error.
func (r *Router) Call(ctx context.Context, class Class, systemPrompt, userPrompt string) (string, error) {
	first, second := r.order(class)

	if first == nil {
		// Only one provider configured; use it for every class.
		return r.invoke(ctx, second, class, systemPrompt, userPrompt)
	}

	out, err := r.invoke(ctx, first, class, systemPrompt, userPrompt)
	if err == nil {
		return out, nil
	}
	logging.Provider("primary attempt failed for class=%s, falling back: %v", class, err)
	return r.invoke(ctx, second, class, systemPrompt, userPrompt)
}

// order returns (preferred, fallback) per the routing table. preferred
// is nil when only one provider is configured, signaling the caller to
// use fallback alone.
func (r *Router) order(class Class) (Client, Client) {
	if r.primary == nil {
		return nil, r.secondary
	}

	switch class {
	case Light:
		return r.preferSecondary()
	default: // Medium, Heavy
		return r.preferPrimary()
	}
}

func (r *Router) preferSecondary() (Client, Client) {
	return r.secondary, r.primary
}

func (r *Router) preferPrimary() (Client, Client) {
	if r.circuitOpen() {
		logging.ProviderDebug("circuit open, routing around primary")
		return r.secondary, r.primary
	}
	return r.primary, r.secondary
}

func (r *Router) invoke(ctx context.Context, c Client, class Class, systemPrompt, userPrompt string) (string, error) {
	if c == r.primary && r.primary != nil {
		if allowed, err := r.checkRateLimit(class); !allowed {
			return "", err
		}
		r.primaryCalls.Add(1)
	} else {
		r.secondaryCalls.Add(1)
	}

	out, err := c.CompleteWithSystem(ctx, systemPrompt, userPrompt)
	if c == r.primary && r.primary != nil {
		if err != nil {
			r.tripCircuit()
		} else {
			r.clearCircuit()
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: provider %s: %v", ghosterr.ErrProviderUnavailable, c.Name(), err)
	}
	return out, nil
}

func (r *Router) tripCircuit() {
	r.failing.Store(true)
	r.failingSince.Store(time.Now().UnixNano())
	logging.Get(logging.CategoryProvider).Warn("primary provider circuit opened")
}

func (r *Router) clearCircuit() {
	if r.failing.CompareAndSwap(true, false) {
		logging.Provider("primary provider circuit closed")
	}
}

func (r *Router) circuitOpen() bool {
	if !r.failing.Load() {
		return false
	}
	since := time.Unix(0, r.failingSince.Load())
	if time.Since(since) > recoveryWindow {
		logging.ProviderDebug("recovery window elapsed, retrying primary")
		return false
	}
	return true
}

// checkRateLimit enforces the primary-only rate limit. On overflow it
// waits a bounded number of short sleeps, then drops the call: Light
// calls get a neutral (empty, no-error) result, Medium/Heavy calls get
// ErrProviderRateLimited.
func (r *Router) checkRateLimit(class Class) (bool, error) {
	for attempt := 0; attempt <= rateLimitRetries; attempt++ {
		if r.reserveSlot() {
			return true, nil
		}
		if attempt < rateLimitRetries {
			time.Sleep(rateLimitRetryDelay)
		}
	}

	logging.Get(logging.CategoryProvider).Warn("primary rate limit exceeded, dropping class=%s call", class)
	if class == Light {
		return false, nil
	}
	return false, fmt.Errorf("%w", ghosterr.ErrProviderRateLimited)
}

func (r *Router) reserveSlot() bool {
	r.rateMu.Lock()
	defer r.rateMu.Unlock()

	now := time.Now()
	if now.Sub(r.rateWindowAt) > rateLimitWindow {
		r.rateWindowAt = now
		r.rateCount = 0
	}
	if r.rateCount >= r.rateCapRPM {
		return false
	}
	r.rateCount++
	return true
}

// Initialize probes both configured providers and logs their
// availability; it never returns an error since a missing primary is a
// valid configuration (secondary-only operation).
func (r *Router) Initialize(ctx context.Context) error {
	primary, secondary := r.Available()
	logging.Provider("router initialized: primary_available=%v secondary_available=%v", primary, secondary)
	return nil
}

// Available reports whether the primary provider is currently routable
// (nil primary counts as unavailable; a nil secondary can't happen,
// NewRouter rejects it).
func (r *Router) Available() (primary, secondary bool) {
	return r.primary != nil && !r.circuitOpen(), r.secondary != nil
}

// Telemetry returns per-provider call counts since the last ResetTelemetry.
func (r *Router) Telemetry() (primaryCalls, secondaryCalls int64) {
	return r.primaryCalls.Load(), r.secondaryCalls.Load()
}

// ResetTelemetry zeroes the per-provider call counters, called at
// session start.
func (r *Router) ResetTelemetry() {
	r.primaryCalls.Store(0)
	r.secondaryCalls.Store(0)
}

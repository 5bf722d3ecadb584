// Package monitor implements the Adaptive Monitor (C10): a background
// cadence loop that periodically captures the screen, skips the AI call
// when nothing changed, and otherwise asks the provider router for a
// structured observation under a hard timeout.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/os-ghost/core/internal/agent"
	"github.com/os-ghost/core/internal/config"
	"github.com/os-ghost/core/internal/ghosterr"
	"github.com/os-ghost/core/internal/logging"
	"github.com/os-ghost/core/internal/policy"
	"github.com/os-ghost/core/internal/provider"
	"github.com/os-ghost/core/internal/store"
)

// aiCallTimeout bounds each observation call, per spec.md §4.10 ("≈30 s").
const aiCallTimeout = 30 * time.Second

// Frame is one captured screenshot, already downscaled by the capturer.
type Frame struct {
	Pixels []byte
	Width  int
	Height int
}

// ScreenCapturer captures and downscales the primary display. No
// teacher or pack repo does screen capture (codenerd is a CLI agent,
// not a desktop companion), so this is an injected seam a platform
// backend implements; tests use a fake.
type ScreenCapturer interface {
	Capture(ctx context.Context) (Frame, error)
}

// ContextBuilder assembles the system/user prompt pair sent to the
// router: recent facts, current URL, recent activity. Injected for the
// same reason as ScreenCapturer.
type ContextBuilder interface {
	Build(ctx context.Context) (systemPrompt, userPrompt string, err error)
}

// Observation is the structured result parsed from a successful AI call.
type Observation struct {
	Summary           string `json:"summary"`
	Triggered         bool   `json:"triggered"`
	CompanionBehavior string `json:"companion_behavior,omitempty"`
}

// Sink receives monitor output: an observation (if the AI ran) or just
// the computed ChangeClass (if it was skipped).
type Sink interface {
	OnObservation(obs Observation)
	OnSkipped(class ChangeClass)
}

// contextTTL is how long a built context/prompt pair is reused before
// being rebuilt, per spec.md §4.10 ("≈30 s").
const contextTTL = 30 * time.Second

// memoryTree is the store tree observations are written to.
const memoryTree = "monitor_observations"

// Monitor runs the adaptive cadence loop.
type Monitor struct {
	cfg       config.MonitorConfig
	capturer  ScreenCapturer
	builder   ContextBuilder
	router    *provider.Router
	pol       *policy.Policy
	activity  *ActivityTracker
	memory    *store.Store
	sink      Sink

	enabled atomic.Bool

	mu        sync.Mutex
	lastHash  FrameHash
	lastFrame []byte

	backoffMu       sync.Mutex
	consecutiveFail int

	cacheMu      sync.Mutex
	cachedSystem string
	cachedUser   string
	cachedAt     time.Time

	// writeLock guards the memory write in step 6; a tick that finds it
	// already held skips the write (try-lock, never blocks a tick).
	writeLock sync.Mutex
}

// New builds a Monitor. memory and pol may be nil in tests that don't
// exercise the memory-write or consent-gating paths.
func New(cfg config.MonitorConfig, capturer ScreenCapturer, builder ContextBuilder, router *provider.Router, pol *policy.Policy, activity *ActivityTracker, memory *store.Store, sink Sink) *Monitor {
	m := &Monitor{
		cfg:      cfg,
		capturer: capturer,
		builder:  builder,
		router:   router,
		pol:      pol,
		activity: activity,
		memory:   memory,
		sink:     sink,
	}
	m.enabled.Store(true)
	return m
}

// SetEnabled toggles the monitor's mode gate without stopping Run.
func (m *Monitor) SetEnabled(on bool) { m.enabled.Store(on) }

// Run drives the cadence loop until ctx is cancelled, sleeping between
// ticks for an interval chosen by the current ActivityState plus any
// accumulated backoff.
func (m *Monitor) Run(ctx context.Context) {
	for {
		interval := m.nextInterval()
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
		m.tick(ctx)
	}
}

// nextInterval picks the adaptive cadence interval for the current
// activity state and adds the current backoff on top.
func (m *Monitor) nextInterval() time.Duration {
	base := m.baseInterval()
	return base + m.currentBackoff()
}

func (m *Monitor) baseInterval() time.Duration {
	state := ActivityActive
	if m.activity != nil {
		state = m.activity.CalculateState(5*time.Minute, 60*time.Second, 50)
	}
	switch state {
	case ActivityActive:
		return time.Duration(m.cfg.ActiveIntervalSecs) * time.Second
	case ActivityModerate:
		return time.Duration(m.cfg.ModerateIntervalSecs) * time.Second
	case ActivityLow:
		return time.Duration(m.cfg.LowIntervalSecs) * time.Second
	default:
		return time.Duration(m.cfg.IdleIntervalSecs) * time.Second
	}
}

func (m *Monitor) currentBackoff() time.Duration {
	m.backoffMu.Lock()
	defer m.backoffMu.Unlock()

	if m.consecutiveFail == 0 {
		return 0
	}
	backoff := time.Duration(1<<uint(m.consecutiveFail)) * time.Second
	max := time.Duration(m.cfg.MaxBackoffSecs) * time.Second
	if max <= 0 {
		max = 120 * time.Second
	}
	if backoff > max {
		backoff = max
	}
	return backoff
}

func (m *Monitor) bumpBackoff() {
	m.backoffMu.Lock()
	defer m.backoffMu.Unlock()
	m.consecutiveFail++
}

func (m *Monitor) resetBackoff() {
	m.backoffMu.Lock()
	defer m.backoffMu.Unlock()
	m.consecutiveFail = 0
}

// tick runs one iteration of the pipeline described in spec.md §4.10.
func (m *Monitor) tick(ctx context.Context) {
	// 1. Gate on the enabled setting and the capture/analysis consents.
	if !m.gate() {
		return
	}

	// 2. Capture and downscale.
	frame, err := m.capturer.Capture(ctx)
	if err != nil {
		logging.MonitorWarn("capture failed: %v", err)
		m.bumpBackoff()
		return
	}

	// 3. Hash and compare.
	hash := HashFrame(frame.Pixels)
	m.mu.Lock()
	prevHash, prevFrame := m.lastHash, m.lastFrame
	m.lastHash, m.lastFrame = hash, frame.Pixels
	m.mu.Unlock()

	if prevFrame != nil && hash == prevHash {
		m.notifySkipped(ChangeNone)
		return
	}

	class := ClassifyChange(PixelDiff(prevFrame, frame.Pixels))
	if class == ChangeNone {
		m.notifySkipped(class)
		return
	}

	// 4. Build context, from cache within contextTTL.
	systemPrompt, userPrompt, err := m.cachedContext(ctx)
	if err != nil {
		logging.MonitorWarn("context build failed: %v", err)
		m.bumpBackoff()
		return
	}

	// 5. AI call under a hard timeout.
	callCtx, cancel := context.WithTimeout(ctx, aiCallTimeout)
	raw, err := m.router.Call(callCtx, provider.Heavy, systemPrompt, userPrompt)
	cancel()
	if err != nil {
		logging.MonitorWarn("observation call failed: %v", err)
		m.bumpBackoff()
		return
	}

	// 6. Parse, write memory via try-lock, emit.
	var obs Observation
	if err := agent.ParseStructured(raw, &obs); err != nil {
		logging.MonitorWarn("observation parse failed: %v", err)
		m.bumpBackoff()
		return
	}

	m.tryWriteMemory(obs)
	m.resetBackoff()
	if m.sink != nil {
		m.sink.OnObservation(obs)
	}
}

func (m *Monitor) gate() bool {
	if !m.enabled.Load() {
		return false
	}
	if m.pol != nil {
		settings := m.pol.Load()
		if !settings.ConsentCapture || !settings.ConsentAIAnalysis {
			return false
		}
	}
	return true
}

func (m *Monitor) cachedContext(ctx context.Context) (string, string, error) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()

	if !m.cachedAt.IsZero() && time.Since(m.cachedAt) < contextTTL {
		return m.cachedSystem, m.cachedUser, nil
	}

	system, user, err := m.builder.Build(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: build context: %v", ghosterr.ErrIO, err)
	}
	m.cachedSystem, m.cachedUser, m.cachedAt = system, user, time.Now()
	return system, user, nil
}

// tryWriteMemory acquires writeLock without blocking; a tick that
// arrives while another write is in flight skips rather than queues,
// per spec.md §4.10's "try-lock" update semantics.
func (m *Monitor) tryWriteMemory(obs Observation) {
	if m.memory == nil {
		return
	}
	if !m.writeLock.TryLock() {
		logging.MonitorDebug("memory write contended, skipping")
		return
	}
	defer m.writeLock.Unlock()

	if err := m.memory.Set(memoryTree, "latest", []byte(obs.Summary)); err != nil {
		logging.MonitorWarn("failed to persist observation: %v", err)
	}
}

func (m *Monitor) notifySkipped(class ChangeClass) {
	m.resetBackoff()
	if m.sink != nil {
		m.sink.OnSkipped(class)
	}
}

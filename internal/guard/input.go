// Package guard implements the Input & Leak Guards (C11): coordinate and
// key-combo validation, sensitive-text detection, action rate limiting,
// and the leak detector scanning outbound text and HTTP traffic for
// credential-shaped patterns.
package guard

import (
	"fmt"
	"sync"
	"time"

	"github.com/os-ghost/core/internal/logging"
)

// ScreenBounds is the current primary display's pixel dimensions.
type ScreenBounds struct {
	Width  int
	Height int
}

// dangerousCombo names a key combination the input validator refuses to
// forward, grouped by what it would do to the host if executed.
type dangerousCombo struct {
	name string
	keys map[string]struct{}
}

func newDangerousCombo(name string, keys ...string) dangerousCombo {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return dangerousCombo{name: name, keys: set}
}

func (c dangerousCombo) matches(keys []string) bool {
	if len(keys) != len(c.keys) {
		return false
	}
	for _, k := range keys {
		if _, ok := c.keys[k]; !ok {
			return false
		}
	}
	return true
}

// dangerousCombos is the taxonomy spec.md §4.11 names: app quit, force
// quit, system shutdown, sleep, lock.
var dangerousCombos = []dangerousCombo{
	newDangerousCombo("app_quit", "cmd", "q"),
	newDangerousCombo("force_quit", "cmd", "alt", "esc"),
	newDangerousCombo("force_quit_alt", "ctrl", "alt", "delete"),
	newDangerousCombo("system_shutdown", "ctrl", "alt", "shift", "power"),
	newDangerousCombo("sleep", "cmd", "alt", "eject"),
	newDangerousCombo("lock", "cmd", "ctrl", "q"),
}

// coordinateMargin tolerates automation clicking a few pixels outside
// the reported bounds (display scaling rounding).
const coordinateMargin = 4

// InputValidator gates simulated input against the live screen bounds, a
// dangerous-combo taxonomy, sensitive-text patterns, and a minimum
// inter-action interval.
type InputValidator struct {
	bounds      ScreenBounds
	minInterval time.Duration

	mu         sync.Mutex
	lastAction time.Time
}

// NewInputValidator builds a validator for the given screen bounds and
// minimum interval between successive actions.
func NewInputValidator(bounds ScreenBounds, minInterval time.Duration) *InputValidator {
	return &InputValidator{bounds: bounds, minInterval: minInterval}
}

// SetBounds updates the tracked screen bounds, e.g. on a resolution or
// monitor change.
func (v *InputValidator) SetBounds(bounds ScreenBounds) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bounds = bounds
}

// CheckCoordinates validates (x, y) against the current screen bounds
// plus a small margin.
func (v *InputValidator) CheckCoordinates(x, y int) (bool, string) {
	v.mu.Lock()
	bounds := v.bounds
	v.mu.Unlock()

	if x < -coordinateMargin || y < -coordinateMargin {
		return false, "coordinates out of bounds (negative)"
	}
	if x > bounds.Width+coordinateMargin || y > bounds.Height+coordinateMargin {
		return false, fmt.Sprintf("coordinates (%d,%d) exceed screen bounds %dx%d", x, y, bounds.Width, bounds.Height)
	}
	return true, "Ok"
}

// CheckKeyCombo rejects any combo matching the dangerous taxonomy.
func (v *InputValidator) CheckKeyCombo(keys []string) (bool, string) {
	for _, combo := range dangerousCombos {
		if combo.matches(keys) {
			return false, "dangerous key combo: " + combo.name
		}
	}
	return true, "Ok"
}

// CheckText flags sensitive content: password-adjacent words, Luhn-valid
// card numbers, and structurally valid SSNs.
func (v *InputValidator) CheckText(text string) (bool, string) {
	if containsPasswordWord(text) {
		return false, "text mentions a password/secret"
	}
	if containsValidCard(text) {
		return false, "text contains a valid card number"
	}
	if containsValidSSN(text) {
		return false, "text contains a valid SSN"
	}
	return true, "Ok"
}

// CheckRate enforces the minimum inter-action interval, recording this
// call as the new "last action" on success.
func (v *InputValidator) CheckRate() (bool, string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := time.Now()
	if v.minInterval > 0 && !v.lastAction.IsZero() && now.Sub(v.lastAction) < v.minInterval {
		return false, "action rate exceeded"
	}
	v.lastAction = now
	return true, "Ok"
}

// ValidateAction runs every applicable check for a simulated click/type
// action and returns the first failure reason, or "Ok".
func (v *InputValidator) ValidateAction(x, y int, text string, keys []string) (bool, string) {
	if ok, reason := v.CheckRate(); !ok {
		logging.GuardWarn("action rejected: %s", reason)
		return false, reason
	}
	if ok, reason := v.CheckCoordinates(x, y); !ok {
		logging.GuardWarn("action rejected: %s", reason)
		return false, reason
	}
	if len(keys) > 0 {
		if ok, reason := v.CheckKeyCombo(keys); !ok {
			logging.GuardWarn("action rejected: %s", reason)
			return false, reason
		}
	}
	if text != "" {
		if ok, reason := v.CheckText(text); !ok {
			logging.GuardWarn("action rejected: %s", reason)
			return false, reason
		}
	}
	return true, "Ok"
}

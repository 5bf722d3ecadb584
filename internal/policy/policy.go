// Package policy implements the Privacy & Autonomy Policy (C2): a single
// cached PrivacyPolicy snapshot backed by atomic file rewrite, with
// derived predicates that gate every side-effecting action in the
// system.
//
// Unlike internal/config's plain MkdirAll+Marshal+WriteFile persistence,
// Policy writes temp-then-rename so a concurrent reader never observes a
// half-written file — this document can be edited live by the CLI while
// the orchestrator is reading it on every action.
package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/os-ghost/core/internal/ghosterr"
	"github.com/os-ghost/core/internal/logging"
)

// AutonomyLevel governs whether actions are permitted and whether they
// require confirmation.
type AutonomyLevel string

const (
	Observer   AutonomyLevel = "observer"
	Suggester  AutonomyLevel = "suggester"
	Supervised AutonomyLevel = "supervised"
	Autonomous AutonomyLevel = "autonomous"
)

// PreviewPolicy governs when an ActionPreview is shown before execution.
type PreviewPolicy string

const (
	PreviewAlways   PreviewPolicy = "always"
	PreviewHighRisk PreviewPolicy = "high_risk"
	PreviewOff      PreviewPolicy = "off"
)

// Risk mirrors the queue's PendingAction.Risk without importing
// internal/queue, which in turn depends on this package.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Settings is the on-disk/in-memory shape of the privacy policy
// document (privacy_settings.json under the config root).
type Settings struct {
	ConsentCapture          bool          `json:"consent_capture"`
	ConsentAIAnalysis       bool          `json:"consent_ai_analysis"`
	ConsentBrowserContent   bool          `json:"consent_browser_content"`
	ConsentTabCapture       bool          `json:"consent_tab_capture"`
	ConsentVisualAutomation bool          `json:"consent_visual_automation"`
	AutonomyLevel           AutonomyLevel `json:"autonomy_level"`
	ReadOnly                bool          `json:"read_only"`
	Preview                 PreviewPolicy `json:"preview_policy"`
	AllowedSites            []string      `json:"allowed_sites"`
	BlockedSites            []string      `json:"blocked_sites"`
	RedactPII               bool          `json:"redact_pii"`
	RateLimitRPM            int           `json:"rate_limit_rpm"`
}

// DefaultSettings returns a conservative starting policy: supervised
// autonomy, previews on high risk only, redaction on.
func DefaultSettings() Settings {
	return Settings{
		ConsentCapture:          true,
		ConsentAIAnalysis:       true,
		ConsentBrowserContent:   true,
		ConsentTabCapture:       false,
		ConsentVisualAutomation: false,
		AutonomyLevel:           Supervised,
		ReadOnly:                false,
		Preview:                 PreviewHighRisk,
		AllowedSites:            nil,
		BlockedSites:            nil,
		RedactPII:               true,
		RateLimitRPM:            60,
	}
}

// Policy caches a Settings snapshot in memory, atomically, so load() is
// O(1) after warmup and a concurrent save() never blocks a reader with a
// half-updated document.
type Policy struct {
	path     string
	snapshot atomic.Pointer[Settings]
	redactor *redactor
}

// Open loads path (or seeds it with DefaultSettings if absent) and
// returns a ready Policy.
func Open(path string) (*Policy, error) {
	timer := logging.StartTimer(logging.CategoryPolicy, "Open")
	defer timer.Stop()

	p := &Policy{path: path, redactor: newRedactor()}

	settings, err := readSettings(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: read policy: %v", ghosterr.ErrIO, err)
		}
		logging.Policy("no policy file at %s, seeding defaults", path)
		def := DefaultSettings()
		if err := p.Save(def); err != nil {
			return nil, err
		}
		return p, nil
	}

	p.snapshot.Store(&settings)
	logging.Policy("policy loaded from %s", path)
	return p, nil
}

func readSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: parse policy: %v", ghosterr.ErrStore, err)
	}
	return s, nil
}

// Load returns the cached snapshot. It never touches disk.
func (p *Policy) Load() Settings {
	s := p.snapshot.Load()
	if s == nil {
		return DefaultSettings()
	}
	return *s
}

// Save rewrites the policy file atomically (temp file + rename) and
// replaces the in-memory cache. Concurrent readers see either the old or
// the new snapshot, never a torn one.
func (p *Policy) Save(settings Settings) error {
	timer := logging.StartTimer(logging.CategoryPolicy, "Save")
	defer timer.Stop()

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create policy dir: %v", ghosterr.ErrIO, err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal policy: %v", ghosterr.ErrStore, err)
	}

	tmp, err := os.CreateTemp(dir, ".policy-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp policy file: %v", ghosterr.ErrIO, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write temp policy file: %v", ghosterr.ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: fsync temp policy file: %v", ghosterr.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp policy file: %v", ghosterr.ErrIO, err)
	}
	if err := os.Rename(tmpPath, p.path); err != nil {
		return fmt.Errorf("%w: rename policy file: %v", ghosterr.ErrIO, err)
	}

	p.snapshot.Store(&settings)
	logging.Policy("policy saved to %s", p.path)
	return nil
}

// AllowsActions implements §4.2's allows_actions().
func (p *Policy) AllowsActions() bool {
	s := p.Load()
	return s.AutonomyLevel != Observer && !s.ReadOnly
}

// RequiresConfirmation implements §4.2's requires_confirmation(risk).
func (p *Policy) RequiresConfirmation(risk Risk) bool {
	s := p.Load()
	switch s.AutonomyLevel {
	case Observer:
		return true // blocked upstream by AllowsActions, confirmation moot but conservative
	case Suggester:
		return true
	case Supervised:
		return risk == RiskHigh
	case Autonomous:
		return false
	default:
		return true
	}
}

// CanUseVisualAutomation implements §4.2's can_use_visual_automation(site).
func (p *Policy) CanUseVisualAutomation(site string) bool {
	s := p.Load()
	if !s.ConsentVisualAutomation || s.ReadOnly {
		return false
	}
	if !p.AllowsActions() {
		return false
	}
	if containsSite(s.BlockedSites, site) {
		return false
	}
	if len(s.AllowedSites) > 0 && !containsSite(s.AllowedSites, site) {
		return false
	}
	return true
}

// Redact implements §4.2's redact(text): regex-based PII scrub. The
// caller decides whether to apply it; Policy only exposes the function.
func (p *Policy) Redact(text string) string {
	return p.redactor.redact(text)
}

func containsSite(list []string, site string) bool {
	for _, s := range list {
		if s == site {
			return true
		}
	}
	return false
}

package guard

import (
	"net/url"
	"strings"
	"time"

	"github.com/os-ghost/core/internal/agent"
	"github.com/os-ghost/core/internal/logging"
)

// SiteGuard flags browsing contexts the orchestrator should refuse to
// act on: an explicit blocklist plus the suspicious-host heuristic
// (IP-literal, punycode) adapted from the teacher's browser honeypot
// concept — a safety net for automated browser actions rather than a
// human-facing warning.
type SiteGuard struct {
	blocked map[string]struct{}
}

// NewSiteGuard builds a SiteGuard from an explicit blocklist (hostnames
// or suffixes, matched case-insensitively).
func NewSiteGuard(blocked []string) *SiteGuard {
	set := make(map[string]struct{}, len(blocked))
	for _, b := range blocked {
		set[strings.ToLower(b)] = struct{}{}
	}
	return &SiteGuard{blocked: set}
}

func (g *SiteGuard) isBlocked(host string) (bool, string) {
	host = strings.ToLower(host)
	for suffix := range g.blocked {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true, "site is on the blocklist: " + suffix
		}
	}
	if isSuspiciousHost(host) {
		return true, "suspicious host pattern"
	}
	return false, ""
}

// Guard bundles the input validator, leak detector, and site guard into
// the two interfaces internal/orchestrator depends on structurally
// (InputGuard, OutputGuard) without either package importing the other.
type Guard struct {
	Input *InputValidator
	Leak  *LeakDetector
	Sites *SiteGuard
}

// New builds a Guard with default collaborators; callers may construct
// the pieces individually for finer control (e.g. a custom blocklist).
func New(bounds ScreenBounds, minActionInterval time.Duration, blockedSites []string) *Guard {
	return &Guard{
		Input: NewInputValidator(bounds, minActionInterval),
		Leak:  NewLeakDetector(),
		Sites: NewSiteGuard(blockedSites),
	}
}

// CheckInput implements internal/orchestrator.InputGuard: it rejects
// requests whose current browsing context is on the site blocklist or
// matches a suspicious-host heuristic.
func (g *Guard) CheckInput(ctx agent.Context) (bool, string) {
	host := hostOf(ctx.CurrentURL)
	if host == "" {
		return true, "Ok"
	}
	if blocked, reason := g.Sites.isBlocked(host); blocked {
		logging.GuardWarn("input rejected for host %s: %s", host, reason)
		return false, reason
	}
	return true, "Ok"
}

// CheckOutput implements internal/orchestrator.OutputGuard: it scans the
// final message for leaked credentials and replaces it with a
// sanitized/blocked placeholder when a Critical or High match fires.
func (g *Guard) CheckOutput(text string) (string, bool) {
	result := g.Leak.Scan(text)
	if len(result.Matches) == 0 {
		return text, false
	}
	if result.Blocked {
		logging.GuardWarn("output blocked: %d leak pattern match(es)", len(result.Matches))
		return "[message withheld: potential credential leak detected]", true
	}
	return result.Sanitized, true
}

// hostOf extracts the hostname component from a URL-ish string.
func hostOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}

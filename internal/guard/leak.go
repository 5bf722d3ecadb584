package guard

import (
	"regexp"
	"sort"
	"strconv"
)

// Severity classifies a leak pattern's risk. Critical and High block the
// request/response outright; Medium and Low are sanitized but allowed
// through.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// leakPattern is one named, severity-classified regex the detector
// scans for.
type leakPattern struct {
	name     string
	severity Severity
	regex    *regexp.Regexp
}

// leakPatterns is the fixed list spec.md §4.11 names: cloud keys, API
// keys, bearer tokens, private-key headers, JWTs, database URLs.
var leakPatterns = []leakPattern{
	{"aws_access_key", SeverityCritical, regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)},
	{"aws_secret_key", SeverityCritical, regexp.MustCompile(`(?i)aws_secret_access_key\s*[:=]\s*[A-Za-z0-9/+=]{40}`)},
	{"gcp_service_key", SeverityCritical, regexp.MustCompile(`"type":\s*"service_account"`)},
	{"private_key_header", SeverityCritical, regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH )?PRIVATE KEY-----`)},
	{"bearer_token", SeverityHigh, regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-_.~+/]{20,}`)},
	{"jwt", SeverityHigh, regexp.MustCompile(`\bey[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\b`)},
	{"generic_api_key", SeverityHigh, regexp.MustCompile(`(?i)\b(?:api[_-]?key|access[_-]?token)["']?\s*[:=]\s*["']?[A-Za-z0-9_\-]{20,}`)},
	{"database_url", SeverityMedium, regexp.MustCompile(`(?i)\b(?:postgres|postgresql|mysql|mongodb(?:\+srv)?)://[^\s"']+`)},
	{"slack_token", SeverityMedium, regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`)},
	{"generic_secret_assignment", SeverityLow, regexp.MustCompile(`(?i)\bsecret["']?\s*[:=]\s*["']?[A-Za-z0-9_\-]{12,}`)},
}

// maxScanBytes truncates scan input before pattern matching, bounding
// the cost of scanning a large response body.
const maxScanBytes = 256 * 1024

// Match is one detected occurrence, with byte offsets into the scanned
// text (before sanitization).
type Match struct {
	Name     string
	Severity Severity
	Start    int
	End      int
}

// ScanResult is LeakDetector.Scan's outcome.
type ScanResult struct {
	Blocked   bool
	Matches   []Match
	Sanitized string
}

// LeakDetector scans text for credential-shaped patterns.
type LeakDetector struct {
	patterns []leakPattern
}

// NewLeakDetector returns a detector using the fixed pattern list.
func NewLeakDetector() *LeakDetector {
	return &LeakDetector{patterns: leakPatterns}
}

// Scan finds every pattern match in text, blocking on Critical/High, and
// returns a sanitized copy with each match replaced in reverse position
// order (so earlier offsets stay valid as later ones are rewritten).
func (d *LeakDetector) Scan(text string) ScanResult {
	if len(text) > maxScanBytes {
		text = text[:maxScanBytes]
	}

	var matches []Match
	for _, p := range d.patterns {
		for _, loc := range p.regex.FindAllStringIndex(text, -1) {
			matches = append(matches, Match{Name: p.name, Severity: p.severity, Start: loc[0], End: loc[1]})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })

	blocked := false
	for _, m := range matches {
		if m.Severity == SeverityCritical || m.Severity == SeverityHigh {
			blocked = true
			break
		}
	}

	sanitized := text
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		placeholder := "[REDACTED:" + string(m.Severity) + ":" + m.Name + "]"
		sanitized = sanitized[:m.Start] + placeholder + sanitized[m.End:]
	}

	return ScanResult{Blocked: blocked, Matches: matches, Sanitized: sanitized}
}

// ScanRequest scans an outbound HTTP request's URL, headers, and body.
func (d *LeakDetector) ScanRequest(url string, headers map[string]string, body string) ScanResult {
	return d.Scan(joinScanTargets(url, headers, body))
}

// ScanResponse scans an inbound HTTP response's status, headers, and
// body.
func (d *LeakDetector) ScanResponse(status int, headers map[string]string, body string) ScanResult {
	return d.Scan(joinScanTargets(statusLine(status), headers, body))
}

func joinScanTargets(head string, headers map[string]string, body string) string {
	out := head + "\n"
	for k, v := range headers {
		out += k + ": " + v + "\n"
	}
	out += body
	return out
}

func statusLine(status int) string {
	return "status:" + strconv.Itoa(status)
}

// Package ghosterr defines the error taxonomy shared across the core's
// components. Errors are plain values; components wrap a sentinel with
// fmt.Errorf("...: %w", Sentinel) at the point of failure so callers can
// still errors.Is against the taxonomy.
package ghosterr

import "errors"

var (
	// ErrConsentDenied is returned when a policy gate rejects a side effect.
	// It is surfaced to the caller and never converted into an execution.
	ErrConsentDenied = errors.New("consent denied")

	// ErrInvalidTransition is returned when the action queue refuses a
	// status change that the state machine does not permit.
	ErrInvalidTransition = errors.New("invalid action status transition")

	// ErrInvalidParams is returned when a tool invocation is missing a
	// required argument or supplies one of the wrong type.
	ErrInvalidParams = errors.New("invalid tool parameters")

	// ErrProviderUnavailable is returned when, after failover, no AI
	// provider could serve a call.
	ErrProviderUnavailable = errors.New("no AI provider available")

	// ErrProviderTimeout is returned when a provider call was dropped
	// because it exceeded its deadline.
	ErrProviderTimeout = errors.New("provider call timed out")

	// ErrProviderRateLimited is returned when a call exceeded the
	// primary's rate limit and was dropped rather than queued further.
	ErrProviderRateLimited = errors.New("provider rate limited")

	// ErrParseFailure is returned when a structured LLM response could
	// not be parsed. Callers decide between a fail-safe rejection and a
	// heuristic fallback.
	ErrParseFailure = errors.New("structured output parse failure")

	// ErrSafetyViolation is returned when content is blocked by a
	// guardrail or leak scan.
	ErrSafetyViolation = errors.New("safety violation")

	// ErrPlanFailure is returned when a workflow step or its verify step
	// fails; callers should expect prior reversible steps to have been
	// rolled back LIFO before this error surfaces.
	ErrPlanFailure = errors.New("plan execution failed")

	// ErrIO wraps a persistence failure. The affected write is reported
	// but must not abort the process.
	ErrIO = errors.New("io error")

	// ErrStore wraps a store-specific failure (corruption, not-found on a
	// corrupt key, etc).
	ErrStore = errors.New("store error")

	// ErrCancelled is returned when an operation is interrupted by a
	// timeout or an explicit cancellation.
	ErrCancelled = errors.New("operation cancelled")

	// ErrNotFound is a general not-found sentinel used by the store and
	// queue lookups.
	ErrNotFound = errors.New("not found")
)

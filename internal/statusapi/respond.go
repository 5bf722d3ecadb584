package statusapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/os-ghost/core/internal/ghosterr"
	"github.com/os-ghost/core/internal/logging"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.APIWarn("failed to encode response: %v", err)
	}
}

// writeError maps a ghosterr sentinel to the HTTP status §6's CLI
// expects (0 success / 1 error at the process level; here the
// corresponding 4xx/5xx family the CLI's HTTP client translates back
// into that exit code).
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ghosterr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ghosterr.ErrInvalidParams):
		status = http.StatusBadRequest
	case errors.Is(err, ghosterr.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, ghosterr.ErrConsentDenied):
		status = http.StatusForbidden
	case errors.Is(err, ghosterr.ErrProviderRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, ghosterr.ErrProviderTimeout), errors.Is(err, ghosterr.ErrCancelled):
		status = http.StatusGatewayTimeout
	case errors.Is(err, ghosterr.ErrProviderUnavailable):
		status = http.StatusServiceUnavailable
	}

	logging.APIWarn("request failed: %v", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

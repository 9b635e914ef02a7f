// Package handlers implements the HTTP endpoints: device discovery, targeted
// search, tower lookups, status, and the operational probes.
package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/h9zdev/wiretapper/internal/config"
	"github.com/h9zdev/wiretapper/internal/core/cache"
	"github.com/h9zdev/wiretapper/internal/core/engine"
	"github.com/h9zdev/wiretapper/internal/core/ratelimit"
	apperrors "github.com/h9zdev/wiretapper/internal/errors"
	"github.com/h9zdev/wiretapper/internal/metrics"
)

// API bundles the dependencies the data endpoints need. Built once at
// startup; no package-level state beyond the injected error responder.
type API struct {
	Settings *config.Settings
	Engine   *engine.Aggregator
	Limiter  *ratelimit.Limiter
	Cache    *cache.Store
}

// clientKey identifies a caller for rate limiting: first X-Forwarded-For
// entry, else the peer address.
func clientKey(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// admit runs the per-endpoint-class rate limit check and writes the 429
// envelope on rejection.
func (a *API) admit(w http.ResponseWriter, r *http.Request, endpoint string) bool {
	key := endpoint + ":" + clientKey(r)
	if a.Limiter.Allow(key, a.Settings.RateLimitRPM) {
		return true
	}

	metrics.RecordRateLimitRejection(endpoint)
	respondWithError(w, r, apperrors.NewRateLimitedError("Rate limit exceeded. Please slow down."))
	return false
}

func parseCoord(r *http.Request, name string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

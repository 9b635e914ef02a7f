package handlers

import (
	"net/http"

	"github.com/h9zdev/wiretapper/internal/core"
	apperrors "github.com/h9zdev/wiretapper/internal/errors"
)

// NearbyResponse is the /nearby body.
type NearbyResponse struct {
	Devices []core.Device `json:"devices"`
	Meta    NearbyMeta    `json:"meta"`
}

type NearbyMeta struct {
	Cached bool `json:"cached"`
}

// Nearby handles GET /nearby: devices around a coordinate for mode wifi or
// bluetooth. Coordinates are required and must parse; equator/meridian
// points are as valid as any other.
func (a *API) Nearby(w http.ResponseWriter, r *http.Request) {
	lat, okLat := parseCoord(r, "lat")
	lon, okLon := parseCoord(r, "lon")
	if !okLat || !okLon {
		respondWithError(w, r, apperrors.NewInvalidInputError("Missing coordinates"))
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "wifi"
	}

	if !a.admit(w, r, "nearby") {
		return
	}

	devices, cached := a.Engine.Nearby(r.Context(), lat, lon, mode)
	writeJSON(w, http.StatusOK, NearbyResponse{
		Devices: devices,
		Meta:    NearbyMeta{Cached: cached},
	})
}

package handlers

import (
	"net/http"

	apperrors "github.com/h9zdev/wiretapper/internal/errors"
)

// Default map center when /api/geo/towers is called without coordinates.
const (
	defaultTowersLat = 51.505
	defaultTowersLon = -0.09
)

// Towers handles GET /api/geo/towers: cell towers in a wide box around the
// given (or default) center, as a bare JSON array.
func (a *API) Towers(w http.ResponseWriter, r *http.Request) {
	lat, okLat := parseCoord(r, "lat")
	lon, okLon := parseCoord(r, "lon")
	if !okLat || !okLon {
		lat = defaultTowersLat
		lon = defaultTowersLon
	}

	if !a.Settings.OpenCellIDConfigured() {
		respondWithError(w, r, apperrors.NewInvalidInputError("Missing OPENCELLID_API_KEY"))
		return
	}

	if !a.admit(w, r, "towers") {
		return
	}

	towers, err := a.Engine.Towers(r.Context(), lat, lon)
	if err != nil {
		respondWithError(w, r, apperrors.WrapUpstream(r.Context(), err, "Upstream API error"))
		return
	}

	writeJSON(w, http.StatusOK, towers)
}

// CellTowerClick handles GET /api/geo/celltower: the towers near a clicked
// map point. Coordinates are required here.
func (a *API) CellTowerClick(w http.ResponseWriter, r *http.Request) {
	lat, okLat := parseCoord(r, "lat")
	lon, okLon := parseCoord(r, "lon")
	if !okLat || !okLon {
		respondWithError(w, r, apperrors.NewInvalidInputError("Missing coordinates"))
		return
	}

	if !a.admit(w, r, "celltower") {
		return
	}

	towers, err := a.Engine.CellTowerClick(r.Context(), lat, lon)
	if err != nil {
		respondWithError(w, r, apperrors.WrapUpstream(r.Context(), err, "Upstream API error"))
		return
	}

	writeJSON(w, http.StatusOK, towers)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/h9zdev/wiretapper/internal/core"
	"github.com/h9zdev/wiretapper/internal/core/engine"
	apperrors "github.com/h9zdev/wiretapper/internal/errors"
)

// SearchResponse is the /searchzz body.
type SearchResponse struct {
	Devices []core.Device `json:"devices"`
}

// Search handles GET /searchzz: targeted lookup by location, bssid, ssid or
// network (IP / free text).
func (a *API) Search(w http.ResponseWriter, r *http.Request) {
	searchType := r.URL.Query().Get("type")
	query := r.URL.Query().Get("query")
	if searchType == "" || query == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("Missing search parameters"))
		return
	}

	if !a.admit(w, r, "search") {
		return
	}

	devices, err := a.Engine.Search(r.Context(), searchType, query)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidLocation) {
			respondWithError(w, r, apperrors.NewInvalidInputError("Invalid location format"))
			return
		}
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "search failed"))
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{Devices: devices})
}

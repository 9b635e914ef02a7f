package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed wifi-search.html
var mapPage []byte

// MapPage handles GET /map-w, serving the embedded Leaflet map UI.
func MapPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(mapPage)
}

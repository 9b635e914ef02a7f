package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

const wigleBaseURL = "https://api.wigle.net"

// boundingDelta is the half-width of the bounding box for coordinate
// searches: center ± 0.01° is roughly 1.1 km.
const boundingDelta = 0.01

// Wigle queries the WiGLE network registry for WiFi and Bluetooth networks,
// by bounding box or by exact identifier.
type Wigle struct {
	APIName  string
	APIToken string
	Client   *http.Client
	BaseURL  string // test override
}

// WigleNetwork is one provider-native result item. Bluetooth results carry
// Name instead of SSID and repurpose Type for the device class.
type WigleNetwork struct {
	Trilat     float64  `json:"trilat"`
	Trilong    float64  `json:"trilong"`
	SSID       string   `json:"ssid"`
	Name       string   `json:"name"`
	NetID      string   `json:"netid"`
	Vendor     string   `json:"vendor"`
	Type       string   `json:"type"`
	Level      *float64 `json:"level"`
	LastUpdate string   `json:"lastupdt"`
}

// NetworkSearch returns WiFi networks within the bounding box around the
// given center.
func (w *Wigle) NetworkSearch(ctx context.Context, lat, lon float64) ([]WigleNetwork, error) {
	return w.search(ctx, "/api/v2/network/search", boundingBox(lat, lon), true)
}

// BluetoothSearch returns Bluetooth devices within the bounding box around
// the given center.
func (w *Wigle) BluetoothSearch(ctx context.Context, lat, lon float64) ([]WigleNetwork, error) {
	return w.search(ctx, "/api/v2/bluetooth/search", boundingBox(lat, lon), true)
}

// SearchBSSID looks up networks by exact BSSID.
func (w *Wigle) SearchBSSID(ctx context.Context, bssid string) ([]WigleNetwork, error) {
	return w.search(ctx, "/api/v2/network/search", url.Values{"netid": {bssid}}, false)
}

// SearchSSID looks up networks by exact SSID.
func (w *Wigle) SearchSSID(ctx context.Context, ssid string) ([]WigleNetwork, error) {
	return w.search(ctx, "/api/v2/network/search", url.Values{"ssid": {ssid}}, false)
}

// search performs an authenticated GET against a WiGLE endpoint. When
// lenientEmpty is set, a 2xx status other than 200 (the bounding-box
// endpoints answer 204 for empty regions) yields an empty list.
func (w *Wigle) search(ctx context.Context, path string, params url.Values, lenientEmpty bool) ([]WigleNetwork, error) {
	base := w.BaseURL
	if base == "" {
		base = wigleBaseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &UpstreamError{Message: "building wigle request failed", Err: err}
	}
	req.SetBasicAuth(w.APIName, w.APIToken)

	resp, err := doRequest(w.Client, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if lenientEmpty && resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var payload struct {
		Results []WigleNetwork `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Message: "decoding wigle response failed", Err: err}
	}
	return payload.Results, nil
}

func boundingBox(lat, lon float64) url.Values {
	format := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return url.Values{
		"latrange1":  {format(lat - boundingDelta)},
		"latrange2":  {format(lat + boundingDelta)},
		"longrange1": {format(lon - boundingDelta)},
		"longrange2": {format(lon + boundingDelta)},
	}
}

package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

const shodanBaseURL = "https://api.shodan.io"

// Shodan queries the internet-host scanner by geo or free-text query.
type Shodan struct {
	APIKey  string
	Client  *http.Client
	BaseURL string // test override
}

// ShodanLocation carries the scanner's coordinate estimate for a host.
type ShodanLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ShodanHost is one provider-native banner match.
type ShodanHost struct {
	IPStr    string         `json:"ip_str"`
	Location ShodanLocation `json:"location"`
	Data     string         `json:"data"`
	Org      string         `json:"org"`
	Product  string         `json:"product"`
}

// HostSearch runs a host/banner search. limit <= 0 leaves the provider
// default in place.
func (s *Shodan) HostSearch(ctx context.Context, query string, limit int) ([]ShodanHost, error) {
	base := s.BaseURL
	if base == "" {
		base = shodanBaseURL
	}

	params := url.Values{
		"key":   {s.APIKey},
		"query": {query},
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/shodan/host/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &UpstreamError{Message: "building shodan request failed", Err: err}
	}

	resp, err := doRequest(s.Client, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	var payload struct {
		Matches []ShodanHost `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Message: "decoding shodan response failed", Err: err}
	}
	return payload.Matches, nil
}

// Package fallback supplies synthetic device data when no configured
// provider produced results, so responses are never silently empty.
package fallback

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/h9zdev/wiretapper/internal/core"
)

// Jitter deltas keep synthetic points from collapsing onto one map pin.
const (
	bluetoothJitter = 0.002
	wifiJitter      = 0.001

	// locationMatchDelta is the proximity threshold for sample filtering.
	locationMatchDelta = 0.1
)

// samples is the built-in dataset the search fallback filters against. It
// never fabricates coordinates; a non-matching query yields an empty result.
var samples = []core.Device{
	{
		Lat:       51.505,
		Lon:       -0.09,
		SSID:      "TestWiFi",
		BSSID:     "00:14:22:01:23:45",
		Vendor:    "Generic",
		Signal:    core.Float(-65),
		Accuracy:  core.Float(50),
		Timestamp: "2025-04-11T10:00:00Z",
		Type:      "router",
	},
	{
		Lat:       51.506,
		Lon:       -0.088,
		CellID:    "123456789",
		Vendor:    "N/A",
		Signal:    core.Float(-70),
		Accuracy:  core.Float(100),
		Timestamp: "2025-04-11T10:01:00Z",
		Type:      "cell_tower",
	},
	{
		Lat:    51.504,
		Lon:    -0.091,
		IP:     "192.168.1.100",
		Vendor: "CameraCorp",
		Type:   "camera",
	},
}

// Samples returns a copy of the built-in sample dataset.
func Samples() []core.Device {
	out := make([]core.Device, len(samples))
	copy(out, samples)
	return out
}

// Nearby fabricates a small set of plausible device records anchored near the
// query location, each jittered independently. rng may be nil, in which case
// a time-seeded source is used; tests pass a seeded source to pin outputs.
func Nearby(lat, lon float64, mode string, rng *rand.Rand) []core.Device {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	jitter := func(delta float64) float64 {
		return (rng.Float64()*2 - 1) * delta
	}

	if mode == "bluetooth" {
		return []core.Device{
			{
				Lat:    lat + jitter(bluetoothJitter),
				Lon:    lon + jitter(bluetoothJitter),
				SSID:   "Tesla Model 3",
				Type:   "car",
				Vendor: "Tesla Motors",
			},
			{
				Lat:    lat + jitter(bluetoothJitter),
				Lon:    lon + jitter(bluetoothJitter),
				SSID:   "Sony WH-1000XM4",
				Type:   "headphone",
				Vendor: "Sony Corp.",
			},
			{
				Lat:    lat + jitter(bluetoothJitter),
				Lon:    lon + jitter(bluetoothJitter),
				SSID:   "Samsung QLED 75",
				Type:   "tv",
				Vendor: "Samsung Electronics",
			},
			{
				Lat:    lat + jitter(bluetoothJitter),
				Lon:    lon + jitter(bluetoothJitter),
				SSID:   "Hidden_BT_Tracker",
				Type:   "bluetooth",
				Vendor: "Unknown",
			},
		}
	}

	return []core.Device{
		{
			Lat:    lat + jitter(wifiJitter),
			Lon:    lon + jitter(wifiJitter),
			SSID:   "CYBER_SURVEILLANCE_ROUTER",
			Type:   "router",
			Vendor: "Cisco Systems",
		},
		{
			Lat:    lat + jitter(wifiJitter),
			Lon:    lon + jitter(wifiJitter),
			SSID:   "DASHCAM_V3",
			Type:   "camera",
			Vendor: "Nextbase",
		},
		{
			Lat:    lat + jitter(wifiJitter),
			Lon:    lon + jitter(wifiJitter),
			SSID:   "5G_TOWER_B4",
			Type:   "cell_tower",
			Vendor: "Ericsson",
		},
	}
}

// FilterSamples returns the subset of the built-in samples matching a search
// query: coordinate proximity for location, case-insensitive equality for
// ssid/bssid, exact match for network (IP). Unknown search types and
// malformed location queries match nothing. The result is never nil, so an
// empty match still serializes as a JSON array.
func FilterSamples(searchType, query string) []core.Device {
	matched := []core.Device{}

	switch searchType {
	case "location":
		lat, lon, ok := parseLatLon(query)
		if !ok {
			return matched
		}
		for _, d := range samples {
			if abs(d.Lat-lat) < locationMatchDelta && abs(d.Lon-lon) < locationMatchDelta {
				matched = append(matched, d)
			}
		}
	case "ssid":
		for _, d := range samples {
			if d.SSID != "" && strings.EqualFold(d.SSID, query) {
				matched = append(matched, d)
			}
		}
	case "bssid":
		for _, d := range samples {
			if d.BSSID != "" && strings.EqualFold(d.BSSID, query) {
				matched = append(matched, d)
			}
		}
	case "network":
		for _, d := range samples {
			if d.IP != "" && d.IP == query {
				matched = append(matched, d)
			}
		}
	}

	return matched
}

func parseLatLon(query string) (float64, float64, bool) {
	parts := strings.Split(query, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

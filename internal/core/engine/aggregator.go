// Package engine aggregates device and tower records across the configured
// providers, caching per provider and request shape, classifying device names
// and falling back to synthetic data when nothing answered.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/h9zdev/wiretapper/internal/core"
	"github.com/h9zdev/wiretapper/internal/core/cache"
	"github.com/h9zdev/wiretapper/internal/core/classify"
	"github.com/h9zdev/wiretapper/internal/core/fallback"
	"github.com/h9zdev/wiretapper/internal/core/provider"
	"github.com/h9zdev/wiretapper/internal/metrics"
)

// ErrInvalidLocation reports a location query that is not "lat,lon".
var ErrInvalidLocation = errors.New("invalid location format")

// Bounding-box half-widths for the tower endpoints.
const (
	towersDelta    = 0.05
	cellClickDelta = 0.01
)

const bannerInfoLimit = 50

// WigleAPI is the WiGLE surface the aggregator consumes.
type WigleAPI interface {
	NetworkSearch(ctx context.Context, lat, lon float64) ([]provider.WigleNetwork, error)
	BluetoothSearch(ctx context.Context, lat, lon float64) ([]provider.WigleNetwork, error)
	SearchBSSID(ctx context.Context, bssid string) ([]provider.WigleNetwork, error)
	SearchSSID(ctx context.Context, ssid string) ([]provider.WigleNetwork, error)
}

// CellAPI is the token-gated cell-tower surface (UnwiredLabs process plus
// the OpenCellID area endpoint).
type CellAPI interface {
	Process(ctx context.Context, lat, lon float64) (*provider.ProcessResponse, error)
	GetInArea(ctx context.Context, bbox string) ([]core.Tower, error)
}

// AjaxAPI is the keyless OpenCellID map layer. Unlike the other provider
// surfaces it needs no credentials, so it is wired even on a bare deployment.
type AjaxAPI interface {
	AjaxCells(ctx context.Context, bbox string) ([]core.Tower, error)
}

// HostAPI is the internet-host scanner surface.
type HostAPI interface {
	HostSearch(ctx context.Context, query string, limit int) ([]provider.ShodanHost, error)
}

// VendorLookup resolves a best-effort vendor name for an IP.
type VendorLookup interface {
	Vendor(ip string) string
}

// Aggregator fans queries out to whichever providers are configured. A nil
// provider field means "not configured" and is skipped. Built once at startup
// and injected into the handlers.
type Aggregator struct {
	Cache *cache.Store

	Wigle    WigleAPI
	Cells    CellAPI
	Ajax     AjaxAPI
	Hosts    HostAPI
	Enricher VendorLookup

	NearbyTTL time.Duration
	SearchTTL time.Duration
	TowersTTL time.Duration

	Logger *zap.Logger
	Rand   *rand.Rand
}

// Nearby returns devices around (lat, lon) for mode "wifi" or "bluetooth",
// along with whether any provider answer came from cache. Provider failures
// degrade to zero records for that provider; when nothing at all answered the
// synthetic fallback set is returned.
func (a *Aggregator) Nearby(ctx context.Context, lat, lon float64, mode string) ([]core.Device, bool) {
	devices := make([]core.Device, 0)
	cached := false

	if mode == "bluetooth" {
		if a.Wigle != nil {
			key := fmt.Sprintf("wigle:bt:%.4f:%.4f", lat, lon)
			nets, hit, err := fetchCached(a, "wigle", key, a.NearbyTTL, func() ([]provider.WigleNetwork, error) {
				return a.Wigle.BluetoothSearch(ctx, lat, lon)
			})
			if err != nil {
				a.degrade("wigle", err)
			} else {
				cached = cached || hit
				for _, n := range nets {
					devices = append(devices, bluetoothDevice(n))
				}
			}
		}
	} else {
		if a.Wigle != nil {
			key := fmt.Sprintf("wigle:wifi:%.4f:%.4f", lat, lon)
			nets, hit, err := fetchCached(a, "wigle", key, a.NearbyTTL, func() ([]provider.WigleNetwork, error) {
				return a.Wigle.NetworkSearch(ctx, lat, lon)
			})
			if err != nil {
				a.degrade("wigle", err)
			} else {
				cached = cached || hit
				for _, n := range nets {
					devices = append(devices, wifiDevice(n))
				}
			}
		}

		if a.Cells != nil {
			key := fmt.Sprintf("unwired:%.4f:%.4f", lat, lon)
			resp, hit, err := fetchCached(a, "opencellid", key, a.NearbyTTL, func() (*provider.ProcessResponse, error) {
				return a.Cells.Process(ctx, lat, lon)
			})
			if err != nil {
				a.degrade("opencellid", err)
			} else {
				cached = cached || hit
				if resp != nil && resp.Status == "ok" {
					for _, c := range resp.Cells {
						devices = append(devices, cellDevice(c))
					}
				}
			}
		}

		if a.Hosts != nil {
			key := fmt.Sprintf("shodan:geo:%.4f:%.4f", lat, lon)
			hosts, hit, err := fetchCached(a, "shodan", key, a.NearbyTTL, func() ([]provider.ShodanHost, error) {
				return a.Hosts.HostSearch(ctx, fmt.Sprintf("geo:%s,%s,1", formatCoord(lat), formatCoord(lon)), 5)
			})
			if err != nil {
				a.degrade("shodan", err)
			} else {
				cached = cached || hit
				for _, h := range hosts {
					devices = append(devices, bannerDevice(h))
				}
			}
		}
	}

	if len(devices) == 0 {
		devices = fallback.Nearby(lat, lon, mode, a.Rand)
	}
	return devices, cached
}

// Search resolves a targeted query. typ is one of location, bssid, ssid or
// network; unknown types yield an empty result. An empty provider merge falls
// back to filtering the built-in samples, which may legitimately match
// nothing.
func (a *Aggregator) Search(ctx context.Context, typ, query string) ([]core.Device, error) {
	devices := make([]core.Device, 0)

	switch typ {
	case "location":
		lat, lon, ok := splitLatLon(query)
		if !ok {
			return nil, ErrInvalidLocation
		}

		if a.Wigle != nil {
			key := fmt.Sprintf("search:wigle:loc:%.4f:%.4f", lat, lon)
			nets, _, err := fetchCached(a, "wigle", key, a.SearchTTL, func() ([]provider.WigleNetwork, error) {
				return a.Wigle.NetworkSearch(ctx, lat, lon)
			})
			if err != nil {
				a.degrade("wigle", err)
			}
			for _, n := range nets {
				devices = append(devices, routerDevice(n))
			}
		}

		if a.Cells != nil {
			key := fmt.Sprintf("search:unwired:loc:%.4f:%.4f", lat, lon)
			resp, _, err := fetchCached(a, "opencellid", key, a.SearchTTL, func() (*provider.ProcessResponse, error) {
				return a.Cells.Process(ctx, lat, lon)
			})
			if err != nil {
				a.degrade("opencellid", err)
			} else if resp != nil && resp.Status == "ok" {
				for _, c := range resp.Cells {
					devices = append(devices, cellDevice(c))
				}
			}
		}

	case "bssid":
		if a.Wigle != nil {
			nets, _, err := fetchCached(a, "wigle", "search:wigle:bssid:"+query, a.SearchTTL, func() ([]provider.WigleNetwork, error) {
				return a.Wigle.SearchBSSID(ctx, query)
			})
			if err != nil {
				a.degrade("wigle", err)
			}
			for _, n := range nets {
				devices = append(devices, routerDevice(n))
			}
		}

	case "ssid":
		if a.Wigle != nil {
			nets, _, err := fetchCached(a, "wigle", "search:wigle:ssid:"+query, a.SearchTTL, func() ([]provider.WigleNetwork, error) {
				return a.Wigle.SearchSSID(ctx, query)
			})
			if err != nil {
				a.degrade("wigle", err)
			}
			for _, n := range nets {
				devices = append(devices, routerDevice(n))
			}
		}

	case "network":
		if a.Hosts != nil {
			hosts, _, err := fetchCached(a, "shodan", "search:shodan:"+query, a.SearchTTL, func() ([]provider.ShodanHost, error) {
				return a.Hosts.HostSearch(ctx, query, 0)
			})
			if err != nil {
				a.degrade("shodan", err)
			}
			for _, h := range hosts {
				devices = append(devices, a.hostDevice(h))
			}
		}
	}

	if len(devices) == 0 {
		devices = fallback.FilterSamples(typ, query)
	}
	return devices, nil
}

// Towers returns the towers in a ±0.05° box around (lat, lon) from the
// OpenCellID area endpoint. A lenient-decode nil payload surfaces as an
// UpstreamError; this is a single-provider call with nothing to degrade to.
func (a *Aggregator) Towers(ctx context.Context, lat, lon float64) ([]core.Tower, error) {
	bbox := fmt.Sprintf("%s,%s,%s,%s",
		formatCoord(lat-towersDelta), formatCoord(lon-towersDelta),
		formatCoord(lat+towersDelta), formatCoord(lon+towersDelta))
	key := "opencellid:area:" + bbox

	if v, ok := a.Cache.Get(key); ok {
		if towers, ok := v.([]core.Tower); ok {
			return towers, nil
		}
	}

	metrics.RecordProviderRequest("opencellid")
	towers, err := a.Cells.GetInArea(ctx, bbox)
	if err != nil {
		a.degrade("opencellid", err)
		return nil, err
	}
	if towers == nil {
		err := &provider.UpstreamError{Message: "upstream api error"}
		a.degrade("opencellid", err)
		return nil, err
	}

	a.Cache.Set(key, towers, a.TowersTTL)
	return towers, nil
}

// CellTowerClick returns the towers in a ±0.01° box around a clicked point
// from the OpenCellID ajax layer. Note the lon-first bbox order. An empty
// payload is an UpstreamError here, unlike Towers, because this endpoint
// always serves a feature collection when it answers at all.
func (a *Aggregator) CellTowerClick(ctx context.Context, lat, lon float64) ([]core.Tower, error) {
	bbox := fmt.Sprintf("%s,%s,%s,%s",
		formatCoord(lon-cellClickDelta), formatCoord(lat-cellClickDelta),
		formatCoord(lon+cellClickDelta), formatCoord(lat+cellClickDelta))
	key := "opencellid:ajax:" + bbox

	if v, ok := a.Cache.Get(key); ok {
		if towers, ok := v.([]core.Tower); ok {
			return towers, nil
		}
	}

	metrics.RecordProviderRequest("opencellid")
	towers, err := a.Ajax.AjaxCells(ctx, bbox)
	if err != nil {
		a.degrade("opencellid", err)
		return nil, err
	}
	if towers == nil {
		err := &provider.UpstreamError{Message: "upstream api error"}
		a.degrade("opencellid", err)
		return nil, err
	}

	a.Cache.Set(key, towers, a.TowersTTL)
	return towers, nil
}

// fetchCached serves key from the response cache or runs fetch and stores the
// result. Errors are never cached. The bool reports a cache hit.
func fetchCached[T any](a *Aggregator, name, key string, ttl time.Duration, fetch func() (T, error)) (T, bool, error) {
	if v, ok := a.Cache.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, true, nil
		}
	}

	metrics.RecordProviderRequest(name)
	v, err := fetch()
	if err != nil {
		var zero T
		return zero, false, err
	}
	a.Cache.Set(key, v, ttl)
	return v, false, nil
}

func (a *Aggregator) degrade(name string, err error) {
	metrics.RecordProviderFailure(name)
	a.logger().Warn("provider degraded",
		zap.String("provider", name),
		zap.Error(err))
}

func (a *Aggregator) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func bluetoothDevice(n provider.WigleNetwork) core.Device {
	name := n.Name
	if name == "" {
		name = n.NetID
	}
	typ := classify.Device(name, "bluetooth")

	// Bluetooth results repurpose the provider's type field as a vendor
	// hint; absent that, derive one from the classification.
	vendor := n.Type
	if vendor == "" {
		if typ == "bluetooth" {
			vendor = "Bluetooth Node"
		} else {
			vendor = titleWords(strings.ReplaceAll(typ, "_", " "))
		}
	}

	return core.Device{
		Lat:       n.Trilat,
		Lon:       n.Trilong,
		SSID:      name,
		BSSID:     n.NetID,
		Vendor:    vendor,
		Signal:    n.Level,
		Timestamp: n.LastUpdate,
		Type:      typ,
	}
}

func wifiDevice(n provider.WigleNetwork) core.Device {
	d := routerDevice(n)
	d.Type = classify.Device(n.SSID, "router")
	return d
}

func routerDevice(n provider.WigleNetwork) core.Device {
	return core.Device{
		Lat:       n.Trilat,
		Lon:       n.Trilong,
		SSID:      n.SSID,
		BSSID:     n.NetID,
		Vendor:    n.Vendor,
		Signal:    n.Level,
		Timestamp: n.LastUpdate,
		Type:      "router",
	}
}

func cellDevice(c provider.ProcessCell) core.Device {
	return core.Device{
		Lat:       c.Lat,
		Lon:       c.Lon,
		CellID:    c.CellID.String(),
		Signal:    c.Signal,
		Accuracy:  c.Accuracy,
		Timestamp: c.Updated,
		Type:      "cell_tower",
	}
}

func bannerDevice(h provider.ShodanHost) core.Device {
	return core.Device{
		Lat:  h.Location.Latitude,
		Lon:  h.Location.Longitude,
		IP:   h.IPStr,
		Info: truncate(h.Data, bannerInfoLimit),
		Type: classify.Device(h.Data, "iot_device"),
	}
}

func (a *Aggregator) hostDevice(h provider.ShodanHost) core.Device {
	typ := h.Product
	if typ == "" {
		typ = "iot"
	}
	vendor := h.Org
	if vendor == "" && a.Enricher != nil {
		vendor = a.Enricher.Vendor(h.IPStr)
	}
	return core.Device{
		Lat:    h.Location.Latitude,
		Lon:    h.Location.Longitude,
		IP:     h.IPStr,
		Vendor: vendor,
		Type:   typ,
	}
}

func splitLatLon(query string) (float64, float64, bool) {
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

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

package handlers

import "net/http"

// StatusResponse reports provider configuration and runtime limits.
type StatusResponse struct {
	Providers ProviderStatus `json:"providers"`
	Limits    LimitStatus    `json:"limits"`
	CacheTTLs CacheTTLStatus `json:"cache_ttl_s"`
	Cache     CacheStatus    `json:"cache"`
}

type ProviderStatus struct {
	Wigle      bool `json:"wigle"`
	OpenCellID bool `json:"opencellid"`
	Shodan     bool `json:"shodan"`
}

type LimitStatus struct {
	RateLimitRPM int `json:"rate_limit_rpm"`
}

type CacheTTLStatus struct {
	Nearby int `json:"nearby"`
	Search int `json:"search"`
	Towers int `json:"towers"`
}

type CacheStatus struct {
	Items int `json:"items"`
}

// Status handles GET /api/status.
func (a *API) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Providers: ProviderStatus{
			Wigle:      a.Settings.WigleConfigured(),
			OpenCellID: a.Settings.OpenCellIDConfigured(),
			Shodan:     a.Settings.ShodanConfigured(),
		},
		Limits: LimitStatus{RateLimitRPM: a.Settings.RateLimitRPM},
		CacheTTLs: CacheTTLStatus{
			Nearby: a.Settings.CacheNearbyS,
			Search: a.Settings.CacheSearchS,
			Towers: a.Settings.CacheTowersS,
		},
		Cache: CacheStatus{Items: a.Cache.Len()},
	})
}

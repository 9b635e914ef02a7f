package config

import (
	"fmt"
	"time"
)

// Settings is the complete runtime configuration. Every field can be set via
// WIRETAPPER_-prefixed environment variables; provider credentials also bind
// to their conventional unprefixed names (WIGLE_API_NAME, WIGLE_API_TOKEN,
// OPENCELLID_API_KEY, SHODAN_API_KEY).
type Settings struct {
	WigleAPIName     string `mapstructure:"wigle_api_name"`
	WigleAPIToken    string `mapstructure:"wigle_api_token"`
	OpenCellIDAPIKey string `mapstructure:"opencellid_api_key"`
	ShodanAPIKey     string `mapstructure:"shodan_api_key"`

	Host  string `mapstructure:"host"`
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`

	// StrictKeys makes startup fail when any provider credential is
	// missing, instead of serving fallback data.
	StrictKeys bool `mapstructure:"strict_keys"`

	RateLimitRPM int `mapstructure:"rate_limit_rpm"`

	CacheNearbyS int `mapstructure:"cache_nearby_s"`
	CacheSearchS int `mapstructure:"cache_search_s"`
	CacheTowersS int `mapstructure:"cache_towers_s"`

	// RDAPEnrich enables best-effort RDAP vendor lookup for host records.
	RDAPEnrich bool `mapstructure:"rdap_enrich"`

	LogLevel string `mapstructure:"log_level"`
}

// WigleConfigured reports whether both WiGLE credential parts are present.
func (s *Settings) WigleConfigured() bool {
	return s.WigleAPIName != "" && s.WigleAPIToken != ""
}

func (s *Settings) OpenCellIDConfigured() bool { return s.OpenCellIDAPIKey != "" }

func (s *Settings) ShodanConfigured() bool { return s.ShodanAPIKey != "" }

func (s *Settings) NearbyTTL() time.Duration { return time.Duration(s.CacheNearbyS) * time.Second }

func (s *Settings) SearchTTL() time.Duration { return time.Duration(s.CacheSearchS) * time.Second }

func (s *Settings) TowersTTL() time.Duration { return time.Duration(s.CacheTowersS) * time.Second }

// MissingCredentials lists the env var names of absent provider credentials.
func (s *Settings) MissingCredentials() []string {
	var missing []string
	if s.WigleAPIName == "" {
		missing = append(missing, "WIGLE_API_NAME")
	}
	if s.WigleAPIToken == "" {
		missing = append(missing, "WIGLE_API_TOKEN")
	}
	if s.OpenCellIDAPIKey == "" {
		missing = append(missing, "OPENCELLID_API_KEY")
	}
	if s.ShodanAPIKey == "" {
		missing = append(missing, "SHODAN_API_KEY")
	}
	return missing
}

// Validate checks settings consistency. In strict mode every provider
// credential must be present.
func (s *Settings) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	if s.RateLimitRPM <= 0 {
		return fmt.Errorf("rate_limit_rpm must be positive, got %d", s.RateLimitRPM)
	}

	if s.StrictKeys {
		if missing := s.MissingCredentials(); len(missing) > 0 {
			return fmt.Errorf("strict_keys enabled but missing: %v", missing)
		}
	}
	return nil
}

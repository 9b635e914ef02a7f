// Package config loads runtime settings from the environment, layering
// defaults under WIRETAPPER_-prefixed variables and the conventional
// provider credential names. A .env file in the working directory is
// honored when present.
package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "WIRETAPPER"

// defaults maps every settings key to its default value. Registering a
// default is also what makes viper resolve the prefixed env var for the key.
var defaults = map[string]any{
	"wigle_api_name":     "",
	"wigle_api_token":    "",
	"opencellid_api_key": "",
	"shodan_api_key":     "",
	"host":               "0.0.0.0",
	"port":               8080,
	"debug":              true,
	"strict_keys":        false,
	"rate_limit_rpm":     60,
	"cache_nearby_s":     45,
	"cache_search_s":     60,
	"cache_towers_s":     120,
	"rdap_enrich":        false,
	"log_level":          "info",
}

// credentialEnvAliases binds provider credentials to their conventional
// unprefixed variable names in addition to the WIRETAPPER_ ones.
var credentialEnvAliases = map[string]string{
	"wigle_api_name":     "WIGLE_API_NAME",
	"wigle_api_token":    "WIGLE_API_TOKEN",
	"opencellid_api_key": "OPENCELLID_API_KEY",
	"shodan_api_key":     "SHODAN_API_KEY",
}

// Load reads settings from the environment and validates them.
func Load() (*Settings, error) {
	// Best-effort: absence of a .env file is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, alias := range credentialEnvAliases {
		if err := v.BindEnv(key, envPrefix+"_"+alias, alias); err != nil {
			return nil, fmt.Errorf("binding %s: %w", alias, err)
		}
	}

	var settings Settings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &settings,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("building config decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

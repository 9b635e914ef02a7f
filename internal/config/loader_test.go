package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	settings, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", settings.Host)
	require.Equal(t, 8080, settings.Port)
	require.True(t, settings.Debug)
	require.False(t, settings.StrictKeys)
	require.Equal(t, 60, settings.RateLimitRPM)
	require.Equal(t, 45, settings.CacheNearbyS)
	require.Equal(t, 60, settings.CacheSearchS)
	require.Equal(t, 120, settings.CacheTowersS)
	require.Equal(t, "info", settings.LogLevel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WIRETAPPER_PORT", "9090")
	t.Setenv("WIRETAPPER_RATE_LIMIT_RPM", "5")
	t.Setenv("WIRETAPPER_LOG_LEVEL", "debug")

	settings, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, settings.Port)
	require.Equal(t, 5, settings.RateLimitRPM)
	require.Equal(t, "debug", settings.LogLevel)
}

func TestLoadCredentialAliases(t *testing.T) {
	t.Setenv("WIGLE_API_NAME", "AIDname")
	t.Setenv("WIGLE_API_TOKEN", "token")
	t.Setenv("OPENCELLID_API_KEY", "ockey")
	t.Setenv("SHODAN_API_KEY", "")

	settings, err := Load()
	require.NoError(t, err)
	require.True(t, settings.WigleConfigured())
	require.True(t, settings.OpenCellIDConfigured())
	require.False(t, settings.ShodanConfigured())
}

func TestLoadStrictKeysFailure(t *testing.T) {
	t.Setenv("WIRETAPPER_STRICT_KEYS", "true")
	for _, alias := range credentialEnvAliases {
		t.Setenv(alias, "")
	}

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "WIGLE_API_NAME")
	require.Contains(t, err.Error(), "SHODAN_API_KEY")
}

func TestLoadStrictKeysSatisfied(t *testing.T) {
	t.Setenv("WIRETAPPER_STRICT_KEYS", "true")
	t.Setenv("WIGLE_API_NAME", "n")
	t.Setenv("WIGLE_API_TOKEN", "t")
	t.Setenv("OPENCELLID_API_KEY", "k")
	t.Setenv("SHODAN_API_KEY", "s")

	settings, err := Load()
	require.NoError(t, err)
	require.True(t, settings.StrictKeys)
}

func TestValidateRejectsBadPort(t *testing.T) {
	t.Setenv("WIRETAPPER_PORT", "0")

	_, err := Load()
	require.Error(t, err)
}

func TestMissingCredentials(t *testing.T) {
	s := &Settings{WigleAPIName: "n", WigleAPIToken: "t"}
	require.Equal(t, []string{"OPENCELLID_API_KEY", "SHODAN_API_KEY"}, s.MissingCredentials())
}

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/h9zdev/wiretapper/internal/config"
	"github.com/h9zdev/wiretapper/internal/observability"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show resolved configuration and provider credentials",
	Long: `Show the resolved runtime configuration: which provider credentials are
present, the rate limit, and the cache TTLs. Secrets are never printed, only
whether they are set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}

		configured := func(ok bool) string {
			if ok {
				return "configured"
			}
			return "missing"
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Setting", "Value"})
		t.AppendRows([]table.Row{
			{"listen", fmt.Sprintf("%s:%d", settings.Host, settings.Port)},
			{"wigle", configured(settings.WigleConfigured())},
			{"opencellid", configured(settings.OpenCellIDConfigured())},
			{"shodan", configured(settings.ShodanConfigured())},
			{"strict_keys", strconv.FormatBool(settings.StrictKeys)},
			{"rate_limit_rpm", strconv.Itoa(settings.RateLimitRPM)},
			{"cache_nearby_s", strconv.Itoa(settings.CacheNearbyS)},
			{"cache_search_s", strconv.Itoa(settings.CacheSearchS)},
			{"cache_towers_s", strconv.Itoa(settings.CacheTowersS)},
			{"rdap_enrich", strconv.FormatBool(settings.RDAPEnrich)},
			{"log_level", settings.LogLevel},
		})
		t.Render()

		if missing := settings.MissingCredentials(); len(missing) > 0 && observability.CLILogger != nil {
			observability.CLILogger.Sugar().Infof("missing credentials: %v (affected providers serve fallback data)", missing)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

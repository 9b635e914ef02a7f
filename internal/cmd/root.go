// Package cmd implements the wiretapper CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/h9zdev/wiretapper/internal/observability"
)

var verbose bool

// Version info set by main package
var versionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wiretapper",
	Short: "Location-based device discovery aggregator",
	Long: `WireTapper aggregates WiFi networks, Bluetooth devices, cell towers and
internet hosts around a location from WiGLE, OpenCellID/UnwiredLabs and
Shodan, with caching, rate limiting and keyword device classification.

Use the subcommands to perform specific operations.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() {
		observability.InitCLILogger(verbose)
	})

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
}

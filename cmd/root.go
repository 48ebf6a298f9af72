package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calsync application
var rootCmd = &cobra.Command{
	Use:   "calsync",
	Short: "Synchronizes the household planning with external calendars",
	Long: `calsync links the household planning (meals, family activities, events)
with external calendar providers.

It can import events from a Google calendar or a public iCal feed,
export meals and activities to a linked calendar, and render any
time window as an iCal document.`,
	SilenceUsage: true,
}

// configPath overrides the default configuration file location.
var configPath string

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calsync version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the configuration file (default: ~/.config/calsync/config.yaml)")

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newCalendarsCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newVersionCmd())
}

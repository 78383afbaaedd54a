package main

import (
	"os"

	"github.com/dennisdiepolder/availability/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

func newRootCmd() *cobra.Command {
	var rosterFile string
	var open bool

	rootCmd := &cobra.Command{
		Use:   "availability",
		Short: "Live availability dashboard backend",
		Long: `Reconciles the published chat schedule, live chat statuses and out-of-office
lists into one snapshot per second and pushes it to dashboard clients.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rosterFile, open)
		},
	}
	rootCmd.PersistentFlags().StringVar(&rosterFile, "roster", "", "YAML roster file (overrides ROSTER_FILE)")
	rootCmd.Flags().BoolVar(&open, "open", false, "open the dashboard in a browser once listening")

	rootCmd.AddCommand(newServeCmd(&rosterFile))
	rootCmd.AddCommand(newWindowsCmd(&rosterFile))
	rootCmd.AddCommand(newResolveCmd(&rosterFile))
	return rootCmd
}

// loadStatic reads the roster file named by the flag, falling back to ROSTER_FILE
func loadStatic(flagValue string) (config.Static, error) {
	path := flagValue
	if path == "" {
		path = os.Getenv("ROSTER_FILE")
	}
	return config.LoadStatic(path)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

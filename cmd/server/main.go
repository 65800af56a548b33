package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "service-trips"

var rootCmd = &cobra.Command{
	Use:   "service-trips",
	Short: "Trip planning map API",
	Long: `service-trips serves destinations, placemarks and per-user map sessions
(search, dropped pins, routing and street-level previews).

Run without a subcommand to start the HTTP API.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

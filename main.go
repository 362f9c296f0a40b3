package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd - habitat-nav CLI
var rootCmd = &cobra.Command{
	Use:   "habitat-nav",
	Short: "Crew path planning and corridor-width certification for habitat layouts",
	Long: `habitat-nav finds walkable routes across a circular habitat floor and
certifies that every stretch of the route is wide enough for crew traffic.

Run "habitat-nav serve" for the HTTP/WebSocket API or
"habitat-nav check -f query.yaml" to certify a single route offline.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Gogogate is a command line client for GoGoGate2 garage door
// controllers. It talks directly to the device's web interface:
//
//	gogogate --host 192.168.1.123 --username admin --password ... status
//	gogogate --host 192.168.1.123 --username admin --password ... toggle 2
//
// Credentials can also be supplied via GOGOGATE_HOST, GOGOGATE_USERNAME
// and GOGOGATE_PASSWORD.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pcurrier/gogogate2/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	flagHost     string
	flagUsername string
	flagPassword string
)

var rootCmd = &cobra.Command{
	Use:          "gogogate",
	Short:        "GoGoGate2 garage door controller client",
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&flagHost, "host", os.Getenv("GOGOGATE_HOST"), "device IP or hostname")
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", os.Getenv("GOGOGATE_USERNAME"), "device username")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", os.Getenv("GOGOGATE_PASSWORD"), "device password")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tempCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gogogate %s (commit: %s)\n", version.Version, version.Commit)
	},
}

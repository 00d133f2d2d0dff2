package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/studyvault/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("studyvault %s (%s)\n", version.Version, version.Commit)
	},
}

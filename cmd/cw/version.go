package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			outputJSON(map[string]string{
				"version": Version,
				"go":      runtime.Version(),
			})
			return
		}
		fmt.Printf("cw version %s (%s)\n", Version, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

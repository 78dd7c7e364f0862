package main

import (
	"fmt"

	"github.com/aretw0/diagraph"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of diagraph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "diagraph version %s\n", diagraph.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"fmt"

	"github.com/aretw0/dramaflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dramaflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dramaflow version %s\n", dramaflow.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

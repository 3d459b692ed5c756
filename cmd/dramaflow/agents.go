package main

import (
	"fmt"

	"github.com/aretw0/dramaflow/pkg/agent"
	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the router and handler agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		personas, err := agent.DefaultPersonas()
		if cfg.PersonasPath != "" {
			personas, err = agent.LoadPersonas(cfg.PersonasPath)
		}
		if err != nil {
			return err
		}
		for _, p := range personas {
			info := p.Info()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-8s %-16s %s\n", info.Icon, info.Name, info.ID, info.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}

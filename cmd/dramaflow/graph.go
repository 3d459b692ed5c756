package main

import (
	"fmt"

	"github.com/aretw0/dramaflow/internal/presentation/graph"
	"github.com/aretw0/dramaflow/internal/runtime"
	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the promotion workflow as a Mermaid flowchart",
	RunE: func(cmd *cobra.Command, args []string) error {
		current, _ := cmd.Flags().GetString("current")
		var overlay *graph.Overlay
		if current != "" {
			step := domain.Step(current)
			if !step.Valid() {
				return fmt.Errorf("unknown step %q", current)
			}
			overlay = &graph.Overlay{Current: step}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(runtime.Edges(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("current", "", "Highlight this step")
}

package main

import (
	"fmt"

	"github.com/aretw0/diagraph/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [graph-id]",
	Short: "Export the dialog graph visualization",
	Long:  `Outputs a Mermaid flowchart or a Graphviz DOT digraph of a dialog graph.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		format, _ := cmd.Flags().GetString("format")
		current, _ := cmd.Flags().GetString("current")

		app, err := setup(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		var id string
		if len(args) > 0 {
			id = args[0]
		}
		if id, err = app.GraphID(ctx, id); err != nil {
			return err
		}
		nodes, err := app.Engine.Graph(ctx, id)
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if current != "" {
			overlay = &graph.GraphOverlay{CurrentNode: current}
		}

		switch format {
		case "mermaid":
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(nodes, overlay))
		case "dot":
			out, err := graph.GenerateDOT(nodes, overlay)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
		default:
			return fmt.Errorf("unknown format %q. Supported: mermaid, dot", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: 'mermaid' or 'dot'")
	graphCmd.Flags().String("current", "", "Highlight this node id")
}

package main

import (
	"fmt"

	"github.com/aretw0/diagraph/internal/cli"
	"github.com/aretw0/diagraph/internal/logging"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <graph-file> <dest>",
	Short: "Convert a graph export into another store",
	Long: `Reads an editor graph export and writes it to dest:
  *.db, *.sqlite   import into a SQLite graph store
  *.json, *.yaml   write a graph file
  anything else    write a Loam directory of node documents

Data tables given with --table (CSV with ';' or XLSX) are attached first.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tableFiles, _ := cmd.Flags().GetStringArray("table")
		levelName, _ := cmd.Flags().GetString("log-level")
		if levelName == "" {
			levelName = "info"
		}
		level, err := logging.ParseLevel(levelName)
		if err != nil {
			return err
		}

		g, err := cli.ConvertGraph(cmd.Context(), args[0], args[1], tableFiles, logging.New(level))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote graph %s (%d nodes, %d tables) to %s\n", g.ID, len(g.Nodes), len(g.Tables), args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringArrayP("table", "t", nil, "Data table file to attach (repeatable)")
}

package main

import (
	"fmt"
	"io"

	"github.com/aretw0/diagraph/internal/presentation/tui"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [graph-id...]",
	Short: "Check graphs for authoring errors",
	Long: `Parses every template and update statement, checks edges and DEFAULT
branches and crawls the graph from its START node to report unreachable nodes.
Without arguments every graph of the source is checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := setup(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		ids := args
		if len(ids) == 0 {
			if ids, err = app.Engine.GraphIDs(ctx); err != nil {
				return err
			}
		}

		failed := 0
		for _, id := range ids {
			report, err := app.Engine.Validate(ctx, id)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			if !report.Valid() {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d graphs failed validation", failed, len(ids))
		}
		return nil
	},
}

func printReport(w io.Writer, report *domain.ValidationReport) {
	if len(report.Issues) == 0 {
		fmt.Fprintf(w, "%s: valid ✅\n", report.GraphID)
		return
	}
	fmt.Fprintf(w, "%s: %d errors, %d warnings\n", report.GraphID, len(report.Errors()), len(report.Warnings()))
	for _, issue := range report.Issues {
		where := issue.NodeID
		if issue.AnswerID != "" {
			where += "/" + issue.AnswerID
		}
		line := fmt.Sprintf("  [%s] %s %s: %s", issue.Severity, where, issue.Code, issue.Message)
		if issue.Severity == domain.SeverityError {
			line = tui.Error(line)
		}
		fmt.Fprintln(w, line)
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

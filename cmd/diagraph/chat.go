package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/diagraph/internal/cli"
	"github.com/aretw0/diagraph/internal/presentation/tui"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/runner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat [source]",
	Short: "Talk to a dialog graph in the terminal",
	Long: `Starts an interactive dialog. Answers are matched against the offered
candidates by number or text; variables are parsed by their declared type.
Type 'exit' to leave.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && !cmd.Flags().Changed("source") {
			_ = cmd.Flags().Set("source", args[0])
		}
		graphID, _ := cmd.Flags().GetString("graph")
		userID, _ := cmd.Flags().GetString("user")
		jsonMode, _ := cmd.Flags().GetBool("json")
		fresh, _ := cmd.Flags().GetBool("fresh")
		rawBelief, _ := cmd.Flags().GetString("belief")

		belief := domain.NewBeliefState()
		if rawBelief != "" {
			if err := json.Unmarshal([]byte(rawBelief), &belief); err != nil {
				return fmt.Errorf("error parsing --belief JSON: %w", err)
			}
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		app, err := setup(sigCtx, cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		graphID, err = app.GraphID(sigCtx, graphID)
		if err != nil {
			return err
		}

		r := runner.NewRunner(app.Engine, app.Engine.Graphs(),
			runner.WithLogger(app.Logger),
			runner.WithInputHandler(chatHandler(jsonMode, app.Config.MaxInputSize)),
			runner.WithUser(userID),
			runner.WithGraph(graphID),
			runner.WithBelief(belief),
			runner.WithRestart(fresh),
		)

		res, err := r.Run(sigCtx)
		if sig := sigCtx.Signal(); sig != nil {
			app.Logger.Info("chat interrupted", "signal", sig)
			return nil
		}
		if err != nil {
			return err
		}
		if res != nil {
			app.Logger.Debug("chat finished", "node", res.NodeID, "terminal", res.Terminal)
		}
		return nil
	},
}

// chatHandler picks NDJSON for machines and rendered markup for terminals.
func chatHandler(jsonMode bool, maxInput int) runner.IOHandler {
	if jsonMode {
		return runner.NewJSONHandler(os.Stdin, os.Stdout)
	}
	opts := []runner.TextHandlerOption{runner.WithTextHandlerMaxInputSize(maxInput)}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		tui.PrintBanner(os.Stdout)
		opts = append(opts,
			runner.WithTextHandlerRenderer(runner.ContentRenderer(tui.NewRenderer())),
			runner.WithTextHandlerErrorStyle(tui.Error),
		)
	}
	return runner.NewTextHandler(os.Stdin, os.Stdout, opts...)
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("graph", "g", "", "Graph id (defaults to the first graph of the source)")
	chatCmd.Flags().StringP("user", "u", runner.DefaultUser, "User id the dialog position is stored under")
	chatCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	chatCmd.Flags().Bool("fresh", false, "Start the dialog over instead of resuming")
	chatCmd.Flags().String("belief", "", "Initial belief state as a JSON object")
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored dialog positions",
	Long:  `List, inspect, and remove the dialog cursors kept in the session store (Redis when configured).`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all users with a stored dialog position",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := setup(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		users, err := app.Engine.Sessions().List(ctx)
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}
		if len(users) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No active sessions found.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Active Sessions:")
		for _, u := range users {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+u)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <user-id>",
	Short: "Print the dialog cursor of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := setup(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		cursor, err := app.Engine.Sessions().Load(ctx, args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}
		data, err := json.MarshalIndent(cursor, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <user-id>...",
	Short: "Remove one or more dialog cursors",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := setup(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		var errs []error
		for _, userID := range args {
			if err := app.Engine.Sessions().Delete(ctx, userID); err != nil {
				errs = append(errs, fmt.Errorf("error removing '%s': %w", userID, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", userID)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

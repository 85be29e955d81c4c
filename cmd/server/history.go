package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"health-advisor/internal/advice"
	"health-advisor/internal/history"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect stored interactions",
	}

	var user string
	list := &cobra.Command{
		Use:   "list",
		Short: "Print a user's history as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			backend, err := openBackend(cfg)
			if err != nil {
				return fmt.Errorf("failed to open history backend: %w", err)
			}
			defer backend.Close()

			store := history.NewStore(backend, zap.NewNop())
			items := store.Get(cmd.Context(), advice.UserID(user))
			out, err := json.MarshalIndent(items, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	list.Flags().StringVar(&user, "user", history.DefaultUser, "user identifier")

	cmd.AddCommand(list)
	return cmd
}

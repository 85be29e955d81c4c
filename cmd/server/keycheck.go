package main

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"health-advisor/internal/llm"
)

func newKeycheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keycheck",
		Short: "Report whether the configured provider has a usable API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := llm.NewFactory(cfg, nil).CreateClient(cmd.Context())
			if err != nil {
				return err
			}
			st := client.Status()
			out, err := json.MarshalIndent(st, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if !st.Configured {
				return errors.New("API key not configured")
			}
			return nil
		},
	}
}

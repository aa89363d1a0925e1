package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/co2meter/internal/config"
)

func newTokenCommand(ov *overrides) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored Intangles user token",
		Long: "Tokens are kept in credentials.json next to the settings file given by --config,\n" +
			"one per API base URL and account. The variable named by api.token_env takes\n" +
			"precedence over a stored token.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [token]",
		Short: "Store a token for the configured API and account (reads stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFrom(ov.configPath)
			if err != nil {
				return fmt.Errorf("loading config %s: %w", ov.configPath, err)
			}

			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading token from stdin: %w", err)
				}
				token = line
			}
			if strings.TrimSpace(token) == "" {
				return errors.New("token is empty")
			}

			path := config.CredentialsPathFor(ov.configPath)
			if err := config.SaveTokenTo(path, cfg.API, token); err != nil {
				return fmt.Errorf("saving token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token stored for account %s at %s in %s\n",
				cfg.API.AccountID, cfg.API.BaseURL, path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token for the configured API and account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFrom(ov.configPath)
			if err != nil {
				return fmt.Errorf("loading config %s: %w", ov.configPath, err)
			}
			path := config.CredentialsPathFor(ov.configPath)
			removed, err := config.DeleteTokenFrom(path, cfg.API)
			if err != nil {
				return fmt.Errorf("removing token: %w", err)
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "no token stored for account %s in %s\n", cfg.API.AccountID, path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token removed for account %s from %s\n", cfg.API.AccountID, path)
			return nil
		},
	})
	return cmd
}

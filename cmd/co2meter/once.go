package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/co2meter/internal/config"
	"github.com/janekbaraniewski/co2meter/internal/core"
	"github.com/janekbaraniewski/co2meter/internal/intangles"
)

func newOnceCommand(ov *overrides, verbose bool) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run one aggregation, print the result and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*ov)
			if err != nil {
				return err
			}
			return runOnce(cmd.Context(), cfg, config.CredentialsPathFor(ov.configPath), cmd.OutOrStdout(), asJSON, verbose)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the reading as JSON")
	return cmd
}

func runOnce(ctx context.Context, cfg config.Config, credentialsPath string, w io.Writer, asJSON, verbose bool) error {
	var ref atomic.Pointer[config.Config]
	ref.Store(&cfg)

	engine := core.NewEngine(newRunner(&ref, intangles.NewHTTPClient(), credentialsPath, verbose), time.Hour)
	engine.SetTimeout(time.Duration(cfg.UI.RunTimeoutSeconds) * time.Second)

	reading, err := engine.Refresh(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reading); err != nil {
			return fmt.Errorf("encoding reading: %w", err)
		}
	} else {
		fmt.Fprintln(w, reading.Message)
	}
	if !reading.OK() {
		return fmt.Errorf("%s: %w", reading.Status, reading.Err)
	}
	return nil
}

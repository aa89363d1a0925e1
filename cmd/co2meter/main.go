package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/co2meter/internal/config"
	"github.com/janekbaraniewski/co2meter/internal/version"
)

// overrides are command-line settings applied on top of the loaded config.
type overrides struct {
	configPath string
	specIDs    []string
	unit       string
	density    float64
	pageSize   int
}

func main() {
	verbose := os.Getenv("CO2METER_DEBUG") != ""
	if verbose {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	if err := newRootCommand(verbose).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(verbose bool) *cobra.Command {
	var ov overrides

	root := &cobra.Command{
		Use:          "co2meter",
		Short:        "co2meter shows the CO2 saved by a fleet as a live seven-segment display.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(ov)
			if err != nil {
				return err
			}
			return runDashboard(cmd.Context(), cfg, ov, verbose)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&ov.configPath, "config", config.ConfigPath(), "path to settings.json")
	flags.StringSliceVar(&ov.specIDs, "spec-id", nil, "vehicle spec id to include (repeatable, replaces the configured list)")
	flags.StringVar(&ov.unit, "unit", "", "unit of the fuel field: kg, l, lt, litre, liter")
	flags.Float64Var(&ov.density, "density", 0, "fuel density in kg per litre for volumetric units")
	flags.IntVar(&ov.pageSize, "page-size", 0, "rows requested per page")

	root.AddCommand(newOnceCommand(&ov, verbose))
	root.AddCommand(newTokenCommand(&ov))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "co2meter "+version.String())
		},
	})
	return root
}

func loadConfig(ov overrides) (config.Config, error) {
	cfg, err := config.LoadFrom(ov.configPath)
	if err != nil {
		return cfg, fmt.Errorf("loading config %s: %w", ov.configPath, err)
	}
	cfg = applyOverrides(cfg, ov)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", ov.configPath, err)
	}
	return cfg, nil
}

func applyOverrides(cfg config.Config, ov overrides) config.Config {
	ids := lo.Uniq(lo.Compact(lo.Map(ov.specIDs, func(id string, _ int) string {
		return strings.TrimSpace(id)
	})))
	if len(ids) > 0 {
		cfg.API.SpecIDs = ids
	}
	if u := strings.TrimSpace(ov.unit); u != "" {
		cfg.Fuel.Unit = u
	}
	if ov.density != 0 {
		cfg.Fuel.Density = ov.density
	}
	if ov.pageSize != 0 {
		cfg.API.PageSize = ov.pageSize
	}
	return cfg
}

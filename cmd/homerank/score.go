package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"homerank/internal/api/dto"
	"homerank/internal/app"
	"homerank/internal/config"
	"homerank/internal/platform/obs"
	"homerank/internal/services"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type scoreOptions struct {
	provider     string
	profile      string
	destinations string
	origins      string
	cache        string
	concurrency  int
	jsonOutput   bool
	noProgress   bool
}

func newScoreCmd() *cobra.Command {
	var opts scoreOptions

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score and rank the configured origins",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config-path")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg)
			obs.SetupLogger(cfg.LogLevel, cfg.Environment)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runScore(ctx, cmd, cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.provider, "provider", "", "routing provider: valhalla, google, ors or offline")
	f.StringVar(&opts.profile, "profile", "", "default transport profile")
	f.StringVar(&opts.destinations, "destinations", "", "destinations JSON file")
	f.StringVar(&opts.origins, "origins", "", "origins JSON file")
	f.StringVar(&opts.cache, "cache", "", "cache backend: none, memory, sqlite, postgres or redis")
	f.IntVar(&opts.concurrency, "concurrency", 0, "origins scored in parallel")
	f.BoolVar(&opts.jsonOutput, "json", false, "print the full report as JSON")
	f.BoolVar(&opts.noProgress, "no-progress", false, "hide the progress bar")

	return cmd
}

// apply overrides config values with flags set on the command line.
func (o scoreOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("provider") {
		cfg.RoutingProvider = o.provider
	}
	if f.Changed("profile") {
		cfg.DefaultProfile = o.profile
	}
	if f.Changed("destinations") {
		cfg.DestinationsPath = o.destinations
		cfg.LocationsDBPath = ""
	}
	if f.Changed("origins") {
		cfg.OriginsPath = o.origins
		cfg.LocationsDBPath = ""
	}
	if f.Changed("cache") {
		cfg.CacheBackend = o.cache
	}
	if f.Changed("concurrency") {
		cfg.ScoringConcurrency = o.concurrency
	}
}

func runScore(ctx context.Context, cmd *cobra.Command, cfg config.Config, opts scoreOptions) error {
	counters := obs.NewCounters()

	a, err := app.New(ctx, cfg, counters)
	if err != nil {
		return err
	}
	defer a.Close()

	dests, err := a.Locations.ListDestinations(ctx)
	if err != nil {
		return err
	}
	origins, err := a.Locations.ListOrigins(ctx)
	if err != nil {
		return err
	}

	var engineOpts []services.EngineOption
	if !opts.noProgress && !opts.jsonOutput {
		bar := progressbar.NewOptions(len(origins),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("scoring origins"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		engineOpts = append(engineOpts, services.WithProgress(func(int, int) { _ = bar.Add(1) }))
	}

	report, err := a.Engine("", engineOpts...).Score(ctx, dests, origins)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	interrupted := err != nil

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(dto.NewScoreResponse(report))
	}

	if interrupted {
		fmt.Fprintln(out, "interrupted: showing origins scored so far")
	}
	if report.NoValidData() {
		fmt.Fprintln(out, "no valid data")
		return nil
	}
	return renderReport(out, report, counters)
}

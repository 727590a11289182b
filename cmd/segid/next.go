package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arloliu/segid"
)

func newNextCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Issue ids for a code",
		Long: `Issue one or more ids for a code and print them, one per line.

Allocator settings come from --config (YAML) when given; --code, --batch-size and
--threshold override it. Ids left in the buffer on exit are skipped, never reused.`,
		Example: `  segid next --code orders --count 3
  segid next --config allocator.yaml --count 1000 --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNext(cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.String("code", "", "logical counter name")
	flags.Int("count", 1, "number of ids to issue")
	flags.Int64("batch-size", 100, "ids reserved per store round trip")
	flags.Int64("threshold", 0, "background refill threshold (0 disables)")
	flags.String("config", "", "YAML allocator config file")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address while running")

	return cmd
}

func runNext(cmd *cobra.Command, v *viper.Viper) error {
	logger, err := newLogger(cmd, v)
	if err != nil {
		return err
	}

	cfg, err := allocatorConfig(v)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration("timeout"))
	defer cancel()

	counters, closeStore, err := openStore(ctx, v, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := []segid.Option{segid.WithLogger(logger)}
	if addr := v.GetString("metrics-addr"); addr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, segid.WithMetrics(segid.NewPrometheusMetrics(reg)))
		serveMetrics(ctx, addr, reg, logger)
	}

	alloc, err := segid.New(&cfg, counters, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = alloc.Close(context.Background()) }()

	out := cmd.OutOrStdout()
	for range v.GetInt("count") {
		id, err := alloc.GenerateID(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, id)
	}

	return nil
}

// allocatorConfig merges the YAML config file with explicitly set flags.
func allocatorConfig(v *viper.Viper) (segid.Config, error) {
	cfg := segid.DefaultConfig()

	if path := v.GetString("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return segid.Config{}, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = segid.ParseConfig(data); err != nil {
			return segid.Config{}, err
		}
	}

	// explicit flags and SEGID_* variables win over the file
	if v.IsSet("code") || cfg.Code == "" {
		cfg.Code = v.GetString("code")
	}
	if v.IsSet("batch-size") || cfg.BatchSize == 0 {
		cfg.BatchSize = v.GetInt64("batch-size")
	}
	if v.IsSet("threshold") {
		cfg.ApplyThreshold = v.GetInt64("threshold")
	}

	return cfg, cfg.Validate()
}

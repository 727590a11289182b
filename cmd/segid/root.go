package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arloliu/segid"
	"github.com/arloliu/segid/internal/logging"
	"github.com/arloliu/segid/store"
)

// counterStore is what the CLI needs from a store.
type counterStore interface {
	segid.CounterStore
	segid.CounterReader
}

// newRootCommand builds the segid command tree.
//
// Every flag can also be set through the environment as SEGID_<FLAG>, with
// dashes replaced by underscores (SEGID_NATS_URL, SEGID_BOLT_PATH, ...).
func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SEGID")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "segid",
		Short:         "Segment-based unique id allocator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlags(cmd.Flags())
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("store", "nats", "counter store: nats or bolt")
	flags.String("nats-url", nats.DefaultURL, "NATS server URL")
	flags.String("bucket", store.DefaultBucketConfig().Bucket, "NATS KV bucket holding counters")
	flags.String("bolt-path", "segid.db", "bbolt database file")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.Duration("timeout", 10*time.Second, "overall command timeout")

	cmd.AddCommand(newNextCommand(v), newPeekCommand(v))

	return cmd
}

// openStore connects to the configured counter store.
//
// The returned close function releases the connection or file.
func openStore(ctx context.Context, v *viper.Viper, logger segid.Logger) (counterStore, func(), error) {
	switch kind := v.GetString("store"); kind {
	case "nats":
		nc, err := nats.Connect(v.GetString("nats-url"), nats.Name("segid-cli"))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to NATS: %w", err)
		}

		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()
			return nil, nil, fmt.Errorf("create JetStream context: %w", err)
		}

		cfg := store.DefaultBucketConfig()
		cfg.Bucket = v.GetString("bucket")
		counters, err := store.OpenNATSKV(ctx, js, cfg, store.WithLogger(logger))
		if err != nil {
			nc.Close()
			return nil, nil, err
		}

		return counters, nc.Close, nil
	case "bolt":
		counters, err := store.OpenBolt(v.GetString("bolt-path"), store.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}

		return counters, func() { _ = counters.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (want nats or bolt)", kind)
	}
}

func newLogger(cmd *cobra.Command, v *viper.Viper) (*logging.SlogLogger, error) {
	logger, err := logging.NewText(cmd.ErrOrStderr(), v.GetString("log-level"))
	if err != nil {
		return nil, err
	}

	return logger.With("store", v.GetString("store")), nil
}

// serveMetrics exposes reg on addr until ctx ends.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger segid.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arloliu/segid"
)

func newPeekCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peek",
		Short: "Show the stored counter for a code",
		Long: `Show the persisted counter value and revision for a code.

The value is the highest id reserved so far; ids above it have never been handed out.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPeek(cmd, v)
		},
	}

	cmd.Flags().String("code", "", "logical counter name")

	return cmd
}

func runPeek(cmd *cobra.Command, v *viper.Viper) error {
	code := v.GetString("code")
	if code == "" {
		return fmt.Errorf("%w: --code is required", segid.ErrInvalidConfig)
	}

	logger, err := newLogger(cmd, v)
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

	rec, err := counters.Current(ctx, code)
	if errors.Is(err, segid.ErrCounterNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "code=%s value=0 (no ids issued)\n", code)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "code=%s key=%s value=%d revision=%d\n", code, rec.Key, rec.Value, rec.Revision)

	return nil
}

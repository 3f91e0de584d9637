package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lhecker/threading/stress"
)

var (
	smokeOnly     []string
	smokeDuration time.Duration

	smokeCmd = &cobra.Command{
		Use:   "smoke",
		Short: "Run the stress scenarios and record their results",
		RunE:  smokeRun,
	}
)

func init() {
	rootCmd.AddCommand(smokeCmd)

	smokeCmd.Flags().StringSliceVar(&smokeOnly, "only", nil, `run only the named scenarios`)
	smokeCmd.Flags().DurationVar(&smokeDuration, "duration", 0, `override the duration of every scenario`)
}

func smokeRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer cancel()

		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
		defer signal.Stop(ch)

		select {
		case <-ch:
		case <-ctx.Done():
		}
	}()

	scenarios, err := singletons.Config.Select(smokeOnly)
	if err != nil {
		return err
	}

	logger := singletons.Logger
	runner := stress.NewRunner(logger)
	failed := 0

	for _, sc := range scenarios {
		if smokeDuration > 0 {
			sc.Duration = smokeDuration
		}

		res, err := runner.Run(ctx, sc)
		if err != nil {
			if isContextCanceledError(err) {
				logger.Warn("interrupted", "scenario", sc.Name)
				return nil
			}
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}

		err = singletons.Database.PutRecord(res.Record())
		if err != nil {
			return fmt.Errorf("failed to save result of %s: %w", sc.Name, err)
		}

		if res.Passed() {
			logger.Info("passed", "scenario", sc.Name, "ops", res.Operations, "canceled", res.Canceled, "max", res.MaxObserved, "elapsed", res.Elapsed.Round(time.Millisecond))
		} else {
			failed++
			logger.Error("failed", "scenario", sc.Name, "err", res.Violations)
		}
	}

	if failed != 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(scenarios))
	}
	return nil
}

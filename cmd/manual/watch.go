package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	lifecycleadapter "github.com/aretw0/manual/pkg/adapters/lifecycle"
	"github.com/aretw0/manual/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print changes made to the store by other processes until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		service, err := openService()
		if err != nil {
			return err
		}
		defer service.Close()

		// Initialize first so the seed write is not reported.
		if _, err := service.LoadAll(ctx); err != nil {
			return fmt.Errorf("failed to load manual: %w", err)
		}

		events, err := service.Watch(ctx)
		if err != nil {
			return fmt.Errorf("failed to watch: %w", err)
		}

		src := lifecycleadapter.NewSource(events, core.EventCreate, core.EventModify, core.EventDelete)
		if err := src.Start(ctx); err != nil {
			return fmt.Errorf("failed to start event source: %w", err)
		}

		slog.Info("watching for changes", "adapter", viper.GetString("adapter"))
		for ev := range src.Events() {
			e, ok := ev.(core.Event)
			if !ok {
				continue
			}
			fmt.Printf("%s %s %s\n", time.Unix(e.Timestamp, 0).Format(time.RFC3339), e.Type, e.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

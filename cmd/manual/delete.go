package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/manual/pkg/core"
)

var deleteCmd = &cobra.Command{
	Use:   "delete SECTION ID",
	Short: "Delete a process",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := openService()
		if err != nil {
			return err
		}
		defer service.Close()

		if err := service.Delete(context.Background(), args[0], core.EntryID(args[1])); err != nil {
			return fmt.Errorf("failed to delete process: %w", err)
		}
		fmt.Printf("Process %s deleted from %s.\n", args[1], args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

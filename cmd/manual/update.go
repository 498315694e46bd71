package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/manual/pkg/core"
)

var (
	updateTitle   string
	updateContent string
)

var updateCmd = &cobra.Command{
	Use:   "update SECTION ID",
	Short: "Edit the title and/or content of a process",
	Long:  `Edit a process addressed by its id. Fields not given keep their current value.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, id := args[0], core.EntryID(args[1])
		if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("content") {
			return errors.New("nothing to update: pass --title and/or --content")
		}

		service, err := openService()
		if err != nil {
			return err
		}
		defer service.Close()
		ctx := context.Background()

		current, err := service.Get(ctx, section, id)
		if err != nil {
			return fmt.Errorf("failed to find process: %w", err)
		}

		title, content := current.Title, current.Content
		if cmd.Flags().Changed("title") {
			title = updateTitle
		}
		if cmd.Flags().Changed("content") {
			if content, err = readContent(updateContent); err != nil {
				return fmt.Errorf("failed to read content: %w", err)
			}
		}

		if err := service.Update(ctx, section, id, title, content); err != nil {
			return fmt.Errorf("failed to update process: %w", err)
		}
		fmt.Printf("Saved content for %s.\n", title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVarP(&updateTitle, "title", "t", "", "New title")
	updateCmd.Flags().StringVarP(&updateContent, "content", "c", "", "New content (- for stdin)")
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var searchContents bool

var searchCmd = &cobra.Command{
	Use:   "search SECTION [QUERY]",
	Short: "Search a section by title (case-insensitive substring)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, query := args[0], ""
		if len(args) == 2 {
			query = args[1]
		}

		service, err := openService()
		if err != nil {
			return err
		}
		defer service.Close()

		n := 0
		for e, err := range service.Search(context.Background(), section, query) {
			if err != nil {
				return fmt.Errorf("failed to search: %w", err)
			}
			printEntry(e, searchContents)
			n++
		}
		if n == 0 {
			fmt.Printf("No processes in %q match %q.\n", section, query)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().BoolVarP(&searchContents, "long", "l", false, "Include process contents")
}

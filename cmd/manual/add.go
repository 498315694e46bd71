package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/manual/pkg/core"
)

var (
	addTitle   string
	addContent string
)

var addCmd = &cobra.Command{
	Use:   "add SECTION",
	Short: "Add a process to a section",
	Long:  `Add a process at the end of SECTION. Use --content - to read the content from stdin.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readContent(addContent)
		if err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}

		service, err := openService()
		if err != nil {
			return err
		}
		defer service.Close()

		e, err := service.Add(context.Background(), args[0], addTitle, content)
		if err != nil {
			var verr *core.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("please provide both title and content for the new process: %w", err)
			}
			return fmt.Errorf("failed to add process: %w", err)
		}
		fmt.Printf("Process '%s' added to %s with id %s.\n", e.Title, e.Section, e.ID)
		return nil
	},
}

// readContent returns value, or stdin when value is "-".
func readContent(value string) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Process title")
	addCmd.Flags().StringVarP(&addContent, "content", "c", "", "Process content (- for stdin)")
}

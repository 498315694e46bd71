package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/manual/pkg/logo"
)

var logoCmd = &cobra.Command{
	Use:   "logo",
	Short: "Manage the logo image",
}

var logoSetCmd = &cobra.Command{
	Use:   "set FILE",
	Short: "Upload a PNG or JPEG logo, replacing the current one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		store := openLogo()
		if err := store.Save(data); err != nil {
			return fmt.Errorf("failed to save logo: %w", err)
		}
		fmt.Printf("Logo saved to %s.\n", store.Path())
		return nil
	},
}

var logoShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Describe the current logo",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := openLogo()
		img, ok := store.Load()
		if !ok {
			fmt.Println(logo.PlaceholderText)
			return
		}
		fmt.Printf("%s: %s %dx%d (%d bytes)\n", store.Path(), img.Format, img.Width, img.Height, len(img.Data))
	},
}

var logoRemoveCmd = &cobra.Command{
	Use:     "rm",
	Aliases: []string{"remove"},
	Short:   "Remove the logo",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openLogo().Remove(); err != nil {
			return fmt.Errorf("failed to remove logo: %w", err)
		}
		fmt.Println("Logo removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoCmd)
	logoCmd.AddCommand(logoSetCmd, logoShowCmd, logoRemoveCmd)
}
